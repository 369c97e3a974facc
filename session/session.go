// Package session implements server-side sessions addressed by a signed cookie.
//
// The cookie carries only an HS256 token whose ID claim names a row in a
// Store. The middleware resolves it once per request into a State kept in the
// echo context, and handlers read the caller's identity with UserID.
package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/padraicbc/recipeapi/models"
)

const contextKey = "session"

// State is the per-request view of the caller's session.
type State struct {
	ID     string
	UserID *int64
}

// Options configures a Manager.
type Options struct {
	Key        []byte
	TTL        time.Duration
	CookieName string
	Secure     bool
}

// Manager issues, resolves and clears sessions.
type Manager struct {
	store Store
	opts  Options
	now   func() time.Time
}

// NewManager returns a Manager persisting sessions in store.
func NewManager(store Store, opts Options) *Manager {
	return &Manager{store: store, opts: opts, now: time.Now}
}

// Store returns the underlying session store.
func (m *Manager) Store() Store {
	return m.store
}

// Resolve maps a raw cookie value to the live session it names. Bad or stale
// tokens yield an anonymous State; only store failures return an error.
func (m *Manager) Resolve(ctx context.Context, raw string) (*State, error) {
	if raw == "" {
		return &State{}, nil
	}

	now := m.now().UTC()
	id, err := parseToken(m.opts.Key, raw, now)
	if err != nil {
		return &State{}, nil
	}

	s, err := m.store.Get(ctx, id, now)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return &State{}, nil
		}
		return nil, err
	}
	return &State{ID: s.ID, UserID: s.UserID}, nil
}

// Grant starts a fresh session for userID and sets its cookie. A new id is
// issued on every grant so a pre-login cookie never becomes authenticated.
func (m *Manager) Grant(c echo.Context, userID int64) error {
	now := m.now().UTC()
	s := &models.Session{
		ID:        uuid.NewString(),
		UserID:    &userID,
		ExpiresAt: now.Add(m.opts.TTL),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.store.Create(c.Request().Context(), s); err != nil {
		return err
	}

	token, err := signToken(m.opts.Key, s.ID, now, s.ExpiresAt)
	if err != nil {
		return err
	}

	c.SetCookie(m.cookie(token, s.ExpiresAt, int(m.opts.TTL.Seconds())))
	c.Set(contextKey, &State{ID: s.ID, UserID: s.UserID})
	return nil
}

// Revoke clears the user id of the current session and expires the cookie.
func (m *Manager) Revoke(c echo.Context) error {
	st := Current(c)
	if st.ID != "" {
		err := m.store.SetUser(c.Request().Context(), st.ID, nil, m.now().UTC())
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}

	c.SetCookie(m.cookie("", time.Unix(0, 0), -1))
	c.Set(contextKey, &State{ID: st.ID})
	return nil
}

// Load is echo middleware that resolves the session cookie into the request context.
func (m *Manager) Load() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := ""
			if ck, err := c.Cookie(m.opts.CookieName); err == nil {
				raw = ck.Value
			}

			st, err := m.Resolve(c.Request().Context(), raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
			}
			c.Set(contextKey, st)
			return next(c)
		}
	}
}

// PruneExpired deletes sessions that have expired.
func (m *Manager) PruneExpired(ctx context.Context) (int64, error) {
	return m.store.DeleteExpired(ctx, m.now().UTC())
}

func (m *Manager) cookie(value string, expires time.Time, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Current returns the session state resolved for this request. It is never nil.
func Current(c echo.Context) *State {
	if st, ok := c.Get(contextKey).(*State); ok && st != nil {
		return st
	}
	return &State{}
}

// UserID returns the authenticated user id, if any.
func UserID(c echo.Context) (int64, bool) {
	st := Current(c)
	if st.UserID == nil {
		return 0, false
	}
	return *st.UserID, true
}
