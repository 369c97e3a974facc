package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/uptrace/bun"

	"github.com/padraicbc/recipeapi/models"
)

// ErrNotFound is returned when no live session exists for an id.
var ErrNotFound = errors.New("session not found")

// Store persists sessions server-side.
type Store interface {
	// Get returns the session unless it is missing or expired at now.
	Get(ctx context.Context, id string, now time.Time) (*models.Session, error)
	Create(ctx context.Context, s *models.Session) error
	// SetUser replaces the user id of an existing session.
	SetUser(ctx context.Context, id string, userID *int64, now time.Time) error
	// DeleteExpired removes sessions expired at now and returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// BunStore keeps sessions in the sessions table.
type BunStore struct {
	db *bun.DB
}

func NewBunStore(db *bun.DB) *BunStore {
	return &BunStore{db: db}
}

func (b *BunStore) Get(ctx context.Context, id string, now time.Time) (*models.Session, error) {
	s := &models.Session{}
	err := b.db.NewSelect().Model(s).
		Where("s.id = ?", id).
		Where("s.expires_at > ?", now).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}

func (b *BunStore) Create(ctx context.Context, s *models.Session) error {
	if _, err := b.db.NewInsert().Model(s).Exec(ctx); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (b *BunStore) SetUser(ctx context.Context, id string, userID *int64, now time.Time) error {
	res, err := b.db.NewUpdate().Model((*models.Session)(nil)).
		Set("user_id = ?", userID).
		Set("updated_at = ?", now).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (b *BunStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := b.db.NewDelete().Model((*models.Session)(nil)).
		Where("expires_at <= ?", now).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}

// MemoryStore keeps sessions in process memory. Sessions do not survive a
// restart and are not shared between instances.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]models.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]models.Session)}
}

func (m *MemoryStore) Get(_ context.Context, id string, now time.Time) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok || s.Expired(now) {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *MemoryStore) Create(_ context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[s.ID]; ok {
		return fmt.Errorf("create session: duplicate id %q", s.ID)
	}
	m.sessions[s.ID] = *s
	return nil
}

func (m *MemoryStore) SetUser(_ context.Context, id string, userID *int64, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	s.UserID = userID
	s.UpdatedAt = now
	m.sessions[id] = s
	return nil
}

func (m *MemoryStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}
