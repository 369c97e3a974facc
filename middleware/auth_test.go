package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padraicbc/recipeapi/session"
)

func newGatedEcho(t *testing.T) (*echo.Echo, *session.Manager) {
	t.Helper()
	sessions := session.NewManager(session.NewMemoryStore(), session.Options{
		Key: []byte("k"), TTL: time.Hour, CookieName: "session",
	})

	e := echo.New()
	e.Use(sessions.Load())
	e.Use(RequireUser("/open"))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.GET("/open", ok)
	e.GET("/closed", ok)
	e.POST("/grant", func(c echo.Context) error {
		if err := sessions.Grant(c, 1); err != nil {
			return err
		}
		return c.NoContent(http.StatusOK)
	})
	return e, sessions
}

func serve(e *echo.Echo, method, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequireUser_PublicPathPasses(t *testing.T) {
	e, _ := newGatedEcho(t)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/open").Code)
}

func TestRequireUser_ProtectedPathRejectsAnonymous(t *testing.T) {
	e, _ := newGatedEcho(t)
	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/closed").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodPost, "/grant").Code)
}

func TestRequireUser_ProtectedPathAllowsSessionUser(t *testing.T) {
	e, sessions := newGatedEcho(t)

	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), httptest.NewRecorder())
	rec := c.Response().Writer.(*httptest.ResponseRecorder)
	require.NoError(t, sessions.Grant(c, 1))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/closed", cookies[0]).Code)

	forged := *cookies[0]
	forged.Value = "forged"
	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/closed", &forged).Code)
}
