package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager() *Manager {
	return NewManager(sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef")))
}

// carry copies the cookies set on rec onto a fresh request.
func carry(rec *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/admin", nil)
	for _, c := range rec.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestTokenRoundTrip(t *testing.T) {
	m := newManager()

	r := httptest.NewRequest(http.MethodGet, "/admin", nil)
	assert.False(t, m.Authenticated(r))

	rec := httptest.NewRecorder()
	require.NoError(t, m.SetToken(rec, r, "tok-123", "admin@example.com"))

	next := carry(rec)
	assert.True(t, m.Authenticated(next))
	assert.Equal(t, "tok-123", m.Token(next))
	assert.Equal(t, "admin@example.com", m.Email(next))

	rec = httptest.NewRecorder()
	require.NoError(t, m.Clear(rec, next))
	assert.Empty(t, m.Token(carry(rec)))
}

func TestExpireRunsCallback(t *testing.T) {
	m := newManager()
	m.OnExpired(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
	})

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/admin", nil)
	require.NoError(t, m.SetToken(rec, r, "tok", "a@b.co"))

	authed := carry(rec)
	rec = httptest.NewRecorder()
	m.Expire(rec, authed)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get("Location"))
	assert.Empty(t, m.Token(carry(rec)))
}

func TestGarbageCookieIsIgnored(t *testing.T) {
	m := newManager()
	r := httptest.NewRequest(http.MethodGet, "/admin", nil)
	r.AddCookie(&http.Cookie{Name: AdminName, Value: "not-a-valid-cookie"})
	assert.False(t, m.Authenticated(r))
}
