// Package session keeps the admin bearer token in the gorilla session cookie
// and tells the app when the API has rejected it.
package session

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	AdminName = "admin-session"

	tokenKey = "admin_token"
	emailKey = "admin_email"
)

// Manager is the single place that reads or writes the admin token.
type Manager struct {
	store     sessions.Store
	onExpired func(w http.ResponseWriter, r *http.Request)
}

func NewManager(store sessions.Store) *Manager {
	return &Manager{store: store}
}

// OnExpired registers the callback run after Expire has cleared the token,
// typically a redirect to the login page.
func (m *Manager) OnExpired(fn func(w http.ResponseWriter, r *http.Request)) {
	m.onExpired = fn
}

// Get returns the admin session. A cookie that fails to decode yields a
// fresh session, the same as no cookie at all.
func (m *Manager) Get(r *http.Request) *sessions.Session {
	s, err := m.store.Get(r, AdminName)
	if err != nil {
		slog.Debug("Discarding unreadable admin session", "error", err)
	}
	return s
}

func (m *Manager) Token(r *http.Request) string {
	tok, _ := m.Get(r).Values[tokenKey].(string)
	return tok
}

func (m *Manager) Email(r *http.Request) string {
	email, _ := m.Get(r).Values[emailKey].(string)
	return email
}

func (m *Manager) Authenticated(r *http.Request) bool {
	return m.Token(r) != ""
}

func (m *Manager) SetToken(w http.ResponseWriter, r *http.Request, token, email string) error {
	s := m.Get(r)
	s.Values[tokenKey] = token
	s.Values[emailKey] = email
	s.Options.Path = "/"
	return s.Save(r, w)
}

// Clear drops the token but keeps the cookie, so flashes added afterwards
// still reach the next page.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) error {
	s := m.Get(r)
	delete(s.Values, tokenKey)
	delete(s.Values, emailKey)
	return s.Save(r, w)
}

// Expire clears the token and hands over to the expiry callback. Any form
// state the admin was editing is dropped.
func (m *Manager) Expire(w http.ResponseWriter, r *http.Request) {
	if err := m.Clear(w, r); err != nil {
		slog.Error("Failed to clear expired admin session", "error", err)
	}
	if m.onExpired != nil {
		m.onExpired(w, r)
	}
}
