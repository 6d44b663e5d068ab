package session

import (
	"crypto/sha256"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

const (
	keyUserID   = "uid"
	keyUserName = "username"
	keyLoginAt  = "login_at"
	keyStaged   = "staged"
)

// Manager loads and stores State in a gorilla/sessions cookie.
type Manager struct {
	store sessions.Store
	name  string
}

// NewManager derives the cookie signing and encryption keys from secret.
func NewManager(name, secret string, secure bool) *Manager {
	hashKey := sha256.Sum256([]byte("session-auth:" + secret))
	blockKey := sha256.Sum256([]byte("session-enc:" + secret))

	store := sessions.NewCookieStore(hashKey[:], blockKey[:])
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{store: store, name: name}
}

func (m *Manager) session(r *http.Request) *sessions.Session {
	// A cookie that fails to decode (rotated secret, tampering) yields a
	// fresh session, which is what we want anyway.
	s, _ := m.store.Get(r, m.name)
	return s
}

// Load returns the state of the request's session. An unknown or broken
// cookie gives an empty, unauthenticated state.
func (m *Manager) Load(r *http.Request) *State {
	s := m.session(r)

	st := &State{}
	st.UserID, _ = s.Values[keyUserID].(int64)
	st.UserName, _ = s.Values[keyUserName].(string)
	if ts, ok := s.Values[keyLoginAt].(int64); ok {
		st.LoginAt = time.Unix(ts, 0)
	}
	st.Staged, _ = s.Values[keyStaged].([]string)
	return st
}

// Save writes st into the session cookie.
func (m *Manager) Save(w http.ResponseWriter, r *http.Request, st *State) error {
	s := m.session(r)
	s.Values[keyUserID] = st.UserID
	s.Values[keyUserName] = st.UserName
	s.Values[keyLoginAt] = st.LoginAt.Unix()
	s.Values[keyStaged] = append([]string{}, st.Staged...)
	return s.Save(r, w)
}

// Destroy drops everything but queued flashes, then queues flashes. The
// cookie is written once so the login page sees the messages.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request, flashes ...string) error {
	s := m.session(r)
	for _, k := range []string{keyUserID, keyUserName, keyLoginAt, keyStaged} {
		delete(s.Values, k)
	}
	for _, f := range flashes {
		s.AddFlash(f)
	}
	return s.Save(r, w)
}

// AddFlash queues a one-shot message for the next rendered page.
func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, msg string) error {
	s := m.session(r)
	s.AddFlash(msg)
	return s.Save(r, w)
}

// Flashes pops the queued messages.
func (m *Manager) Flashes(w http.ResponseWriter, r *http.Request) ([]string, error) {
	s := m.session(r)
	raw := s.Flashes()
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(raw))
	for _, f := range raw {
		if msg, ok := f.(string); ok {
			out = append(out, msg)
		}
	}
	return out, s.Save(r, w)
}
