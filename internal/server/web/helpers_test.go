package web

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/pagekeeper/internal/cryptox"
	"github.com/dmitrijs2005/pagekeeper/internal/logging"
	"github.com/dmitrijs2005/pagekeeper/internal/server/models"
	"github.com/dmitrijs2005/pagekeeper/internal/server/repositories/memory"
	"github.com/dmitrijs2005/pagekeeper/internal/server/services"
	"github.com/dmitrijs2005/pagekeeper/internal/server/session"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

var testNow = time.Date(2024, 7, 14, 12, 0, 0, 0, time.UTC)

// testEnv runs the real services over the in-memory store. The sqlite
// handle only provides transactions.
type testEnv struct {
	srv   *HTTPServer
	h     http.Handler
	rm    *memory.RepositoryManager
	users *services.UserService
	clock time.Time
}

func newTestServer(t *testing.T, svc Services) *HTTPServer {
	t.Helper()
	srv, err := NewHTTPServer(Options{
		Address:              "127.0.0.1:0",
		TicketSecret:         []byte("ticket-secret"),
		SessionIdleTimeout:   10 * time.Minute,
		InviteTicketValidity: 5 * time.Minute,
	}, logging.Nop{}, session.NewManager("pagekeeper", "session-secret", false), svc)
	require.NoError(t, err)
	return srv
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	key, err := cryptox.GenerateKey(256)
	require.NoError(t, err)

	rm := memory.NewRepositoryManager()
	users := services.NewUserService(db, rm, key)
	e := &testEnv{rm: rm, users: users, clock: testNow}
	e.srv = newTestServer(t, Services{
		Users:   users,
		Pages:   services.NewPageService(db, rm, key),
		Invites: services.NewInviteService(db, rm),
		Posts:   services.NewPostService(db, rm, key),
	})
	e.srv.now = func() time.Time { return e.clock }
	e.h = e.srv.Handler()
	return e
}

func (e *testEnv) register(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := e.users.Register(context.Background(), services.Registration{
		UserName:            name,
		Email:               name + "@example.com",
		Password:            "digest-" + name,
		ConfirmPassword:     "digest-" + name,
		PublicKey:           "pub-" + name,
		EncryptedPrivateKey: "wrapped-private-" + name,
		AESSalt:             "0123456789abcdef",
	})
	require.NoError(t, err)
	return u
}

// browser keeps the latest cookie per name, like a real one.
type browser struct {
	t       *testing.T
	h       http.Handler
	cookies map[string]*http.Cookie
}

func (e *testEnv) browser(t *testing.T) *browser {
	return &browser{t: t, h: e.h, cookies: make(map[string]*http.Cookie)}
}

// login signs name in. The user must already be registered.
func (e *testEnv) login(t *testing.T, name string) *browser {
	t.Helper()
	b := e.browser(t)
	status, body := b.json(http.MethodPost, "/login/submit", url.Values{
		"email":           {name + "@example.com"},
		"hashed_password": {"digest-" + name},
	})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, body["success"])
	return b
}

func (b *browser) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	b.t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range b.cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}

	rec := httptest.NewRecorder()
	b.h.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return rec
}

func (b *browser) json(method, target string, form url.Values) (int, map[string]any) {
	b.t.Helper()
	rec := b.do(method, target, form)
	if rec.Header().Get("Content-Type") != "application/json" {
		return rec.Code, nil
	}
	var body map[string]any
	require.NoError(b.t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

// list pulls a JSON array of objects out of body.
func list(t *testing.T, body map[string]any, key string) []map[string]any {
	t.Helper()
	raw, ok := body[key].([]any)
	require.True(t, ok, "%s is not a list: %v", key, body[key])
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		out = append(out, item.(map[string]any))
	}
	return out
}
