package web

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProtectedRoutesRedirectToLogin(t *testing.T) {
	e := newTestEnv(t)
	b := e.browser(t)

	for _, target := range []string{"/pages", "/create-page", "/pages/invites", "/page/1", "/page/1/init-get"} {
		rec := b.do(http.MethodGet, target, nil)
		assert.Equal(t, http.StatusSeeOther, rec.Code, target)
		assert.Equal(t, "/login", rec.Header().Get("Location"), target)
	}

	rec := b.do(http.MethodPost, "/page/1/add-post", url.Values{"encrypted_message": {"x"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestLoginSubmit_Success(t *testing.T) {
	e := newTestEnv(t)
	alice := e.register(t, "alice")

	b := e.browser(t)
	status, body := b.json(http.MethodPost, "/login/submit", url.Values{
		"email":           {"Alice@Example.com "},
		"hashed_password": {"digest-alice"},
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, false, body["flash"])
	assert.Equal(t, alice.BrowserKey, body["browser_key"])
	assert.Equal(t, "0123456789abcdef", body["aes_salt"])
	assert.Equal(t, "wrapped-private-alice", body["encrypted_private_key"])
	assert.Equal(t, "pub-alice", body["public_key"])
	assert.Equal(t, "alice", body["username"])

	rec := b.do(http.MethodGet, "/pages", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alice")
}

func TestLoginSubmit_WrongPassword(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "alice")

	b := e.browser(t)
	status, body := b.json(http.MethodPost, "/login/submit", url.Values{
		"email":           {"alice@example.com"},
		"hashed_password": {"nope"},
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, true, body["flash"])
	assert.NotContains(t, body, "browser_key")

	rec := b.do(http.MethodGet, "/login", nil)
	assert.Contains(t, rec.Body.String(), msgLoginFailed)

	// Flashes are shown once.
	rec = b.do(http.MethodGet, "/login", nil)
	assert.NotContains(t, rec.Body.String(), msgLoginFailed)

	rec = b.do(http.MethodGet, "/pages", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestRegister(t *testing.T) {
	e := newTestEnv(t)
	b := e.browser(t)

	form := url.Values{
		"username":              {"dave"},
		"email":                 {"dave@example.com"},
		"password":              {"digest"},
		"confirm_password":      {"digest"},
		"public_key":            {"pub"},
		"encrypted_private_key": {"priv"},
		"aes_salt":              {"0123456789abcdef"},
	}

	rec := b.do(http.MethodPost, "/register", form)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Contains(t, b.do(http.MethodGet, "/login", nil).Body.String(), "Account created for dave!")

	rec = b.do(http.MethodPost, "/register", form)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/register", rec.Header().Get("Location"))
	assert.Contains(t, b.do(http.MethodGet, "/register", nil).Body.String(), "username already registered")

	form.Set("username", "admin")
	form.Set("email", "root@example.com")
	rec = b.do(http.MethodPost, "/register", form)
	assert.Equal(t, "/register", rec.Header().Get("Location"))
}

func TestIdleTimeout(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "alice")
	b := e.login(t, "alice")

	e.clock = testNow.Add(9 * time.Minute)
	assert.Equal(t, http.StatusOK, b.do(http.MethodGet, "/pages", nil).Code)

	e.clock = testNow.Add(11 * time.Minute)
	rec := b.do(http.MethodGet, "/pages", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Contains(t, b.do(http.MethodGet, "/login", nil).Body.String(), msgSessionExpired)

	// The session is gone, not merely rejected.
	e.clock = testNow
	assert.Equal(t, http.StatusSeeOther, b.do(http.MethodGet, "/pages", nil).Code)
}

func TestLogout(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "alice")
	b := e.login(t, "alice")

	rec := b.do(http.MethodGet, "/logout", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	assert.Equal(t, http.StatusSeeOther, b.do(http.MethodGet, "/pages", nil).Code)
}

func TestHome_ShowsAccount(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "alice")

	assert.NotContains(t, e.browser(t).do(http.MethodGet, "/", nil).Body.String(), "Signed in as")

	b := e.login(t, "alice")
	rec := b.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Signed in as alice (alice@example.com)")

	e.clock = testNow.Add(11 * time.Minute)
	assert.NotContains(t, b.do(http.MethodGet, "/", nil).Body.String(), "Signed in as")
}
