package httpx

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionCookie(w *http.Response) *http.Cookie {
	for _, c := range w.Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	return nil
}

func TestSignupLogsIn(t *testing.T) {
	e := newTestEnv(t)

	w := e.postForm("/auth/signup/", "", url.Values{
		"email":    {"new@example.com"},
		"username": {"newbie"},
		"password": {"secret-pass"},
	})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	c := sessionCookie(w.Result())
	require.NotNil(t, c)

	e.get("/create/", c.Value)
	page := e.page()
	assert.Equal(t, "posts/create_post.html", page.Name)
	assert.Equal(t, "newbie", page.Data.(postFormPage).User.Username)
}

func TestSignupDuplicate(t *testing.T) {
	e := newTestEnv(t)
	e.user("taken")

	w := e.postForm("/auth/signup/", "", url.Values{
		"email":    {"other@example.com"},
		"username": {"taken"},
		"password": {"secret-pass"},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	data := e.page().Data.(authPage)
	assert.NotEmpty(t, data.Error)
	assert.Equal(t, "taken", data.Username)
}

func TestLoginRedirectsToNext(t *testing.T) {
	e := newTestEnv(t)
	e.user("auth")

	e.get("/auth/login/?next=/create/", "")
	assert.Equal(t, "/create/", e.page().Data.(authPage).Next)

	w := e.postForm("/auth/login/", "", url.Values{
		"username": {"auth"},
		"password": {"secret-pass"},
		"next":     {"/create/"},
	})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/create/", w.Header().Get("Location"))
	require.NotNil(t, sessionCookie(w.Result()))

	w = e.postForm("/auth/login/", "", url.Values{
		"username": {"auth"},
		"password": {"secret-pass"},
		"next":     {"https://evil.example.com/"},
	})
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestLoginWrongPassword(t *testing.T) {
	e := newTestEnv(t)
	e.user("auth")

	w := e.postForm("/auth/login/", "", url.Values{"username": {"auth"}, "password": {"nope"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "users/login.html", e.page().Name)
	assert.Nil(t, sessionCookie(w.Result()))
}

func TestLogout(t *testing.T) {
	e := newTestEnv(t)
	_, sid := e.user("auth")

	w := e.get("/auth/logout/", sid)
	assert.Equal(t, http.StatusFound, w.Code)

	w = e.get("/create/", sid)
	assert.Equal(t, http.StatusFound, w.Code, "session is gone after logout")
	assert.Equal(t, "/auth/login/?next=/create/", w.Header().Get("Location"))
}
