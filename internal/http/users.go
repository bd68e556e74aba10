package httpx

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"yatube/internal/auth"
)

func (s *Server) setSessionCookie(w http.ResponseWriter, sid string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sid,
		Path:     "/",
		Expires:  time.Now().Add(s.Cfg.SessionLifetime),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// safeNext keeps redirects on this site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

// GET|POST /auth/signup/
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, r, http.StatusOK, "users/signup.html", authPage{pageData: s.base(r)})
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		ctx := r.Context()
		email := r.PostFormValue("email")
		username := r.PostFormValue("username")

		uid, err := auth.Register(ctx, s.DB, email, username, r.PostFormValue("password"))
		if err != nil {
			s.render(w, r, http.StatusOK, "users/signup.html", authPage{
				pageData: s.base(r),
				Error:    err.Error(),
				Username: username,
				Email:    email,
			})
			return
		}
		sid, err := auth.StartSession(ctx, s.DB, uid, s.Cfg.SessionLifetime)
		if err != nil {
			s.serverError(w, r, err)
			return
		}
		s.Log.Info("user registered", "user", uid, "username", username)
		s.setSessionCookie(w, sid)
		http.Redirect(w, r, "/", http.StatusFound)
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// GET|POST /auth/login/
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, r, http.StatusOK, "users/login.html", authPage{
			pageData: s.base(r),
			Next:     r.URL.Query().Get("next"),
		})
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		username := r.PostFormValue("username")
		next := r.PostFormValue("next")

		sid, _, err := auth.Login(r.Context(), s.DB, username, r.PostFormValue("password"), s.Cfg.SessionLifetime)
		if errors.Is(err, auth.ErrInvalidLogin) {
			s.render(w, r, http.StatusOK, "users/login.html", authPage{
				pageData: s.base(r),
				Error:    err.Error(),
				Next:     next,
				Username: username,
			})
			return
		}
		if err != nil {
			s.serverError(w, r, err)
			return
		}
		s.setSessionCookie(w, sid)
		http.Redirect(w, r, safeNext(next), http.StatusFound)
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// /auth/logout/
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		if err := auth.Logout(r.Context(), s.DB, c.Value); err != nil {
			s.Log.Warn("logout", "err", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	http.Redirect(w, r, "/", http.StatusFound)
}
