package httpx

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"yatube/internal/auth"
	"yatube/internal/cache"
)

const CookieName = "session_id"

func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
			u, exp, err := auth.UserFromSession(r.Context(), s.DB, c.Value)
			if err == nil && exp.After(time.Now()) {
				r = r.WithContext(auth.WithUser(r.Context(), u))
			} else {
				s.Log.Debug("session rejected", "err", err)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// requireAuth sends guests to the login page with the requested path in
// ?next= so they come back after signing in.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.UserFrom(r.Context()); !ok {
			http.Redirect(w, r, loginURL(r.URL.RequestURI()), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func loginURL(next string) string {
	return "/auth/login/?next=" + strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
}

// ——— access log ———

type statusRW struct {
	http.ResponseWriter
	status int
}

func (w *statusRW) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// WithAccessLog logs METHOD PATH -> STATUS (duration) for every request.
func WithAccessLog(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusRW{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"dur", time.Since(start).Truncate(time.Millisecond),
		)
	})
}

// WithTimeout applies a 5s timeout to the whole request.
func WithTimeout(next http.Handler) http.Handler {
	return http.TimeoutHandler(next, 5*time.Second, "request timeout")
}

// withMetrics must wrap the mux directly: the route label comes from the
// pattern the mux stores on the request.
func (s *Server) withMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusRW{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		s.Metrics.Requests.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Inc()
		s.Metrics.Duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ——— page cache ———

// captureRW passes the response through while keeping a copy of it.
type captureRW struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (w *captureRW) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *captureRW) Write(p []byte) (int, error) {
	w.body.Write(p)
	return w.ResponseWriter.Write(p)
}

// cachePage serves a stored copy of the page while it is fresh. Only 200
// responses are stored, keyed by viewer and request URI.
func (s *Server) cachePage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := cacheKey(r)
		e, ok, err := s.Cache.Get(r.Context(), key)
		switch {
		case err != nil:
			s.Log.Warn("page cache get", "key", key, "err", err)
			s.Metrics.PageCache.WithLabelValues("error").Inc()
		case ok:
			s.Metrics.PageCache.WithLabelValues("hit").Inc()
			w.Header().Set("Content-Type", e.ContentType)
			w.WriteHeader(e.Status)
			_, _ = w.Write(e.Body)
			return
		default:
			s.Metrics.PageCache.WithLabelValues("miss").Inc()
		}

		cw := &captureRW{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(cw, r)
		if cw.status != http.StatusOK {
			return
		}
		entry := &cache.Entry{
			Status:      cw.status,
			ContentType: w.Header().Get("Content-Type"),
			Body:        cw.body.Bytes(),
		}
		if err := s.Cache.Set(r.Context(), key, entry, s.Cfg.CacheTTL); err != nil {
			s.Log.Warn("page cache set", "key", key, "err", err)
		}
	})
}

func cacheKey(r *http.Request) string {
	viewer := "anon"
	if u, ok := auth.UserFrom(r.Context()); ok {
		viewer = strconv.FormatInt(u.ID, 10)
	}
	return viewer + ":" + r.URL.RequestURI()
}
