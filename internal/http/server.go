package httpx

import (
	"context"
	"database/sql"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"yatube/internal/app"
	"yatube/internal/cache"
	"yatube/internal/events"
	"yatube/internal/media"
	"yatube/internal/metrics"
	"yatube/internal/pagination"
	"yatube/internal/store"
	"yatube/internal/util"
	"yatube/web"
)

// Deps are the collaborators of a Server. Nil fields get local defaults:
// in-memory page cache, media under cfg.MediaRoot, no event publishing.
type Deps struct {
	Cache    cache.Store
	Media    media.Storage
	Events   events.Publisher
	Metrics  *metrics.Metrics
	Log      *slog.Logger
	Renderer util.Renderer
}

type Server struct {
	DB      *sql.DB
	Cfg     app.Config
	Mux     *http.ServeMux
	Store   *store.Store
	Cache   cache.Store
	Media   media.Storage
	Events  events.Publisher
	Metrics *metrics.Metrics
	Log     *slog.Logger
	Render  util.Renderer
	Pages   pagination.Paginator

	// PublishTimeout bounds how long a request waits on the event broker.
	PublishTimeout time.Duration

	handler http.Handler
}

func NewServer(db *sql.DB, cfg app.Config, deps Deps) (*Server, error) {
	s := &Server{
		DB:      db,
		Cfg:     cfg,
		Mux:     http.NewServeMux(),
		Store:   store.New(db),
		Cache:   deps.Cache,
		Media:   deps.Media,
		Events:  deps.Events,
		Metrics: deps.Metrics,
		Log:     deps.Log,
		Render:  deps.Renderer,
		Pages:   pagination.New(),

		PublishTimeout: time.Second,
	}
	if s.Cache == nil {
		s.Cache = cache.NewMemory()
	}
	if s.Media == nil {
		s.Media = media.NewLocal(cfg.MediaRoot, "/media/")
	}
	if s.Events == nil {
		s.Events = events.Nop{}
	}
	if s.Metrics == nil {
		s.Metrics = metrics.New()
	}
	if s.Log == nil {
		s.Log = slog.Default()
	}
	if s.Cfg.CacheTTL <= 0 {
		s.Cfg.CacheTTL = cache.DefaultTTL
	}
	if s.Cfg.SessionLifetime <= 0 {
		s.Cfg.SessionLifetime = 24 * time.Hour
	}
	if s.Render == nil {
		tmpl, err := util.LoadTemplates(web.FS, "templates", map[string]any{"mediaURL": s.Media.URL})
		if err != nil {
			return nil, err
		}
		s.Render = tmpl
	}

	s.routes()
	s.handler = otelhttp.NewHandler(
		WithAccessLog(s.Log, WithTimeout(s.withSession(s.withMetrics(s.Mux)))),
		"http.server",
	)
	return s, nil
}

func (s *Server) routes() {
	static, _ := fs.Sub(web.FS, "static")
	s.Mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	if local, ok := s.Media.(*media.Local); ok {
		s.Mux.Handle("GET /media/", http.StripPrefix("/media/", http.FileServer(http.Dir(local.Root))))
	}
	s.Mux.Handle("GET /metrics", promhttp.HandlerFor(s.Metrics.Registry, promhttp.HandlerOpts{}))

	// feeds
	s.Mux.Handle("GET /{$}", s.cachePage(http.HandlerFunc(s.handleIndex)))
	s.Mux.HandleFunc("GET /group/{slug}/{$}", s.handleGroup)
	s.Mux.HandleFunc("GET /profile/{username}/{$}", s.handleProfile)
	s.Mux.Handle("GET /follow/{$}", s.requireAuth(http.HandlerFunc(s.handleFollowIndex)))

	// posts
	s.Mux.HandleFunc("GET /posts/{id}/{$}", s.handlePostDetail)
	s.Mux.Handle("GET /create/{$}", s.requireAuth(http.HandlerFunc(s.handlePostCreate)))
	s.Mux.Handle("POST /create/{$}", s.requireAuth(http.HandlerFunc(s.handlePostCreate)))
	s.Mux.Handle("GET /posts/{id}/edit/{$}", s.requireAuth(http.HandlerFunc(s.handlePostEdit)))
	s.Mux.Handle("POST /posts/{id}/edit/{$}", s.requireAuth(http.HandlerFunc(s.handlePostEdit)))
	s.Mux.Handle("GET /posts/{id}/comment/{$}", s.requireAuth(http.HandlerFunc(s.handleCommentRedirect)))
	s.Mux.Handle("POST /posts/{id}/comment/{$}", s.requireAuth(http.HandlerFunc(s.handleCommentCreate)))

	// follows
	s.Mux.Handle("GET /profile/{username}/follow/{$}", s.requireAuth(http.HandlerFunc(s.handleFollow)))
	s.Mux.Handle("GET /profile/{username}/unfollow/{$}", s.requireAuth(http.HandlerFunc(s.handleUnfollow)))

	// users
	s.Mux.HandleFunc("/auth/signup/{$}", s.handleSignup)
	s.Mux.HandleFunc("/auth/login/{$}", s.handleLogin)
	s.Mux.HandleFunc("/auth/logout/{$}", s.handleLogout)

	// about
	s.Mux.HandleFunc("GET /about/author/{$}", s.staticPage("about/author.html"))
	s.Mux.HandleFunc("GET /about/tech/{$}", s.staticPage("about/tech.html"))

	s.Mux.HandleFunc("/", s.notFound)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.handler.ServeHTTP(w, r) }

// ClearCache drops every cached page so the next request renders fresh data.
func (s *Server) ClearCache(ctx context.Context) error { return s.Cache.Clear(ctx) }
