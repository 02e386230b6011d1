package server

import (
	"context"
	"io/fs"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/burrowtv/burrow/internal/activity"
	"github.com/burrowtv/burrow/internal/auth"
	"github.com/burrowtv/burrow/internal/gate"
	"github.com/burrowtv/burrow/internal/library"
	"github.com/burrowtv/burrow/internal/media"
	"github.com/burrowtv/burrow/internal/nav"
	"github.com/burrowtv/burrow/internal/ratelimit"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	Store             library.Store
	Media             media.Store
	Pinger            Pinger
	WebFS             fs.FS
	JWTSecret         string
	AdminPasswordHash string
	BaseURL           string
	AllowedOrigins    []string
	GateConfig        gate.Config
	SessionTTL        time.Duration
	Activity          *activity.Log
}

type Server struct {
	router   chi.Router
	pinger   Pinger
	store    library.Store
	media    media.Store
	thumbs   *media.ThumbnailProxy
	authSvc  *auth.Service
	registry *nav.Registry
	nav      *nav.Handler
	activity *activity.Log
	webFS    fs.FS
}

func New(cfg Config) *Server {
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required; set the environment variable")
	}
	if cfg.Store == nil {
		log.Fatal("server requires a library store")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	secureCookies := hasHTTPS(baseURL)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(slogMiddleware)
	r.Use(securityHeaders(SecurityConfig{BaseURL: baseURL}))
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
		}).Handler)
	}

	s := &Server{
		router:   r,
		pinger:   cfg.Pinger,
		store:    cfg.Store,
		media:    cfg.Media,
		thumbs:   media.NewThumbnailProxy(),
		authSvc:  auth.NewService(cfg.JWTSecret, cfg.AdminPasswordHash, secureCookies),
		activity: cfg.Activity,
		webFS:    cfg.WebFS,
	}
	s.registry = nav.NewRegistry(cfg.Store, cfg.GateConfig, cfg.Activity, cfg.SessionTTL)
	s.nav = nav.NewHandler(s.registry, s.authSvc, cfg.Activity)

	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// StartBackground launches the session sweeper; it stops when ctx is done.
func (s *Server) StartBackground(ctx context.Context) {
	s.registry.StartSweeper(ctx, time.Minute)
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api/session", func(r chi.Router) {
		r.Get("/", s.nav.GetSession)
		r.Post("/select", s.nav.Select)
		r.Post("/back", s.nav.Back)
		r.Post("/settings/request", s.nav.RequestSettings)
		r.Post("/settings/close", s.nav.CloseSettings)
	})

	// The answer route is rate limited so the arithmetic cannot be brute
	// forced by a patient child with a number pad.
	gateLimiter := ratelimit.NewLimiter(2, 10)
	s.router.Route("/api/gate", func(r chi.Router) {
		r.Use(gateLimiter.Middleware)
		r.Post("/answer", s.nav.GateAnswer)
		r.Post("/hold/start", s.nav.GateHoldStart)
		r.Post("/hold/release", s.nav.GateHoldRelease)
		r.Post("/cancel", s.nav.GateCancel)
	})

	s.router.Post("/api/playback/event", s.nav.PlaybackEvent)

	adminLimiter := ratelimit.NewLimiter(0.5, 5)
	s.router.With(adminLimiter.Middleware).Post("/api/auth/admin", s.authSvc.AdminLogin)

	s.router.Route("/api/videos", func(r chi.Router) {
		r.Use(s.authSvc.Middleware)
		r.Get("/", s.handleListVideos)
		r.Post("/", s.handleAddVideo)
		r.Delete("/{id}", s.handleRemoveVideo)
		r.Post("/reset", s.handleResetVideos)
	})
	s.router.With(s.authSvc.Middleware).Get("/api/activity", s.handleActivity)

	s.router.Get("/thumb/{id}", s.handleThumbnail)
	if s.media != nil {
		s.router.Get("/media/{filename}", s.handleMedia)
	}

	if s.webFS != nil {
		spa := newSPAFileServer(s.webFS)
		s.router.NotFound(spa.ServeHTTP)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unhealthy","error":"database unreachable"}`))
			return
		}
	}
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	s.thumbs.ServeHTTP(w, r, chi.URLParam(r, "id"))
}

func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	// Sanitized titles contain spaces, so the path segment arrives escaped.
	filename, err := url.PathUnescape(chi.URLParam(r, "filename"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	s.media.Serve(w, r, filename)
}
