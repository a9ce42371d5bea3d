package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/secmon-lab/themis/pkg/usecase"
	"github.com/secmon-lab/themis/pkg/utils/logging"
)

type Server struct {
	router      *chi.Mux
	uc          *usecase.UseCases
	registry    *prometheus.Registry
	allowOrigin string
}

type Options func(*Server)

// WithMetrics registers HTTP metrics to registry and serves it on /metrics
func WithMetrics(registry *prometheus.Registry) Options {
	return func(s *Server) {
		s.registry = registry
	}
}

// WithAllowOrigin sets the Access-Control-Allow-Origin value for the frontend
func WithAllowOrigin(origin string) Options {
	return func(s *Server) {
		s.allowOrigin = origin
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:      r,
		uc:          uc,
		allowOrigin: "*",
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)
	if s.registry != nil {
		r.Use(newHTTPMetrics(s.registry).middleware)
	}
	r.Use(corsMiddleware(s.allowOrigin))

	r.Get("/health", healthHandler)
	if s.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry}))
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", s.loginHandler)
		r.With(optionalAuthMiddleware(uc.User)).Post("/register", s.registerHandler)
		r.With(authMiddleware(uc.User)).Get("/me", s.meHandler)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware(uc.User))
		r.Use(writeGuard)

		r.Route("/risks", s.riskRoutes)
		r.Route("/tasks", s.taskRoutes)
		r.Route("/documents", s.documentRoutes)
		r.Route("/controls", s.controlRoutes)
		r.Route("/soa", s.soaRoutes)
		r.Route("/gaps", s.gapRoutes)
		r.Route("/users", s.userRoutes)
		r.Route("/wizards", s.wizardRoutes)
	})

	r.Get(usecase.UploadPathPrefix+"*", s.uploadHandler)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		logger := logging.From(r.Context()).With("request_id", middleware.GetReqID(r.Context()))
		ctx := logging.With(r.Context(), logger)

		defer func() {
			logger.Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r.WithContext(ctx))
	})
}

// corsMiddleware lets the single page frontend call the API from another origin
func corsMiddleware(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			if origin != "*" {
				h.Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}
