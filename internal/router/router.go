package router

import (
	"net/http"
	"time"

	"plutoTodo/internal/handlers"
	"plutoTodo/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

type Options struct {
	RequestTimeout time.Duration
	RateLimit      int
	CORSOrigins    []string
}

func New(h *handlers.Handler, opts Options) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", middleware.RequestIdHeader},
		ExposedHeaders: []string{middleware.RequestIdHeader},
		MaxAge:         300,
	}))
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}
	r.Use(middleware.RateLimit(opts.RateLimit))

	r.Get("/health", h.HealthCheck)       // GET /health
	r.Post("/invoke/{command}", h.Invoke) // POST /invoke/{command}

	return r
}
