package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

const maxRequestBytes = 1 << 20

type routerConfig struct {
	RateLimit   int
	CORSOrigins []string
	// Relays is closed on shutdown; a fresh registry is used when nil.
	Relays *eventRelays
}

func newRouter(b *backend, cfg routerConfig, logger *zap.SugaredLogger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(loggingMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/", rootHandler(logger))
	r.Get("/healthz", healthHandler(b.health, logger))

	r.Group(func(r chi.Router) {
		if cfg.RateLimit > 0 {
			r.Use(httprate.LimitByIP(cfg.RateLimit, time.Minute))
		}
		r.Get("/languages", languagesHandler(b.api, logger))
		r.Post("/translate", translateHandler(b.api, logger))
		r.Get("/detect", detectHandler(b.api, logger))
	})

	if b.events != nil {
		relays := cfg.Relays
		if relays == nil {
			relays = newEventRelays()
		}
		r.Get("/sessions/{id}/events", sessionEventsHandler(b.events, relays, logger))
	}

	return r
}

func loggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Infow("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"requestId", middleware.GetReqID(r.Context()),
			)
		})
	}
}
