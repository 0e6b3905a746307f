// Package server wires HTTP handlers into a chi router for the Anarcroom
// application via routing helpers.
package server

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// NewRouter configures the HTTP surface: liveness probe, WebSocket endpoint,
// Prometheus metrics, and the built-in test page.
func NewRouter(logger zerolog.Logger, gw *Gateway) *chi.Mux {
	r := chi.NewRouter()

	r.Use(Metrics)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(Logger(logger))
	r.Use(chimw.Recoverer)

	// CORS - allow all origins, matching the relay's open access model.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", HealthHandler)
	r.Get("/ws", gw.ServeWS)
	r.Get("/test", TestPageHandler)

	return r
}
