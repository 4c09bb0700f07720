package api

import (
	"net/http"
	"trip-planner-service/internal/api/handlers"
	"trip-planner-service/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	AllowedOrigins []string
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(sessions *services.Sessions, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	searchHandler := &handlers.SearchHandler{Sessions: sessions}
	sessionHandler := &handlers.SessionHandler{Sessions: sessions}

	r.Get("/health", handlers.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/search", searchHandler.Search)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", sessionHandler.Create)

		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", sessionHandler.Get)
			r.Delete("/", sessionHandler.Delete)

			r.Post("/waypoints", sessionHandler.AddWaypoint)
			r.Delete("/waypoints/{waypointID}", sessionHandler.RemoveWaypoint)
			r.Put("/waypoints/{waypointID}/times/{kind}", sessionHandler.SetTime)
			r.Put("/order", sessionHandler.Reorder)

			r.Post("/route", sessionHandler.ComputeRoute)
			r.Get("/route.geojson", sessionHandler.RouteGeoJSON)
			r.Get("/view", sessionHandler.View)
		})
	})

	return r
}
