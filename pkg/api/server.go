/*
server.go - HTTP router and middleware configuration

Wires the chi router for the calendar and roster front end. Every route reads
from the engine's cached snapshots; the write routes go through the engine so
the snapshot is refetched after each successful save.

MIDDLEWARE STACK:
 1. Logger:     Request logging
 2. Recoverer:  Panic recovery (500 instead of crash)
 3. RequestID:  Unique ID per request for tracing
 4. CORS:       Cross-origin requests for the front end

ROUTE GROUPS:

	/api/units/*        Unit table and team resolution
	/api/days/*         Day roster
	/api/months/*       Month roster, quota export
	/api/people/*       Member status
	/api/admin/*        Administrative rotation
	/api/volunteers/*   Paid extra shift registrations
	/api/snapshot/*     Snapshot metadata and refresh events
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// DefaultAllowedOrigins is used when no origin is configured
var DefaultAllowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = DefaultAllowedOrigins
	}

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/units", func(r chi.Router) {
			r.Get("/", h.ListUnits)
			r.Get("/{unit}/team", h.GetTeam)
			r.Put("/{unit}/start", h.PutRotationStart)
		})

		r.Get("/days/{date}", h.GetDay)

		r.Route("/months/{year}/{month}", func(r chi.Router) {
			r.Get("/", h.GetMonth)
			r.Get("/export", h.ExportMonth)
		})

		r.Get("/quota/{year}/{month}", h.GetQuota)
		r.Get("/people/{id}/status", h.GetStatus)

		r.Route("/admin/{date}", func(r chi.Router) {
			r.Get("/", h.GetAdmin)
			r.Put("/", h.PutAdminOverride)
		})

		r.Put("/overrides", h.PutTeamOverride)

		r.Route("/volunteers", func(r chi.Router) {
			r.Post("/", h.AddVolunteer)
			r.Get("/{date}", h.ListVolunteers)
			r.Delete("/{date}/{personId}", h.RemoveVolunteer)
		})

		r.Post("/refresh", h.Refresh)
		r.Route("/snapshot", func(r chi.Router) {
			r.Get("/", h.GetSnapshot)
			r.Get("/events", h.SnapshotEvents)
		})
	})

	return r
}
