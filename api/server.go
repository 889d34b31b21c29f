/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for a local frontend
  5. JWT auth on everything under /api except /api/login

SEE ALSO:
  - handlers.go: Handler implementations
  - auth.go: Token issuing and validation
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", h.Login)

		// Everything else requires a valid token.
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.Middleware)

			r.Route("/users/{id}", func(r chi.Router) {
				r.Post("/punches", h.SubmitPunch)
				r.Get("/punches", h.ListPunches)
				r.Get("/clock", h.ClockStatus)
				r.Post("/reconcile", h.ReconcileDay)
				r.Delete("/session", h.Logout)
			})

			r.Put("/punches/{id}", h.EditPunch)

			r.Route("/employees", func(r chi.Router) {
				r.Get("/", h.ListEmployees)
				r.Post("/", h.CreateEmployee)
				r.Get("/{id}", h.GetEmployee)
				r.Get("/{id}/team", h.GetTeam)
				r.Get("/{id}/orgchart", h.GetOrgChart)
				r.Get("/{id}/pay", h.GetPaySummary)
			})

			r.Route("/periods", func(r chi.Router) {
				r.Get("/", h.ListPeriods)
				r.Post("/", h.CreatePeriod)
			})
		})
	})

	return r
}
