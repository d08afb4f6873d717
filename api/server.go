/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router and middleware stack and maps URLs to
  handlers. Pure wiring; no allocation logic lives here.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the control-board frontend

ROUTES:
  POST /api/session     Load a new session (shift + transaction uploads)
  GET  /api/session     Describe the loaded session
  GET  /api/grid        Full grid state
  PUT  /api/grid/cell   One operator edit; responds with the fresh report
  GET  /api/report      Recompute and return the report set
  GET  /api/export      Download the styled workbook

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/session", func(r chi.Router) {
			r.Post("/", h.CreateSession)
			r.Get("/", h.GetSession)
		})

		r.Route("/grid", func(r chi.Router) {
			r.Get("/", h.GetGrid)
			r.Put("/cell", h.EditCell)
		})

		r.Get("/report", h.GetReport)
		r.Get("/export", h.ExportWorkbook)
	})

	return r
}
