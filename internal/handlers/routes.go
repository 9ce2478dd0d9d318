package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/swag"
)

// requestTimeout bounds every request except the live socket. A prediction
// runs ten searches and one generation, so it is generous.
const requestTimeout = 120 * time.Second

// Routes builds the API router
func (h *Handler) Routes(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-Admin-Token"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/doc.json", h.SwaggerDoc)

	r.Route("/api/v1", func(r chi.Router) {
		// the live socket outlives any request timeout
		r.With(h.RequireAuth).Get("/live/ws", h.LiveSocket)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))

			r.Post("/auth/login", h.Login)
			r.Get("/sports", h.ListSports)

			r.Group(func(r chi.Router) {
				r.Use(h.RequireAuth)

				r.Post("/auth/logout", h.Logout)
				r.Get("/auth/me", h.Me)

				r.Post("/predictions", h.CreatePrediction)
				r.Get("/predictions/history", h.GetPredictionHistory)
				r.Get("/predictions/{id}", h.GetPrediction)
				r.Post("/sports-data", h.GetSportsData)

				r.Get("/live", h.GetLive)
				r.Get("/analytics", h.GetAnalytics)
			})

			r.With(h.RequireAdmin).Post("/system/install", h.InstallDatabase)
		})
	})

	return r
}

// SwaggerDoc serves the generated OpenAPI document
func (h *Handler) SwaggerDoc(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		h.errorResponse(w, http.StatusNotFound, "API documentation not available")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(doc))
}
