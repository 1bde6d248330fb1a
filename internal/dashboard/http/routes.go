package dashboardhttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/retailpulse/retailpulse/internal/platform/httpx"
	"github.com/retailpulse/retailpulse/internal/shared"
)

// ExportLimit caps export downloads per session (or client IP) per minute.
const ExportLimit = 10

// MountRoutes registers the dashboard endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(ExportLimit, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httpx.RespondError(w, httpx.ErrRateLimit)
		}),
	)

	r.Get("/dashboard", h.handleDashboard)
	r.Route("/dashboard/filters", func(fr chi.Router) {
		fr.Post("/month", h.handleSetMonth)
		fr.Post("/category", h.handleSetCategory)
		fr.Post("/festival", h.handleToggleFestival)
		fr.Post("/reset", h.handleReset)
	})
	r.Get("/api/dashboard", h.handleAPIView)
	r.Get("/api/dashboard/filters", h.handleAPIFilters)
	r.Get("/api/dashboard/forecast", h.handleAPIForecast)
	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Get("/dashboard/export.csv", h.handleCSV)
		gr.Get("/dashboard/export.xlsx", h.handleXLSX)
	})
}

func rateLimitKey(r *http.Request) (string, error) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil && sess.ID != "" {
		return "session:" + sess.ID, nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
