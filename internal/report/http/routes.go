package reporthttp

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/honai-puma/honai-puma/internal/shared"
)

// MountRoutes registers the reporting endpoints onto the router. Export
// routes carry a tighter per-user rate limit; workbook generation is the
// most expensive path in the service.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(10, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Get("/reports", h.handleCatalogue)
	r.Get("/reports/{metric}", h.handleRollup)
	r.Get("/territories", h.handleTerritories)
	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Get("/reports/{metric}/export.csv", h.handleCSV)
		gr.Get("/reports/{metric}/export.xlsx", h.handleXLSX)
	})
}

func rateLimitKey(r *http.Request) (string, error) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if user := strings.TrimSpace(sess.User()); user != "" {
			return "user:" + user, nil
		}
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
