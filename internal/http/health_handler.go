package http

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/tuanvumaihuynh/article-catalogue/internal/storage/db"
)

const healthPath = "/healthz"

type healthResponse struct {
	Status string `json:"status"`
}

type healthHandler struct {
	checker db.HealthChecker
}

func newHealthHandler(checker db.HealthChecker) *healthHandler {
	return &healthHandler{checker: checker}
}

// Health reports 503 when the article store cannot be reached.
func (h *healthHandler) Health(w http.ResponseWriter, r *http.Request) error {
	if ok, err := h.checker.IsHealthy(r.Context()); err != nil || !ok {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, healthResponse{Status: "unavailable"})
		return nil
	}

	render.JSON(w, r, healthResponse{Status: "ok"})
	return nil
}
