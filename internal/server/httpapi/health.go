package httpapi

import (
	"context"
	"net/http"
	"time"
)

const healthPingTimeout = 2 * time.Second

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Warn(r.Context(), "health check failed", "error", err)
		h.respondWithJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unhealthy", Service: "todo-api"})
		return
	}

	h.respondWithJSON(w, http.StatusOK, healthResponse{Status: "healthy", Service: "todo-api"})
}
