package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type healthResponse struct {
	Status      string `json:"status"`
	Storage     string `json:"storage"`
	Driver      string `json:"driver"`
	Database    string `json:"database,omitempty"`
	Cache       string `json:"cache,omitempty"`
	Environment string `json:"environment"`
}

// Health reports degraded rather than failing when persistence is unavailable; the
// portal keeps serving from memory in that case.
func (h HandlerSet) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{
		Status:      "ok",
		Storage:     "ok",
		Driver:      h.cfg.Storage.Driver,
		Environment: h.cfg.Environment,
	}

	status := http.StatusOK
	switch {
	case !h.store.Loaded():
		resp.Status, resp.Storage = "starting", "not_loaded"
		status = http.StatusServiceUnavailable
	case h.store.Degraded():
		resp.Status, resp.Storage = "degraded", "memory_only"
	}

	if h.postgres != nil {
		resp.Database = "ok"
		if err := h.postgres.Ping(ctx); err != nil {
			resp.Database = "error"
			h.log.Error().Err(err).Msg("database ping failed")
		}
	}
	if h.redis != nil {
		resp.Cache = "ok"
		if err := h.redis.Ping(ctx).Err(); err != nil {
			resp.Cache = "error"
			h.log.Error().Err(err).Msg("redis ping failed")
		}
	}

	c.JSON(status, resp)
}
