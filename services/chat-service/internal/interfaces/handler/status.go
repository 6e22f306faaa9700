package handler

import (
	"context"
	"net/http"
	"time"

	"local-chat/services/chat-service/internal/domain"
	"local-chat/services/chat-service/internal/interfaces/response"

	"github.com/gin-gonic/gin"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type StatusHandler struct {
	db      Pinger
	catalog domain.ModelCatalog
}

func NewStatusHandler(db Pinger, catalog domain.ModelCatalog) *StatusHandler {
	return &StatusHandler{db: db, catalog: catalog}
}

func (h *StatusHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "database": "disconnected"})
		return
	}
	response.RespondOK(c, gin.H{"status": "ok", "database": "connected"})
}

func (h *StatusHandler) Models(c *gin.Context) {
	ctx := c.Request.Context()
	response.RespondOK(c, gin.H{
		"models":        h.catalog.ListModels(ctx),
		"is_connected":  h.catalog.Ping(ctx),
		"default_model": h.catalog.DefaultModel(),
	})
}
