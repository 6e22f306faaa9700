package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"local-chat/services/chat-service/internal/domain"
	"local-chat/services/chat-service/internal/interfaces/response"

	"github.com/gin-gonic/gin"
)

type generateReq struct {
	Messages []domain.ContextMessage `json:"messages"`
	Model    string                  `json:"model"`
}

// GenerateHandler is a stateless passthrough to the model: nothing is stored and
// backend failures are reported to the caller instead of being turned into a reply.
type GenerateHandler struct {
	backend      domain.InferenceBackend
	defaultModel string
	timeout      time.Duration
}

func NewGenerateHandler(backend domain.InferenceBackend, defaultModel string, timeout time.Duration) *GenerateHandler {
	return &GenerateHandler{backend: backend, defaultModel: defaultModel, timeout: timeout}
}

func (h *GenerateHandler) Generate(c *gin.Context) {
	var req generateReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Messages == nil {
		response.FromError(c, fmt.Errorf("%w: messages array is required", domain.ErrInvalidInput))
		return
	}
	for i, m := range req.Messages {
		if !m.Role.Valid() {
			response.FromError(c, fmt.Errorf("%w: messages[%d] has unknown role %q", domain.ErrInvalidInput, i, m.Role))
			return
		}
	}

	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	text, err := h.backend.Generate(ctx, req.Messages, req.Model)
	if err != nil {
		_ = c.Error(err)
		response.RespondError(c, http.StatusBadGateway, response.CodeBackendError, errors.New(strings.ToValidUTF8(err.Error(), "\uFFFD")))
		return
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = h.defaultModel
	}
	response.RespondOK(c, gin.H{"response": text, "model": model})
}
