package handler

import (
	"context"
	"fmt"

	"local-chat/services/chat-service/internal/application/dto"
	"local-chat/services/chat-service/internal/domain"
	"local-chat/services/chat-service/internal/interfaces/response"

	"github.com/gin-gonic/gin"
)

type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterReq) (*dto.RegisterResp, error)
	Login(ctx context.Context, req *dto.LoginReq) (*dto.LoginResp, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResp, error)
}

type AuthHandler struct {
	auth AuthService
}

func NewAuthHandler(auth AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FromError(c, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return
	}
	resp, err := h.auth.Register(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.RespondCreated(c, resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FromError(c, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return
	}
	resp, err := h.auth.Login(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.RespondOK(c, resp)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshReq
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		response.FromError(c, fmt.Errorf("%w: refresh_token is required", domain.ErrInvalidInput))
		return
	}
	resp, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.RespondOK(c, resp)
}
