package handler

import (
	"context"
	"errors"
	"fmt"
	"io"

	"local-chat/services/chat-service/internal/domain"
	"local-chat/services/chat-service/internal/interfaces/middleware"
	"local-chat/services/chat-service/internal/interfaces/response"
	"local-chat/services/chat-service/internal/session"

	"github.com/gin-gonic/gin"
)

type ChatService interface {
	CreateChat(ctx context.Context, p session.Principal, name string) (*domain.Chat, error)
	ListChats(ctx context.Context, p session.Principal) ([]*domain.Chat, error)
	ListMessages(ctx context.Context, grant session.Grant) ([]*domain.Message, error)
}

type TurnService interface {
	AdvanceTurn(ctx context.Context, grant session.Grant, userText, model string) (*domain.Turn, error)
}

type ChatHandler struct {
	chats      ChatService
	turns      TurnService
	authorizer *session.Authorizer
}

func NewChatHandler(chats ChatService, turns TurnService, authorizer *session.Authorizer) *ChatHandler {
	return &ChatHandler{chats: chats, turns: turns, authorizer: authorizer}
}

func (h *ChatHandler) ListChats(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		response.FromError(c, domain.ErrUnauthenticated)
		return
	}
	chats, err := h.chats.ListChats(c.Request.Context(), p)
	if err != nil {
		response.FromError(c, err)
		return
	}
	out := make([]chatDTO, len(chats))
	for i, chat := range chats {
		out[i] = toChatDTO(chat)
	}
	response.RespondOK(c, gin.H{"chats": out})
}

func (h *ChatHandler) CreateChat(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		response.FromError(c, domain.ErrUnauthenticated)
		return
	}
	var req createChatReq
	// an empty body means "use the default name"
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.FromError(c, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return
	}
	chat, err := h.chats.CreateChat(c.Request.Context(), p, req.Name)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.RespondCreated(c, toChatDTO(chat))
}

func (h *ChatHandler) ListMessages(c *gin.Context) {
	grant, ok := h.grant(c)
	if !ok {
		return
	}
	msgs, err := h.chats.ListMessages(c.Request.Context(), grant)
	if err != nil {
		response.FromError(c, err)
		return
	}
	out := make([]messageDTO, len(msgs))
	for i, m := range msgs {
		out[i] = toMessageDTO(m)
	}
	response.RespondOK(c, gin.H{"messages": out})
}

// SendMessage runs one turn. Backend failures come back as a 200 with fallback set.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	grant, ok := h.grant(c)
	if !ok {
		return
	}
	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FromError(c, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return
	}
	turn, err := h.turns.AdvanceTurn(c.Request.Context(), grant, req.Content, req.Model)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.RespondOK(c, turnDTO{
		UserMessage:      toMessageDTO(turn.UserMessage),
		AssistantMessage: toMessageDTO(turn.AssistantMessage),
		Fallback:         turn.Fallback,
	})
}

func (h *ChatHandler) grant(c *gin.Context) (session.Grant, bool) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		response.FromError(c, domain.ErrUnauthenticated)
		return session.Grant{}, false
	}
	grant, err := h.authorizer.Authorize(c.Request.Context(), p, c.Param("chatId"))
	if err != nil {
		response.FromError(c, err)
		return session.Grant{}, false
	}
	return grant, true
}
