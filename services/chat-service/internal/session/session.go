// Package session holds the authenticated caller and the per-chat capability
// that turn operations require.
package session

import (
	"context"
	"fmt"
	"strings"

	"local-chat/services/chat-service/internal/domain"
)

// Principal is an authenticated caller.
type Principal struct {
	UserID string
	Email  string
}

// Grant proves its holder owns ChatID. The zero value is not valid, and only an
// Authorizer can mint one.
type Grant struct {
	chatID string
	userID string
}

func (g Grant) ChatID() string { return g.chatID }
func (g Grant) UserID() string { return g.userID }
func (g Grant) Valid() bool    { return g.chatID != "" && g.userID != "" }

type ChatOwnership interface {
	GetChat(ctx context.Context, chatID, ownerUserID string) (*domain.Chat, error)
}

type Authorizer struct {
	chats ChatOwnership
}

func NewAuthorizer(chats ChatOwnership) *Authorizer {
	return &Authorizer{chats: chats}
}

// Authorize checks ownership with an owner-scoped read, so a chat owned by someone
// else is reported as domain.ErrChatNotFound.
func (a *Authorizer) Authorize(ctx context.Context, p Principal, chatID string) (Grant, error) {
	if strings.TrimSpace(p.UserID) == "" {
		return Grant{}, domain.ErrUnauthenticated
	}
	if strings.TrimSpace(chatID) == "" {
		return Grant{}, fmt.Errorf("%w: chat id is required", domain.ErrInvalidInput)
	}
	chat, err := a.chats.GetChat(ctx, chatID, p.UserID)
	if err != nil {
		return Grant{}, err
	}
	return Grant{chatID: chat.ID, userID: p.UserID}, nil
}
