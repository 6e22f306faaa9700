package application

import (
	"context"
	"fmt"

	"local-chat/services/chat-service/internal/domain"
	"local-chat/services/chat-service/internal/session"
)

// ChatService covers the chat operations around a turn: creating and listing chats
// and reading a transcript.
type ChatService struct {
	store domain.TranscriptStore
}

func NewChatService(store domain.TranscriptStore) *ChatService {
	return &ChatService{store: store}
}

func (s *ChatService) CreateChat(ctx context.Context, p session.Principal, name string) (*domain.Chat, error) {
	if p.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}
	chat, err := s.store.CreateChat(ctx, p.UserID, name)
	if err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}
	return chat, nil
}

// ListChats returns the caller's chats, most recent first.
func (s *ChatService) ListChats(ctx context.Context, p session.Principal) ([]*domain.Chat, error) {
	if p.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return s.store.ListChats(ctx, p.UserID)
}

func (s *ChatService) ListMessages(ctx context.Context, grant session.Grant) ([]*domain.Message, error) {
	if !grant.Valid() {
		return nil, domain.ErrUnauthenticated
	}
	return s.store.ListMessages(ctx, grant.ChatID(), grant.UserID())
}
