package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"local-chat/services/chat-service/internal/domain"
	"local-chat/services/chat-service/internal/infrastructure/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TranscriptStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewTranscriptStore(db *gorm.DB) *TranscriptStore {
	return &TranscriptStore{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// AppendMessage locks the chat row and takes MAX(seq)+1 in the same transaction, so
// concurrent appends to one chat are totally ordered. created_at is clamped to the
// previous message's so it never runs backwards along seq.
func (s *TranscriptStore) AppendMessage(ctx context.Context, chatID string, role domain.Role, content string) (*domain.Message, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}

	var created *model.MessageModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var chat model.ChatModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("chat_id = ?", chatID).
			First(&chat).Error; err != nil {
			return err
		}

		var last model.MessageModel
		err := tx.Where("chat_id = ?", chatID).Order("seq desc").Limit(1).Take(&last).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := s.now()
		if now.Before(last.CreatedAt) {
			now = last.CreatedAt
		}
		msg := &model.MessageModel{
			MessageID: uuid.NewString(),
			ChatID:    chatID,
			Seq:       last.Seq + 1,
			Role:      role.String(),
			Content:   content,
			CreatedAt: now,
		}
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.ChatModel{}).
			Where("id = ?", chat.ID).
			Update("updated_at", now).Error; err != nil {
			return err
		}
		created = msg
		return nil
	})
	if err != nil {
		return nil, storeError("append message", err)
	}
	return created.ToDomain(), nil
}

// ListMessages returns the transcript in seq order. A chat owned by someone else
// is indistinguishable from a missing one.
func (s *TranscriptStore) ListMessages(ctx context.Context, chatID, ownerUserID string) ([]*domain.Message, error) {
	if _, err := s.GetChat(ctx, chatID, ownerUserID); err != nil {
		return nil, err
	}

	var models []*model.MessageModel
	if err := s.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("seq asc").
		Find(&models).Error; err != nil {
		return nil, storeError("list messages", err)
	}
	messages := make([]*domain.Message, len(models))
	for i, m := range models {
		messages[i] = m.ToDomain()
	}
	return messages, nil
}

func (s *TranscriptStore) GetChat(ctx context.Context, chatID, ownerUserID string) (*domain.Chat, error) {
	var chat model.ChatModel
	if err := s.db.WithContext(ctx).
		Where("chat_id = ? AND user_id = ?", chatID, ownerUserID).
		First(&chat).Error; err != nil {
		return nil, storeError("get chat", err)
	}
	return chat.ToDomain(), nil
}

func (s *TranscriptStore) CreateChat(ctx context.Context, ownerUserID, name string) (*domain.Chat, error) {
	now := s.now()
	chat := &domain.Chat{
		ID:          uuid.NewString(),
		OwnerUserID: ownerUserID,
		Name:        domain.ChatName(name),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.db.WithContext(ctx).Create(model.ToChatModel(chat)).Error; err != nil {
		return nil, storeError("create chat", err)
	}
	return chat, nil
}

// ListChats returns the owner's chats, newest first.
func (s *TranscriptStore) ListChats(ctx context.Context, ownerUserID string) ([]*domain.Chat, error) {
	var models []*model.ChatModel
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", ownerUserID).
		Order("created_at desc").
		Order("id desc").
		Find(&models).Error; err != nil {
		return nil, storeError("list chats", err)
	}
	chats := make([]*domain.Chat, len(models))
	for i, m := range models {
		chats[i] = m.ToDomain()
	}
	return chats, nil
}

func storeError(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, domain.ErrChatNotFound)
	}
	return fmt.Errorf("%s: %w: %v", op, domain.ErrStoreUnavailable, err)
}
