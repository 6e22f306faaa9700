package model

import (
	"time"

	"local-chat/services/chat-service/internal/domain"
)

type ChatModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement;column:id"`
	ChatID    string    `gorm:"uniqueIndex:idx_chats_chat_id;size:36;not null;column:chat_id"`
	UserID    string    `gorm:"index:idx_chats_user_id;size:36;not null;column:user_id"`
	Name      string    `gorm:"size:255;not null;column:name"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at"`
}

func (ChatModel) TableName() string { return "chats" }

func (m *ChatModel) ToDomain() *domain.Chat {
	return &domain.Chat{
		ID:          m.ChatID,
		OwnerUserID: m.UserID,
		Name:        m.Name,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func ToChatModel(d *domain.Chat) *ChatModel {
	return &ChatModel{
		ChatID:    d.ID,
		UserID:    d.OwnerUserID,
		Name:      d.Name,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
