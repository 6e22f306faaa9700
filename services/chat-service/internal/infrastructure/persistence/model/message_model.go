package model

import (
	"time"

	"local-chat/services/chat-service/internal/domain"
)

// MessageModel rows are never updated. (chat_id, seq) is unique so two appends can
// never share a position in a transcript.
type MessageModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement;column:id"`
	MessageID string    `gorm:"uniqueIndex:idx_messages_message_id;size:36;not null;column:message_id"`
	ChatID    string    `gorm:"uniqueIndex:idx_messages_chat_seq,priority:1;size:36;not null;column:chat_id"`
	Seq       int64     `gorm:"uniqueIndex:idx_messages_chat_seq,priority:2;not null;column:seq"`
	Role      string    `gorm:"size:20;not null;column:role"`
	Content   string    `gorm:"type:text;not null;column:content"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`
}

func (MessageModel) TableName() string { return "messages" }

func (m *MessageModel) ToDomain() *domain.Message {
	return &domain.Message{
		ID:        m.MessageID,
		ChatID:    m.ChatID,
		Seq:       m.Seq,
		Role:      domain.Role(m.Role),
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}
