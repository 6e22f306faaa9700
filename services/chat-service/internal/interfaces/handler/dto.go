package handler

import (
	"time"

	"local-chat/services/chat-service/internal/domain"
)

type chatDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type messageDTO struct {
	ID        string    `json:"id,omitempty"`
	ChatID    string    `json:"chat_id"`
	Seq       int64     `json:"seq,omitempty"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type turnDTO struct {
	UserMessage      messageDTO `json:"user_message"`
	AssistantMessage messageDTO `json:"assistant_message"`
	Fallback         bool       `json:"fallback"`
}

type createChatReq struct {
	Name string `json:"name"`
}

type sendMessageReq struct {
	Content string `json:"content"`
	Model   string `json:"model"`
}

func toChatDTO(c *domain.Chat) chatDTO {
	return chatDTO{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
}

func toMessageDTO(m *domain.Message) messageDTO {
	return messageDTO{
		ID:        m.ID,
		ChatID:    m.ChatID,
		Seq:       m.Seq,
		Role:      m.Role.String(),
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}
