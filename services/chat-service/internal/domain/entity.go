package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

const DefaultChatName = "New Chat"

type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// Chat is owned by exactly one user for its whole life.
type Chat struct {
	ID          string
	OwnerUserID string
	Name        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Message is immutable once appended. Seq is assigned by the store and orders the
// transcript; CreatedAt never decreases along it.
type Message struct {
	ID        string
	ChatID    string
	Seq       int64
	Role      Role
	Content   string
	CreatedAt time.Time
}

// IsUser checks if the message is from a user
func (m *Message) IsUser() bool {
	return m.Role == RoleUser
}

// ChatName trims the requested name and falls back to DefaultChatName.
func ChatName(name string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return DefaultChatName
}

// ContextMessage is the (role, content) pair handed to the inference backend.
type ContextMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ProjectContext keeps transcript order and drops everything but role and content.
func ProjectContext(history []*Message) []ContextMessage {
	out := make([]ContextMessage, 0, len(history))
	for _, m := range history {
		out = append(out, ContextMessage{Role: m.Role, Content: m.Content})
	}
	return out
}

// Turn is one user message plus its paired reply. Fallback is set when the reply was
// synthesized instead of generated.
type Turn struct {
	UserMessage      *Message
	AssistantMessage *Message
	Fallback         bool
}

// TurnEvent is published after a turn completes.
type TurnEvent struct {
	ChatID             string    `json:"chat_id"`
	UserID             string    `json:"user_id"`
	UserMessageID      string    `json:"user_message_id"`
	AssistantMessageID string    `json:"assistant_message_id"`
	Model              string    `json:"model"`
	Fallback           bool      `json:"fallback"`
	Persisted          bool      `json:"persisted"`
	CompletedAt        time.Time `json:"completed_at"`
}
