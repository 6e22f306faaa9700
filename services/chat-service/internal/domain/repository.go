package domain

import "context"

// TranscriptStore persists chats and their append-only transcripts.
// Appends to one chat are linearizable: each gets the next Seq.
type TranscriptStore interface {
	AppendMessage(ctx context.Context, chatID string, role Role, content string) (*Message, error)
	ListMessages(ctx context.Context, chatID, ownerUserID string) ([]*Message, error)
	GetChat(ctx context.Context, chatID, ownerUserID string) (*Chat, error)
	CreateChat(ctx context.Context, ownerUserID, name string) (*Chat, error)
	ListChats(ctx context.Context, ownerUserID string) ([]*Chat, error)
}

type UserRepository interface {
	Save(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
}
