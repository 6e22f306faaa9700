package domain

import (
	"context"
	"time"
)

// InferenceBackend turns an ordered context into one completion.
type InferenceBackend interface {
	Generate(ctx context.Context, messages []ContextMessage, model string) (string, error)
}

type ModelCatalog interface {
	ListModels(ctx context.Context) []string
	Ping(ctx context.Context) bool
	DefaultModel() string
}

type TurnNotifier interface {
	TurnCompleted(ctx context.Context, ev TurnEvent) error
}

type PasswordService interface {
	Hash(raw string) (string, error)
	Compare(hash, raw string) bool
}

type TokenClaims struct {
	UserID string
	Email  string
}

type Token struct {
	Token     string
	ExpiresAt time.Time
}

type TokenService interface {
	GenerateAccessToken(userID, email string) (*Token, error)
	GenerateRefreshToken(userID, email string) (*Token, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
	ValidateRefreshToken(token string) (*TokenClaims, error)
}
