package domain

import "errors"

// request
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthenticated = errors.New("unauthenticated")
)

// transcript
var (
	// ErrChatNotFound also covers chats owned by someone else.
	ErrChatNotFound     = errors.New("chat not found")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// identity
var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
)
