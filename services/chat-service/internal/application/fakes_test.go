package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"local-chat/services/chat-service/internal/domain"

	"github.com/google/uuid"
)

// memStore is an in-memory TranscriptStore with failure injection.
type memStore struct {
	mu       sync.Mutex
	chats    map[string]*domain.Chat
	messages map[string][]*domain.Message
	appends  int

	failAppendRole domain.Role
	failList       error
}

func newMemStore() *memStore {
	return &memStore{chats: map[string]*domain.Chat{}, messages: map[string][]*domain.Message{}}
}

func (s *memStore) AppendMessage(ctx context.Context, chatID string, role domain.Role, content string) (*domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAppendRole == role {
		return nil, fmt.Errorf("%w: injected", domain.ErrStoreUnavailable)
	}
	if _, ok := s.chats[chatID]; !ok {
		return nil, domain.ErrChatNotFound
	}
	s.appends++
	msgs := s.messages[chatID]
	m := &domain.Message{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		Seq:       int64(len(msgs) + 1),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	s.messages[chatID] = append(msgs, m)
	return m, nil
}

func (s *memStore) ListMessages(ctx context.Context, chatID, owner string) ([]*domain.Message, error) {
	if s.failList != nil {
		return nil, s.failList
	}
	if _, err := s.GetChat(ctx, chatID, owner); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Message, len(s.messages[chatID]))
	copy(out, s.messages[chatID])
	return out, nil
}

func (s *memStore) GetChat(_ context.Context, chatID, owner string) (*domain.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chats[chatID]
	if !ok || c.OwnerUserID != owner {
		return nil, domain.ErrChatNotFound
	}
	return c, nil
}

func (s *memStore) CreateChat(_ context.Context, owner, name string) (*domain.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &domain.Chat{ID: uuid.NewString(), OwnerUserID: owner, Name: domain.ChatName(name), CreatedAt: time.Now()}
	s.chats[c.ID] = c
	return c, nil
}

func (s *memStore) ListChats(_ context.Context, owner string) ([]*domain.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Chat
	for _, c := range s.chats {
		if c.OwnerUserID == owner {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *memStore) transcript(chatID string) []*domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*domain.Message(nil), s.messages[chatID]...)
}

func (s *memStore) appendCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appends
}

// fakeBackend records what it was asked and answers with reply/err, or with fn when set.
type fakeBackend struct {
	calls   int
	lastCtx []domain.ContextMessage
	model   string
	reply   string
	err     error
	fn      func(ctx context.Context) (string, error)
}

func (b *fakeBackend) Generate(ctx context.Context, msgs []domain.ContextMessage, model string) (string, error) {
	b.calls++
	b.lastCtx = msgs
	b.model = model
	if b.fn != nil {
		return b.fn(ctx)
	}
	return b.reply, b.err
}

type fakeNotifier struct {
	events   []domain.TurnEvent
	err      error
	block    bool
	deadline time.Time
}

// TurnCompleted records ev; with block set it behaves like a broker that never answers.
func (n *fakeNotifier) TurnCompleted(ctx context.Context, ev domain.TurnEvent) error {
	n.events = append(n.events, ev)
	n.deadline, _ = ctx.Deadline()
	if n.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return n.err
}

type memUsers struct {
	byID map[string]*domain.User
}

func newMemUsers() *memUsers { return &memUsers{byID: map[string]*domain.User{}} }

func (r *memUsers) Save(_ context.Context, u *domain.User) error {
	for _, existing := range r.byID {
		if existing.Email == u.Email {
			return domain.ErrUserAlreadyExists
		}
	}
	cp := *u
	r.byID[u.ID] = &cp
	return nil
}

func (r *memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

// plainPasswords "hashes" by prefixing, enough to check the service compares hashes.
type plainPasswords struct{}

func (plainPasswords) Hash(raw string) (string, error) { return "hashed:" + raw, nil }
func (plainPasswords) Compare(hash, raw string) bool  { return hash == "hashed:"+raw }

// fakeTokens encodes kind|user|email as the token.
type fakeTokens struct{}

func (fakeTokens) GenerateAccessToken(userID, email string) (*domain.Token, error) {
	return &domain.Token{Token: "access|" + userID + "|" + email, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (fakeTokens) GenerateRefreshToken(userID, email string) (*domain.Token, error) {
	return &domain.Token{Token: "refresh|" + userID + "|" + email, ExpiresAt: time.Now().Add(24 * time.Hour)}, nil
}

func (fakeTokens) ValidateAccessToken(token string) (*domain.TokenClaims, error) {
	return parseFakeToken("access", token)
}

func (fakeTokens) ValidateRefreshToken(token string) (*domain.TokenClaims, error) {
	return parseFakeToken("refresh", token)
}

func parseFakeToken(kind, token string) (*domain.TokenClaims, error) {
	parts := strings.SplitN(token, "|", 3)
	if len(parts) != 3 || parts[0] != kind {
		return nil, errors.New("bad token")
	}
	return &domain.TokenClaims{UserID: parts[1], Email: parts[2]}, nil
}
