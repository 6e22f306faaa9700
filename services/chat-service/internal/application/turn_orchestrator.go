package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"local-chat/infra/logger"
	"local-chat/services/chat-service/internal/domain"
	"local-chat/services/chat-service/internal/session"
)

const (
	fallbackFormat = "Local model error: %s. Please ensure your local model server (e.g., Ollama) is running."
	// UnsavedReplyContent is returned when even the fallback reply could not be stored.
	UnsavedReplyContent = "Error: Unable to process your message. Please try again."

	defaultWriteTimeout  = 5 * time.Second
	defaultNotifyTimeout = 2 * time.Second
)

// FallbackContent is the reply stored in place of a completion when generation fails.
// Backend error text is not trusted to be valid UTF-8.
func FallbackContent(err error) string {
	return strings.ToValidUTF8(fmt.Sprintf(fallbackFormat, err.Error()), "\uFFFD")
}

type TurnOrchestrator struct {
	store          domain.TranscriptStore
	backend        domain.InferenceBackend
	notifier       domain.TurnNotifier
	backendTimeout time.Duration
	writeTimeout   time.Duration
	notifyTimeout  time.Duration
	log            *logger.Logger
	now            func() time.Time
}

type Option func(*TurnOrchestrator)

func WithNotifier(n domain.TurnNotifier) Option {
	return func(o *TurnOrchestrator) { o.notifier = n }
}

// WithBackendTimeout bounds each Generate call. Zero leaves only the caller's deadline.
func WithBackendTimeout(d time.Duration) Option {
	return func(o *TurnOrchestrator) { o.backendTimeout = d }
}

func WithWriteTimeout(d time.Duration) Option {
	return func(o *TurnOrchestrator) {
		if d > 0 {
			o.writeTimeout = d
		}
	}
}

// WithNotifyTimeout bounds the turn event publish, which runs before AdvanceTurn returns.
func WithNotifyTimeout(d time.Duration) Option {
	return func(o *TurnOrchestrator) {
		if d > 0 {
			o.notifyTimeout = d
		}
	}
}

func NewTurnOrchestrator(store domain.TranscriptStore, backend domain.InferenceBackend, log *logger.Logger, opts ...Option) *TurnOrchestrator {
	o := &TurnOrchestrator{
		store:         store,
		backend:       backend,
		writeTimeout:  defaultWriteTimeout,
		notifyTimeout: defaultNotifyTimeout,
		log:           log,
		now:           func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// AdvanceTurn appends userText to the granted chat, asks the backend for a reply over
// the whole transcript and appends that reply.
//
// Only validation and the user-message append can fail the call. Once the user
// message is stored every later failure becomes fallback reply content, so a turn
// always comes back with both messages.
func (o *TurnOrchestrator) AdvanceTurn(ctx context.Context, grant session.Grant, userText, model string) (*domain.Turn, error) {
	if !grant.Valid() {
		return nil, domain.ErrUnauthenticated
	}
	if strings.TrimSpace(userText) == "" {
		return nil, fmt.Errorf("%w: message content is required", domain.ErrInvalidInput)
	}
	log := o.log.With("chat_id", grant.ChatID(), "user_id", grant.UserID())

	userMsg, err := o.store.AppendMessage(ctx, grant.ChatID(), domain.RoleUser, userText)
	if err != nil {
		return nil, fmt.Errorf("append user message: %w", err)
	}

	turn := &domain.Turn{UserMessage: userMsg}
	reply, genErr := o.generate(ctx, grant, model)
	if genErr != nil {
		log.Warn("generation failed, storing fallback reply", "error", genErr)
		reply = FallbackContent(genErr)
		turn.Fallback = true
	}

	// The reply is written even if the caller has gone away.
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.writeTimeout)
	defer cancel()

	persisted := true
	assistant, err := o.store.AppendMessage(wctx, grant.ChatID(), domain.RoleAssistant, reply)
	if err != nil {
		log.Error("append assistant message failed", "error", err)
		persisted = false
		turn.Fallback = true
		assistant = o.unsavedReply(userMsg)
	}
	turn.AssistantMessage = assistant

	o.notify(ctx, log, grant, turn, model, persisted)
	return turn, nil
}

func (o *TurnOrchestrator) generate(ctx context.Context, grant session.Grant, model string) (string, error) {
	history, err := o.store.ListMessages(ctx, grant.ChatID(), grant.UserID())
	if err != nil {
		return "", fmt.Errorf("load history: %w", err)
	}

	if o.backendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.backendTimeout)
		defer cancel()
	}
	return o.backend.Generate(ctx, domain.ProjectContext(history), model)
}

// unsavedReply has no ID and no Seq because it never reached the store.
func (o *TurnOrchestrator) unsavedReply(userMsg *domain.Message) *domain.Message {
	at := o.now()
	if at.Before(userMsg.CreatedAt) {
		at = userMsg.CreatedAt
	}
	return &domain.Message{
		ChatID:    userMsg.ChatID,
		Role:      domain.RoleAssistant,
		Content:   UnsavedReplyContent,
		CreatedAt: at,
	}
}

func (o *TurnOrchestrator) notify(ctx context.Context, log *logger.Logger, grant session.Grant, turn *domain.Turn, model string, persisted bool) {
	if o.notifier == nil {
		return
	}
	ev := domain.TurnEvent{
		ChatID:             grant.ChatID(),
		UserID:             grant.UserID(),
		UserMessageID:      turn.UserMessage.ID,
		AssistantMessageID: turn.AssistantMessage.ID,
		Model:              model,
		Fallback:           turn.Fallback,
		Persisted:          persisted,
		CompletedAt:        o.now(),
	}
	// own budget, detached from the request and from the reply write
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.notifyTimeout)
	defer cancel()
	if err := o.notifier.TurnCompleted(nctx, ev); err != nil {
		log.Warn("publish turn event failed", "error", err)
	}
}
