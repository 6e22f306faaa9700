package mq

import (
	"context"
	"encoding/json"

	"local-chat/infra/logger"
	"local-chat/infra/queue"
	"local-chat/services/chat-service/internal/domain"
)

type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// FallbackWatcher reacts to fallback turns from any instance by dropping the
// cached model list, so /models reports the backend state on the next call.
type FallbackWatcher struct {
	models Invalidator
	log    *logger.Logger
}

func NewFallbackWatcher(models Invalidator, log *logger.Logger) *FallbackWatcher {
	return &FallbackWatcher{models: models, log: log}
}

func (w *FallbackWatcher) Tags() []string { return []string{TagTurnFallback} }

// Handle never asks for redelivery of an undecodable body.
func (w *FallbackWatcher) Handle(ctx context.Context, m queue.Message) error {
	if m.Tag != TagTurnFallback {
		return nil
	}
	var ev domain.TurnEvent
	if err := json.Unmarshal(m.Payload, &ev); err != nil {
		w.log.Warn("dropping undecodable turn event", "message_id", m.ID, "error", err)
		return nil
	}
	w.log.Warn("local model fallback observed", "chat_id", ev.ChatID, "user_id", ev.UserID, "model", ev.Model, "persisted", ev.Persisted)
	return w.models.Invalidate(ctx)
}
