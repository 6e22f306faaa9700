package mq

import (
	"context"
	"encoding/json"
	"fmt"

	"local-chat/infra/queue"
	"local-chat/services/chat-service/internal/domain"
)

type Sender interface {
	Send(ctx context.Context, topic string, m queue.Message) error
}

// TurnPublisher emits one event per completed turn. Fallback turns carry their own
// tag so consumers can watch backend health without decoding bodies.
type TurnPublisher struct {
	sender Sender
	topic  string
}

func NewTurnPublisher(sender Sender, topic string) *TurnPublisher {
	return &TurnPublisher{sender: sender, topic: topic}
}

func (p *TurnPublisher) TurnCompleted(ctx context.Context, ev domain.TurnEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode turn event: %w", err)
	}
	tag := TagTurnCompleted
	if ev.Fallback {
		tag = TagTurnFallback
	}
	return p.sender.Send(ctx, p.topic, queue.NewMessage(tag, data, ev.ChatID))
}
