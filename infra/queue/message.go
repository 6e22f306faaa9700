package queue

import (
	"github.com/apache/rocketmq-client-go/v2/primitive"
	"github.com/google/uuid"
)

type Message struct {
	ID      string
	Tag     string
	Keys    []string
	Payload []byte
}

// NewMessage stamps a fresh id. The id is also sent as a message key so brokers can
// deduplicate redeliveries.
func NewMessage(tag string, payload []byte, keys ...string) Message {
	return Message{
		ID:      uuid.NewString(),
		Tag:     tag,
		Keys:    keys,
		Payload: payload,
	}
}

func (m Message) toPrimitive(topic string) *primitive.Message {
	msg := primitive.NewMessage(topic, m.Payload)
	if m.Tag != "" {
		msg.WithTag(m.Tag)
	}
	msg.WithKeys(append([]string{m.ID}, m.Keys...))
	return msg
}
