package queue

import (
	"context"
	"fmt"
	"strings"

	"local-chat/config"
	"local-chat/infra/logger"

	rocketmq "github.com/apache/rocketmq-client-go/v2"
	"github.com/apache/rocketmq-client-go/v2/consumer"
	"github.com/apache/rocketmq-client-go/v2/primitive"
)

type Consumer struct {
	consumer rocketmq.PushConsumer
	log      *logger.Logger
}

// NewConsumer builds a clustering push consumer. Call Subscribe before Start.
func NewConsumer(cfg *config.RocketMQConfig, group string, log *logger.Logger) (*Consumer, error) {
	servers := resolveNameServers(cfg.NameServers, log)
	if len(servers) == 0 {
		return nil, ErrNoNameServers
	}
	c, err := rocketmq.NewPushConsumer(
		consumer.WithNsResolver(primitive.NewPassthroughResolver(servers)),
		consumer.WithGroupName(group),
		consumer.WithConsumerModel(consumer.Clustering),
		consumer.WithMaxReconsumeTimes(int32(cfg.MaxRetries)),
	)
	if err != nil {
		return nil, fmt.Errorf("create consumer: %w", err)
	}
	return &Consumer{consumer: c, log: log}, nil
}

// Subscribe registers handler for the given tags on topic. No tags means every tag.
// A handler error asks the broker to redeliver the batch later.
func (c *Consumer) Subscribe(topic string, tags []string, handler func(context.Context, Message) error) error {
	wrapped := func(ctx context.Context, msgs ...*primitive.MessageExt) (consumer.ConsumeResult, error) {
		for _, msg := range msgs {
			if err := handler(ctx, fromPrimitive(msg)); err != nil {
				c.log.Warn("message handler failed", "topic", topic, "message_id", msg.MsgId, "error", err)
				return consumer.ConsumeRetryLater, err
			}
		}
		return consumer.ConsumeSuccess, nil
	}
	if err := c.consumer.Subscribe(topic, tagSelector(tags), wrapped); err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	return nil
}

func (c *Consumer) Start() error {
	if err := c.consumer.Start(); err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}
	return nil
}

func (c *Consumer) Stop() error {
	return c.consumer.Shutdown()
}

func tagSelector(tags []string) consumer.MessageSelector {
	if len(tags) == 0 {
		return consumer.MessageSelector{}
	}
	return consumer.MessageSelector{Type: consumer.TAG, Expression: strings.Join(tags, " || ")}
}

func fromPrimitive(msg *primitive.MessageExt) Message {
	m := Message{
		ID:      msg.MsgId,
		Tag:     msg.GetTags(),
		Payload: msg.Body,
	}
	if keys := strings.Fields(msg.GetKeys()); len(keys) > 0 {
		m.Keys = keys
	}
	return m
}
