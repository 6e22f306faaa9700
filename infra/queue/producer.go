package queue

import (
	"context"
	"errors"
	"fmt"
	"net"

	"local-chat/config"
	"local-chat/infra/logger"

	rocketmq "github.com/apache/rocketmq-client-go/v2"
	"github.com/apache/rocketmq-client-go/v2/primitive"
	"github.com/apache/rocketmq-client-go/v2/producer"
)

var ErrNoNameServers = errors.New("rocketmq name servers not configured")

type Producer struct {
	producer rocketmq.Producer
	log      *logger.Logger
}

func NewProducer(cfg *config.RocketMQConfig, log *logger.Logger) (*Producer, error) {
	servers := resolveNameServers(cfg.NameServers, log)
	if len(servers) == 0 {
		return nil, ErrNoNameServers
	}
	opts := []producer.Option{
		producer.WithNsResolver(primitive.NewPassthroughResolver(servers)),
		producer.WithRetry(cfg.MaxRetries),
		producer.WithQueueSelector(producer.NewRoundRobinQueueSelector()),
	}
	if cfg.GroupName != "" {
		opts = append(opts, producer.WithGroupName(cfg.GroupName))
	}
	p, err := rocketmq.NewProducer(opts...)
	if err != nil {
		return nil, fmt.Errorf("create producer: %w", err)
	}
	if err := p.Start(); err != nil {
		return nil, fmt.Errorf("start producer: %w", err)
	}
	log.Info("rocketmq producer started", "name_servers", servers)
	return &Producer{producer: p, log: log}, nil
}

func (p *Producer) Send(ctx context.Context, topic string, m Message) error {
	result, err := p.producer.SendSync(ctx, m.toPrimitive(topic))
	if err != nil {
		return fmt.Errorf("send to %s: %w", topic, err)
	}
	if result.Status != primitive.SendOK {
		return fmt.Errorf("send to %s: status=%d", topic, result.Status)
	}
	p.log.Debug("message sent", "topic", topic, "message_id", m.ID, "broker_msg_id", result.MsgID)
	return nil
}

func (p *Producer) Stop() error {
	return p.producer.Shutdown()
}

// The passthrough resolver wants ip:port, so hostnames (compose service names) are
// resolved up front. Unresolvable entries are passed through unchanged.
func resolveNameServers(servers []string, log *logger.Logger) []string {
	resolved := make([]string, 0, len(servers))
	for _, addr := range servers {
		if addr == "" {
			continue
		}
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			log.Warn("invalid name server address", "addr", addr, "error", err)
			resolved = append(resolved, addr)
			continue
		}
		if net.ParseIP(host) != nil {
			resolved = append(resolved, addr)
			continue
		}
		ips, err := net.LookupHost(host)
		if err != nil || len(ips) == 0 {
			log.Warn("name server lookup failed", "host", host, "error", err)
			resolved = append(resolved, addr)
			continue
		}
		resolved = append(resolved, net.JoinHostPort(ips[0], port))
	}
	return resolved
}
