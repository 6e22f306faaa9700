package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"local-chat/infra/logger"
	"local-chat/services/chat-service/internal/domain"

	"github.com/go-resty/resty/v2"
)

type Options struct {
	BaseURL      string
	DefaultModel string
	// StatusTimeout bounds ListModels and Ping. Generate is bounded by the caller.
	StatusTimeout time.Duration
}

// OllamaClient talks to an Ollama compatible daemon. Every call is a single attempt.
type OllamaClient struct {
	http          *resty.Client
	defaultModel  string
	statusTimeout time.Duration
	log           *logger.Logger
}

func NewOllamaClient(opts Options, log *logger.Logger) (*OllamaClient, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("llm base url required")
	}
	statusTimeout := opts.StatusTimeout
	if statusTimeout <= 0 {
		statusTimeout = 5 * time.Second
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(0)

	return &OllamaClient{
		http:          client,
		defaultModel:  strings.TrimSpace(opts.DefaultModel),
		statusTimeout: statusTimeout,
		log:           log,
	}, nil
}

func (c *OllamaClient) DefaultModel() string { return c.defaultModel }

// Generate posts the whole context to /api/chat and returns one completion.
func (c *OllamaClient) Generate(ctx context.Context, messages []domain.ContextMessage, model string) (string, error) {
	if strings.TrimSpace(model) == "" {
		model = c.defaultModel
	}
	req := chatRequest{Model: model, Messages: messages, Stream: false}

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		Post("/api/chat")
	if err != nil {
		return "", transportError(ctx, err)
	}
	if !resp.IsSuccess() {
		return "", &BackendError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	out, err := decodeCompletion(resp.Body())
	if err != nil {
		return "", err
	}
	c.log.Debug("generation finished",
		"model", model,
		"context_messages", len(messages),
		"duration_ms", time.Since(start).Milliseconds(),
		"placeholder", out.kind == kindNone,
	)
	return out.Text(), nil
}

// ListModels returns installed model names, or an empty slice when the backend is unreachable.
func (c *OllamaClient) ListModels(ctx context.Context) []string {
	tags, err := c.tags(ctx)
	if err != nil {
		c.log.Warn("list models failed", "error", err)
		return []string{}
	}
	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names
}

func (c *OllamaClient) Ping(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.statusTimeout)
	defer cancel()
	resp, err := c.http.R().SetContext(ctx).Get("/api/tags")
	return err == nil && resp.IsSuccess()
}

func (c *OllamaClient) tags(ctx context.Context) (*tagsResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.statusTimeout)
	defer cancel()

	resp, err := c.http.R().SetContext(ctx).Get("/api/tags")
	if err != nil {
		return nil, transportError(ctx, err)
	}
	if !resp.IsSuccess() {
		return nil, &BackendError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	var out tagsResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, ErrBackendMalformedResponse
	}
	return &out, nil
}

func transportError(ctx context.Context, err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(ctx.Err(), context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Errorf("%w: %v", ErrBackendTimeout, err)
	default:
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
}
