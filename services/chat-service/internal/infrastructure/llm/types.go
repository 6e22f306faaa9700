package llm

import (
	"encoding/json"

	"local-chat/services/chat-service/internal/domain"
)

const NoResponsePlaceholder = "No response generated"

type chatRequest struct {
	Model    string                  `json:"model"`
	Messages []domain.ContextMessage `json:"messages"`
	Stream   bool                    `json:"stream"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

type completionKind int

const (
	kindNone completionKind = iota
	// /api/chat shape: {"message":{"role":"assistant","content":"..."}}
	kindMessage
	// /api/generate shape: {"response":"..."}
	kindResponse
)

type completion struct {
	kind completionKind
	text string
}

// Text returns the generated text, or the placeholder when neither shape carried any.
func (c completion) Text() string {
	if c.kind == kindNone {
		return NoResponsePlaceholder
	}
	return c.text
}

// decodeCompletion accepts either response shape, preferring message.content. Only an
// empty string counts as missing; whitespace is returned as generated. A body that is
// not a JSON object is malformed; an object with neither field is kindNone.
func decodeCompletion(raw []byte) (completion, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return completion{}, ErrBackendMalformedResponse
	}

	if rawMsg, ok := fields["message"]; ok {
		var msg struct {
			Content string `json:"content"`
		}
		if json.Unmarshal(rawMsg, &msg) == nil && msg.Content != "" {
			return completion{kind: kindMessage, text: msg.Content}, nil
		}
	}
	if rawResp, ok := fields["response"]; ok {
		var text string
		if json.Unmarshal(rawResp, &text) == nil && text != "" {
			return completion{kind: kindResponse, text: text}, nil
		}
	}
	return completion{kind: kindNone}, nil
}
