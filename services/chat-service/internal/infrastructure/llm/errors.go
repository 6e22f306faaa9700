package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

var (
	ErrBackendUnavailable       = errors.New("inference backend unavailable")
	ErrBackendTimeout           = errors.New("inference backend timed out")
	ErrBackendMalformedResponse = errors.New("inference backend returned a malformed response")
)

const maxErrorBody = 512

// BackendError is a non-2xx answer from the backend.
type BackendError struct {
	StatusCode int
	Body       string
}

func (e *BackendError) Error() string {
	if e == nil {
		return "inference backend error"
	}
	msg := strings.TrimSpace(e.Body)
	if len(msg) > maxErrorBody {
		// cut on a rune boundary; the text ends up in a postgres text column
		n := maxErrorBody
		for n > 0 && !utf8.RuneStart(msg[n]) {
			n--
		}
		msg = msg[:n] + "..."
	}
	msg = strings.ToValidUTF8(msg, "\uFFFD")
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("Local model API error: %d %s", e.StatusCode, msg)
}
