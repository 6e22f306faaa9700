package response

import (
	"errors"
	"net/http"

	"local-chat/services/chat-service/internal/domain"

	"github.com/gin-gonic/gin"
)

const (
	CodeInvalidRequest     = "invalid_request"
	CodeUnauthorized       = "unauthorized"
	CodeInvalidCredentials = "invalid_credentials"
	CodeUserExists         = "user_already_exists"
	CodeChatNotFound       = "chat_not_found"
	CodeStoreUnavailable   = "store_unavailable"
	CodeRateLimited        = "rate_limited"
	CodeBackendError       = "backend_error"
	CodeInternal           = "internal_error"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// FromError maps domain errors to a status and code. Server-side failures get a
// generic message so store internals never reach the client.
func FromError(c *gin.Context, err error) {
	status, code := Classify(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		msg := "internal error"
		if code == CodeStoreUnavailable {
			msg = domain.ErrStoreUnavailable.Error()
		}
		RespondError(c, status, code, errors.New(msg))
		return
	}
	RespondError(c, status, code, err)
}

func Classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, CodeInvalidRequest
	case errors.Is(err, domain.ErrUserAlreadyExists):
		return http.StatusBadRequest, CodeUserExists
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, CodeInvalidCredentials
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, CodeUnauthorized
	case errors.Is(err, domain.ErrChatNotFound):
		return http.StatusNotFound, CodeChatNotFound
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, CodeStoreUnavailable
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}
