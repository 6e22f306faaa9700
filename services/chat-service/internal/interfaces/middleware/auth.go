package middleware

import (
	"errors"
	"net/http"
	"strings"

	"local-chat/services/chat-service/internal/domain"
	"local-chat/services/chat-service/internal/interfaces/response"
	"local-chat/services/chat-service/internal/session"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

type Authenticator interface {
	Authenticate(token string) (session.Principal, error)
}

// JwtAuth requires "Authorization: Bearer <access token>" and stores the caller's
// Principal on the context.
func JwtAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.RespondError(c, http.StatusUnauthorized, response.CodeUnauthorized, errors.New("missing Authorization header"))
			return
		}
		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			response.RespondError(c, http.StatusUnauthorized, response.CodeUnauthorized, errors.New("malformed Authorization header"))
			return
		}

		p, err := auth.Authenticate(strings.TrimSpace(token))
		if err != nil {
			response.RespondError(c, http.StatusUnauthorized, response.CodeUnauthorized, domain.ErrUnauthenticated)
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

func PrincipalFrom(c *gin.Context) (session.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return session.Principal{}, false
	}
	p, ok := v.(session.Principal)
	return p, ok && p.UserID != ""
}
