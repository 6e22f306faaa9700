package handler

import (
	"net/http"

	"local-chat/infra/logger"
	"local-chat/services/chat-service/internal/interfaces/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

type RouterDeps struct {
	Log            *logger.Logger
	Auth           *AuthHandler
	Chat           *ChatHandler
	Status         *StatusHandler
	Generate       *GenerateHandler
	Authenticator  middleware.Authenticator
	AllowedOrigins []string

	// Redis enables per-IP rate limiting on /api when set.
	Redis        *redis.Client
	RedisPrefix  string
	RateLimitQPS int
}

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(middleware.CORS(d.AllowedOrigins))

	r.GET("/health", d.Status.Health)

	api := r.Group("/api/v1")
	if d.Redis != nil && d.RateLimitQPS > 0 {
		api.Use(middleware.RateLimit(d.Redis, d.RedisPrefix, d.RateLimitQPS, d.Log))
	}

	auth := api.Group("/auth")
	{
		auth.POST("/register", d.Auth.Register)
		auth.POST("/login", d.Auth.Login)
		auth.POST("/refresh", d.Auth.Refresh)
	}

	protected := api.Group("")
	protected.Use(middleware.JwtAuth(d.Authenticator))
	{
		protected.GET("/chats", d.Chat.ListChats)
		protected.POST("/chats", d.Chat.CreateChat)
		protected.GET("/chats/:chatId/messages", d.Chat.ListMessages)
		protected.POST("/chats/:chatId/messages", d.Chat.SendMessage)
		protected.GET("/models", d.Status.Models)
		protected.POST("/models/chat", d.Generate.Generate)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "route not found", "code": "not_found"}})
	})
	return r
}
