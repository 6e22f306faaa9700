package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"local-chat/infra/logger"
	"local-chat/services/chat-service/internal/interfaces/response"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// Token bucket: capacity tokens, refilled at rate per second.
// Returns {allowed, remaining, retry_after_seconds}.
var rateLimitScript = redis.NewScript(`
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local requested = tonumber(ARGV[4])

local bucket = redis.call('HMGET', key, 'tokens', 'updated_at')
local tokens = tonumber(bucket[1])
local updated_at = tonumber(bucket[2])

if tokens == nil or updated_at == nil then
    tokens = capacity
    updated_at = now
end

local elapsed = math.max(0, now - updated_at)
tokens = math.min(capacity, tokens + elapsed * rate)

local allowed = 0
local retry_after = 0

if tokens >= requested then
    tokens = tokens - requested
    allowed = 1
else
    retry_after = (requested - tokens) / rate
end

redis.call('HSET', key, 'tokens', tokens, 'updated_at', now)
redis.call('EXPIRE', key, math.ceil(capacity / rate) + 60)

return {allowed, math.floor(tokens), math.ceil(retry_after)}
`)

// RateLimit throttles per client IP. It fails open: if redis errors the request
// goes through.
func RateLimit(client *redis.Client, prefix string, qps int, log *logger.Logger) gin.HandlerFunc {
	capacity := 2 * qps
	return func(c *gin.Context) {
		key := prefix + "rate_limit:" + c.ClientIP()
		now := float64(time.Now().UnixNano()) / 1e9

		result, err := rateLimitScript.Run(c.Request.Context(), client, []string{key}, capacity, qps, now, 1).Result()
		if err != nil {
			log.Warn("rate limiter unavailable, allowing request", "error", err)
			c.Next()
			return
		}

		allowed, remaining, retryAfter := parseBucket(result, capacity)
		c.Header("X-RateLimit-Limit", strconv.Itoa(capacity))
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			response.RespondError(c, http.StatusTooManyRequests, response.CodeRateLimited, errors.New("too many requests, please retry later"))
			return
		}
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Next()
	}
}

func parseBucket(result any, capacity int) (allowed bool, remaining, retryAfter int) {
	remaining = capacity
	arr, ok := result.([]any)
	if !ok || len(arr) < 3 {
		return true, remaining, 0
	}
	if v, ok := arr[0].(int64); ok {
		allowed = v == 1
	}
	if v, ok := arr[1].(int64); ok {
		remaining = int(v)
	}
	if v, ok := arr[2].(int64); ok {
		retryAfter = int(v)
	}
	return allowed, remaining, retryAfter
}
