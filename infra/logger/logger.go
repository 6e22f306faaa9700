package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

// Logger is a key/value logger. Values under sensitive keys are redacted and
// user identifiers are hashed before they reach the sink.
type Logger struct {
	SugaredLogger *zap.SugaredLogger
	redact        bool
	salt          string
}

func New(mode string) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	zl, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return wrap(zl), nil
}

// NewNop discards everything. Used by tests and optional collaborators.
func NewNop() *Logger {
	return wrap(zap.NewNop())
}

// FromZap wraps an existing zap logger, e.g. one built over an observer core.
func FromZap(zl *zap.Logger) *Logger {
	return wrap(zl.WithOptions(zap.AddCallerSkip(1)))
}

func wrap(zl *zap.Logger) *Logger {
	redact := true
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_REDACTION_ENABLED"))) {
	case "0", "false", "no", "off":
		redact = false
	}
	return &Logger{
		SugaredLogger: zl.Sugar(),
		redact:        redact,
		salt:          strings.TrimSpace(os.Getenv("LOG_HASH_SALT")),
	}
}

func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debug(msg string, kv ...any) { l.SugaredLogger.Debugw(msg, l.scrub(kv)...) }
func (l *Logger) Info(msg string, kv ...any)  { l.SugaredLogger.Infow(msg, l.scrub(kv)...) }
func (l *Logger) Warn(msg string, kv ...any)  { l.SugaredLogger.Warnw(msg, l.scrub(kv)...) }
func (l *Logger) Error(msg string, kv ...any) { l.SugaredLogger.Errorw(msg, l.scrub(kv)...) }

func (l *Logger) With(kv ...any) *Logger {
	return &Logger{
		SugaredLogger: l.SugaredLogger.With(l.scrub(kv)...),
		redact:        l.redact,
		salt:          l.salt,
	}
}

func (l *Logger) scrub(kv []any) []any {
	if len(kv) == 0 || !l.redact {
		return kv
	}
	out := make([]any, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i == len(kv)-1 {
			out = append(out, kv[i])
			break
		}
		key := fmt.Sprint(kv[i])
		out = append(out, key, l.scrubValue(strings.ToLower(key), kv[i+1]))
	}
	return out
}

func (l *Logger) scrubValue(key string, val any) any {
	switch {
	case sensitiveKey(key):
		return "[REDACTED]"
	case key == "user_id" || strings.HasSuffix(key, "_user_id"):
		return l.hash(fmt.Sprint(val))
	}
	if s, ok := val.(string); ok && looksLikeJWT(s) {
		return "[REDACTED]"
	}
	return val
}

func sensitiveKey(key string) bool {
	for _, needle := range []string{"token", "authorization", "password", "secret", "email", "api_key"} {
		if strings.Contains(key, needle) {
			return true
		}
	}
	return false
}

func (l *Logger) hash(raw string) string {
	if raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(l.salt + raw))
	return "hash:" + hex.EncodeToString(sum[:])[:12]
}

func looksLikeJWT(s string) bool {
	parts := strings.Split(s, ".")
	return len(parts) == 3 && len(parts[0]) > 10 && len(parts[1]) > 10
}
