package registry

import (
	"testing"
	"time"

	"local-chat/config"
	"local-chat/infra/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistration_WithHealthCheck(t *testing.T) {
	reg := registration(&ServiceConfig{
		ID:      "chat-service-10.0.0.1-8080",
		Name:    "chat-service",
		Tags:    []string{"http"},
		Address: "10.0.0.1",
		Port:    8080,
		HealthCheck: &HealthCheck{
			HTTP:                           "http://10.0.0.1:8080/health",
			Interval:                       10 * time.Second,
			Timeout:                        3 * time.Second,
			DeregisterCriticalServiceAfter: time.Minute,
		},
	})

	require.NotNil(t, reg.Check)
	assert.Equal(t, "chat-service", reg.Name)
	assert.Equal(t, 8080, reg.Port)
	assert.Equal(t, "http://10.0.0.1:8080/health", reg.Check.HTTP)
	assert.Equal(t, "10s", reg.Check.Interval)
	assert.Equal(t, "1m0s", reg.Check.DeregisterCriticalServiceAfter)
}

func TestRegistration_WithoutHealthCheck(t *testing.T) {
	reg := registration(&ServiceConfig{ID: "x", Name: "x"})
	assert.Nil(t, reg.Check)
}

func TestGenerateServiceID(t *testing.T) {
	assert.Equal(t, "chat-service-10.0.0.1-8080", GenerateServiceID("chat-service", "10.0.0.1", 8080))
}

func TestNewConsulRegistry_Unreachable(t *testing.T) {
	_, err := NewConsulRegistry(&config.ConsulConfig{Address: "127.0.0.1:1", Scheme: "http"}, logger.NewNop())
	assert.Error(t, err)
}
