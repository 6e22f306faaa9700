package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const DefaultPath = "config/config.yml"

type AppConfig struct {
	ServerName  string         `mapstructure:"server_name" yaml:"server_name"`
	Version     string         `mapstructure:"version" yaml:"version"`
	Environment string         `mapstructure:"environment" yaml:"environment"`
	Port        int            `mapstructure:"port" yaml:"port"`
	Log         LogConfig      `mapstructure:"log" yaml:"log"`
	Database    DatabaseConfig `mapstructure:"database" yaml:"database"`
	Postgres    PostgresConfig `mapstructure:"postgres" yaml:"postgres"`
	Redis       RedisConfig    `mapstructure:"redis" yaml:"redis"`
	Consul      ConsulConfig   `mapstructure:"consul" yaml:"consul"`
	Auth        AuthConfig     `mapstructure:"auth" yaml:"auth"`
	LLM         LLMConfig      `mapstructure:"llm" yaml:"llm"`
	RocketMQ    RocketMQConfig `mapstructure:"rocketmq" yaml:"rocketmq"`
}

type LogConfig struct {
	Mode string `mapstructure:"mode" yaml:"mode"`
}

// DatabaseConfig selects the gorm dialect. DSN wins over the postgres section when set.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"`
	DSN    string `mapstructure:"dsn" yaml:"dsn"`
}

type PostgresConfig struct {
	Address  string        `mapstructure:"address" yaml:"address"`
	Port     int           `mapstructure:"port" yaml:"port"`
	User     string        `mapstructure:"user" yaml:"user"`
	Password string        `mapstructure:"password" yaml:"password"`
	DBName   string        `mapstructure:"db_name" yaml:"db_name"`
	SSLMode  string        `mapstructure:"ssl_mode" yaml:"ssl_mode"`
	TimeZone string        `mapstructure:"time_zone" yaml:"time_zone"`
	MaxIdle  int           `mapstructure:"max_idle" yaml:"max_idle"`
	MaxOpen  int           `mapstructure:"max_open" yaml:"max_open"`
	MaxLife  time.Duration `mapstructure:"max_life" yaml:"max_life"`
}

type RedisConfig struct {
	Enabled         bool          `mapstructure:"enabled" yaml:"enabled"`
	Address         string        `mapstructure:"address" yaml:"address"`
	Port            int           `mapstructure:"port" yaml:"port"`
	Password        string        `mapstructure:"password" yaml:"password"`
	Database        int           `mapstructure:"database" yaml:"database"`
	Prefix          string        `mapstructure:"prefix" yaml:"prefix"`
	DialTimeout     time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	MaxRetries      int           `mapstructure:"max_retries" yaml:"max_retries"`
	PoolSize        int           `mapstructure:"pool_size" yaml:"pool_size"`
	MinIdleConns    int           `mapstructure:"min_idle_conns" yaml:"min_idle_conns"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
	CacheJitterSec  int           `mapstructure:"cache_jitter_sec" yaml:"cache_jitter_sec"`
	LockTTL         time.Duration `mapstructure:"lock_ttl" yaml:"lock_ttl"`
	LockMaxAttempts int           `mapstructure:"lock_max_attempts" yaml:"lock_max_attempts"`
	LockBackoff     time.Duration `mapstructure:"lock_backoff" yaml:"lock_backoff"`
	RateLimitQPS    int           `mapstructure:"rate_limit_qps" yaml:"rate_limit_qps"`
}

type ConsulConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	Address    string `mapstructure:"address" yaml:"address"`
	Scheme     string `mapstructure:"scheme" yaml:"scheme"`
	Datacenter string `mapstructure:"datacenter" yaml:"datacenter"`
}

type AuthConfig struct {
	JwtSecret        string `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	Expire_Access_H  int    `mapstructure:"expire_access_h" yaml:"expire_access_h"`
	Expire_Refresh_H int    `mapstructure:"expire_refresh_h" yaml:"expire_refresh_h"`
}

// LLMConfig points at an Ollama compatible daemon.
type LLMConfig struct {
	BaseURL      string        `mapstructure:"base_url" yaml:"base_url"`
	DefaultModel string        `mapstructure:"default_model" yaml:"default_model"`
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout"`
	ModelsTTL    time.Duration `mapstructure:"models_ttl" yaml:"models_ttl"`
}

type RocketMQConfig struct {
	Enabled     bool     `mapstructure:"enabled" yaml:"enabled"`
	NameServers []string `mapstructure:"name_servers" yaml:"name_servers"`
	MaxRetries  int      `mapstructure:"max_retries" yaml:"max_retries"`
	GroupName   string   `mapstructure:"group_name" yaml:"group_name"`
	Topics      struct {
		TurnEvent string `mapstructure:"turn_event" yaml:"turn_event"`
	} `mapstructure:"topics" yaml:"topics"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_name", "chat-service")
	v.SetDefault("version", "1.0.0")
	v.SetDefault("environment", "development")
	v.SetDefault("port", 8080)
	v.SetDefault("log.mode", "development")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("postgres.address", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "local-chat")
	v.SetDefault("postgres.db_name", "local-chat")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.time_zone", "UTC")
	v.SetDefault("postgres.max_idle", 10)
	v.SetDefault("postgres.max_open", 50)
	v.SetDefault("postgres.max_life", time.Hour)

	v.SetDefault("redis.address", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.prefix", "local-chat:")
	v.SetDefault("redis.dial_timeout", 3*time.Second)
	v.SetDefault("redis.cache_ttl", time.Minute)
	v.SetDefault("redis.cache_jitter_sec", 10)
	v.SetDefault("redis.lock_ttl", 10*time.Second)
	v.SetDefault("redis.lock_max_attempts", 5)
	v.SetDefault("redis.lock_backoff", 50*time.Millisecond)
	v.SetDefault("redis.rate_limit_qps", 10)

	v.SetDefault("consul.address", "localhost:8500")
	v.SetDefault("consul.scheme", "http")
	v.SetDefault("consul.datacenter", "dc1")

	v.SetDefault("auth.expire_access_h", 24)
	v.SetDefault("auth.expire_refresh_h", 168)

	v.SetDefault("llm.base_url", "http://localhost:11434")
	v.SetDefault("llm.default_model", "llama2")
	v.SetDefault("llm.timeout", 120*time.Second)
	v.SetDefault("llm.models_ttl", 30*time.Second)

	v.SetDefault("rocketmq.max_retries", 2)
	v.SetDefault("rocketmq.group_name", "chat-service")
	v.SetDefault("rocketmq.topics.turn_event", "chat_turn_event")
}

// LoadConfig reads the YAML file at path (DefaultPath when empty). A missing file is
// not an error; defaults and environment variables still apply.
func LoadConfig(path string) (*AppConfig, error) {
	var config AppConfig
	if path == "" {
		path = DefaultPath
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// names used by the web front end deployment
	_ = v.BindEnv("llm.base_url", "LLM_BASE_URL", "LOCAL_MODEL_URL")
	_ = v.BindEnv("llm.default_model", "LLM_DEFAULT_MODEL", "LOCAL_MODEL_NAME")
	_ = v.BindEnv("database.dsn", "DATABASE_DSN", "DATABASE_URL")
	_ = v.BindEnv("auth.jwt_secret", "AUTH_JWT_SECRET", "JWT_SECRET")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return &config, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	if err := v.Unmarshal(&config); err != nil {
		return &config, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return &config, err
	}
	return &config, nil
}

func (c *AppConfig) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.Driver == "sqlite" && c.Database.DSN == "" {
		return errors.New("database.dsn is required for sqlite")
	}
	if strings.TrimSpace(c.Auth.JwtSecret) == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if strings.TrimSpace(c.LLM.BaseURL) == "" {
		return errors.New("llm.base_url is required")
	}
	return nil
}

func (c *AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production") || strings.EqualFold(c.Environment, "prod")
}

func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Address, r.Port)
}
