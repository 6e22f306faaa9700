package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"local-chat/config"
	"local-chat/infra/cache"
	"local-chat/infra/database"
	"local-chat/infra/logger"
	"local-chat/infra/queue"
	"local-chat/infra/registry"
	"local-chat/services/chat-service/internal/application"
	"local-chat/services/chat-service/internal/domain"
	catalogcache "local-chat/services/chat-service/internal/infrastructure/cache"
	"local-chat/services/chat-service/internal/infrastructure/llm"
	"local-chat/services/chat-service/internal/infrastructure/mq"
	"local-chat/services/chat-service/internal/infrastructure/persistence/model"
	"local-chat/services/chat-service/internal/infrastructure/persistence/repository"
	"local-chat/services/chat-service/internal/infrastructure/security"
	"local-chat/services/chat-service/internal/interfaces/handler"
	"local-chat/services/chat-service/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logg, err := logger.New(cfg.Log.Mode)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logg.Sync()

	if err := run(cfg, logg); err != nil {
		logg.Error("chat service stopped", "error", err)
		logg.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig, logg *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg, logg)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.CreateTables(model.All()...); err != nil {
		return err
	}

	store := repository.NewTranscriptStore(db.DB)
	users := repository.NewUserRepository(db.DB)
	authService := application.NewAuthService(
		users,
		security.NewJWTService(cfg.Auth.JwtSecret, cfg.Auth.Expire_Access_H, cfg.Auth.Expire_Refresh_H),
		security.NewBcryptService(),
	)

	backend, err := llm.NewOllamaClient(llm.Options{
		BaseURL:      cfg.LLM.BaseURL,
		DefaultModel: cfg.LLM.DefaultModel,
	}, logg.With("component", "llm"))
	if err != nil {
		return err
	}
	var catalog domain.ModelCatalog = backend
	var cachedCatalog *catalogcache.CachedModelCatalog

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		rc, err := cache.NewRedisCache(&cfg.Redis, logg)
		if err != nil {
			// rate limiting and the model cache are optional
			logg.Warn("redis unavailable, continuing without it", "error", err)
		} else {
			defer rc.Close()
			redisClient = rc.Client()
			cachedCatalog = catalogcache.NewCachedModelCatalog(backend, rc, cfg.LLM.ModelsTTL, logg)
			catalog = cachedCatalog
		}
	}

	opts := []application.Option{application.WithBackendTimeout(cfg.LLM.Timeout)}
	if cfg.RocketMQ.Enabled {
		producer, err := queue.NewProducer(&cfg.RocketMQ, logg)
		if err != nil {
			logg.Warn("rocketmq unavailable, turn events disabled", "error", err)
		} else {
			defer producer.Stop()
			opts = append(opts, application.WithNotifier(mq.NewTurnPublisher(producer, cfg.RocketMQ.Topics.TurnEvent)))
		}
		if cachedCatalog != nil {
			if c, err := startFallbackWatcher(cfg, cachedCatalog, logg); err != nil {
				logg.Warn("fallback watcher disabled", "error", err)
			} else {
				defer c.Stop()
			}
		}
	}
	orchestrator := application.NewTurnOrchestrator(store, backend, logg.With("component", "orchestrator"), opts...)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handler.NewRouter(handler.RouterDeps{
		Log:           logg,
		Auth:          handler.NewAuthHandler(authService),
		Chat:          handler.NewChatHandler(application.NewChatService(store), orchestrator, session.NewAuthorizer(store)),
		Status:        handler.NewStatusHandler(db, catalog),
		Generate:      handler.NewGenerateHandler(backend, backend.DefaultModel(), cfg.LLM.Timeout),
		Authenticator: authService,
		Redis:         redisClient,
		RedisPrefix:   cfg.Redis.Prefix,
		RateLimitQPS:  cfg.Redis.RateLimitQPS,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.Consul.Enabled {
		if svcMgr, err := newServiceManager(cfg, logg); err != nil {
			logg.Warn("consul registration skipped", "error", err)
		} else if err := svcMgr.Start(); err != nil {
			logg.Warn("consul registration failed", "error", err)
		} else {
			defer svcMgr.Stop()
		}
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info("chat service listening", "port", cfg.Port, "model", cfg.LLM.DefaultModel, "llm_url", cfg.LLM.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logg.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func startFallbackWatcher(cfg *config.AppConfig, models mq.Invalidator, logg *logger.Logger) (*queue.Consumer, error) {
	c, err := queue.NewConsumer(&cfg.RocketMQ, cfg.RocketMQ.GroupName+"-fallback-watcher", logg)
	if err != nil {
		return nil, err
	}
	w := mq.NewFallbackWatcher(models, logg.With("component", "fallback_watcher"))
	if err := c.Subscribe(cfg.RocketMQ.Topics.TurnEvent, w.Tags(), w.Handle); err != nil {
		return nil, err
	}
	if err := c.Start(); err != nil {
		return nil, err
	}
	return c, nil
}

func newServiceManager(cfg *config.AppConfig, logg *logger.Logger) (*registry.ServiceManager, error) {
	localIP, err := registry.GetLocalIP()
	if err != nil {
		return nil, fmt.Errorf("resolve local ip: %w", err)
	}
	consul, err := registry.NewConsulRegistry(&cfg.Consul, logg)
	if err != nil {
		return nil, err
	}
	return registry.NewServiceManager(consul, &registry.ServiceConfig{
		ID:      registry.GenerateServiceID(cfg.ServerName, localIP, cfg.Port),
		Name:    cfg.ServerName,
		Tags:    []string{cfg.ServerName, "api", "v1"},
		Address: localIP,
		Port:    cfg.Port,
		HealthCheck: &registry.HealthCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d/health", localIP, cfg.Port),
			Interval:                       10 * time.Second,
			Timeout:                        3 * time.Second,
			DeregisterCriticalServiceAfter: time.Minute,
		},
	}, logg), nil
}
