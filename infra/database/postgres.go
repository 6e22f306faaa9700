package database

import (
	"context"
	"fmt"
	"time"

	"local-chat/config"
	"local-chat/infra/logger"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Database struct {
	*gorm.DB
	log *logger.Logger
}

// Open connects with the dialect named by cfg.Database.Driver. Postgres is used in
// deployments; sqlite backs local development and tests.
func Open(cfg *config.AppConfig, log *logger.Logger) (*Database, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}
	gormCfg := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}
	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get underlying database connection: %w", err)
	}

	switch cfg.Database.Driver {
	case "sqlite":
		// a single writer keeps in-memory databases shared and avoids SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
	default:
		if cfg.Postgres.MaxOpen > 0 {
			sqlDB.SetMaxOpenConns(cfg.Postgres.MaxOpen)
		}
		if cfg.Postgres.MaxIdle > 0 {
			sqlDB.SetMaxIdleConns(cfg.Postgres.MaxIdle)
		}
		if cfg.Postgres.MaxLife > 0 {
			sqlDB.SetConnMaxLifetime(cfg.Postgres.MaxLife)
		}
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Info("database connection established", "driver", cfg.Database.Driver)
	return &Database{DB: db, log: log}, nil
}

func dialectorFor(cfg *config.AppConfig) (gorm.Dialector, error) {
	switch cfg.Database.Driver {
	case "postgres", "":
		dsn := cfg.Database.DSN
		if dsn == "" {
			dsn = GetURL(&cfg.Postgres)
		}
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(cfg.Database.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

func (db *Database) CreateTables(models ...any) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	db.log.Info("database tables migrated", "count", len(models))
	return nil
}

// Ping reports whether the database answers within ctx.
func (db *Database) Ping(ctx context.Context) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("get underlying database connection: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (db *Database) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying database connection: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	db.log.Info("database connection closed")
	return nil
}

func GetURL(cfg *config.PostgresConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	tz := cfg.TimeZone
	if tz == "" {
		tz = "UTC"
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
		cfg.Address, cfg.User, cfg.Password, cfg.DBName, cfg.Port, sslMode, tz,
	)
}
