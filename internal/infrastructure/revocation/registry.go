package revocation

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/findbi/token-service/internal/domain"
	"github.com/findbi/token-service/internal/infrastructure/config"
	"github.com/findbi/token-service/internal/infrastructure/database"
)

// DefaultSweepInterval is the eviction cadence for the in-memory backend
const DefaultSweepInterval = time.Minute

// New builds the revocation registry selected by REVOCATION_BACKEND. The
// returned cleanup releases whatever the backend holds (sweeper goroutine,
// redis client, connection pool).
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (domain.RevocationRegistry, func(), error) {
	switch cfg.RevocationBackend {
	case config.RevocationBackendMemory:
		m := NewMemory(DefaultSweepInterval)
		return m, m.Close, nil

	case config.RevocationBackendRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("error connecting to redis: %w", err)
		}
		logger.Info("revocation registry using redis", zap.String("addr", cfg.RedisAddr))
		return NewRedis(client), func() { _ = client.Close() }, nil

	case config.RevocationBackendPostgres:
		db, err := database.NewPostgres(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := db.RunMigrations(cfg); err != nil {
			db.Close()
			return nil, nil, err
		}
		logger.Info("revocation registry using postgres", zap.String("host", cfg.DBHost))
		return NewPostgres(db), db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown revocation backend %q", cfg.RevocationBackend)
	}
}
