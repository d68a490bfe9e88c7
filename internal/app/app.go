package app

import (
	"errors"

	"go-faculty-leave/internal/config"
	"go-faculty-leave/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// BuildApp connects the stores, applies migrations and mounts every module
// on router. The returned func releases the connections.
func BuildApp(cfg config.Config, router *gin.Engine) (func(), error) {
	logger := zap.L()

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	gormDB, err := connection.ConnectGORMWithRetry(cfg.Database)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	logger.Info("database connection established")

	if err := connection.RunMigrations(sqlDB, cfg.MigrationsPath, cfg.Database.Name); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = connection.ConnectRedisWithRetry(cfg.RedisAddr, cfg.Database.MaxRetries)
		if err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		logger.Info("redis connection established")
	} else {
		logger.Warn("REDIS_ADDR not set, caching and idempotency disabled")
	}

	closeAll := func() {
		if rdb != nil {
			_ = rdb.Close()
		}
		_ = sqlDB.Close()
	}

	if err := registerModules(router, cfg, sqlDB, gormDB, rdb, logger); err != nil {
		closeAll()
		return nil, err
	}

	return closeAll, nil
}
