package redisdb

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/lumenlearn/mastery-engine/internal/platform/envutil"
	"github.com/lumenlearn/mastery-engine/internal/platform/logger"
)

// NewFromEnv connects to Redis using REDIS_ADDR / REDIS_PASSWORD / REDIS_DB.
// Returns (nil, nil) when REDIS_ADDR is unset; the score cache is optional
// and callers fall back to computing scores on every request.
func NewFromEnv(log *logger.Logger) (*goredis.Client, error) {
	if log == nil {
		return nil, fmt.Errorf("redisdb: logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, nil
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    os.Getenv("REDIS_PASSWORD"),
		DB:          envutil.Int("REDIS_DB", 0),
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redisdb: ping: %w", err)
	}

	log.Info("redis connected", "addr", addr)
	return rdb, nil
}
