package scoring

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/lumenlearn/mastery-engine/internal/domain"
	"github.com/lumenlearn/mastery-engine/internal/platform/logger"
)

const cacheTTL = 10 * time.Minute

// Cache memoizes scored candidate lists per user in Redis. Entries are
// dropped whenever the user's mastery state or profile changes, so a stale
// read can only serve results computed from the previous consistent state.
// A nil Cache (no Redis configured) disables memoization entirely.
type Cache struct {
	rdb *goredis.Client
	log *logger.Logger
}

func NewCache(rdb *goredis.Client, baseLog *logger.Logger) *Cache {
	if rdb == nil {
		return nil
	}
	return &Cache{rdb: rdb, log: baseLog.With("service", "ScoreCache")}
}

// cacheKey hashes the full candidate payloads so that any field that feeds
// scoring (tags, difficulty, format, duration) produces a distinct entry.
func cacheKey(userID uuid.UUID, candidates []domain.ContentCandidate) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for i := range candidates {
		_ = enc.Encode(&candidates[i])
	}
	return fmt.Sprintf("score:%s:%s", userID.String(), hex.EncodeToString(h.Sum(nil))[:16])
}

func (c *Cache) Get(ctx context.Context, userID uuid.UUID, candidates []domain.ContentCandidate) ([]domain.ScoredCandidate, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, cacheKey(userID, candidates)).Bytes()
	if err != nil {
		return nil, false
	}
	var out []domain.ScoredCandidate
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false
	}
	return out, true
}

func (c *Cache) Set(ctx context.Context, userID uuid.UUID, candidates []domain.ContentCandidate, scored []domain.ScoredCandidate) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(scored)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheKey(userID, candidates), raw, cacheTTL).Err(); err != nil {
		c.log.Warn("score cache write failed", "user_id", userID.String(), "error", err)
	}
}

// InvalidateUser drops every cached candidate set for the user. Satisfies
// mastery.CacheInvalidator so evidence commits and profile rebuilds can
// call it without importing this package's internals.
func (c *Cache) InvalidateUser(ctx context.Context, userID uuid.UUID) error {
	if c == nil {
		return nil
	}
	pattern := fmt.Sprintf("score:%s:*", userID.String())
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}
