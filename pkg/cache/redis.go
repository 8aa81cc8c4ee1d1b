package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/evelooter/looter/pkg/esi"
)

// Redis key prefixes for the two stores.
const (
	redisKeyDetail = "looter:detail:%d"
	redisKeyName   = "looter:name:%d"
)

// RedisStore keeps the response cache in Redis so multiple instances can
// share hydration work. Write-once semantics are enforced with SETNX; a
// backend error degrades to a cache miss rather than failing the pipeline.
type RedisStore struct {
	redis  *redis.Client
	logger zerolog.Logger
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(redisClient *redis.Client) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{
		redis:  redisClient,
		logger: log.With().Str("component", "redis-cache").Logger(),
	}
}

// GetDetail returns the cached detail record for a killmail ID.
func (s *RedisStore) GetDetail(ctx context.Context, id int64) (esi.Killmail, bool) {
	data, err := s.redis.Get(ctx, fmt.Sprintf(redisKeyDetail, id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			CacheErrors.WithLabelValues("get").Inc()
			s.logger.Warn().Err(err).Int64("killmail_id", id).Msg("Redis get failed")
		}
		CacheMisses.WithLabelValues(storeDetail).Inc()
		return esi.Killmail{}, false
	}

	var km esi.Killmail
	if err := json.Unmarshal(data, &km); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		s.logger.Warn().Err(err).Int64("killmail_id", id).Msg("Corrupt cache entry")
		CacheMisses.WithLabelValues(storeDetail).Inc()
		return esi.Killmail{}, false
	}

	CacheHits.WithLabelValues(storeDetail).Inc()
	return km, true
}

// PutDetail stores a detail record. SETNX keeps the first write.
func (s *RedisStore) PutDetail(ctx context.Context, id int64, km esi.Killmail) {
	data, err := json.Marshal(km)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		s.logger.Warn().Err(err).Int64("killmail_id", id).Msg("Marshal cache entry failed")
		return
	}

	if err := s.redis.SetNX(ctx, fmt.Sprintf(redisKeyDetail, id), data, 0).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		s.logger.Warn().Err(err).Int64("killmail_id", id).Msg("Redis set failed")
	}
}

// ContainsDetail reports whether a detail record is cached.
func (s *RedisStore) ContainsDetail(ctx context.Context, id int64) bool {
	n, err := s.redis.Exists(ctx, fmt.Sprintf(redisKeyDetail, id)).Result()
	if err != nil {
		CacheErrors.WithLabelValues("exists").Inc()
		return false
	}
	return n > 0
}

// GetName returns the cached display name for an entity ID.
func (s *RedisStore) GetName(ctx context.Context, id int64) (string, bool) {
	name, err := s.redis.Get(ctx, fmt.Sprintf(redisKeyName, id)).Result()
	if err != nil {
		if err != redis.Nil {
			CacheErrors.WithLabelValues("get").Inc()
			s.logger.Warn().Err(err).Int64("entity_id", id).Msg("Redis get failed")
		}
		CacheMisses.WithLabelValues(storeName).Inc()
		return "", false
	}

	CacheHits.WithLabelValues(storeName).Inc()
	return name, true
}

// PutName stores a resolved name. SETNX keeps the first write.
func (s *RedisStore) PutName(ctx context.Context, id int64, name string) {
	if err := s.redis.SetNX(ctx, fmt.Sprintf(redisKeyName, id), name, 0).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		s.logger.Warn().Err(err).Int64("entity_id", id).Msg("Redis set failed")
	}
}

// ContainsName reports whether a name is cached.
func (s *RedisStore) ContainsName(ctx context.Context, id int64) bool {
	n, err := s.redis.Exists(ctx, fmt.Sprintf(redisKeyName, id)).Result()
	if err != nil {
		CacheErrors.WithLabelValues("exists").Inc()
		return false
	}
	return n > 0
}
