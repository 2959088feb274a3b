package dialoguestore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/formaplus/elearning-backend/internal/platform/ctxutil"
	"github.com/formaplus/elearning-backend/internal/platform/envutil"
	"github.com/formaplus/elearning-backend/internal/platform/logger"
)

type redisStore struct {
	log *logger.Logger
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore connects to the redis instance named by REDIS_ADDR and
// verifies the connection with a ping.
func NewRedisStore(log *logger.Logger, ttl time.Duration) (Store, error) {
	addr := envutil.GetEnv("REDIS_ADDR", "", log)
	if addr == "" {
		return nil, fmt.Errorf("env var REDIS_ADDR is empty")
	}
	password := envutil.GetEnv("REDIS_PASSWORD", "", log)
	dbIndex := envutil.GetEnvAsInt("REDIS_DB", 0, log)

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       dbIndex,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &redisStore{
		log: log.With("store", "DialogueRedisStore"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func key(sessionID string) string {
	return "dialogue:" + sessionID
}

func (r *redisStore) Get(ctx context.Context, sessionID string) (Session, bool, error) {
	ctx = ctxutil.Default(ctx)
	fields, err := r.rdb.HGetAll(ctx, key(sessionID)).Result()
	if err != nil {
		return Session{}, false, fmt.Errorf("redis hgetall: %w", err)
	}
	if len(fields) == 0 {
		return Session{}, false, nil
	}
	return Session{State: fields["state"], Theme: fields["theme"]}, true, nil
}

func (r *redisStore) Put(ctx context.Context, sessionID string, s Session) error {
	ctx = ctxutil.Default(ctx)
	k := key(sessionID)
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, k, "state", s.State, "theme", s.Theme)
	pipe.Expire(ctx, k, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}

func (r *redisStore) Delete(ctx context.Context, sessionID string) error {
	ctx = ctxutil.Default(ctx)
	if err := r.rdb.Del(ctx, key(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
