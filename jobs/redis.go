package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"adforge/types"
)

const (
	redisKeyPrefix = "adforge:job:"
	redisJobTTL    = 24 * time.Hour
	redisTimeout   = 5 * time.Second
)

// RedisStore persists jobs in Redis so status survives restarts and can
// be polled from other processes. Values are JSON with a 24h TTL.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis at addr and verifies the connection.
func NewRedisStore(addr, password string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Create(job types.RenderJob) error {
	return s.set(job)
}

func (s *RedisStore) Get(id string) (types.RenderJob, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	data, err := s.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return types.RenderJob{}, ErrNotFound
	}
	if err != nil {
		return types.RenderJob{}, fmt.Errorf("redis get: %w", err)
	}

	var job types.RenderJob
	if err := json.Unmarshal(data, &job); err != nil {
		return types.RenderJob{}, fmt.Errorf("decode job %s: %w", id, err)
	}
	return job, nil
}

// Update reads, applies fn, and writes back. Jobs have a single writer,
// so the read-modify-write does not need a transaction.
func (s *RedisStore) Update(id string, fn func(*types.RenderJob)) error {
	job, err := s.Get(id)
	if err != nil {
		return err
	}
	fn(&job)
	return s.set(job)
}

func (s *RedisStore) set(job types.RenderJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job %s: %w", job.JobID, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if err := s.client.Set(ctx, redisKeyPrefix+job.JobID, data, redisJobTTL).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
