package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned for unknown or expired session tokens.
var ErrSessionNotFound = errors.New("session not found")

type SessionStore interface {
	Create(ctx context.Context, userID uint) (string, error)
	Lookup(ctx context.Context, token string) (uint, error)
	Delete(ctx context.Context, token string) error
}

const sessionKeyPrefix = "session:"

// RedisSessionStore keeps session tokens in Redis with a fixed lifetime.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(redisURL string, ttl time.Duration) (*RedisSessionStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisSessionStore{client: client, ttl: ttl}, nil
}

func (s *RedisSessionStore) Close() error {
	return s.client.Close()
}

func (s *RedisSessionStore) Create(ctx context.Context, userID uint) (string, error) {
	token := uuid.NewString()
	if err := s.client.Set(ctx, sessionKeyPrefix+token, userID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return token, nil
}

func (s *RedisSessionStore) Lookup(ctx context.Context, token string) (uint, error) {
	if _, err := uuid.Parse(token); err != nil {
		return 0, ErrSessionNotFound
	}

	val, err := s.client.Get(ctx, sessionKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrSessionNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read session: %w", err)
	}

	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt session %s: %w", token, err)
	}
	return uint(id), nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKeyPrefix+token).Err()
}
