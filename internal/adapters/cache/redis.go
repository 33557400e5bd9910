package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/harborlabs/contact-directory/internal/ports"
)

func Connect(_ context.Context, redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") {
		opt, parseErr := redis.ParseURL(redisURL)
		if parseErr != nil {
			return nil, fmt.Errorf("parse redis url: %w", parseErr)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

// RedisRateLimitStore tracks per-key request counters in Redis hashes. Keys
// expire with the window so abandoned counters clean themselves up.
type RedisRateLimitStore struct {
	client *redis.Client
}

func NewRedisRateLimitStore(client *redis.Client) *RedisRateLimitStore {
	return &RedisRateLimitStore{client: client}
}

func (s *RedisRateLimitStore) Get(ctx context.Context, key string) (ports.RateLimitState, error) {
	data, err := s.client.HGetAll(ctx, "directory:ratelimit:"+key).Result()
	if err != nil {
		return ports.RateLimitState{}, err
	}
	if len(data) == 0 {
		return ports.RateLimitState{}, nil
	}

	state := ports.RateLimitState{}
	if raw, ok := data["count"]; ok {
		if n, convErr := strconv.Atoi(raw); convErr == nil {
			state.Count = n
		}
	}
	if raw, ok := data["blocked_until"]; ok && raw != "" {
		if unix, convErr := strconv.ParseInt(raw, 10, 64); convErr == nil && unix > 0 {
			t := time.Unix(unix, 0).UTC()
			state.BlockedUntil = &t
		}
	}
	return state, nil
}

func (s *RedisRateLimitStore) Increment(ctx context.Context, key string, now time.Time, threshold int, window time.Duration) (ports.RateLimitState, error) {
	redisKey := "directory:ratelimit:" + key

	count, err := s.client.HIncrBy(ctx, redisKey, "count", 1).Result()
	if err != nil {
		return ports.RateLimitState{}, err
	}

	state := ports.RateLimitState{Count: int(count)}
	if int(count) >= threshold {
		blockedUntil := now.Add(window).UTC()
		_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, redisKey, "blocked_until", blockedUntil.Unix())
			p.Expire(ctx, redisKey, window)
			return nil
		})
		if err != nil {
			return ports.RateLimitState{}, err
		}
		state.BlockedUntil = &blockedUntil
		return state, nil
	}

	_ = s.client.Expire(ctx, redisKey, window).Err()
	return state, nil
}

func (s *RedisRateLimitStore) Clear(ctx context.Context, key string) error {
	return s.client.Del(ctx, "directory:ratelimit:"+key).Err()
}
