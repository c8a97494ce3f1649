// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package ratelimit throttles sign-in attempts with fixed-window counters in Redis.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "rl:signin:"

// NewClient connects to Redis and verifies connectivity.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, fmt.Errorf("redis url is required")
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

// Limiter allows a fixed number of attempts per key and window. A nil
// client disables limiting.
type Limiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewLimiter(client *redis.Client, limit int, window time.Duration) *Limiter {
	if limit <= 0 {
		limit = 5
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{client: client, limit: limit, window: window}
}

// Allow counts an attempt for key and reports whether it is within the
// limit. Redis errors fail open.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	if l == nil || l.client == nil {
		return true
	}
	k := keyPrefix + strings.ToLower(strings.TrimSpace(key))

	cnt, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		slog.Warn("rate_limit_unavailable", "error", err)
		return true
	}
	if cnt == 1 {
		l.client.Expire(ctx, k, l.window)
	}
	return cnt <= int64(l.limit)
}

// Reset forgets the attempts recorded for key.
func (l *Limiter) Reset(ctx context.Context, key string) {
	if l == nil || l.client == nil {
		return
	}
	if err := l.client.Del(ctx, keyPrefix+strings.ToLower(strings.TrimSpace(key))).Err(); err != nil {
		slog.Warn("rate_limit_reset_failed", "error", err)
	}
}
