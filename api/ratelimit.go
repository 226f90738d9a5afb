package api

import (
	"context"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/linesmerrill/police-case-api/config"
)

// NewRedisClient connects to url. An empty url means redis is not configured
// and returns a nil client.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// RateLimiter is a fixed window counter per caller kept in redis, so every
// instance of the service shares the same budget
type RateLimiter struct {
	client *redis.Client
	name   string
	limit  int64
	window time.Duration
}

// NewRateLimiter allows limit requests per window for each caller. A nil
// client or a non positive limit disables limiting.
func NewRateLimiter(client *redis.Client, name string, limit int, window time.Duration) *RateLimiter {
	if client == nil || limit <= 0 {
		return nil
	}
	return &RateLimiter{client: client, name: name, limit: int64(limit), window: window}
}

// Allow counts one request for key. When the budget is spent it also returns
// how long until the window resets.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	k := "ratelimit:" + l.name + ":" + key
	n, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return false, 0, err
	}
	if n == 1 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return false, 0, err
		}
	}
	if n <= l.limit {
		return true, 0, nil
	}
	ttl, err := l.client.TTL(ctx, k).Result()
	if err != nil || ttl < 0 {
		ttl = l.window
	}
	return false, ttl, nil
}

// Middleware answers 429 once the caller spent its budget. Callers are keyed
// by actor id, or by client address before authentication. If redis is down
// requests are let through.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	if l == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, retry, err := l.Allow(r.Context(), callerKey(r))
		if err != nil {
			zap.S().Warnw("rate limiter unavailable", "limiter", l.name, "error", err)
			next.ServeHTTP(w, r)
			return
		}
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
			config.WriteError(w, http.StatusTooManyRequests, config.CodeRateLimited, "Too many requests, slow down.", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func callerKey(r *http.Request) string {
	if actor, ok := ActorFrom(r.Context()); ok {
		return "actor:" + actor.ID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
