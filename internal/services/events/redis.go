package events

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Connect opens a Redis client for the event feed and pings it. The URL
// may be a redis:// URL or a bare host:port.
func Connect(ctx context.Context, redisURL string, logger *slog.Logger) (*redis.Client, error) {
	opts, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	cmd := client.Ping(ctx)
	if err := cmd.Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	logger.Debug("Redis ping successful", "result", cmd.Val(), "addr", opts.Addr)
	return client, nil
}

func parseRedisURL(redisURL string) (*redis.Options, error) {
	redisURL = strings.TrimSpace(redisURL)
	if redisURL == "" {
		return nil, fmt.Errorf("redis url is empty")
	}
	if !strings.Contains(redisURL, "://") {
		return &redis.Options{Addr: redisURL}, nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return opts, nil
}
