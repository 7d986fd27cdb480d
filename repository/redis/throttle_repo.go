package redis

import (
	"context"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/tasklight/backend/repository"
)

type loginThrottle struct {
	client *redislib.Client
	prefix string
}

// NewLoginThrottle creates a Redis-backed fixed-window failure counter.
func NewLoginThrottle(client *redislib.Client) repository.LoginThrottle {
	return &loginThrottle{
		client: client,
		prefix: "login_failures:",
	}
}

func (t *loginThrottle) Failures(ctx context.Context, key string) (int64, error) {
	count, err := t.client.Get(ctx, t.key(key)).Int64()
	if err != nil {
		if err == redislib.Nil {
			return 0, nil
		}
		return 0, err
	}
	return count, nil
}

func (t *loginThrottle) RecordFailure(ctx context.Context, key string, window time.Duration) error {
	k := t.key(key)
	count, err := t.client.Incr(ctx, k).Result()
	if err != nil {
		return err
	}
	if count == 1 {
		// First failure opens the window; later failures ride it out.
		return t.client.Expire(ctx, k, window).Err()
	}
	return nil
}

func (t *loginThrottle) Reset(ctx context.Context, key string) error {
	return t.client.Del(ctx, t.key(key)).Err()
}

func (t *loginThrottle) key(id string) string {
	return fmt.Sprintf("%s%s", t.prefix, id)
}
