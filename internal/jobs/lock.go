package jobs

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Locker keeps two scheduler replicas from running the same job at once.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

type RedisLocker struct {
	client *redis.Client
	prefix string
}

func NewRedisLocker(client *redis.Client, prefix string) *RedisLocker {
	return &RedisLocker{client: client, prefix: prefix}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, l.prefix+key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
}

func (l *RedisLocker) Release(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.prefix+key).Err()
}

// RunLocked runs fn only if the lock for name can be taken. If the lock
// store itself fails, fn still runs.
func RunLocked(ctx context.Context, locker Locker, name string, ttl time.Duration, log logrus.FieldLogger, fn func(ctx context.Context) error) error {
	if locker != nil {
		ok, err := locker.Acquire(ctx, name, ttl)
		switch {
		case err != nil:
			log.WithError(err).WithField("job", name).Warn("job lock unavailable; running unlocked")
		case !ok:
			log.WithField("job", name).Info("job already running elsewhere; skipping")
			return nil
		default:
			defer func() {
				if err := locker.Release(context.Background(), name); err != nil {
					log.WithError(err).WithField("job", name).Warn("failed to release job lock")
				}
			}()
		}
	}

	return fn(ctx)
}
