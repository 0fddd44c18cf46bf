// FilePath: internal/repository/redis/redis.counters.go
package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/itsatony/roomwatch/internal/config"
	"github.com/itsatony/roomwatch/internal/errors"
	"github.com/itsatony/roomwatch/internal/repository"
	goredis "github.com/redis/go-redis/v9"
)

// CounterRepo keeps event counters in a single Redis hash
type CounterRepo struct {
	client *goredis.Client
	key    string
}

var _ repository.EventCounter = (*CounterRepo)(nil)

// NewClient builds a go-redis client from configuration
func NewClient(cfg config.RedisConfig) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Ping checks the connection
func Ping(ctx context.Context, client *goredis.Client) error {
	return client.Ping(ctx).Err()
}

// NewCounterRepository stores counters under {prefix}:events
func NewCounterRepository(client *goredis.Client, prefix string) *CounterRepo {
	key := "events"
	if prefix != "" {
		key = prefix + ":events"
	}
	return &CounterRepo{client: client, key: key}
}

func (r *CounterRepo) Key() string {
	return r.key
}

func (r *CounterRepo) Increment(ctx context.Context, name string) error {
	if err := r.client.HIncrBy(ctx, r.key, name, 1).Err(); err != nil {
		return errors.NewDatabaseError("failed to increment event counter", err)
	}
	return nil
}

func (r *CounterRepo) Counts(ctx context.Context) (map[string]int64, error) {
	raw, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, errors.NewDatabaseError("failed to read event counters", err)
	}
	counts := make(map[string]int64, len(raw))
	for name, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		counts[name] = n
	}
	return counts, nil
}
