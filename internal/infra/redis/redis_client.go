package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ramadan-timetable-bot/internal/config"
	"ramadan-timetable-bot/internal/domain"

	"github.com/go-redis/redis/v8"
)

type RedisClient interface {
	Ping(ctx context.Context) error
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, expiration time.Duration) error
	HIncrByAll(ctx context.Context, key string, incs []HashIncr) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Close() error
}

// HashIncr is one HINCRBY of a batch.
type HashIncr struct {
	Field string
	N     int64
}

var _ RedisClient = (*redClient)(nil)

type redClient struct {
	cli *redis.Client
}

// NewClient accepts either host:port or a redis:// / rediss:// URL.
// An explicit password in cfg wins over the one in the URL.
func NewClient(ctx context.Context, cfg *config.RedisConfig) (*redClient, error) {
	opts, err := options(cfg)
	if err != nil {
		return nil, err
	}
	c := redis.NewClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return &redClient{cli: c}, nil
}

func options(cfg *config.RedisConfig) (*redis.Options, error) {
	if strings.HasPrefix(cfg.URL, "redis://") || strings.HasPrefix(cfg.URL, "rediss://") {
		opts, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("%w: redis url: %v", domain.ErrConfiguration, err)
		}
		if cfg.Password != "" {
			opts.Password = cfg.Password
		}
		if cfg.DB != 0 {
			opts.DB = cfg.DB
		}
		return opts, nil
	}
	return &redis.Options{
		Addr:     cfg.URL,
		Password: cfg.Password,
		DB:       cfg.DB,
	}, nil
}

func (c *redClient) Ping(ctx context.Context) error { return c.cli.Ping(ctx).Err() }

func (c *redClient) Incr(ctx context.Context, key string) (int64, error) {
	return c.cli.Incr(ctx, key).Result()
}

func (c *redClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return c.cli.Expire(ctx, key, expiration).Err()
}

// HIncrByAll applies every increment in one MULTI/EXEC so the fields never
// drift apart.
func (c *redClient) HIncrByAll(ctx context.Context, key string, incs []HashIncr) error {
	_, err := c.cli.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, inc := range incs {
			pipe.HIncrBy(ctx, key, inc.Field, inc.N)
		}
		return nil
	})
	return err
}

func (c *redClient) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return c.cli.HGetAll(ctx, key).Result()
}

func (c *redClient) Close() error { return c.cli.Close() }
