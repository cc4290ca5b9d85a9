package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/haider-deku/3d-marketplace/config"
	"github.com/haider-deku/3d-marketplace/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// NewRedisClient connects and pings the configured server.
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "connect redis %s", cfg.Addr)
	}
	zap.L().Info("redis connected", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	return client, nil
}

// RedisProductCache stores products with their pricing as JSON under product:<id>.
type RedisProductCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisProductCache(client *redis.Client, ttl time.Duration) *RedisProductCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RedisProductCache{client: client, ttl: ttl}
}

func productKey(id int64) string {
	return "product:" + strconv.FormatInt(id, 10)
}

// Get returns ok=false on a miss.
func (c *RedisProductCache) Get(ctx context.Context, id int64) (*domain.Product, bool, error) {
	data, err := c.client.Get(ctx, productKey(id)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "redis get product")
	}
	var p domain.Product
	if err := json.Unmarshal(data, &p); err != nil {
		// stale or foreign entry, treat as a miss
		_ = c.client.Del(ctx, productKey(id)).Err()
		return nil, false, nil
	}
	return &p, true, nil
}

func (c *RedisProductCache) Set(ctx context.Context, p *domain.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return errors.Wrap(err, "encode product")
	}
	return errors.Wrap(c.client.Set(ctx, productKey(p.ID), data, c.ttl).Err(), "redis set product")
}

func (c *RedisProductCache) Invalidate(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = productKey(id)
	}
	return errors.Wrap(c.client.Del(ctx, keys...).Err(), "redis delete products")
}
