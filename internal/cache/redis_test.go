package cache

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haider-deku/3d-marketplace/internal/domain"
)

func TestProductKey(t *testing.T) {
	assert.Equal(t, "product:1234567890123", productKey(1234567890123))
}

func TestNewRedisProductCacheDefaultTTL(t *testing.T) {
	c := NewRedisProductCache(nil, 0)
	assert.Equal(t, time.Minute, c.ttl)
}

func TestProductRoundTripEncoding(t *testing.T) {
	p := &domain.Product{
		ID:          42,
		ProductName: "Vase",
		CategName:   "Home",
		Pricing:     []domain.ProductPricing{{Size: "small", Price: 4.5}},
		Images:      domain.StringList{"a.png"},
	}
	data, err := json.Marshal(p)
	require.NoError(t, err)

	var got domain.Product
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.Pricing[0].Size, got.Pricing[0].Size)
	assert.Equal(t, p.Pricing[0].Price, got.Pricing[0].Price)
	assert.Equal(t, p.Images, got.Images)
}

func TestUnreachableServerIsAnError(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond, MaxRetries: -1})
	defer client.Close()
	c := NewRedisProductCache(client, time.Second)

	_, hit, err := c.Get(context.Background(), 1)
	assert.Error(t, err)
	assert.False(t, hit)
	assert.NoError(t, c.Invalidate(context.Background()))
}
