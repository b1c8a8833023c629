package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"email-catalog-go/internal/service"
)

func setupCache(t *testing.T) (*SearchCache, *miniredis.Miniredis) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client, time.Minute, nil), srv
}

func sampleResult(total int64) *service.SearchResult {
	return &service.SearchResult{
		Total:      total,
		Page:       1,
		PageSize:   10,
		TotalPages: 1,
		Emails: []service.EmailResult{
			{ID: 1, Recipient: "a@x.com", Sender: "b@acme.com", CompanyName: "Acme", SMTPCode: "S1", Content: "hello"},
		},
	}
}

func TestCacheSetAndGet(t *testing.T) {
	cache, _ := setupCache(t)
	ctx := context.Background()

	_, ok := cache.Get(ctx, "query-a")
	assert.False(t, ok)

	cache.Set(ctx, "query-a", sampleResult(1))

	cached, ok := cache.Get(ctx, "query-a")
	require.True(t, ok)
	assert.EqualValues(t, 1, cached.Total)
	require.Len(t, cached.Emails, 1)
	assert.Equal(t, "Acme", cached.Emails[0].CompanyName)
}

func TestCacheGetOrCompute(t *testing.T) {
	cache, _ := setupCache(t)
	ctx := context.Background()
	computes := 0

	compute := func() (*service.SearchResult, error) {
		computes++
		return sampleResult(2), nil
	}

	result, hit, err := cache.GetOrCompute(ctx, "query-b", compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.EqualValues(t, 2, result.Total)
	assert.Equal(t, 1, computes)

	result, hit, err = cache.GetOrCompute(ctx, "query-b", compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.EqualValues(t, 2, result.Total)
	assert.Equal(t, 1, computes)
}

func TestCacheGetOrComputeError(t *testing.T) {
	cache, _ := setupCache(t)

	_, _, err := cache.GetOrCompute(context.Background(), "query-c", func() (*service.SearchResult, error) {
		return nil, fmt.Errorf("storage down")
	})
	assert.Error(t, err)

	// Errors are not cached.
	_, ok := cache.Get(context.Background(), "query-c")
	assert.False(t, ok)
}

func TestCacheInvalidate(t *testing.T) {
	cache, srv := setupCache(t)
	ctx := context.Background()

	cache.Set(ctx, "query-a", sampleResult(1))
	cache.Set(ctx, "query-b", sampleResult(2))
	srv.Set("unrelated", "keep-me")

	require.NoError(t, cache.Invalidate(ctx))

	_, ok := cache.Get(ctx, "query-a")
	assert.False(t, ok)
	_, ok = cache.Get(ctx, "query-b")
	assert.False(t, ok)

	// Keys outside the search prefix survive.
	assert.True(t, srv.Exists("unrelated"))
}

func TestCacheTTL(t *testing.T) {
	cache, srv := setupCache(t)
	ctx := context.Background()

	cache.Set(ctx, "query-a", sampleResult(1))
	srv.FastForward(2 * time.Minute)

	_, ok := cache.Get(ctx, "query-a")
	assert.False(t, ok)
}
