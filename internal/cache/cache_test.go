package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/schemeqa/internal/model"
)

func TestCacheKey(t *testing.T) {
	a := CacheKey("https://example.com/aid")
	b := CacheKey("https://example.com/aid")
	c := CacheKey("https://example.com/other")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, "schemeqa:v1:"))
	assert.Len(t, a, len("schemeqa:v1:")+64)
}

// exerciseCache runs the shared contract every backend must satisfy
func exerciseCache(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	_, found := c.Get(ctx, "missing")
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "k1", []byte("page one"), time.Minute))
	got, found := c.Get(ctx, "k1")
	require.True(t, found)
	assert.Equal(t, []byte("page one"), got)

	require.NoError(t, c.Set(ctx, "k1", []byte("page one v2"), 0))
	got, _ = c.Get(ctx, "k1")
	assert.Equal(t, []byte("page one v2"), got)

	require.NoError(t, c.Delete(ctx, "k1"))
	_, found = c.Get(ctx, "k1")
	assert.False(t, found)
	assert.NoError(t, c.Delete(ctx, "k1"), "deleting a missing key is not an error")

	require.NoError(t, c.Set(ctx, "k2", []byte("x"), time.Minute))
	require.NoError(t, c.Set(ctx, "k3", []byte("y"), time.Minute))
	require.NoError(t, c.Clear(ctx))
	_, found = c.Get(ctx, "k2")
	assert.False(t, found)
	_, found = c.Get(ctx, "k3")
	assert.False(t, found)
}

func TestMemoryCache(t *testing.T) {
	exerciseCache(t, NewMemoryCache(time.Minute, time.Minute))
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", []byte("v"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)
	_, found := c.Get(ctx, "k")
	assert.False(t, found)
}

func TestDiskCache(t *testing.T) {
	exerciseCache(t, NewDiskCache(t.TempDir(), time.Minute))
}

func TestDiskCacheExpiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", []byte("v"), -time.Second))
	_, found := c.Get(ctx, "k")
	assert.False(t, found)
}

func TestDiskCacheSurvivesNewInstance(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	require.NoError(t, NewDiskCache(dir, time.Minute).Set(ctx, CacheKey("https://a"), []byte("v"), 0))

	got, found := NewDiskCache(dir, time.Minute).Get(ctx, CacheKey("https://a"))
	require.True(t, found)
	assert.Equal(t, []byte("v"), got)
}

func TestLayeredCache(t *testing.T) {
	exerciseCache(t, NewLayeredCache(time.Minute, t.TempDir(), time.Minute))
}

func TestLayeredCachePromotes(t *testing.T) {
	ctx := context.Background()
	front := NewMemoryCache(time.Minute, time.Minute)
	back := NewDiskCache(t.TempDir(), time.Minute)
	require.NoError(t, back.Set(ctx, "k", []byte("from disk"), 0))

	c := NewLayers(front, back)
	got, found := c.Get(ctx, "k")
	require.True(t, found)
	assert.Equal(t, []byte("from disk"), got)

	promoted, found := front.Get(ctx, "k")
	require.True(t, found)
	assert.Equal(t, []byte("from disk"), promoted)
}

func newTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return newRedisCache(client, RedisOptions{TTL: time.Minute}), mr
}

func TestRedisCache(t *testing.T) {
	c, _ := newTestRedis(t)
	require.NoError(t, c.Ping(context.Background()))
	exerciseCache(t, c)
}

func TestRedisCacheTTL(t *testing.T) {
	c, mr := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	assert.Equal(t, time.Minute, mr.TTL("pages:k"))

	mr.FastForward(2 * time.Minute)
	_, found := c.Get(ctx, "k")
	assert.False(t, found)
}

func TestRedisCacheClearKeepsForeignKeys(t *testing.T) {
	c, mr := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("other:key", "keep"))
	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, c.Clear(ctx))

	assert.True(t, mr.Exists("other:key"))
	assert.False(t, mr.Exists("pages:k"))
}

func TestRedisCacheDownIsMiss(t *testing.T) {
	c, mr := newTestRedis(t)
	mr.Close()

	_, found := c.Get(context.Background(), "k")
	assert.False(t, found)
	assert.Error(t, c.Set(context.Background(), "k", []byte("v"), 0))
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     model.CacheConfig
		want    any
		wantErr bool
	}{
		{name: "disabled", cfg: model.CacheConfig{Enabled: false, Backend: "memory"}, want: nil},
		{name: "memory", cfg: model.CacheConfig{Enabled: true, Backend: "memory"}, want: &MemoryCache{}},
		{name: "disk", cfg: model.CacheConfig{Enabled: true, Backend: "disk", Dir: t.TempDir()}, want: &DiskCache{}},
		{name: "layered", cfg: model.CacheConfig{Enabled: true, Backend: "layered", Dir: t.TempDir()}, want: &LayeredCache{}},
		{name: "redis", cfg: model.CacheConfig{Enabled: true, Backend: "redis", RedisAddr: "localhost:6379"}, want: &RedisCache{}},
		{name: "redis without addr", cfg: model.CacheConfig{Enabled: true, Backend: "redis"}, wantErr: true},
		{name: "unknown", cfg: model.CacheConfig{Enabled: true, Backend: "memcached"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.want == nil {
				assert.Nil(t, c)
				return
			}
			assert.IsType(t, tt.want, c)
		})
	}
}
