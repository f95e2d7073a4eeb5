package authstate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentiment-scoop/internal/extension/page"
)

func TestRefreshMirrorsDurableStore(t *testing.T) {
	ctx := context.Background()
	kv := page.NewMemoryKV()
	cache := New(kv)

	assert.Empty(t, cache.Get())

	require.NoError(t, kv.Set(ctx, StorageKey, "tok-1"))
	assert.Empty(t, cache.Get(), "cache is stale until refreshed")

	require.NoError(t, cache.Refresh(ctx))
	assert.Equal(t, "tok-1", cache.Get())

	require.NoError(t, kv.Delete(ctx, StorageKey))
	require.NoError(t, cache.Refresh(ctx))
	assert.Empty(t, cache.Get())
}

func TestOnChangeUpdatesCacheBeforeHandler(t *testing.T) {
	ctx := context.Background()
	kv := page.NewMemoryKV()
	cache := New(kv)

	var seenByHandler, cachedAtHandler string
	cancel := cache.OnChange(func(token string) {
		seenByHandler = token
		cachedAtHandler = cache.Get()
	})
	defer cancel()

	require.NoError(t, kv.Set(ctx, StorageKey, "tok-2"))
	assert.Equal(t, "tok-2", seenByHandler)
	assert.Equal(t, "tok-2", cachedAtHandler, "handler must observe the updated cache")
}

func TestOnChangeIgnoresOtherKeys(t *testing.T) {
	ctx := context.Background()
	kv := page.NewMemoryKV()
	cache := New(kv)

	fired := false
	cancel := cache.OnChange(func(string) { fired = true })
	defer cancel()

	require.NoError(t, kv.Set(ctx, "unrelated", "x"))
	assert.False(t, fired)
}

func TestOnChangeCancelStopsNotifications(t *testing.T) {
	ctx := context.Background()
	kv := page.NewMemoryKV()
	cache := New(kv)

	count := 0
	cancel := cache.OnChange(func(string) { count++ })
	require.NoError(t, kv.Set(ctx, StorageKey, "a"))
	cancel()
	require.NoError(t, kv.Set(ctx, StorageKey, "b"))
	assert.Equal(t, 1, count)
}
