package engine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKey(t *testing.T) {
	k := CacheKey("profile_extract", "<html>jane</html>")
	assert.Equal(t, k, CacheKey("profile_extract", "<html>jane</html>"))
	assert.NotEqual(t, k, CacheKey("profile_extract", "<html>john</html>"))
	assert.Regexp(t, `^gp:[0-9a-f]{24}$`, k)
}

func TestCacheKeyPartBoundaries(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
	}{
		{"separator inside a part", []string{"a|b"}, []string{"a", "b"}},
		{"shifted boundary", []string{"ab", "c"}, []string{"a", "bc"}},
		{"empty part", []string{"a", ""}, []string{"a"}},
		{"html with pipes", []string{"<p>M</p>|experience|<li>X</li>"}, []string{"<p>M</p>", "experience", "<li>X</li>"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, CacheKey(tt.a...), CacheKey(tt.b...))
		})
	}
}

func TestCacheGetSet(t *testing.T) {
	InitCache("", time.Minute, 100)
	ctx := context.Background()
	key := CacheKey("test", "round-trip")

	_, ok := CacheGet(ctx, key)
	assert.False(t, ok, "empty cache")

	CacheSet(ctx, key, []byte(`{"username":"jane"}`))
	got, ok := CacheGet(ctx, key)
	require.True(t, ok)
	assert.Equal(t, `{"username":"jane"}`, string(got))

	CacheSet(ctx, key, []byte(`{"username":"john"}`))
	got, _ = CacheGet(ctx, key)
	assert.Equal(t, `{"username":"john"}`, string(got), "set replaces")
	assert.Equal(t, 1, resultCache.l1.Len())
}

func TestCacheExpiration(t *testing.T) {
	InitCache("", 20*time.Millisecond, 10)
	ctx := context.Background()
	CacheSet(ctx, "k", []byte("v"))

	_, ok := CacheGet(ctx, "k")
	require.True(t, ok)
	time.Sleep(50 * time.Millisecond)
	_, ok = CacheGet(ctx, "k")
	assert.False(t, ok, "expired entry")
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	InitCache("", time.Minute, 3)
	ctx := context.Background()
	for i := range 3 {
		CacheSet(ctx, fmt.Sprintf("k%d", i), []byte("v"))
	}
	_, ok := CacheGet(ctx, "k0")
	require.True(t, ok)

	CacheSet(ctx, "k3", []byte("v"))
	assert.Equal(t, 3, resultCache.l1.Len())
	_, ok = CacheGet(ctx, "k1")
	assert.False(t, ok, "least recently used entry evicted")
	_, ok = CacheGet(ctx, "k0")
	assert.True(t, ok, "recently read entry kept")
}

func TestCacheStats(t *testing.T) {
	InitCache("", time.Minute, 100)
	cacheHits.Store(0)
	cacheMisses.Store(0)
	ctx := context.Background()
	key := CacheKey("stats", "test")

	CacheGet(ctx, key)
	CacheSet(ctx, key, []byte("x"))
	CacheGet(ctx, key)

	hits, misses := CacheStats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}
