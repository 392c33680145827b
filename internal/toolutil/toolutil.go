// Package toolutil provides shared helper functions for go_profile MCP tools.
package toolutil

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/anatolykoptev/go_profile/internal/engine"
)

// CacheLoadJSON tries to load a cached value of type T from the engine cache.
// Returns the decoded value and true on hit; zero value and false on miss or decode error.
func CacheLoadJSON[T any](ctx context.Context, key string) (T, bool) {
	var zero T
	data, ok := engine.CacheGet(ctx, key)
	if !ok {
		return zero, false
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return zero, false
	}
	return out, true
}

// CacheStoreJSON marshals v and stores it in the engine cache.
func CacheStoreJSON[T any](ctx context.Context, key string, v T) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	engine.CacheSet(ctx, key, data)
}

// DocumentsKey builds a cache key over scope parts, a main document and its
// detail documents, independent of map iteration order.
func DocumentsKey(main string, details map[string]string, scope ...string) string {
	parts := append(slices.Clone(scope), main)
	for _, name := range slices.Sorted(maps.Keys(details)) {
		parts = append(parts, name, details[name])
	}
	return engine.CacheKey(parts...)
}

// NormDetails normalises detail document names. Two names that normalise to
// the same section are rejected.
func NormDetails(details map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(details))
	for name, doc := range details {
		section := engine.NormSection(name)
		if _, dup := out[section]; dup {
			return nil, fmt.Errorf("detail document %q duplicates section %q", name, section)
		}
		out[section] = doc
	}
	return out, nil
}
