package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Interface is the contract both cache variants expose to callers. The
// persistent Store and the in-process Memory cache are interchangeable
// behind it.
type Interface interface {
	Get(key string) (json.RawMessage, bool)
	Set(key string, data json.RawMessage, ttl time.Duration)
	Delete(key string)
	DeletePattern(prefix string)
	Clear()
	GetOrFetch(ctx context.Context, key string, fetch FetchFunc, ttl time.Duration) (json.RawMessage, error)
	Stats() Stats
}

var (
	_ Interface = (*Store)(nil)
	_ Interface = (*Memory)(nil)
)

// Get retrieves and decodes a typed value. Any decode failure is treated as
// a miss: a value the caller cannot use is as good as absent.
func Get[T any](c Interface, key string) (T, bool) {
	var v T
	data, ok := c.Get(key)
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		var zero T
		return zero, false
	}
	return v, true
}

// Set encodes and stores a typed value. An unencodable value is silently
// skipped; caching is best effort.
func Set[T any](c Interface, key string, value T, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.Set(key, data, ttl)
}

// GetOrFetch is the typed form of Interface.GetOrFetch.
func GetOrFetch[T any](
	ctx context.Context,
	c Interface,
	key string,
	fetch func(context.Context) (T, error),
	ttl time.Duration,
) (T, error) {
	var zero T
	data, err := c.GetOrFetch(ctx, key, func(ctx context.Context) (json.RawMessage, error) {
		v, fetchErr := fetch(ctx)
		if fetchErr != nil {
			return nil, fetchErr
		}
		return json.Marshal(v)
	}, ttl)
	if err != nil {
		return zero, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return zero, fmt.Errorf("decode cached value for %q: %w", key, err)
	}
	return v, nil
}
