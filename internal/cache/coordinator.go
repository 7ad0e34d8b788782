package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// FetchFunc produces the value for a cache miss, typically by calling the
// remote API. Its error propagates verbatim to every waiting caller.
type FetchFunc func(ctx context.Context) (json.RawMessage, error)

// Stats is a point-in-time diagnostic snapshot of a cache.
type Stats struct {
	// CacheSize is the number of live (non-expired) entries.
	CacheSize int `json:"cache_size"`

	// PendingRequests is the number of keys with a fetch in flight.
	PendingRequests int `json:"pending_requests"`
}

// inflightSet tracks which keys currently have a fetch running, for Stats.
// The slot for a key is cleared unconditionally once its fetch settles.
type inflightSet struct {
	mu   sync.Mutex
	keys map[string]int
}

func (p *inflightSet) init() {
	p.keys = make(map[string]int)
}

func (p *inflightSet) add(key string) {
	p.mu.Lock()
	p.keys[key]++
	p.mu.Unlock()
}

func (p *inflightSet) remove(key string) {
	p.mu.Lock()
	if p.keys[key]--; p.keys[key] <= 0 {
		delete(p.keys, key)
	}
	p.mu.Unlock()
}

func (p *inflightSet) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.keys)
}

// GetOrFetch returns the cached value for key, or runs fetch to populate it.
// Concurrent calls for the same key within this process share a single fetch
// and observe the same result or the same error. A failed fetch caches
// nothing, so the key is immediately retryable.
//
// Deduplication is intra-process only: a fetch running in another process is
// invisible here, and the file lock linearizes the resulting writes anyway.
func (s *Store) GetOrFetch(ctx context.Context, key string, fetch FetchFunc, ttl time.Duration) (json.RawMessage, error) {
	if data, ok := s.Get(key); ok {
		return data, nil
	}

	s.inflight.add(key)
	defer s.inflight.remove(key)

	v, err, shared := s.flights.Do(key, func() (any, error) {
		data, fetchErr := fetch(ctx)
		if fetchErr != nil {
			return nil, fetchErr
		}
		s.Set(key, data, ttl)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.log.Debug().Str("key", key).Msg("joined in-flight fetch")
	}
	return v.(json.RawMessage), nil
}
