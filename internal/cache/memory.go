package cache

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Memory is the pure in-process variant of the cache. It offers the same
// contract as Store but holds entries in a map: no file, no cross-process
// lock, no persistence. Useful for values that should not outlive one
// invocation, and as a drop-in for tests.
type Memory struct {
	mu      sync.Mutex
	entries fileContents
	opts    options
	log     zerolog.Logger

	flights  singleflight.Group
	inflight inflightSet
}

// NewMemory creates an in-process cache. Only MaxEntries, DefaultTTL, logger
// and clock options apply; file and lock options are ignored.
func NewMemory(opts ...Option) *Memory {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	m := &Memory{
		entries: fileContents{},
		opts:    o,
		log:     o.logger.With().Str("component", "memcache").Logger(),
	}
	m.inflight.init()
	return m
}

// Get returns the value for key, or ok=false when missing or expired.
// Expired entries are removed on discovery.
func (m *Memory) Get(key string) (json.RawMessage, bool) {
	now := m.opts.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if e.expiredAt(now) {
		delete(m.entries, key)
		return nil, false
	}
	e.LastAccessed = now.UnixMilli()
	m.entries[key] = e
	return e.Data, true
}

// Set stores data under key. A non-positive TTL selects the default TTL.
func (m *Memory) Set(key string, data json.RawMessage, ttl time.Duration) {
	if ttl <= 0 {
		ttl = m.opts.defaultTTL
	}
	now := m.opts.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = pruneExpired(m.entries, now)
	m.entries[key] = Entry{
		Data:         data,
		ExpiresAt:    now.Add(ttl).UnixMilli(),
		LastAccessed: now.UnixMilli(),
	}
	m.evictLocked()
}

// Delete removes key. Missing keys are not an error.
func (m *Memory) Delete(key string) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}

// DeletePattern removes every key with the given prefix.
func (m *Memory) DeletePattern(prefix string) {
	m.mu.Lock()
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
		}
	}
	m.mu.Unlock()
}

// Clear drops all entries.
func (m *Memory) Clear() {
	m.mu.Lock()
	m.entries = fileContents{}
	m.mu.Unlock()
}

// Stats reports live entry and in-flight fetch counts.
func (m *Memory) Stats() Stats {
	now := m.opts.now()
	m.mu.Lock()
	m.entries = pruneExpired(m.entries, now)
	size := len(m.entries)
	m.mu.Unlock()
	return Stats{CacheSize: size, PendingRequests: m.inflight.count()}
}

// GetOrFetch mirrors Store.GetOrFetch with the same at-most-one-fetch-per-key
// guarantee within this process.
func (m *Memory) GetOrFetch(ctx context.Context, key string, fetch FetchFunc, ttl time.Duration) (json.RawMessage, error) {
	if data, ok := m.Get(key); ok {
		return data, nil
	}

	m.inflight.add(key)
	defer m.inflight.remove(key)

	v, err, _ := m.flights.Do(key, func() (any, error) {
		data, fetchErr := fetch(ctx)
		if fetchErr != nil {
			return nil, fetchErr
		}
		m.Set(key, data, ttl)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(json.RawMessage), nil
}

// evictLocked trims to the entry cap by LastAccessed, like Store.evict.
// Caller holds m.mu.
func (m *Memory) evictLocked() {
	if m.opts.maxEntries <= 0 || len(m.entries) <= m.opts.maxEntries {
		return
	}
	type ranked struct {
		key string
		at  int64
	}
	keys := make([]ranked, 0, len(m.entries))
	for k, e := range m.entries {
		keys = append(keys, ranked{key: k, at: e.LastAccessed})
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].at > keys[j].at })
	for _, r := range keys[m.opts.maxEntries:] {
		delete(m.entries, r.key)
	}
}
