package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Store is a persistent cache backed by a single JSON file shared across
// processes. All mutation runs as a lock-guarded load/modify/atomic-rewrite
// cycle; reads are served from a debounced in-process mirror where possible.
//
// Every operation degrades to a miss or no-op on infrastructure failure
// (lock timeout, I/O error, corruption). A broken cache must never abort the
// caller's primary operation.
type Store struct {
	path string
	opts options
	log  zerolog.Logger

	mirror   mirror
	flights  singleflight.Group
	inflight inflightSet
}

// New creates a Store for the given file name. The name is sanitized to a
// basename; path traversal sequences are rejected. An empty name selects
// DefaultFileName. The cache directory (default ~/.clockhand) is created if
// missing.
func New(filename string, opts ...Option) (*Store, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if filename == "" {
		filename = DefaultFileName
	}
	if filename != filepath.Base(filename) || strings.Contains(filename, "..") {
		return nil, fmt.Errorf("invalid cache file name %q", filename)
	}

	dir := o.dir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		dir = filepath.Join(home, ".clockhand")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	s := &Store{
		path: filepath.Join(dir, filename),
		opts: o,
		log:  o.logger.With().Str("component", "cache").Logger(),
	}
	s.mirror.debounce = o.syncDebounce
	s.inflight.init()
	return s, nil
}

// Path returns the cache file path.
func (s *Store) Path() string {
	return s.path
}

// Get returns the cached value for key, or ok=false when the key is missing,
// expired, or the file cannot be read. A hit records the access time and
// persists it (best effort) so eviction ranks the entry as recently used.
func (s *Store) Get(key string) (json.RawMessage, bool) {
	now := s.opts.now()
	entries, ok := s.mirror.fresh(now)
	if !ok {
		entries = s.loadFile()
		s.mirror.sync(entries, now)
	}

	e, ok := entries[key]
	if !ok || e.expiredAt(now) {
		return nil, false
	}

	s.update("touch", func(fc fileContents) fileContents {
		if cur, exists := fc[key]; exists && !cur.expiredAt(s.opts.now()) {
			cur.LastAccessed = now.UnixMilli()
			fc[key] = cur
		}
		return fc
	})
	return e.Data, true
}

// Set stores data under key with the given TTL. A non-positive TTL selects
// the configured default. Expired entries are pruned and the eviction cap
// applied before the file is rewritten.
func (s *Store) Set(key string, data json.RawMessage, ttl time.Duration) {
	if ttl <= 0 {
		ttl = s.opts.defaultTTL
	}
	now := s.opts.now()
	s.update("set", func(fc fileContents) fileContents {
		fc = pruneExpired(fc, now)
		fc[key] = Entry{
			Data:         data,
			ExpiresAt:    now.Add(ttl).UnixMilli(),
			LastAccessed: now.UnixMilli(),
		}
		return s.evict(fc)
	})
}

// Delete removes key from the cache. Missing keys are not an error.
func (s *Store) Delete(key string) {
	s.update("delete", func(fc fileContents) fileContents {
		delete(fc, key)
		return fc
	})
}

// DeletePattern removes every key with the given prefix.
func (s *Store) DeletePattern(prefix string) {
	s.update("delete_pattern", func(fc fileContents) fileContents {
		for k := range fc {
			if strings.HasPrefix(k, prefix) {
				delete(fc, k)
			}
		}
		return fc
	})
}

// Clear removes the cache file entirely. A missing file is not an error, so
// Clear is idempotent.
func (s *Store) Clear() {
	lock := s.newLock()
	if err := lock.acquire(); err != nil {
		s.log.Debug().Err(err).Msg("cache clear skipped")
		return
	}
	defer lock.release()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		s.log.Debug().Err(err).Msg("cache file remove failed")
	}
	s.mirror.reset()
}

// Stats reports the number of live entries (per the mirror, which may be up
// to one debounce window stale) and the number of in-flight fetches.
func (s *Store) Stats() Stats {
	now := s.opts.now()
	if _, ok := s.mirror.fresh(now); !ok {
		s.mirror.sync(s.loadFile(), now)
	}
	return Stats{
		CacheSize:       s.mirror.liveCount(now),
		PendingRequests: s.inflight.count(),
	}
}

// newLock builds the lock guarding this store's file. The marker lives at
// <cache file>.lock.
func (s *Store) newLock() *fileLock {
	return &fileLock{
		path:       s.path + ".lock",
		timeout:    s.opts.lockTimeout,
		staleAfter: s.opts.lockStaleAfter,
		retryEvery: lockRetryInterval,
		now:        s.opts.now,
		sleep:      s.opts.sleep,
		log:        s.log,
	}
}

// update runs fn over the current file contents under the cross-process lock
// and writes the result back atomically. Infrastructure failures are logged
// and swallowed.
func (s *Store) update(op string, fn func(fileContents) fileContents) {
	lock := s.newLock()
	if err := lock.acquire(); err != nil {
		s.log.Debug().Err(err).Str("op", op).Msg("cache update skipped")
		return
	}
	defer lock.release()

	entries := fn(s.loadFile())
	if err := s.writeFile(entries); err != nil {
		s.log.Debug().Err(err).Str("op", op).Msg("cache write failed")
		return
	}
	s.mirror.sync(entries, s.opts.now())
}

// loadFile reads and decodes the cache file. A missing or unreadable file is
// the expected "cache empty" state, never an error. Corruption (undecodable
// bytes or a file past the size cap) triggers recovery: the file is moved to
// a timestamped backup path and treated as absent.
func (s *Store) loadFile() fileContents {
	info, err := os.Stat(s.path)
	if err != nil {
		return fileContents{}
	}
	if s.opts.maxFileSize > 0 && info.Size() > s.opts.maxFileSize {
		s.log.Warn().
			Int64("size", info.Size()).
			Int64("max", s.opts.maxFileSize).
			Msg("cache file exceeds size limit, resetting")
		s.quarantine()
		return fileContents{}
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		s.log.Debug().Err(err).Msg("cache file read failed")
		return fileContents{}
	}

	entries, err := decodeFile(data)
	if err != nil {
		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) {
			s.log.Warn().Err(err).Msg("cache file corrupted, resetting")
			s.quarantine()
		}
		return fileContents{}
	}
	return entries
}

// writeFile atomically replaces the cache file: write to a temp path in the
// same directory, then rename over the target. The rename is the atomicity
// boundary.
func (s *Store) writeFile(entries fileContents) error {
	data, err := encodeFile(entries)
	if err != nil {
		return fmt.Errorf("encode cache file: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace cache file: %w", err)
	}
	return nil
}

// quarantine moves the unreadable cache file to a timestamped backup path.
// Best effort: if the move fails the file is removed outright, and if that
// fails too the next write will overwrite it anyway.
func (s *Store) quarantine() {
	backup := fmt.Sprintf("%s.corrupt.%d", s.path, s.opts.now().UnixMilli())
	if err := os.Rename(s.path, backup); err != nil {
		_ = os.Remove(s.path)
		return
	}
	s.log.Info().Str("backup", backup).Msg("corrupt cache file saved")
}

// evict trims the contents to the configured entry cap, retaining the most
// recently accessed entries. This is an approximate LRU computed by a
// one-shot sort, not a maintained recency queue.
func (s *Store) evict(fc fileContents) fileContents {
	if s.opts.maxEntries <= 0 || len(fc) <= s.opts.maxEntries {
		return fc
	}
	type ranked struct {
		key string
		at  int64
	}
	keys := make([]ranked, 0, len(fc))
	for k, e := range fc {
		keys = append(keys, ranked{key: k, at: e.LastAccessed})
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].at > keys[j].at })
	for _, r := range keys[s.opts.maxEntries:] {
		delete(fc, r.key)
	}
	s.log.Debug().
		Int("evicted", len(keys)-s.opts.maxEntries).
		Int("kept", s.opts.maxEntries).
		Msg("cache eviction")
	return fc
}

// pruneExpired drops entries that are already invalid at now.
func pruneExpired(fc fileContents, now time.Time) fileContents {
	for k, e := range fc {
		if e.expiredAt(now) {
			delete(fc, k)
		}
	}
	return fc
}
