package cache

import (
	"sync"
	"time"
)

// mirror is a per-process, read-optimized copy of the last-synced file
// contents. It exists so that statistics and repeated reads within one
// process avoid constant disk I/O; it is never shared across processes and
// never written back to disk.
type mirror struct {
	mu       sync.Mutex
	entries  fileContents
	syncedAt time.Time
	debounce time.Duration
}

// sync replaces the mirrored contents wholesale after a successful load or
// write. No incremental diffing: the file is the source of truth.
func (m *mirror) sync(entries fileContents, now time.Time) {
	cp := make(fileContents, len(entries))
	for k, e := range entries {
		cp[k] = e
	}
	m.mu.Lock()
	m.entries = cp
	m.syncedAt = now
	m.mu.Unlock()
}

// fresh returns a copy of the mirrored contents when the last sync falls
// within the debounce window, so callers can skip the disk read.
func (m *mirror) fresh(now time.Time) (fileContents, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil || now.Sub(m.syncedAt) > m.debounce {
		return nil, false
	}
	cp := make(fileContents, len(m.entries))
	for k, e := range m.entries {
		cp[k] = e
	}
	return cp, true
}

// liveCount prunes expired entries from the mirror's own copy and returns the
// number remaining. The pruning never touches disk; the snapshot may be
// arbitrarily stale and is for diagnostics only.
func (m *mirror) liveCount(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, e := range m.entries {
		if e.expiredAt(now) {
			delete(m.entries, k)
		}
	}
	return len(m.entries)
}

// reset empties the mirror and forces the next read to go to disk.
func (m *mirror) reset() {
	m.mu.Lock()
	m.entries = nil
	m.syncedAt = time.Time{}
	m.mu.Unlock()
}
