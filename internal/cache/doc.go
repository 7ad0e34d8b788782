// Package cache provides a file-backed key/value cache shared across CLI invocations.
//
// Each invocation of the CLI is a separate OS process, so the cache lives in a single
// JSON file under ~/.clockhand and every mutation runs as a lock-guarded
// read-modify-write cycle. Key features:
//   - TTL expiration (lazy on read, eager pruning on write)
//   - Approximate-LRU eviction when the entry count exceeds a configurable cap
//   - Cross-process mutual exclusion via a marker file with stale-lock reclaim
//   - Corruption recovery by moving the unreadable file aside and starting empty
//   - In-process deduplication of concurrent fetches for the same key
//
// The cache is an optimization layer, not a correctness dependency: its own
// infrastructure failures degrade to cache misses and are never surfaced to callers.
// Only errors from caller-supplied fetch functions propagate.
package cache
