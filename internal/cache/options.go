package cache

import (
	"time"

	"github.com/rs/zerolog"
)

// Defaults for cache construction. All of them can be overridden with Options.
const (
	// DefaultFileName is the cache file name under the cache directory.
	DefaultFileName = "cache.json"

	// DefaultMaxEntries caps how many entries survive an eviction pass.
	DefaultMaxEntries = 1000

	// DefaultMaxFileSize is the size above which the cache file is treated
	// as corrupted-by-bloat and reset (10 MiB).
	DefaultMaxFileSize = 10 << 20

	// DefaultTTL applies when a caller passes a non-positive TTL.
	DefaultTTL = 5 * time.Minute

	// DefaultSyncDebounce is how long the memory mirror may serve reads
	// without re-reading the file from disk.
	DefaultSyncDebounce = time.Second

	// DefaultLockTimeout bounds how long a process waits for the file lock.
	DefaultLockTimeout = 5 * time.Second

	// DefaultLockStaleAfter is the age past which a lock marker is presumed
	// abandoned by a crashed process and may be reclaimed.
	DefaultLockStaleAfter = 30 * time.Second

	// lockRetryInterval is the fixed sleep between lock acquisition attempts.
	lockRetryInterval = 50 * time.Millisecond
)

type options struct {
	dir            string
	maxEntries     int
	maxFileSize    int64
	defaultTTL     time.Duration
	syncDebounce   time.Duration
	lockTimeout    time.Duration
	lockStaleAfter time.Duration
	logger         zerolog.Logger
	now            func() time.Time
	sleep          func(time.Duration)
}

func defaultOptions() options {
	return options{
		maxEntries:     DefaultMaxEntries,
		maxFileSize:    DefaultMaxFileSize,
		defaultTTL:     DefaultTTL,
		syncDebounce:   DefaultSyncDebounce,
		lockTimeout:    DefaultLockTimeout,
		lockStaleAfter: DefaultLockStaleAfter,
		logger:         zerolog.Nop(),
		now:            time.Now,
		sleep:          time.Sleep,
	}
}

// Option configures a Store or Memory cache at construction time.
type Option func(*options)

// WithDir overrides the cache directory (default ~/.clockhand).
func WithDir(dir string) Option {
	return func(o *options) { o.dir = dir }
}

// WithMaxEntries sets the eviction cap. Zero or negative disables eviction.
func WithMaxEntries(n int) Option {
	return func(o *options) { o.maxEntries = n }
}

// WithMaxFileSize sets the byte size above which the cache file is reset.
func WithMaxFileSize(n int64) Option {
	return func(o *options) { o.maxFileSize = n }
}

// WithDefaultTTL sets the TTL applied when callers pass a non-positive one.
func WithDefaultTTL(d time.Duration) Option {
	return func(o *options) { o.defaultTTL = d }
}

// WithSyncDebounce sets the memory mirror's resync debounce window.
func WithSyncDebounce(d time.Duration) Option {
	return func(o *options) { o.syncDebounce = d }
}

// WithLockTimeout bounds lock acquisition.
func WithLockTimeout(d time.Duration) Option {
	return func(o *options) { o.lockTimeout = d }
}

// WithLockStaleAfter sets the lock marker age past which it is reclaimed.
func WithLockStaleAfter(d time.Duration) Option {
	return func(o *options) { o.lockStaleAfter = d }
}

// WithLogger installs a diagnostics logger. The cache logs through it for
// observability only; logging never affects control flow.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithClock injects the time source. Tests use this to control expiry and
// staleness without real waiting.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithSleep injects the sleep function used by the lock retry loop.
func WithSleep(sleep func(time.Duration)) Option {
	return func(o *options) { o.sleep = sleep }
}
