package cache

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// ErrLockTimeout is returned when the cross-process lock cannot be acquired
// within the configured timeout.
var ErrLockTimeout = errors.New("timed out waiting for cache lock")

// fileLock is a cross-process mutex implemented as a marker file next to the
// cache file. Mutual exclusion relies solely on the filesystem's atomic
// "create if absent" semantics (O_CREATE|O_EXCL); an in-memory mutex would be
// useless here because contention comes from unrelated processes.
type fileLock struct {
	path       string
	timeout    time.Duration
	staleAfter time.Duration
	retryEvery time.Duration
	now        func() time.Time
	sleep      func(time.Duration)
	log        zerolog.Logger
}

// acquire attempts to create the marker file until it succeeds or the timeout
// elapses. A marker older than staleAfter is presumed abandoned by a crashed
// holder: it is removed and the attempt retried immediately.
func (l *fileLock) acquire() error {
	deadline := l.now().Add(l.timeout)
	for {
		// Checked first so every path through the loop is deadline-bounded,
		// including repeated failures to reclaim a stale marker.
		if l.now().After(deadline) {
			return ErrLockTimeout
		}

		f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			fmt.Fprintf(f, "%d %d\n", os.Getpid(), l.now().UnixMilli())
			if closeErr := f.Close(); closeErr != nil {
				l.log.Debug().Err(closeErr).Str("lock", l.path).Msg("lock marker close failed")
			}
			return nil
		}
		if !os.IsExist(err) {
			return fmt.Errorf("create lock marker: %w", err)
		}

		info, statErr := os.Stat(l.path)
		if statErr != nil {
			if os.IsNotExist(statErr) {
				// Holder released between our create and stat; retry now.
				continue
			}
			return fmt.Errorf("inspect lock marker: %w", statErr)
		}
		if age := l.now().Sub(info.ModTime()); age > l.staleAfter {
			l.log.Warn().
				Str("lock", l.path).
				Dur("age", age).
				Msg("reclaiming stale cache lock")
			// Another process may race us to this removal; both outcomes are
			// fine because the next create attempt is atomic.
			_ = os.Remove(l.path)
			continue
		}

		l.sleep(l.retryEvery)
	}
}

// release removes the marker. A marker that is already gone counts as success,
// so release is idempotent.
func (l *fileLock) release() {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		l.log.Warn().Err(err).Str("lock", l.path).Msg("could not remove cache lock")
	}
}
