package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLock(t *testing.T, timeout time.Duration) *fileLock {
	t.Helper()
	return &fileLock{
		path:       filepath.Join(t.TempDir(), "cache.json.lock"),
		timeout:    timeout,
		staleAfter: 30 * time.Second,
		retryEvery: 5 * time.Millisecond,
		now:        time.Now,
		sleep:      time.Sleep,
		log:        zerolog.Nop(),
	}
}

func TestFileLock(t *testing.T) {
	t.Run("AcquireCreatesMarker", func(t *testing.T) {
		l := newTestLock(t, time.Second)
		require.NoError(t, l.acquire())

		info, err := os.Stat(l.path)
		require.NoError(t, err)
		assert.False(t, info.IsDir())

		l.release()
		_, err = os.Stat(l.path)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("ReleaseIsIdempotent", func(t *testing.T) {
		l := newTestLock(t, time.Second)
		require.NoError(t, l.acquire())
		l.release()
		l.release()
	})

	t.Run("ContentionTimesOut", func(t *testing.T) {
		l := newTestLock(t, 50*time.Millisecond)
		require.NoError(t, l.acquire())

		other := *l
		err := other.acquire()
		assert.ErrorIs(t, err, ErrLockTimeout)

		l.release()
	})

	t.Run("AcquireAfterRelease", func(t *testing.T) {
		l := newTestLock(t, time.Second)
		require.NoError(t, l.acquire())
		l.release()
		require.NoError(t, l.acquire())
		l.release()
	})

	t.Run("StaleMarkerReclaimed", func(t *testing.T) {
		l := newTestLock(t, time.Second)
		require.NoError(t, l.acquire())

		// Age the marker past the staleness threshold, as if its holder
		// crashed a minute ago.
		old := time.Now().Add(-time.Minute)
		require.NoError(t, os.Chtimes(l.path, old, old))

		other := *l
		require.NoError(t, other.acquire())
		other.release()
	})

	t.Run("UnremovableStaleMarkerStillTimesOut", func(t *testing.T) {
		l := newTestLock(t, 50*time.Millisecond)

		// A non-empty directory at the marker path cannot be reclaimed by
		// os.Remove; acquire must still give up at the deadline instead of
		// spinning on the failed removal.
		require.NoError(t, os.Mkdir(l.path, 0o750))
		require.NoError(t, os.WriteFile(filepath.Join(l.path, "x"), []byte("x"), 0o600))
		old := time.Now().Add(-time.Hour)
		require.NoError(t, os.Chtimes(l.path, old, old))

		done := make(chan error, 1)
		go func() { done <- l.acquire() }()

		select {
		case err := <-done:
			assert.ErrorIs(t, err, ErrLockTimeout)
		case <-time.After(2 * time.Second):
			t.Fatal("acquire did not return within its timeout")
		}
	})

	t.Run("WaitsForLiveHolder", func(t *testing.T) {
		l := newTestLock(t, time.Second)
		require.NoError(t, l.acquire())

		released := make(chan struct{})
		go func() {
			time.Sleep(30 * time.Millisecond)
			l.release()
			close(released)
		}()

		other := *l
		require.NoError(t, other.acquire())
		<-released
		other.release()
	})
}
