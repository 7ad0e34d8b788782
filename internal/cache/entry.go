package cache

import (
	"encoding/json"
	"fmt"
	"time"
)

// Entry represents a single cached value with its expiration metadata.
type Entry struct {
	// Data is the cached value (JSON-serializable, stored verbatim).
	Data json.RawMessage `json:"data"`

	// ExpiresAt is the epoch-millisecond timestamp after which the entry is invalid.
	ExpiresAt int64 `json:"expires_at"`

	// LastAccessed is the epoch-millisecond timestamp of the last successful read.
	// Used only for eviction ranking.
	LastAccessed int64 `json:"last_accessed"`
}

// expiredAt reports whether the entry is invalid at the given time.
func (e Entry) expiredAt(now time.Time) bool {
	return e.ExpiresAt <= now.UnixMilli()
}

// fileContents is the decoded form of the on-disk cache file: key -> entry.
type fileContents map[string]Entry

// DecodeError reports that the cache file's bytes could not be decoded.
// Callers use it to distinguish corruption (recoverable by reset) from
// ordinary I/O failures.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cache file is not valid JSON: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// encodeFile serializes the cache contents to the on-disk JSON representation.
func encodeFile(entries fileContents) ([]byte, error) {
	return json.MarshalIndent(entries, "", "  ")
}

// decodeFile parses the on-disk representation. Malformed bytes yield a
// *DecodeError and never a partially-populated map.
func decodeFile(data []byte) (fileContents, error) {
	var entries fileContents
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if entries == nil {
		entries = fileContents{}
	}
	return entries, nil
}
