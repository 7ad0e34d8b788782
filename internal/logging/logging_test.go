package logging

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("DefaultsToInfo", func(t *testing.T) {
		r := New(Config{})
		defer r.Close()
		assert.Equal(t, zerolog.InfoLevel, r.Logger.GetLevel())
		assert.False(t, r.UsingFile)
	})

	t.Run("UnknownLevelFallsBack", func(t *testing.T) {
		r := New(Config{Level: "shouting"})
		defer r.Close()
		assert.Equal(t, zerolog.InfoLevel, r.Logger.GetLevel())
	})

	t.Run("FileOutput", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "clockhand.log")
		r := New(Config{Level: "debug", Format: "json", File: path})

		r.Logger.Debug().Msg("hello")
		require.NoError(t, r.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "hello")
	})

	t.Run("UnwritableFileFallsBack", func(t *testing.T) {
		r := New(Config{File: filepath.Join(t.TempDir(), "missing", "dir", "x.log")})
		defer r.Close()
		assert.False(t, r.UsingFile)
		assert.NotEmpty(t, r.FallbackReason)
	})
}

func TestFromContext(t *testing.T) {
	base := New(Config{Format: "json"})
	defer base.Close()

	logger := ComponentLogger(base.Logger, "test")
	ctx := logger.WithContext(context.Background())

	got := FromContext(ctx)
	assert.Equal(t, logger.GetLevel(), got.GetLevel())

	t.Run("MissingLoggerIsDisabled", func(t *testing.T) {
		got := FromContext(context.Background())
		assert.Equal(t, zerolog.Disabled, got.GetLevel())
	})
}
