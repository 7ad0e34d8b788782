package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/clockhand/clockhand/internal/api"
	"github.com/clockhand/clockhand/internal/cache"
	"github.com/clockhand/clockhand/internal/config"
	"github.com/clockhand/clockhand/internal/logging"
)

// appEnv bundles the collaborators every command needs: configuration, the
// API client, and the response cache.
type appEnv struct {
	cfg    *config.Config
	client *api.Client
	cache  cache.Interface
	ttl    time.Duration
}

// newAppEnv wires up an appEnv from config, environment, and flags. When the
// persistent cache is disabled (config, env, or --no-cache) commands fall
// back to a per-invocation in-memory cache, which keeps the calling code
// uniform while persisting nothing.
func newAppEnv(cmd *cobra.Command) (*appEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := commandLogger(cmd)

	ttl := cfg.CacheTTL()
	if flagTTL, _ := cmd.Flags().GetInt("cache-ttl"); flagTTL > 0 {
		ttl = time.Duration(flagTTL) * time.Second
	}

	noCache, _ := cmd.Flags().GetBool("no-cache")
	var store cache.Interface
	if cfg.Cache.Enabled && !noCache {
		dir, dirErr := config.Dir()
		if dirErr != nil {
			return nil, dirErr
		}
		store, err = cache.New(cfg.Cache.File,
			cache.WithDir(dir),
			cache.WithMaxEntries(cfg.Cache.MaxEntries),
			cache.WithMaxFileSize(int64(cfg.Cache.MaxSizeMB)<<20),
			cache.WithDefaultTTL(ttl),
			cache.WithLogger(logging.ComponentLogger(logger, "cache")),
		)
		if err != nil {
			return nil, err
		}
	} else {
		store = cache.NewMemory(cache.WithDefaultTTL(ttl))
	}

	client := api.NewClient(cfg.API.URL, cfg.API.Token, cfg.API.Workspace,
		api.WithTimeout(cfg.APITimeout()),
		api.WithLogger(logging.ComponentLogger(logger, "api")),
	)

	return &appEnv{cfg: cfg, client: client, cache: store, ttl: ttl}, nil
}

// key builds a workspace-scoped cache key from parts.
func (e *appEnv) key(parts ...string) string {
	k := "ws:" + e.cfg.API.Workspace
	for _, p := range parts {
		k += ":" + p
	}
	return k
}
