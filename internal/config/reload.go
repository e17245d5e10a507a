package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Loaded is a config together with the hash of the bytes it came from.
type Loaded struct {
	Config *Config
	Hash   string
}

// Current holds the config that evaluations run against. Reads never block.
type Current struct {
	v atomic.Pointer[Loaded]
}

// NewCurrent returns a holder seeded with cfg.
func NewCurrent(cfg *Config, hash string) *Current {
	c := &Current{}
	c.Store(cfg, hash)
	return c
}

// Load returns the active config and its hash.
func (c *Current) Load() (*Config, string) {
	l := c.v.Load()
	if l == nil {
		return DefaultConfig(), ""
	}
	return l.Config, l.Hash
}

// Store swaps in a new config.
func (c *Current) Store(cfg *Config, hash string) {
	c.v.Store(&Loaded{Config: cfg, Hash: hash})
}

// ReloadDebounce is how long the reloader waits after the last write.
const ReloadDebounce = 500 * time.Millisecond

// Reloader watches the config file and swaps it into a Current on change.
// A file that fails to load leaves the previous config active.
type Reloader struct {
	watcher *fsnotify.Watcher
	path    string
	current *Current
	logger  *zap.Logger

	// Transform runs on every freshly loaded config before it is stored,
	// for example to apply a named profile.
	Transform func(*Config) (*Config, error)
}

// NewReloader watches the directory containing path so that editors which
// replace the file by rename are still seen.
func NewReloader(path string, current *Current, logger *zap.Logger) (*Reloader, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", path, err)
	}
	return &Reloader{
		watcher: watcher,
		path:    filepath.Clean(path),
		current: current,
		logger:  logger,
	}, nil
}

// Reload loads the file now and stores it on success.
func (r *Reloader) Reload() error {
	cfg, hash, err := LoadConfigWithHash(r.path)
	if err != nil {
		return err
	}
	if r.Transform != nil {
		if cfg, err = r.Transform(cfg); err != nil {
			return err
		}
	}
	r.current.Store(cfg, hash)
	return nil
}

// Run watches for file changes and reloads. Blocks until ctx is cancelled.
func (r *Reloader) Run(ctx context.Context) error {
	defer r.watcher.Close()

	var debounce *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != r.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(ReloadDebounce, func() { r.debouncedReload(ctx) })
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("file watcher error", zap.Error(err))
		}
	}
}

// debouncedReload runs when the debounce timer fires. Stop cannot recall a
// timer that already fired, so a cancelled watch reloads nothing.
func (r *Reloader) debouncedReload(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := r.Reload(); err != nil {
		r.logger.Warn("config reload failed", zap.String("path", r.path), zap.Error(err))
		return
	}
	_, hash := r.current.Load()
	r.logger.Info("config reloaded", zap.String("path", r.path), zap.String("hash", hash))
}
