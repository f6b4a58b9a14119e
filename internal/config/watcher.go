package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/dwmlock/internal/domain"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 100 * time.Millisecond

// Watcher delivers freshly loaded settings whenever the settings file changes.
// Files that fail to load, or have been removed, are logged and skipped.
type Watcher struct {
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	updates  chan domain.Settings
	logger   *zap.Logger
}

// NewWatcher watches the directory holding path. Watching the directory
// keeps working across atomic rename-on-save.
func NewWatcher(path string, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch directory: %w", err)
	}
	return &Watcher{
		path:     path,
		debounce: debounce,
		watcher:  fw,
		updates:  make(chan domain.Settings, 1),
		logger:   logger,
	}, nil
}

// Updates receives resolved settings after each change.
// Closed when Run returns.
func (w *Watcher) Updates() <-chan domain.Settings {
	return w.updates
}

// Run processes file events until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) {
	defer close(w.updates)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	name := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Stop()
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.reload(ctx)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("settings watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	s, err := loadFile(w.path)
	if errors.Is(err, fs.ErrNotExist) {
		// renamed away or deleted; the running session keeps its settings
		w.logger.Debug("settings file gone, keeping current settings", zap.String("path", w.path))
		return
	}
	if err != nil {
		w.logger.Warn("ignoring invalid settings change", zap.String("path", w.path), zap.Error(err))
		return
	}
	w.logger.Info("settings file changed", zap.String("path", w.path))

	// keep only the newest pending update
	select {
	case <-w.updates:
	default:
	}
	select {
	case w.updates <- s:
	case <-ctx.Done():
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
