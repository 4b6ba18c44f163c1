package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/cristianadrielbraun/kioskgallery/internal/logging"
)

// quietWindow tracks the last change and reports when the directory has been idle
// for the whole window. It compares timestamps instead of rearming timers.
type quietWindow struct {
	window  time.Duration
	last    time.Time
	pending bool
}

func (q *quietWindow) mark(now time.Time) {
	q.last = now
	q.pending = true
}

func (q *quietWindow) due(now time.Time) bool {
	if !q.pending || now.Sub(q.last) < q.window {
		return false
	}
	q.pending = false
	return true
}

// Watch keeps manifestPath in sync with the images in dir until ctx is cancelled.
// The manifest is rebuilt once at start and again after each burst of changes.
func Watch(ctx context.Context, dir, manifestPath string, window time.Duration, logger *slog.Logger) error {
	logger = logging.OrNop(logger)
	if window <= 0 {
		window = 500 * time.Millisecond
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return &UnavailableError{Dir: dir, Err: err}
	}

	rebuild := func() {
		n, err := Rebuild(dir, manifestPath)
		if err != nil {
			logger.Error("manifest rebuild failed", "dir", dir, "error", err)
			return
		}
		logger.Info("manifest rebuilt", "path", manifestPath, "images", n)
	}
	rebuild()

	tick := window / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	quiet := &quietWindow{window: window}
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !IsImageName(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Write) ||
				event.Has(fsnotify.Remove) ||
				event.Has(fsnotify.Rename) {
				logger.Debug("image change", "name", event.Name, "op", event.Op.String())
				quiet.mark(time.Now())
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		case now := <-ticker.C:
			if quiet.due(now) {
				rebuild()
			}
		}
	}
}
