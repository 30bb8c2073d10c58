package lectures

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces bursts of writes from a generation run.
const DefaultDebounce = 250 * time.Millisecond

// WatchOptions configure Watch.
type WatchOptions struct {
	Debounce time.Duration
	Logger   *slog.Logger
	// OnSync is called after every successful re-sync.
	OnSync func([]Lecture)
}

// relevant reports whether a change to name affects the index. The index
// file itself is excluded so a sync does not trigger another one.
func relevant(name string) bool {
	base := filepath.Base(name)
	for _, pattern := range []string{"*_interactive.html", "*.pdf"} {
		if ok, _ := doublestar.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

// Watch re-syncs root/html/lectures.json whenever a lecture page or PDF is
// added, changed or removed. It blocks until ctx is cancelled.
func Watch(ctx context.Context, root string, opts WatchOptions) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	watched := 0
	for _, dir := range []string{"html", "pdfs"} {
		p := filepath.Join(root, dir)
		if err := os.MkdirAll(p, 0o755); err != nil {
			return err
		}
		if err := watcher.Add(p); err != nil {
			opts.Logger.Warn("cannot watch directory", "dir", p, "err", err)
			continue
		}
		watched++
	}
	if watched == 0 {
		return fmt.Errorf("nothing to watch under %s", root)
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
		wg    sync.WaitGroup
	)
	resync := func() {
		defer wg.Done()
		if ctx.Err() != nil {
			return
		}
		out, list, err := Sync(root)
		if err != nil {
			opts.Logger.Error("lecture sync failed", "err", err)
			return
		}
		opts.Logger.Info("lecture index synced", "path", out, "count", len(list))
		if opts.OnSync != nil {
			opts.OnSync(list)
		}
	}
	schedule := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil && timer.Stop() {
			wg.Done()
		}
		wg.Add(1)
		timer = time.AfterFunc(opts.Debounce, resync)
	}
	defer func() {
		mu.Lock()
		if timer != nil && timer.Stop() {
			wg.Done()
		}
		mu.Unlock()
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			opts.Logger.Debug("event received", "name", event.Name, "op", event.Op.String())
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			if relevant(event.Name) {
				schedule()
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			opts.Logger.Error("fsnotify error", "error", werr)
		}
	}
}
