package pubcard

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 500 * time.Millisecond

// ContentWatcher re-syncs the article store whenever a markdown file in the
// content directory changes.
//
// Cached social cards are keyed by slug only and are not dropped here; they
// age out of their LRU like any other entry.
type ContentWatcher struct {
	dir      string
	store    *Store
	articles *ArticleCache
	logger   *slog.Logger
	watcher  *fsnotify.Watcher

	debounce time.Duration
	syncFn   func()

	mu      sync.Mutex
	timer   *time.Timer
	closed  bool
	pending sync.WaitGroup // scheduled or running syncs
	done    chan struct{}
	once    sync.Once
}

// NewContentWatcher watches dir and every directory below it.
func NewContentWatcher(dir string, store *Store, articles *ArticleCache, logger *slog.Logger) (*ContentWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("pubcard: create watcher: %w", err)
	}
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fw.Add(p)
		}
		return nil
	})
	if err != nil {
		fw.Close()
		return nil, fmt.Errorf("pubcard: watch %s: %w", dir, err)
	}
	w := &ContentWatcher{
		dir:      dir,
		store:    store,
		articles: articles,
		logger:   logger,
		watcher:  fw,
		debounce: watchDebounce,
		done:     make(chan struct{}),
	}
	w.syncFn = w.sync
	return w, nil
}

// Start processes events in the background until Close is called.
func (w *ContentWatcher) Start() {
	go w.run()
}

func (w *ContentWatcher) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				w.watchNewDir(event.Name)
			}
			if !isArticleFile(event.Name) {
				continue
			}
			w.schedule()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("content watcher error", "err", err)
		case <-w.done:
			return
		}
	}
}

func (w *ContentWatcher) watchNewDir(name string) {
	if info, err := os.Stat(name); err == nil && info.IsDir() {
		if err := w.watcher.Add(name); err != nil {
			w.logger.Warn("watch new directory", "dir", name, "err", err)
		}
	}
}

// schedule collapses a burst of events into one sync. It does nothing once
// the watcher is closed.
func (w *ContentWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.stopTimer()
	w.pending.Add(1)
	w.timer = time.AfterFunc(w.debounce, func() {
		defer w.pending.Done()
		w.syncFn()
	})
}

// stopTimer cancels a sync that has not started yet. w.mu must be held.
func (w *ContentWatcher) stopTimer() {
	if w.timer != nil && w.timer.Stop() {
		w.pending.Done()
	}
	w.timer = nil
}

func (w *ContentWatcher) sync() {
	res, err := SyncDir(w.store, w.dir)
	if err != nil {
		w.logger.Error("content sync failed", "dir", w.dir, "err", err)
		return
	}
	w.articles.Invalidate()
	w.logger.Info("content synced", "saved", res.Saved, "deleted", res.Deleted)
}

// Close stops the watcher and waits for a sync already in progress, so the
// store can be closed right after.
func (w *ContentWatcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		w.mu.Lock()
		w.closed = true
		w.stopTimer()
		w.mu.Unlock()
		err = w.watcher.Close()
		w.pending.Wait()
	})
	return err
}

func isArticleFile(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "_") {
		return false
	}
	return filepath.Ext(base) == ".md"
}
