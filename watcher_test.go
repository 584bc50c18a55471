package pubcard

import (
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

func TestIsArticleFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"articles/hello-world.md", true},
		{"articles/_draft.md", false},
		{"articles/.hello.md.swp", false},
		{"articles/image.png", false},
	}
	for _, tt := range tests {
		if got := isArticleFile(tt.name); got != tt.want {
			t.Errorf("isArticleFile(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestContentWatcherSyncsNewArticle(t *testing.T) {
	s := setupTestStore(t)
	dir := t.TempDir()
	articles := NewArticleCache(s, time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	w, err := NewContentWatcher(dir, s, articles, logger)
	if err != nil {
		t.Fatalf("NewContentWatcher failed: %v", err)
	}
	w.Start()
	defer w.Close()

	// Prime the cache so the watcher has something to invalidate.
	if _, err := articles.ListArticles(); err != nil {
		t.Fatal(err)
	}
	writeArticle(t, dir, "hello-world.md", helloWorldMD)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := articles.GetArticle("hello-world"); err == nil {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("article was not imported after the file was written")
}

func TestContentWatcherCloseTwice(t *testing.T) {
	s := setupTestStore(t)
	w, err := NewContentWatcher(t.TempDir(), s, NewArticleCache(s, time.Hour), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewContentWatcher failed: %v", err)
	}
	w.Start()
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
}

func TestContentWatcherCloseWaitsForSync(t *testing.T) {
	s := setupTestStore(t)
	w, err := NewContentWatcher(t.TempDir(), s, NewArticleCache(s, time.Hour), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewContentWatcher failed: %v", err)
	}
	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool
	w.debounce = time.Millisecond
	w.syncFn = func() {
		close(started)
		<-release
		finished.Store(true)
	}

	w.schedule()
	<-started

	closed := make(chan struct{})
	go func() {
		w.Close()
		close(closed)
	}()
	select {
	case <-closed:
		t.Fatal("Close returned while a sync was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return after the sync finished")
	}
	if !finished.Load() {
		t.Error("sync should have finished before Close returned")
	}
}

func TestContentWatcherNoSyncAfterClose(t *testing.T) {
	s := setupTestStore(t)
	w, err := NewContentWatcher(t.TempDir(), s, NewArticleCache(s, time.Hour), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewContentWatcher failed: %v", err)
	}
	var syncs atomic.Int32
	w.syncFn = func() { syncs.Add(1) }

	// Pending when Close runs, so it must be cancelled.
	w.debounce = time.Hour
	w.schedule()
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	w.debounce = time.Millisecond
	w.schedule()
	time.Sleep(20 * time.Millisecond)

	if n := syncs.Load(); n != 0 {
		t.Errorf("syncs = %d, want 0 after Close", n)
	}
}
