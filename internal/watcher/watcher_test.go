package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}

func TestWatcher_FiresOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "master-excuses.json")
	writeFile(t, path, "{}")

	var fired atomic.Int32
	w, err := New(path, 50*time.Millisecond, func(string) { fired.Add(1) }, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = w.Start(ctx) }()
	defer func() {
		cancel()
		_ = w.Stop()
	}()

	time.Sleep(50 * time.Millisecond) // let the watch loop start

	writeFile(t, path, `{"Late to work": []}`)

	if !waitFor(t, 2*time.Second, func() bool { return fired.Load() >= 1 }) {
		t.Fatal("expected change callback to fire")
	}
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "master-excuses.json")
	writeFile(t, path, "{}")

	var fired atomic.Int32
	w, err := New(path, 150*time.Millisecond, func(string) { fired.Add(1) }, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = w.Start(ctx) }()
	defer func() {
		cancel()
		_ = w.Stop()
	}()

	time.Sleep(50 * time.Millisecond)

	// A burst of writes inside the settle window collapses into one callback.
	for i := 0; i < 5; i++ {
		writeFile(t, path, "{}")
		time.Sleep(20 * time.Millisecond)
	}

	if !waitFor(t, 2*time.Second, func() bool { return fired.Load() >= 1 }) {
		t.Fatal("expected change callback to fire")
	}

	time.Sleep(300 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Errorf("expected 1 debounced callback, got %d", got)
	}
}

func TestWatcher_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "master-excuses.json")
	writeFile(t, path, "{}")

	var fired atomic.Int32
	w, err := New(path, 50*time.Millisecond, func(string) { fired.Add(1) }, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = w.Start(ctx) }()
	defer func() {
		cancel()
		_ = w.Stop()
	}()

	time.Sleep(50 * time.Millisecond)

	writeFile(t, filepath.Join(dir, "unrelated.json"), "{}")

	time.Sleep(300 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Errorf("expected no callbacks for sibling files, got %d", got)
	}
}
