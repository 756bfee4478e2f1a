package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewNormalizesExtensions(t *testing.T) {
	w, err := New([]string{"PDF", ".txt", " "}, nil)
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}
	defer w.Stop()

	if len(w.extensions) != 2 {
		t.Fatalf("expected 2 extensions, got %d", len(w.extensions))
	}
	if _, ok := w.extensions[".pdf"]; !ok {
		t.Errorf("expected .pdf to be watched")
	}
}

func TestWatchEmitsCreatedFile(t *testing.T) {
	dir := t.TempDir()

	w, err := New([]string{".txt"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	files, err := w.Watch(ctx, dir)
	if err != nil {
		t.Fatalf("watch failed: %v", err)
	}

	want := filepath.Join(dir, "report.txt")
	go func() {
		time.Sleep(100 * time.Millisecond)
		os.WriteFile(want, []byte("hi"), 0o644)
	}()

	select {
	case got := <-files:
		if got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
	case <-ctx.Done():
		t.Error("timeout waiting for file")
	}
}

func TestWatchFiltersByExtension(t *testing.T) {
	dir := t.TempDir()

	w, _ := New([]string{".txt"}, nil)
	defer w.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	files, _ := w.Watch(ctx, dir)

	os.WriteFile(filepath.Join(dir, "data.json"), []byte("{}"), 0o644)
	os.WriteFile(filepath.Join(dir, ".hidden.txt"), []byte("x"), 0o644)

	select {
	case f := <-files:
		t.Errorf("unexpected file %s", f)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatchIgnoresDirectories(t *testing.T) {
	dir := t.TempDir()

	w, _ := New(nil, nil)
	defer w.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	files, _ := w.Watch(ctx, dir)
	os.Mkdir(filepath.Join(dir, "sub"), 0o755)

	select {
	case f := <-files:
		t.Errorf("unexpected entry %s", f)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatchMissingDir(t *testing.T) {
	w, _ := New(nil, nil)
	defer w.Stop()
	if _, err := w.Watch(context.Background(), filepath.Join(t.TempDir(), "gone")); err == nil {
		t.Error("expected error for missing directory")
	}
}
