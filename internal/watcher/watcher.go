// Package watcher turns a drop folder into a stream of files to upload.
package watcher

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is how long a new file must stay unwritten before it is reported.
const DefaultSettle = 300 * time.Millisecond

// Watcher reports regular files created (or moved) into a directory once
// writes to them have settled.
type Watcher struct {
	watcher    *fsnotify.Watcher
	extensions map[string]struct{}
	logger     *log.Logger
	settle     time.Duration
}

// New creates a watcher. An empty extension list accepts every file.
// Extensions are matched case-insensitively, with or without the dot.
func New(extensions []string, logger *log.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	exts := make(map[string]struct{}, len(extensions))
	for _, e := range extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[e] = struct{}{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Watcher{watcher: w, extensions: exts, logger: logger, settle: DefaultSettle}, nil
}

// Watch starts monitoring dir and emits paths of new files until ctx is done.
func (w *Watcher) Watch(ctx context.Context, dir string) (<-chan string, error) {
	if err := w.watcher.Add(dir); err != nil {
		return nil, err
	}

	files := make(chan string, 16)

	go func() {
		defer close(files)
		pending := make(map[string]time.Time)
		ticker := time.NewTicker(w.settle / 3)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				switch {
				case event.Has(fsnotify.Create):
					pending[event.Name] = time.Now()
				case event.Has(fsnotify.Write):
					if _, ok := pending[event.Name]; ok {
						pending[event.Name] = time.Now()
					}
				case event.Has(fsnotify.Remove):
					delete(pending, event.Name)
				}
			case now := <-ticker.C:
				for path, last := range pending {
					if now.Sub(last) < w.settle {
						continue
					}
					delete(pending, path)
					if !w.accepts(path) {
						continue
					}
					select {
					case files <- path:
					case <-ctx.Done():
						return
					}
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.logger.Printf("watch %s: %v", dir, err)
			}
		}
	}()

	return files, nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func (w *Watcher) accepts(path string) bool {
	base := filepath.Base(path)
	// editor swap files and partial downloads
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".part") || strings.HasSuffix(base, ".crdownload") {
		return false
	}
	if len(w.extensions) > 0 {
		if _, ok := w.extensions[strings.ToLower(filepath.Ext(base))]; !ok {
			return false
		}
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
