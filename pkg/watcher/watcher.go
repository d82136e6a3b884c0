// Package watcher monitors a drop directory and feeds new documents into the
// upload flow. Writes are debounced per file so a document still being
// copied in is not uploaded half-finished.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Config configures a directory Watcher.
type Config struct {
	Dir        string
	Extensions []string      // file extensions to pick up
	Settle     time.Duration // quiet period before a file counts as complete
	Upload     func(ctx context.Context, path string)
}

// Watcher uploads files dropped into a directory.
type Watcher struct {
	config  Config
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// NewWithConfig creates a Watcher, defaulting unset fields.
func NewWithConfig(config Config) (*Watcher, error) {
	if config.Dir == "" {
		return nil, fmt.Errorf("watch directory is required")
	}
	if config.Upload == nil {
		return nil, fmt.Errorf("upload callback is required")
	}
	if len(config.Extensions) == 0 {
		config.Extensions = []string{".pdf", ".docx", ".txt"}
	}
	if config.Settle == 0 {
		config.Settle = 2 * time.Second
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %v", err)
	}

	return &Watcher{
		config:  config,
		watcher: fsw,
		pending: make(map[string]*time.Timer),
	}, nil
}

// Run watches until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.watcher.Add(w.config.Dir); err != nil {
		return fmt.Errorf("failed to watch %s: %v", w.config.Dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !w.watched(event.Name) {
				continue
			}
			w.schedule(ctx, event.Name)
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) watched(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range w.config.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// schedule arms (or re-arms) the settle timer for a path. The upload fires
// only after the file has been quiet for the settle period.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.config.Settle)
		return
	}
	w.pending[path] = time.AfterFunc(w.config.Settle, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		w.config.Upload(ctx, path)
	})
}
