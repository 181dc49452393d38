package indexing

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"

	"github.com/perfradar/radar/internal/debug"
)

// Watcher triggers a wholesale rescan when Java sources change. The
// index is never mutated in place; each trigger rebuilds it from
// scratch through the callback.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onChange func()

	mu      sync.Mutex
	pending *time.Timer
	hashes  map[string]uint64
	closed  bool
}

// NewWatcher creates a watcher over the given root. onChange fires
// after the debounce window closes; it runs on the watcher goroutine.
func NewWatcher(root string, debounce time.Duration, onChange func()) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fw,
		debounce: debounce,
		onChange: onChange,
		hashes:   make(map[string]uint64),
	}

	// fsnotify does not recurse; register every directory up front.
	// New directories are added as create events arrive.
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != root {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
	if err != nil {
		fw.Close()
		return nil, err
	}

	return w, nil
}

// Prime seeds the content-hash map from a built index, so the first
// write event for an unchanged file is absorbed instead of triggering
// a rescan.
func (w *Watcher) Prime(idx *SymbolIndex) {
	if idx == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, sum := range idx.hashes {
		w.hashes[path] = sum
	}
}

// Run processes events until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			debug.LogIndexing("watch error: %v\n", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = w.watcher.Add(event.Name)
			w.schedule()
			return
		}
	}

	if !strings.HasSuffix(event.Name, ".java") {
		return
	}

	// Writes that leave content identical (editor swaps, touch) are
	// not worth a rescan.
	if event.Op&fsnotify.Write != 0 {
		if content, err := os.ReadFile(event.Name); err == nil {
			sum := xxhash.Sum64(content)
			w.mu.Lock()
			prev, seen := w.hashes[event.Name]
			w.hashes[event.Name] = sum
			w.mu.Unlock()
			if seen && prev == sum {
				return
			}
		}
	}

	w.schedule()
}

// schedule arms (or re-arms) the debounce timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(w.debounce, w.onChange)
}

// Close stops the watcher and any pending trigger.
func (w *Watcher) Close() error {
	w.mu.Lock()
	w.closed = true
	if w.pending != nil {
		w.pending.Stop()
		w.pending = nil
	}
	w.mu.Unlock()
	return w.watcher.Close()
}
