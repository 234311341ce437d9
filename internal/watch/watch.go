// Package watch provides host-level, debounced filesystem watching for
// cmd/anteater's --watch flag. SPEC_FULL.md's ambient stack calls this out
// explicitly as a host concern: the core session and its fixpoints never
// import this package or react to filesystem events directly, they only
// ever see the file list a host (here, the CLI) hands to AnalyzeProject.
//
// Grounded on the teacher's internal/core.MangleWatcher: an fsnotify.Watcher
// behind a debounce map drained by a ticker, with an explicit Start/Stop
// lifecycle over a context.
package watch

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"anteater/internal/logging"
)

// Watcher watches root recursively for changes to files matching
// extensions, debouncing rapid-fire events and invoking onChange once per
// settled batch with the sorted set of changed paths.
type Watcher struct {
	fsw        *fsnotify.Watcher
	root       string
	extensions map[string]bool
	debounce   time.Duration
	onChange   func(paths []string)

	mu      sync.Mutex
	pending map[string]time.Time
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a Watcher rooted at root. extensions are matched against
// filepath.Ext (including the leading dot, e.g. ".dart"); a nil or empty
// slice watches every file. debounce of zero defaults to 300ms, matching
// the teacher's own MangleWatcher debounce window order of magnitude.
func New(root string, extensions []string, debounce time.Duration, onChange func(paths []string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	extSet := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		extSet[e] = true
	}
	return &Watcher{
		fsw:        fsw,
		root:       root,
		extensions: extSet,
		debounce:   debounce,
		onChange:   onChange,
		pending:    make(map[string]time.Time),
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}, nil
}

// Start walks root adding every directory to the watcher, then begins the
// event loop in a goroutine. Non-blocking.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if addErr := w.fsw.Add(path); addErr != nil {
				logging.Get(logging.CategorySession).Warn("watch: failed to add dir %s: %v", path, addErr)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	go w.run(ctx)
	return nil
}

// Stop halts the event loop and closes the underlying fsnotify watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	_ = w.fsw.Close()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.debounce / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategorySession).Error("watch: fsnotify error: %v", err)
		case <-ticker.C:
			w.flush()
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if !w.matches(ev.Name) {
		return
	}
	w.mu.Lock()
	w.pending[ev.Name] = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) matches(path string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	return w.extensions[filepath.Ext(path)]
}

func (w *Watcher) flush() {
	w.mu.Lock()
	now := time.Now()
	var settled []string
	for path, t := range w.pending {
		if now.Sub(t) >= w.debounce {
			settled = append(settled, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	if len(settled) == 0 {
		return
	}
	sort.Strings(settled)
	w.onChange(settled)
}
