package watch

import (
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWatcher(t *testing.T, extensions []string) *Watcher {
	t.Helper()
	w, err := New(t.TempDir(), extensions, 0, func(paths []string) {})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.fsw.Close() })
	return w
}

func TestNew_DefaultsDebounceWhenUnset(t *testing.T) {
	w := newTestWatcher(t, nil)
	assert.Equal(t, 300*time.Millisecond, w.debounce)
}

func TestMatches_EmptyExtensionSetMatchesEverything(t *testing.T) {
	w := newTestWatcher(t, nil)
	assert.True(t, w.matches("/a/b/c.go"))
	assert.True(t, w.matches("/a/b/c"))
}

func TestMatches_FiltersByExtension(t *testing.T) {
	w := newTestWatcher(t, []string{".dart"})
	assert.True(t, w.matches("/a/b/c.dart"))
	assert.False(t, w.matches("/a/b/c.go"))
}

func TestHandleEvent_IgnoresNonMatchingExtension(t *testing.T) {
	w := newTestWatcher(t, []string{".dart"})
	w.handleEvent(fsnotify.Event{Name: "/a/b/c.go", Op: fsnotify.Write})

	w.mu.Lock()
	n := len(w.pending)
	w.mu.Unlock()
	assert.Equal(t, 0, n)
}

func TestFlush_OnlyEmitsPathsPastTheDebounceWindow(t *testing.T) {
	var got []string
	w := newTestWatcher(t, nil)
	w.debounce = 10 * time.Millisecond
	w.onChange = func(paths []string) { got = paths }

	w.mu.Lock()
	w.pending["stale.dart"] = time.Now().Add(-1 * time.Hour)
	w.pending["fresh.dart"] = time.Now()
	w.mu.Unlock()

	w.flush()

	assert.Equal(t, []string{"stale.dart"}, got)
	w.mu.Lock()
	_, stillPending := w.pending["fresh.dart"]
	w.mu.Unlock()
	assert.True(t, stillPending)
}

func TestFlush_NoOpWhenNothingSettled(t *testing.T) {
	called := false
	w := newTestWatcher(t, nil)
	w.onChange = func(paths []string) { called = true }

	w.flush()

	assert.False(t, called)
}

func TestStop_IsIdempotentWhenNeverStarted(t *testing.T) {
	w := newTestWatcher(t, nil)
	assert.NotPanics(t, func() { w.Stop() })
}
