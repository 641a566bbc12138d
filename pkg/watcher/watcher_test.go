package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type changeRecorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *changeRecorder) record(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func (r *changeRecorder) seen(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.paths {
		if p == path {
			return true
		}
	}
	return false
}

func (r *changeRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.paths)
}

func newTestWatcher(t *testing.T) (*Watcher, *changeRecorder) {
	t.Helper()
	rec := &changeRecorder{}
	w, err := New(Config{
		StabilityThreshold: 20 * time.Millisecond,
		OnChange:           rec.record,
	})
	require.NoError(t, err)
	w.Start()
	t.Cleanup(func() { _ = w.Stop() })
	return w, rec
}

func touch(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWatch_ReportsExternalWrite(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "main.go")
	touch(t, file, "v1")

	w, rec := newTestWatcher(t)
	require.NoError(t, w.Watch(file))

	touch(t, file, "v2")

	require.Eventually(t, func() bool { return rec.seen(file) },
		2*time.Second, 10*time.Millisecond)
}

func TestWatch_SuppressedChangesAreDropped(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "main.go")
	touch(t, file, "v1")

	w, rec := newTestWatcher(t)
	require.NoError(t, w.Watch(file))

	w.Suppress()
	touch(t, file, "v2")
	time.Sleep(200 * time.Millisecond)
	assert.Zero(t, rec.count())

	// Suppression drops events for good; only changes after Resume fire.
	w.Resume()
	touch(t, file, "v3")
	require.Eventually(t, func() bool { return rec.seen(file) },
		2*time.Second, 10*time.Millisecond)
}

func TestUnwatch_StopsReporting(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "main.go")
	touch(t, file, "v1")

	w, rec := newTestWatcher(t)
	require.NoError(t, w.Watch(file))
	w.Unwatch(file)

	touch(t, file, "v2")
	time.Sleep(200 * time.Millisecond)
	assert.Zero(t, rec.count())
}

func TestWatch_IdempotentAdd(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "main.go")
	touch(t, file, "v1")

	w, _ := newTestWatcher(t)
	require.NoError(t, w.Watch(file))
	require.NoError(t, w.Watch(file))
}

func TestWatch_MissingFileFails(t *testing.T) {
	w, _ := newTestWatcher(t)
	assert.Error(t, w.Watch(filepath.Join(t.TempDir(), "absent.go")))
}

func TestStop_Twice(t *testing.T) {
	w, err := New(Config{})
	require.NoError(t, err)
	w.Start()

	require.NoError(t, w.Stop())
	// Second close surfaces fsnotify's error but must not panic.
	assert.NotPanics(t, func() { _ = w.Stop() })
}

func TestWatch_DebouncesRapidWrites(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "main.go")
	touch(t, file, "v1")

	w, rec := newTestWatcher(t)
	require.NoError(t, w.Watch(file))

	for i := 0; i < 5; i++ {
		touch(t, file, "burst")
	}

	require.Eventually(t, func() bool { return rec.count() >= 1 },
		2*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.LessOrEqual(t, rec.count(), 2, "burst of writes should coalesce")
}
