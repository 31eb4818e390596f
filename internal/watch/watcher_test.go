package watch

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidyd/internal/errors"
)

func TestWatcherDeliversCreateEvents(t *testing.T) {
	dir := t.TempDir()

	w, err := New()
	require.NoError(t, err)
	require.NoError(t, w.Watch(dir))
	require.NoError(t, w.Start())
	defer w.Stop()

	assert.True(t, w.IsRunning())
	assert.Equal(t, dir, w.Directory())

	// Allow fsnotify to settle before producing events.
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(dir, "incoming.txt")
	dropFile(t, path, "payload")

	select {
	case ev, ok := <-w.Events():
		require.True(t, ok, "event channel closed unexpectedly")
		assert.Equal(t, path, ev.Name)
		assert.True(t, ev.Op.Has(fsnotify.Create), "expected a create notification, got %s", ev.Op)
		assert.False(t, ev.Timestamp.IsZero())
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for create event")
	}
}

func TestWatcherStopClosesEventChannel(t *testing.T) {
	dir := t.TempDir()

	w, err := New()
	require.NoError(t, err)
	require.NoError(t, w.Watch(dir))
	require.NoError(t, w.Start())

	w.Stop()
	assert.False(t, w.IsRunning())

	// Drain anything buffered; the loop's deferred close must follow.
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-w.Events():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("event channel was not closed after Stop")
		}
	}
}

func TestWatcherCannotRestart(t *testing.T) {
	dir := t.TempDir()

	w, err := New()
	require.NoError(t, err)
	require.NoError(t, w.Watch(dir))
	require.NoError(t, w.Start())
	w.Stop()

	err = w.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be restarted")
}

func TestWatchRejectsMissingDirectory(t *testing.T) {
	w, err := New()
	require.NoError(t, err)

	err = w.Watch(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)

	var fileErr *errors.FileError
	require.True(t, errors.As(err, &fileErr))
	assert.Equal(t, errors.WatchFailed, fileErr.Kind())
}

func TestWatchRejectsRegularFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.txt")
	dropFile(t, path, "not a directory")

	w, err := New()
	require.NoError(t, err)

	err = w.Watch(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestStartWithoutWatchDirectory(t *testing.T) {
	w, err := New()
	require.NoError(t, err)

	err = w.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no watch directory")
}
