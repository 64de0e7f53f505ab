package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReconfigurer struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (m *mockReconfigurer) Reconfigure(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.err
}

func (m *mockReconfigurer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func startWatcher(t *testing.T, path string, target Reconfigurer) *ConfigWatcher {
	t.Helper()
	w, err := New(path, target, 20*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("watcher did not stop")
		}
	})

	// Give the watcher time to register the directory.
	time.Sleep(50 * time.Millisecond)
	return w
}

func TestConfigWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))
	target := &mockReconfigurer{}
	w := startWatcher(t, path, target)

	require.NoError(t, os.WriteFile(path, []byte(`{"auto_sync_enabled":true}`), 0o600))

	assert.Eventually(t, func() bool { return target.count() >= 1 }, 2*time.Second, 10*time.Millisecond)
	assert.GreaterOrEqual(t, w.Reloads(), 1)
}

func TestConfigWatcher_ReloadsOnAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))
	target := &mockReconfigurer{}
	startWatcher(t, path, target)

	tmp := filepath.Join(dir, ".config-1.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte(`{"sync_interval":1}`), 0o600))
	require.NoError(t, os.Rename(tmp, path))

	assert.Eventually(t, func() bool { return target.count() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestConfigWatcher_DebouncesBursts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	target := &mockReconfigurer{}
	w, err := New(path, target, 200*time.Millisecond)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))
	}

	assert.Eventually(t, func() bool { return target.count() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 1, target.count())
}

func TestConfigWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	target := &mockReconfigurer{}
	startWatcher(t, path, target)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.toml"), []byte(`x = 1`), 0o600))

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, 0, target.count())
}

func TestConfigWatcher_MissingDirectory(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "missing", "config.json"), &mockReconfigurer{}, 0)
	require.NoError(t, err)

	err = w.Run(context.Background())

	assert.Error(t, err)
}

func TestConfigWatcher_Relevant(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	w, err := New(path, &mockReconfigurer{}, 0)
	require.NoError(t, err)
	defer w.watcher.Close()

	assert.True(t, w.relevant(fsnotify.Event{Name: path, Op: fsnotify.Write}))
	assert.True(t, w.relevant(fsnotify.Event{Name: path, Op: fsnotify.Create}))
	assert.False(t, w.relevant(fsnotify.Event{Name: path, Op: fsnotify.Chmod}))
	assert.False(t, w.relevant(fsnotify.Event{Name: path + ".tmp", Op: fsnotify.Write}))
	assert.Equal(t, DefaultDebounce, w.debounce)
}
