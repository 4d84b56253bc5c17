package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, path string, calls *atomic.Int32) {
	t.Helper()

	w := New(path, func(context.Context) error {
		calls.Add(1)
		return nil
	})
	w.SetDebounce(50 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})

	// let the watch register
	time.Sleep(100 * time.Millisecond)
}

func TestWatcher_WriteTriggersOnce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "targets.txt")
	require.NoError(t, os.WriteFile(path, []byte("smb://a\n"), 0o644))

	var calls atomic.Int32
	startWatcher(t, path, &calls)

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("smb://a\nsmb://b\n"), 0o644))
	}

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 20*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWatcher_RenameOver(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "targets.txt")
	require.NoError(t, os.WriteFile(path, []byte("smb://a\n"), 0o644))

	var calls atomic.Int32
	startWatcher(t, path, &calls)

	tmp := filepath.Join(dir, ".targets.swp")
	require.NoError(t, os.WriteFile(tmp, []byte("smb://c\n"), 0o644))
	require.NoError(t, os.Rename(tmp, path))

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 20*time.Millisecond)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "targets.txt")
	require.NoError(t, os.WriteFile(path, []byte("smb://a\n"), 0o644))

	var calls atomic.Int32
	startWatcher(t, path, &calls)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))

	time.Sleep(300 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "nope", "targets.txt"), func(context.Context) error { return nil })
	assert.Error(t, w.Run(context.Background()))
}

func TestParseTargets(t *testing.T) {
	in := `
# lab hosts
smb://fs01
  smb://fs02/public  

smb://fs01
#smb://disabled
`
	got, err := ParseTargets(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"smb://fs01", "smb://fs02/public"}, got)
}

func TestReadTargets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.txt")
	require.NoError(t, os.WriteFile(path, []byte("smb://a\nsmb://b\n"), 0o644))

	got, err := ReadTargets(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"smb://a", "smb://b"}, got)

	_, err = ReadTargets(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
