package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWatcher(t *testing.T) (*Watcher, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "review.json")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0644))

	w, err := New(path, 50*time.Millisecond)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	return w, path
}

func TestNew_MissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope", "review.json"), 0)
	assert.Error(t, err)
}

func TestNew_DefaultDebounce(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "review.json"), 0)
	require.NoError(t, err)
	defer w.Close()
	assert.Equal(t, DefaultDebounce, w.debounce)
	assert.True(t, filepath.IsAbs(w.Path()))
}

func TestRun_DebouncesWrites(t *testing.T) {
	w, path := newTestWatcher(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	called := make(chan struct{}, 10)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(context.Context) error {
			calls.Add(1)
			called <- struct{}{}
			return nil
		})
	}()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("{}\n{}\n"), 0644))
	}

	select {
	case <-called:
	case <-time.After(5 * time.Second):
		t.Fatal("callback not called after file change")
	}

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_IgnoresOtherFiles(t *testing.T) {
	w, path := newTestWatcher(t)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	var calls atomic.Int32
	go func() {
		time.Sleep(20 * time.Millisecond)
		os.WriteFile(filepath.Join(filepath.Dir(path), "other.json"), []byte("x"), 0644)
	}()

	err := w.Run(ctx, func(context.Context) error {
		calls.Add(1)
		return nil
	})
	assert.NoError(t, err)
	assert.Zero(t, calls.Load())
}

func TestRun_CallbackError(t *testing.T) {
	w, path := newTestWatcher(t)
	boom := errors.New("boom")

	go func() {
		time.Sleep(20 * time.Millisecond)
		os.WriteFile(path, []byte("changed\n"), 0644)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := w.Run(ctx, func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}
