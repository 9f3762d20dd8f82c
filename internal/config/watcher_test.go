package config

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "baocreds.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vault:\n  roleId: first\n"), 0o600))

	reloaded := make(chan *Config, 4)
	w, err := NewWatcher(path, func(cfg *Config) { reloaded <- cfg }, WithDebounceDelay(10*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer func() { _ = w.Stop() }()

	require.NoError(t, os.WriteFile(path, []byte("vault:\n  roleId: second\n"), 0o600))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, "second", cfg.Vault.RoleID)
	case <-time.After(5 * time.Second):
		t.Fatal("configuration was not reloaded")
	}
}

func TestWatcher_InvalidFileKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "baocreds.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vault:\n  roleId: first\n"), 0o600))

	var reloads atomic.Int32
	failures := make(chan error, 4)
	w, err := NewWatcher(path,
		func(*Config) { reloads.Add(1) },
		WithDebounceDelay(10*time.Millisecond),
		WithErrorHandler(func(err error) { failures <- err }),
	)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer func() { _ = w.Stop() }()

	require.NoError(t, os.WriteFile(path, []byte("vault:\n  client: grpc\n"), 0o600))

	select {
	case err := <-failures:
		assert.Contains(t, err.Error(), "vault.client")
	case <-time.After(5 * time.Second):
		t.Fatal("invalid configuration was not reported")
	}
	assert.Equal(t, int32(0), reloads.Load())
}

func TestWatcher_StopAfterCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baocreds.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	w, err := NewWatcher(path, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	require.NoError(t, w.Start(ctx))
	cancel()

	assert.NoError(t, w.Stop())
}
