package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/benz9527/xcoll/lib/xlog"
)

func TestWatchOpsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ops.txt")
	require.NoError(t, os.WriteFile(path, []byte("+1\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan []Op, 8)
	done := make(chan error, 1)
	go func() {
		done <- watchOpsFile(ctx, path, xlog.NewNopXLogger(), func(context.Context) error {
			cfg := &config{OpsFile: path}
			ops, err := cfg.loadOps()
			if err != nil {
				return nil
			}
			select {
			case changed <- ops:
			default:
			}
			return nil
		})
	}()

	// Other files in the same directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("+9\n"), 0o644))

	want := []Op{{Kind: OpInsert, Key: 1}, {Kind: OpDelete, Key: 1}}
	require.Eventually(t, func() bool {
		// Rewrite until the watcher has been registered and seen it.
		_ = os.WriteFile(path, []byte("+1 -1\n"), 0o644)
		select {
		case ops := <-changed:
			return len(ops) == len(want) && ops[1] == want[1]
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 100*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatchOpsFile_MissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent", "ops.txt")
	err := watchOpsFile(context.Background(), path, xlog.NewNopXLogger(), func(context.Context) error {
		return nil
	})
	require.Error(t, err)
}
