package main

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/benz9527/xcoll/lib/xlog"
)

// watchOpsFile runs onChange after every write of the file until ctx is done.
// The parent directory is watched, editors often replace the file on save.
func watchOpsFile(ctx context.Context, path string, logger xlog.XLogger, onChange func(ctx context.Context) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() {
		_ = watcher.Close()
	}()

	target := filepath.Clean(path)
	if err = watcher.Add(filepath.Dir(target)); err != nil {
		return err
	}
	logger.Info("watching ops file", zap.String("path", target))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target ||
				!(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			logger.Debug("ops file changed", zap.String("op", event.Op.String()))
			if err = onChange(ctx); err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error(err, "ops file watcher failed")
		}
	}
}
