// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package console

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/ezrec/linkscript/scheduler"
)

// WATCH_DEBOUNCE collapses the burst of events an editor save produces.
const WATCH_DEBOUNCE = 200 * time.Millisecond

// ExecuteFile reads a script file and executes it.
func (c *Console) ExecuteFile(ctx context.Context, path string) (outcome scheduler.Outcome, err error) {
	source, err := os.ReadFile(path)
	if err != nil {
		err = &ErrScriptFile{Path: path, Err: err}
		return
	}

	outcome, err = c.ExecuteScript(ctx, string(source))
	return
}

// WatchScript executes the script at path, then executes it again each
// time the file is written, until ctx is cancelled. The directory is
// watched rather than the file, so editors that replace the file on save
// are followed.
func (c *Console) WatchScript(ctx context.Context, path string) (err error) {
	path, err = filepath.Abs(path)
	if err != nil {
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return
	}
	defer watcher.Close()

	err = watcher.Add(filepath.Dir(path))
	if err != nil {
		return
	}

	_, err = c.ExecuteFile(ctx, path)
	if err != nil {
		return
	}

	log := c.log.With(zap.String("path", path))

	debounce := time.NewTimer(WATCH_DEBOUNCE)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			debounce.Reset(WATCH_DEBOUNCE)
		case <-debounce.C:
			log.Info("console: script changed")
			_, runErr := c.ExecuteFile(ctx, path)
			if runErr != nil {
				log.Warn("console: reload", zap.Error(runErr))
			}
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Warn("console: watch", zap.Error(watchErr))
		}
	}
}
