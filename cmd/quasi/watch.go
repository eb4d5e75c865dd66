package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce is how long path must be quiet before it is rendered.
const watchDebounce = 100 * time.Millisecond

// watch calls rerender once and then again each time path changes, until
// ctx is done.
func (a *app) watch(ctx context.Context, path string, rerender func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	// Watch the directory; editors often replace the file on save.
	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	a.logger.Info("watching", "file", path)

	rerender()
	watchLoop(ctx, path, w.Events, w.Errors, rerender, func(err error) {
		a.logger.Warn("watcher error", "error", err)
	})
	return nil
}

// watchLoop reruns rerender for write and create events on path. Each event
// restarts a watchDebounce timer and rerender runs once the timer fires, so
// a burst of saves renders the final content once.
func watchLoop(ctx context.Context, path string, events <-chan fsnotify.Event, errs <-chan error, rerender func(), onError func(error)) {
	target := filepath.Clean(path)
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Stop()
				timer.Reset(watchDebounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			rerender()

		case err, ok := <-errs:
			if !ok {
				return
			}
			onError(err)
		}
	}
}
