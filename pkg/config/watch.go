package config

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDelay coalesces the burst of events a single save produces.
const reloadDelay = 100 * time.Millisecond

// Watch reloads filename whenever it is written and passes the new
// configuration to fn. fn runs on the watcher goroutine. Watching stops when
// ctx is cancelled.
func Watch(ctx context.Context, filename string, fn func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	// Editors replace files, so watch the directory.
	if err := watcher.Add(filepath.Dir(filename)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch config directory: %w", err)
	}

	go func() {
		defer watcher.Close()

		reload := time.NewTimer(reloadDelay)
		reload.Stop()
		defer reload.Stop()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != filepath.Base(filename) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				reload.Reset(reloadDelay)

			case <-reload.C:
				cfg, err := Load(filename)
				if err != nil {
					log.Printf("Config reload failed: %v", err)
					continue
				}
				fn(cfg)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("Config watcher error: %v", err)
			}
		}
	}()

	return nil
}
