package dataview

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchManifest reloads path into the registry whenever the file is written or replaced.
// onReload receives the result of every reload attempt. It blocks until ctx is done.
func (r *Registry) WatchManifest(ctx context.Context, path string, onReload func(*ManifestDocument, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("dataview: create manifest watcher: %w", err)
	}
	defer watcher.Close()

	// editors replace files on save, so watch the directory and filter by name
	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("dataview: watch %s: %w", target, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			doc, err := r.LoadManifestFile(target)
			if onReload != nil {
				onReload(doc, err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if onReload != nil {
				onReload(nil, fmt.Errorf("dataview: manifest watcher: %w", err))
			}
		}
	}
}
