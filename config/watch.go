package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"go-synthy/debug"
)

// Watcher reloads the config file when it changes and pushes the new
// lookahead into the shared cell
type Watcher struct {
	path    string
	cell    *Lookahead
	watcher *fsnotify.Watcher
}

// NewWatcher starts watching path's directory. Editors often replace files
// by rename, so the directory is watched and events are filtered by name.
func NewWatcher(path string, cell *Lookahead) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	return &Watcher{path: filepath.Clean(path), cell: cell, watcher: fw}, nil
}

// Run blocks until ctx is cancelled (run in goroutine)
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			// Rename and Remove mean the file moved away; a file renamed
			// into place arrives as Create
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.reload()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			debug.Log("config", "watch error: %v", err)
		}
	}
}

func (w *Watcher) reload() {
	// LoadFrom would hand back defaults for a missing file
	if _, err := os.Stat(w.path); err != nil {
		debug.Log("config", "reload %s: %v", w.path, err)
		return
	}
	cfg, err := LoadFrom(w.path)
	if err != nil {
		// Half-written file; the next write event will retry
		debug.Log("config", "reload %s: %v", w.path, err)
		return
	}
	d := cfg.Lookahead()
	if d < MinLookahead {
		d = MinLookahead
	}
	w.cell.Store(d)
	debug.Log("config", "lookahead reloaded: %v", d)
}
