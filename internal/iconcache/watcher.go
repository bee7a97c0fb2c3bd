package iconcache

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"dirdirector/internal/models"
)

// Watcher reports changes to the icon files of a cache directory
type Watcher struct {
	root     string
	watcher  *fsnotify.Watcher
	debounce time.Duration
}

// NewWatcher watches root and every directory below it
func NewWatcher(root string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		root:     root,
		watcher:  fw,
		debounce: 300 * time.Millisecond,
	}
	if err := w.addRecursive(root); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			debugLog("watch %s: %v", path, err)
		}
		return nil
	})
}

// relevant reports whether an event can change the index
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = w.addRecursive(event.Name)
			return true
		}
	}
	// Removed directories cannot be stat'ed, so any removal without an
	// extension may have been a directory holding icons.
	return models.IsIconFile(event.Name) || filepath.Ext(event.Name) == ""
}

// Wait blocks until an icon change has been seen and the directory has
// been quiet for the debounce interval.
func (w *Watcher) Wait(ctx context.Context) error {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return errors.New("watcher closed")
			}
			if !w.relevant(event) {
				continue
			}
			debugLog("change: %s", event)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return errors.New("watcher closed")
			}
			debugLog("watch error: %v", err)
		case <-fire:
			return nil
		}
	}
}

// Close stops watching
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
