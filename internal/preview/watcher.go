package preview

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors the docs tree and plugin watch paths and fires a
// debounced callback when content changes.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onChange func(path string)

	mu    sync.Mutex
	trees map[string]bool            // roots watched recursively
	files map[string]map[string]bool // dir -> basenames watched as single files
}

// NewWatcher creates a watcher with a 500ms debounce window.
func NewWatcher(onChange func(path string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	return &Watcher{
		watcher:  fw,
		debounce: 500 * time.Millisecond,
		onChange: onChange,
		trees:    map[string]bool{},
		files:    map[string]map[string]bool{},
	}, nil
}

// Add registers a path. Directories are watched recursively. Single files
// are watched through their parent directory with a basename filter, since
// editors replace files on save and a direct file watch dies with the old
// inode. Missing paths are skipped with a warning so optional watch entries
// do not break serve mode.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve watch path %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		slog.Warn("Watch path does not exist, skipping", "path", path)
		return nil
	}
	if !info.IsDir() {
		dir := filepath.Dir(abs)
		w.mu.Lock()
		if w.files[dir] == nil {
			w.files[dir] = map[string]bool{}
		}
		w.files[dir][filepath.Base(abs)] = true
		w.mu.Unlock()
		return w.watcher.Add(dir)
	}

	w.mu.Lock()
	w.trees[abs] = true
	w.mu.Unlock()
	return filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && p != abs {
			return filepath.SkipDir
		}
		return w.watcher.Add(p)
	})
}

// relevant reports whether an event path belongs to a registered watch.
// Parent directories joined for single-file watches also surface events
// for their other children, which must not trigger rebuilds.
func (w *Watcher) relevant(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if names, ok := w.files[filepath.Dir(name)]; ok && names[filepath.Base(name)] {
		return true
	}
	for root := range w.trees {
		if name == root || strings.HasPrefix(name, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// Run processes events until the context is canceled. Rapid event bursts
// collapse into a single onChange call.
func (w *Watcher) Run(ctx context.Context) {
	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending string
	)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !w.relevant(event.Name) {
				continue
			}
			// New directories need to join the watch set.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.watcher.Add(event.Name)
				}
			}
			pending = event.Name
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case <-timerC:
			timer = nil
			timerC = nil
			slog.Debug("Change detected", "path", pending)
			w.onChange(pending)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("File watcher error", "error", err)
		}
	}
}

// Close releases the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
