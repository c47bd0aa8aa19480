package hubconsole

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Watcher reports changes below a directory after they settle.
type Watcher struct {
	watcher  *fsnotify.Watcher
	dir      string
	debounce time.Duration
	onChange func(path string)
	log      *zap.Logger
}

// NewWatcher watches dir and all its subdirectories. onChange receives the
// last changed path once no event arrived for debounce.
func NewWatcher(dir string, debounce time.Duration, onChange func(path string), log *zap.Logger) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating watcher")
	}

	w := &Watcher{
		watcher:  watcher,
		dir:      dir,
		debounce: debounce,
		onChange: onChange,
		log:      log,
	}
	if err := w.addTree(dir); err != nil {
		watcher.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return errors.Wrapf(w.watcher.Add(p), "watching %s", p)
	})
}

// Run delivers changes until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()

	var (
		pending string
		fire    <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						w.log.Warn("watching new directory", zap.Error(err))
					}
				}
			}
			pending = event.Name
			fire = time.After(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", zap.String("dir", w.dir), zap.Error(err))

		case <-fire:
			fire = nil
			rel, err := filepath.Rel(w.dir, pending)
			if err != nil {
				rel = pending
			}
			w.onChange(filepath.ToSlash(rel))
		}
	}
}
