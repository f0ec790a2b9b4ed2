package daemon

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// watcher turns file system events on the inputs into debounced reload
// triggers.
type watcher struct {
	fs       *fsnotify.Watcher
	files    map[string]struct{} // explicit file inputs
	dirs     map[string]struct{} // directory inputs: any *.csv inside counts
	debounce time.Duration
	trigger  chan<- struct{}
	log      *log.Logger
}

// newWatcher watches the parent directory of each file input and each
// directory input. Editors that save atomically replace the file, so the
// directory is the reliable thing to watch.
func newWatcher(paths []string, debounce time.Duration, trigger chan<- struct{}, logger *log.Logger) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &watcher{
		fs:       fsw,
		files:    make(map[string]struct{}),
		dirs:     make(map[string]struct{}),
		debounce: debounce,
		trigger:  trigger,
		log:      logger,
	}

	watched := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		dir := filepath.Dir(abs)
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			dir = abs
			w.dirs[abs] = struct{}{}
		} else {
			w.files[abs] = struct{}{}
		}
		if _, ok := watched[dir]; ok {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
		watched[dir] = struct{}{}
	}
	return w, nil
}

// relevant reports whether an event path is one of the inputs.
func (w *watcher) relevant(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		abs = name
	}
	if _, ok := w.files[abs]; ok {
		return true
	}
	if !strings.EqualFold(filepath.Ext(abs), ".csv") || strings.HasPrefix(filepath.Base(abs), ".") {
		return false
	}
	_, ok := w.dirs[filepath.Dir(abs)]
	return ok
}

func (w *watcher) run(ctx context.Context) {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 || !w.relevant(ev.Name) {
				continue
			}
			w.log.Debug("input changed", "op", ev.Op.String(), "file", ev.Name)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			select {
			case w.trigger <- struct{}{}:
			default:
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Error("file watcher error", "err", err)
		}
	}
}

func (w *watcher) Close() error {
	return w.fs.Close()
}
