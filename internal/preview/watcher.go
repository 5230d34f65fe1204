package preview

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// addDirsRecursive registers root and every non-hidden directory below it.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(p)
	})
}

// shouldIgnoreEvent filters editor artefacts, hidden files and anything
// below the output directory or its staging siblings.
func shouldIgnoreEvent(ev fsnotify.Event, outputDir string) bool {
	if ev.Op == fsnotify.Chmod {
		return true
	}
	if outputDir != "" {
		out := filepath.Clean(outputDir)
		if ev.Name == out || strings.HasPrefix(ev.Name, out+string(filepath.Separator)) ||
			strings.HasPrefix(ev.Name, out+".staging-") || strings.HasPrefix(ev.Name, out+".prev") {
			return true
		}
	}
	base := filepath.Base(ev.Name)
	switch {
	case strings.HasPrefix(base, "."),
		strings.HasSuffix(base, "~"),
		strings.HasSuffix(base, ".swp"),
		strings.HasSuffix(base, ".swx"),
		strings.HasSuffix(base, ".tmp"),
		base == "4913":
		return true
	}
	return false
}

// watchNewDir starts watching directories created while the server runs.
func watchNewDir(w *fsnotify.Watcher, ev fsnotify.Event) {
	if !ev.Has(fsnotify.Create) {
		return
	}
	if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
		_ = addDirsRecursive(w, ev.Name)
	}
}

// debouncer coalesces bursts of triggers into one signal on C after delay
// of quiet.
type debouncer struct {
	delay time.Duration
	mu    sync.Mutex
	timer *time.Timer
	C     chan struct{}
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay, C: make(chan struct{}, 1)}
}

func (d *debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		select {
		case d.C <- struct{}{}:
		default:
		}
	})
}

func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}
