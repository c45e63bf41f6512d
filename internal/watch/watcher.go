// Package watch rebuilds the book when chapter sources change.
package watch

import (
	"context"
	"crypto/sha256"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when New is given a non-positive delay.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reports batches of changed files under a root directory.
type Watcher struct {
	root     string
	debounce time.Duration
	match    func(rel string) bool
	log      *slog.Logger
	fsw      *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]struct{}
	hashes  map[string][32]byte
}

// New watches root and every non-hidden subdirectory. match selects which
// files (by slash-separated path relative to root) are reported; nil matches
// everything.
func New(root string, debounce time.Duration, match func(rel string) bool, log *slog.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if match == nil {
		match = func(string) bool { return true }
	}
	if log == nil {
		log = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		root:     root,
		debounce: debounce,
		match:    match,
		log:      log,
		fsw:      fsw,
		pending:  make(map[string]struct{}),
		hashes:   make(map[string][32]byte),
	}
	if err := w.addRecursive(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run delivers debounced, sorted batches of changed paths to onChange until
// ctx is canceled. The watcher is closed when Run returns.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context, paths []string)) error {
	defer w.fsw.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.handle(event) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watcher error", "error", err)

		case <-timer.C:
			if paths := w.flush(); len(paths) > 0 {
				w.log.Info("sources changed", "paths", paths)
				onChange(ctx, paths)
			}
		}
	}
}

// handle records an event and reports whether it should (re)arm the timer.
func (w *Watcher) handle(event fsnotify.Event) bool {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !skipDir(filepath.Base(event.Name)) {
				if err := w.addRecursive(event.Name); err != nil {
					w.log.Warn("failed to watch new directory", "path", event.Name, "error", err)
				}
			}
			return false
		}
	}
	if event.Op == fsnotify.Chmod {
		return false
	}

	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if !w.match(rel) {
		return false
	}

	w.mu.Lock()
	w.pending[rel] = struct{}{}
	w.mu.Unlock()
	w.log.Debug("change detected", "path", rel, "op", event.Op.String())
	return true
}

// flush drains pending paths, dropping files whose content is unchanged
// since the last batch.
func (w *Watcher) flush() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var out []string
	for rel := range w.pending {
		data, err := os.ReadFile(filepath.Join(w.root, filepath.FromSlash(rel)))
		if errors.Is(err, fs.ErrNotExist) {
			delete(w.hashes, rel)
			out = append(out, rel)
			continue
		}
		if err != nil {
			w.log.Warn("failed to read changed file", "path", rel, "error", err)
			out = append(out, rel)
			continue
		}
		sum := sha256.Sum256(data)
		if old, ok := w.hashes[rel]; ok && old == sum {
			continue
		}
		w.hashes[rel] = sum
		out = append(out, rel)
	}
	clear(w.pending)
	sort.Strings(out)
	return out
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.log.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func skipDir(name string) bool {
	return (strings.HasPrefix(name, ".") && name != ".") || name == "node_modules" || name == "target"
}
