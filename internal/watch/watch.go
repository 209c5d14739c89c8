// Package watch reloads and re-validates a wildcard dataset whenever its
// files change on disk.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/agentic-research/wildcards/api"
	"github.com/agentic-research/wildcards/internal/ingest"
	"github.com/agentic-research/wildcards/internal/tree"
	"github.com/agentic-research/wildcards/internal/validator"
	"github.com/fsnotify/fsnotify"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/zap"
)

// Result is delivered after every reload.
type Result struct {
	Root   *api.Node
	Issues []api.Issue
	Err    error
}

// Stats tracks watcher activity.
type Stats struct {
	Events        int
	Reloads       int
	Errors        int
	LastEventTime time.Time
	LastEventPath string
}

type Option func(*Watcher)

// WithDebounce sets how long the dataset must be quiet before a reload.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(w *Watcher) {
		if log != nil {
			w.log = log
		}
	}
}

// WithOnChange registers the callback run after each reload. It runs on
// the watcher goroutine.
func WithOnChange(fn func(Result)) Option {
	return func(w *Watcher) { w.onChange = fn }
}

// Watcher watches a dataset file or directory. A file is watched through
// its parent directory so editors that save by rename are still seen.
type Watcher struct {
	mu       sync.RWMutex
	watcher  *fsnotify.Watcher
	path     string
	isDir    bool
	store    *tree.Store
	log      *zap.Logger
	onChange func(Result)
	debounce time.Duration
	pending  time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
	closed   sync.Once
	stats    Stats
}

const defaultDebounce = 200 * time.Millisecond

// New creates a watcher for path that publishes reloads into store.
func New(path string, store *tree.Store, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		watcher:  fw,
		path:     abs,
		isDir:    info.IsDir(),
		store:    store,
		log:      zap.NewNop(),
		debounce: defaultDebounce,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, o := range opts {
		o(w)
	}
	return w, nil
}

// Start registers the watches and begins the event loop. It does not block.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if w.isDir {
		if err := w.addTree(w.path); err != nil {
			return err
		}
	} else if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	w.log.Info("watching", zap.String("path", w.path), zap.Duration("debounce", w.debounce))

	go w.run(ctx)
	return nil
}

// Stop ends the event loop and releases the underlying watches. It is safe
// to call more than once, and must be called even if Start never was. A
// stopped watcher cannot be restarted.
func (w *Watcher) Stop() {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	w.closed.Do(func() {
		if err := w.watcher.Close(); err != nil {
			w.log.Error("closing watcher", zap.Error(err))
		}
		w.log.Debug("watcher stopped")
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	tick := max(w.debounce/4, 10*time.Millisecond)
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error("watch error", zap.Error(err))
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-ticker.C:
			w.mu.Lock()
			due := !w.pending.IsZero() && time.Since(w.pending) >= w.debounce
			if due {
				w.pending = time.Time{}
			}
			w.mu.Unlock()
			if due {
				w.Reload()
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod || !w.relevant(event.Name) {
		return
	}
	if w.isDir && event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.log.Warn("watch new directory", zap.String("path", event.Name), zap.Error(err))
			}
		}
	}
	w.log.Debug("change", zap.String("path", event.Name), zap.Stringer("op", event.Op))

	w.mu.Lock()
	w.stats.Events++
	w.stats.LastEventTime = time.Now()
	w.stats.LastEventPath = event.Name
	w.pending = time.Now()
	w.mu.Unlock()
}

// relevant filters events down to files that feed the dataset.
func (w *Watcher) relevant(name string) bool {
	if !w.isDir {
		return name == w.path
	}
	if strings.HasPrefix(filepath.Base(name), ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".yaml", ".yml", ".json":
		return true
	case "":
		// Directories come and go as a whole.
		return true
	}
	return false
}

// addTree watches dir and every directory below it.
func (w *Watcher) addTree(dir string) error {
	fs := osfs.New(dir)
	return util.Walk(fs, "/", func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		return w.watcher.Add(filepath.Join(dir, filepath.FromSlash(p)))
	})
}

// Reload loads the dataset, publishes it into the store, validates it and
// reports the outcome. A failed load keeps the previous snapshot.
func (w *Watcher) Reload() Result {
	root, err := ingest.Load(w.path)
	if err != nil {
		w.log.Warn("reload failed", zap.String("path", w.path), zap.Error(err))
		w.mu.Lock()
		w.stats.Errors++
		w.mu.Unlock()
		res := Result{Err: err}
		w.notify(res)
		return res
	}

	w.store.Swap(root)
	issues := validator.New(w.log).Validate(root)
	counts := api.CountIssues(issues)
	w.log.Info("reloaded",
		zap.String("path", w.path),
		zap.Int("errors", counts.Errors),
		zap.Int("warnings", counts.Warnings),
		zap.Int("info", counts.Info))

	w.mu.Lock()
	w.stats.Reloads++
	w.mu.Unlock()

	res := Result{Root: root, Issues: issues}
	w.notify(res)
	return res
}

func (w *Watcher) notify(res Result) {
	if w.onChange != nil {
		w.onChange(res)
	}
}

// Stats returns a copy of the activity counters.
func (w *Watcher) Stats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// IsWatching reports whether the event loop is running.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// WatchList returns the directories being watched.
func (w *Watcher) WatchList() []string {
	return w.watcher.WatchList()
}
