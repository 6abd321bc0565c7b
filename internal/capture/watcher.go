package capture

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/nikbrunner/spots/internal/model"
)

// DefaultDebounce is how long a snapshot must be quiet before a re-scan.
const DefaultDebounce = 500 * time.Millisecond

// Watcher re-scans saved page snapshots (*.html) in a directory as they
// change. Bursts of writes to one file produce a single scan.
type Watcher struct {
	dir      string
	scanner  *Scanner
	onPosts  func(path string, posts []model.CapturedPost)
	debounce time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	pending map[string]time.Time
	seen    map[string]bool
}

// NewWatcherParams holds parameters for creating a Watcher.
type NewWatcherParams struct {
	Dir      string
	Scanner  *Scanner
	OnPosts  func(path string, posts []model.CapturedPost)
	Debounce time.Duration
	Logger   *zap.Logger
}

// NewWatcher creates a Watcher.
func NewWatcher(params NewWatcherParams) *Watcher {
	scanner := params.Scanner
	if scanner == nil {
		scanner = NewScanner(NewScannerParams{Logger: params.Logger})
	}
	debounce := params.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		dir:      params.Dir,
		scanner:  scanner,
		onPosts:  params.OnPosts,
		debounce: debounce,
		logger:   logger,
		pending:  make(map[string]time.Time),
		seen:     make(map[string]bool),
	}
}

// Run watches until ctx is cancelled. Snapshots already in the directory
// are scanned once at start.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return err
	}
	w.logger.Info("watching snapshots", zap.String("dir", w.dir))

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir() && isSnapshot(e.Name()) {
			w.scanFile(filepath.Join(w.dir, e.Name()))
		}
	}

	tick := w.debounce / 5
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return errors.New("watcher event channel closed")
			}
			if !isSnapshot(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			w.mu.Lock()
			w.pending[event.Name] = time.Now()
			w.mu.Unlock()

		case err, ok := <-fw.Errors:
			if !ok {
				return errors.New("watcher error channel closed")
			}
			w.logger.Warn("watch error", zap.Error(err))

		case <-ticker.C:
			for _, path := range w.due(time.Now()) {
				w.scanFile(path)
			}
		}
	}
}

// due removes and returns the files that have been quiet long enough.
func (w *Watcher) due(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	return ready
}

func (w *Watcher) scanFile(path string) {
	f, err := os.Open(path)
	if err != nil {
		w.logger.Warn("open snapshot", zap.String("path", path), zap.Error(err))
		return
	}
	defer f.Close()

	_, posts, err := w.scanner.ScanReader(f, "")
	if err != nil {
		w.logger.Warn("parse snapshot", zap.String("path", path), zap.Error(err))
		return
	}

	// Each scan parses a fresh DOM, so markers do not survive between
	// scans of the same file; remember what was already reported.
	fresh := posts[:0]
	w.mu.Lock()
	for _, p := range posts {
		key := p.URL + "\x00" + p.Content
		if w.seen[key] {
			continue
		}
		w.seen[key] = true
		fresh = append(fresh, p)
	}
	w.mu.Unlock()

	if len(fresh) == 0 {
		return
	}
	w.logger.Debug("new posts in snapshot", zap.String("path", path), zap.Int("count", len(fresh)))
	if w.onPosts != nil {
		w.onPosts(path, fresh)
	}
}

func isSnapshot(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".html" || ext == ".htm"
}
