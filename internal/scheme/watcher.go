package scheme

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Watcher monitors a corpus file for edits and swaps in the reloaded corpus
// when the file changes. It uses polling (not fsnotify) to keep dependencies
// minimal; district offices edit the corpus YAML in place and a few seconds
// of delay is acceptable.
type Watcher struct {
	path     string
	interval time.Duration
	onChange func(old, new *Corpus)

	mu       sync.Mutex
	current  *Corpus
	done     chan struct{}
	stopOnce sync.Once

	// last known file state for change detection
	lastMtime time.Time
	lastHash  [sha256.Size]byte
}

// WatcherOption configures a [Watcher].
type WatcherOption func(*Watcher)

// WithInterval sets the polling interval. The default is 30 seconds.
func WithInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// NewWatcher creates a corpus file watcher. It loads the initial corpus
// immediately and starts polling in a background goroutine. onChange runs
// after every successful reload; a file that fails to parse keeps the
// previous corpus.
func NewWatcher(path string, onChange func(old, new *Corpus), opts ...WatcherOption) (*Watcher, error) {
	w := &Watcher{
		path:     path,
		interval: 30 * time.Second,
		onChange: onChange,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	c, hash, mtime, err := w.loadAndHash()
	if err != nil {
		return nil, fmt.Errorf("scheme: watcher initial load: %w", err)
	}
	w.current = c
	w.lastHash = hash
	w.lastMtime = mtime

	go w.poll()
	return w, nil
}

// Current returns the most recently loaded valid corpus.
func (w *Watcher) Current() *Corpus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Stop stops the file watcher.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
	})
}

func (w *Watcher) poll() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.check()
		}
	}
}

// check reads the corpus file and, if it has changed and parses cleanly,
// calls onChange and updates the current corpus.
func (w *Watcher) check() {
	// Quick mtime check first to avoid hashing unchanged files.
	info, err := os.Stat(w.path)
	if err != nil {
		slog.Warn("corpus watcher: cannot stat file", "path", w.path, "err", err)
		return
	}

	w.mu.Lock()
	mtime := w.lastMtime
	w.mu.Unlock()

	if info.ModTime().Equal(mtime) {
		return
	}

	c, hash, newMtime, err := w.loadAndHash()
	if err != nil {
		slog.Warn("corpus watcher: failed to load corpus", "path", w.path, "err", err)
		return
	}

	w.mu.Lock()

	if hash == w.lastHash {
		// File was touched but content is identical.
		w.lastMtime = newMtime
		w.mu.Unlock()
		return
	}

	old := w.current
	w.current = c
	w.lastHash = hash
	w.lastMtime = newMtime
	w.mu.Unlock()

	slog.Info("corpus watcher: corpus reloaded", "path", w.path, "schemes", c.Len())

	// Invoke the callback outside the lock so it can safely call Current().
	if w.onChange != nil {
		w.onChange(old, c)
	}
}

// loadAndHash reads the corpus file, parses and validates it, and returns the
// corpus alongside the file's SHA-256 hash and modification time.
func (w *Watcher) loadAndHash() (*Corpus, [sha256.Size]byte, time.Time, error) {
	var zeroHash [sha256.Size]byte

	f, err := os.Open(w.path)
	if err != nil {
		return nil, zeroHash, time.Time{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, zeroHash, time.Time{}, err
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, zeroHash, time.Time{}, err
	}

	hash := sha256.Sum256(data)

	c, err := LoadCorpusFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, zeroHash, time.Time{}, err
	}

	return c, hash, info.ModTime(), nil
}
