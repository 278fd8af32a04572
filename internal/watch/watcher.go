// Package watch recompiles facts documents as the analyzer rewrites them.
package watch

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultPatterns are the facts document extensions watched by default
var DefaultPatterns = []string{"*.yml", "*.yaml", "*.json"}

// DefaultDelay is how long changes settle before a rebuild is triggered
const DefaultDelay = 100 * time.Millisecond

// FileWatcher monitors directories of facts documents and reports changed
// files in debounced batches
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	dirs      []string
	patterns  []string
	ignored   []string
	logger    *zap.Logger
	onChange  func([]string) error
	onRemove  func(string) error
	stopChan  chan struct{}
	wg        sync.WaitGroup
}

// Options configure a FileWatcher
type Options struct {
	// Dirs are watched non-recursively
	Dirs []string
	// Patterns select files by base name; empty means DefaultPatterns
	Patterns []string
	// Ignored paths are skipped, typically the artifact output directory
	Ignored []string
	Delay   time.Duration
	Logger  *zap.Logger
	// OnRemove is called with each facts file that was removed or renamed away
	OnRemove func(path string) error
}

// NewFileWatcher creates a new file watcher instance
func NewFileWatcher(opts Options, onChange func([]string) error) (*FileWatcher, error) {
	if len(opts.Dirs) == 0 {
		return nil, fmt.Errorf("no directories to watch")
	}
	if len(opts.Patterns) == 0 {
		opts.Patterns = DefaultPatterns
	}
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	fw := &FileWatcher{
		watcher:   watcher,
		debouncer: NewDebouncer(opts.Delay),
		dirs:      opts.Dirs,
		patterns:  opts.Patterns,
		ignored:   opts.Ignored,
		logger:    opts.Logger,
		onChange:  onChange,
		onRemove:  opts.OnRemove,
		stopChan:  make(chan struct{}),
	}

	fw.debouncer.SetCallback(func(files []string) {
		if err := fw.onChange(files); err != nil {
			fw.logger.Error("rebuild failed", zap.Strings("files", files), zap.Error(err))
		}
	})

	return fw, nil
}

// Start begins watching the configured directories
func (fw *FileWatcher) Start() error {
	for _, dir := range fw.dirs {
		if err := fw.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
		fw.logger.Info("watching directory", zap.String("dir", dir))
	}

	fw.wg.Add(1)
	go fw.watch()

	return nil
}

// Stop stops the file watcher
func (fw *FileWatcher) Stop() error {
	select {
	case <-fw.stopChan:
		return nil
	default:
		close(fw.stopChan)
	}

	fw.wg.Wait()
	fw.debouncer.Stop()
	return fw.watcher.Close()
}

// watch is the main event loop
func (fw *FileWatcher) watch() {
	defer fw.wg.Done()

	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			if fw.shouldIgnore(event.Name) {
				continue
			}

			if !fw.matchesPattern(event.Name) {
				continue
			}

			switch {
			case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
				fw.logger.Debug("facts changed", zap.String("file", event.Name))
				fw.debouncer.Add(event.Name)
			case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
				fw.logger.Debug("facts removed", zap.String("file", event.Name))
				fw.debouncer.Drop(event.Name)
				fw.removed(event.Name)
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("watch error", zap.Error(err))

		case <-fw.stopChan:
			return
		}
	}
}

// removed reports a file that left a watched directory
func (fw *FileWatcher) removed(path string) {
	if fw.onRemove == nil {
		return
	}
	if err := fw.onRemove(path); err != nil {
		fw.logger.Error("cleanup failed", zap.String("file", path), zap.Error(err))
	}
}

// shouldIgnore checks if a file path should be ignored
func (fw *FileWatcher) shouldIgnore(path string) bool {
	// hidden files and editor backups
	baseName := filepath.Base(path)
	if strings.HasPrefix(baseName, ".") || strings.HasSuffix(baseName, "~") {
		return true
	}

	clean := filepath.Clean(path)
	for _, ignored := range fw.ignored {
		dir := filepath.Clean(ignored)
		if clean == dir || strings.HasPrefix(clean, dir+string(filepath.Separator)) {
			return true
		}
		if matched, _ := filepath.Match(ignored, baseName); matched {
			return true
		}
	}

	return false
}

// matchesPattern checks if a file matches any of the watch patterns
func (fw *FileWatcher) matchesPattern(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range fw.patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}
