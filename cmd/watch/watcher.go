package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/LegacyCodeHQ/includefix/internal/pathutil"
	"github.com/LegacyCodeHQ/includefix/rewrite"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

const debounceInterval = 300 * time.Millisecond

var skippedDirs = map[string]bool{
	".git":    true,
	".svn":    true,
	".hg":     true,
	".idea":   true,
	".vscode": true,
}

// runner serialises pipeline runs triggered from timer goroutines.
type runner struct {
	mu     sync.Mutex
	cfg    rewrite.Config
	logger *log.Logger
}

func (r *runner) run(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, err := rewrite.Run(ctx, r.cfg)
	if err != nil {
		return err
	}
	r.logger.Info("Summary")
	for _, line := range stats.Summary() {
		r.logger.Info(line)
	}
	return nil
}

type changeFilter struct {
	outputDir        string
	headerExtensions []string
}

func (f changeFilter) isRelevantChange(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	if f.isOutput(event.Name) {
		return false
	}

	name := filepath.Base(event.Name)
	if rewrite.IsEligible(name) {
		return true
	}
	for _, ext := range f.headerExtensions {
		if ext != "" && strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

func (f changeFilter) isOutput(path string) bool {
	if f.outputDir == "" {
		return false
	}
	within, err := pathutil.IsWithin(f.outputDir, path)
	return err == nil && within
}

func (f changeFilter) skipDir(path string) bool {
	return skippedDirs[filepath.Base(path)] || f.isOutput(path)
}

func watchAndRebuild(ctx context.Context, dirs []string, filter changeFilter, rebuild func(), logger *log.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range dirs {
		if err := addWatchDirsWithAdder(dir, watcher.Add, filter.skipDir); err != nil {
			return fmt.Errorf("failed to watch directories: %w", err)
		}
	}

	var debounceTimer *time.Timer
	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Has(fsnotify.Create) && !filter.skipDir(event.Name) {
				addIfDirectory(watcher, event.Name, filter.skipDir)
			}

			if !filter.isRelevantChange(event) {
				continue
			}
			logger.Debug("change detected", "path", event.Name, "op", event.Op.String())

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceInterval, rebuild)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", "err", err)
		}
	}
}

// addWatchDirsWithAdder registers root and its subdirectories with adder.
// Missing roots and directories that vanish during the walk are ignored.
func addWatchDirsWithAdder(root string, adder func(string) error, skip func(string) bool) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skip != nil && skip(path) {
			return filepath.SkipDir
		}
		if err := adder(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return err
		}
		return nil
	})
}

func addIfDirectory(watcher *fsnotify.Watcher, path string, skip func(string) bool) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if info.IsDir() {
		_ = addWatchDirsWithAdder(path, watcher.Add, skip)
	}
}
