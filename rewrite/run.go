package rewrite

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/LegacyCodeHQ/includefix/headerindex"
	"github.com/LegacyCodeHQ/includefix/internal/pathutil"
	"github.com/charmbracelet/log"
)

// Config describes one pipeline run.
type Config struct {
	IncludeRoots     []string
	SourceDir        string
	OutputDir        string
	HeaderExtensions []string
	Policy           Policy
	DryRun           bool
	Logger           *log.Logger
}

// SplitIncludeRoots splits a semicolon-separated list of include roots, dropping empty items.
func SplitIncludeRoots(value string) []string {
	var roots []string
	for _, part := range strings.Split(value, ";") {
		part = strings.TrimSpace(part)
		if part != "" {
			roots = append(roots, part)
		}
	}
	return roots
}

// BuildIndex indexes the include roots followed by the source directory itself.
// Directories in skipDirs, typically an output directory nested in the source
// tree, are left out of every root.
func BuildIndex(includeRoots []string, sourceDir string, headerExtensions []string, skipDirs ...string) *headerindex.Index {
	roots := append(append([]string(nil), includeRoots...), sourceDir)
	return headerindex.Build(roots,
		headerindex.WithExtensions(headerExtensions...),
		headerindex.WithSkipDirs(skipDirs...),
	)
}

// Run builds the header index once, then rewrites every eligible file under
// cfg.SourceDir into the mirrored location under cfg.OutputDir.
// Failures on individual files are logged and do not stop the run.
func Run(ctx context.Context, cfg Config) (Stats, error) {
	var total Stats
	if cfg.SourceDir == "" {
		return total, fmt.Errorf("source directory is required")
	}
	if cfg.OutputDir == "" && !cfg.DryRun {
		return total, fmt.Errorf("output directory is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	index := BuildIndex(cfg.IncludeRoots, cfg.SourceDir, cfg.HeaderExtensions, cfg.OutputDir)
	logger.Debug("header index built", "headers", index.Len(), "ambiguous", len(index.Ambiguous()))

	rw := New(index, WithPolicy(cfg.Policy), WithLogger(logger), WithDryRun(cfg.DryRun))

	err := filepath.WalkDir(cfg.SourceDir, func(path string, d fs.DirEntry, walkErr error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if walkErr != nil {
			if path == cfg.SourceDir {
				return walkErr
			}
			logger.Error("skipping unreadable path", "path", path, "err", walkErr)
			return nil
		}
		if d.IsDir() {
			if path != cfg.SourceDir && cfg.OutputDir != "" && pathutil.Same(path, cfg.OutputDir) {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(cfg.SourceDir, path)
		if err != nil {
			logger.Error("skipping file", "path", path, "err", err)
			return nil
		}
		stats, err := rw.RewriteFile(path, filepath.Join(cfg.OutputDir, rel))
		total.Add(stats)
		if err != nil {
			logger.Error("failed to rewrite file", "path", path, "err", err)
		}
		return nil
	})
	if err != nil {
		return total, fmt.Errorf("failed to walk source directory %s: %w", cfg.SourceDir, err)
	}
	return total, nil
}
