package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/LegacyCodeHQ/includefix/internal/logging"
	"github.com/LegacyCodeHQ/includefix/rewrite"
	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRelevantChange_EligibleExtensions(t *testing.T) {
	f := changeFilter{headerExtensions: []string{".h"}}

	assert.True(t, f.isRelevantChange(fsnotify.Event{Name: "main.c", Op: fsnotify.Write}))
	assert.True(t, f.isRelevantChange(fsnotify.Event{Name: "app.cpp", Op: fsnotify.Create}))
	assert.True(t, f.isRelevantChange(fsnotify.Event{Name: "api.hpp", Op: fsnotify.Remove}))
	assert.True(t, f.isRelevantChange(fsnotify.Event{Name: "api.h", Op: fsnotify.Rename}))
}

func TestIsRelevantChange_HeaderExtensions(t *testing.T) {
	f := changeFilter{headerExtensions: []string{".hh"}}

	assert.True(t, f.isRelevantChange(fsnotify.Event{Name: "api.hh", Op: fsnotify.Write}))
	assert.False(t, changeFilter{}.isRelevantChange(fsnotify.Event{Name: "api.hh", Op: fsnotify.Write}))
}

func TestIsRelevantChange_UnsupportedExtension(t *testing.T) {
	f := changeFilter{}

	assert.False(t, f.isRelevantChange(fsnotify.Event{Name: "README.txt", Op: fsnotify.Write}))
	assert.False(t, f.isRelevantChange(fsnotify.Event{Name: "Makefile", Op: fsnotify.Write}))
}

func TestIsRelevantChange_ChmodIgnored(t *testing.T) {
	f := changeFilter{}

	assert.False(t, f.isRelevantChange(fsnotify.Event{Name: "main.c", Op: fsnotify.Chmod}))
}

func TestIsRelevantChange_OutputIgnored(t *testing.T) {
	out := t.TempDir()
	f := changeFilter{outputDir: out}

	assert.False(t, f.isRelevantChange(fsnotify.Event{Name: filepath.Join(out, "sub", "main.c"), Op: fsnotify.Write}))
	assert.True(t, f.isRelevantChange(fsnotify.Event{Name: filepath.Join(filepath.Dir(out), "main.c"), Op: fsnotify.Write}))
}

func TestAddWatchDirsWithAdder_SkipsOutputAndVcsDirs(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"src/util", "fixed/src", ".git/objects"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
	}
	f := changeFilter{outputDir: filepath.Join(root, "fixed")}

	var added []string
	adder := func(path string) error {
		rel, err := filepath.Rel(root, path)
		require.NoError(t, err)
		added = append(added, filepath.ToSlash(rel))
		return nil
	}

	require.NoError(t, addWatchDirsWithAdder(root, adder, f.skipDir))
	assert.Equal(t, []string{".", "src", "src/util"}, added)
}

func TestAddWatchDirsWithAdder_IgnoresMissingRoot(t *testing.T) {
	adder := func(string) error {
		t.Fatalf("adder must not be called for a missing root")
		return nil
	}

	require.NoError(t, addWatchDirsWithAdder(filepath.Join(t.TempDir(), "missing"), adder, nil))
}

func TestAddWatchDirsWithAdder_IgnoresMissingDirectoriesFromAdder(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "gone")
	require.NoError(t, os.MkdirAll(target, 0o755))

	adder := func(path string) error {
		if path == target {
			return fs.ErrNotExist
		}
		return nil
	}

	require.NoError(t, addWatchDirsWithAdder(root, adder, nil))
}

func TestAddWatchDirsWithAdder_SkipsBrokenSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires elevated privileges on Windows")
	}

	root := t.TempDir()
	linkPath := filepath.Join(root, "dangling")
	require.NoError(t, os.Symlink("nowhere/at/all", linkPath))

	var added []string
	adder := func(path string) error {
		added = append(added, path)
		return nil
	}

	require.NoError(t, addWatchDirsWithAdder(root, adder, nil))
	assert.NotContains(t, added, linkPath)
}

func TestWatchAndRebuild_RebuildsOnChange(t *testing.T) {
	src := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var rebuilds atomic.Int32
	rebuilt := make(chan struct{}, 1)
	rebuild := func() {
		rebuilds.Add(1)
		select {
		case rebuilt <- struct{}{}:
		default:
		}
	}

	done := make(chan error, 1)
	go func() {
		done <- watchAndRebuild(ctx, []string{src}, changeFilter{}, rebuild, logging.Discard())
	}()

	deadline := time.After(5 * time.Second)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for waiting := true; waiting; {
		select {
		case <-rebuilt:
			waiting = false
		case <-ticker.C:
			// The watcher may not be registered yet; keep touching the file.
			require.NoError(t, os.WriteFile(filepath.Join(src, "main.c"), []byte("int x;\n"), 0o644))
		case <-deadline:
			t.Fatal("timed out waiting for rebuild")
		}
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
	assert.GreaterOrEqual(t, rebuilds.Load(), int32(1))
}

func TestRunner_RunWritesOutput(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src")
	out := filepath.Join(base, "out")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "inc"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "inc", "api.h"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "main.c"), []byte("#include \"api.h\"\n"), 0o644))

	r := &runner{
		cfg:    rewrite.Config{SourceDir: src, OutputDir: out},
		logger: logging.Discard(),
	}

	require.NoError(t, r.run(context.Background()))
	got, err := os.ReadFile(filepath.Join(out, "main.c"))
	require.NoError(t, err)
	assert.Equal(t, "#include \"inc/api.h\"\n", string(got))
}
