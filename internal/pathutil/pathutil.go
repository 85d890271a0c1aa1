// Package pathutil compares filesystem locations after symlink resolution.
package pathutil

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Canonical returns the absolute, cleaned form of path with symlinks resolved
// when possible. Paths that do not exist yet keep their unresolved form.
func Canonical(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path %q: %w", path, err)
	}
	return resolveSymlinks(filepath.Clean(abs)), nil
}

// Same reports whether a and b name the same location.
func Same(a, b string) bool {
	ca, err := Canonical(a)
	if err != nil {
		return false
	}
	cb, err := Canonical(b)
	if err != nil {
		return false
	}
	return ca == cb
}

// IsWithin reports whether target is base or lies below it.
func IsWithin(base, target string) (bool, error) {
	baseDir, err := Canonical(base)
	if err != nil {
		return false, err
	}
	targetPath, err := Canonical(target)
	if err != nil {
		return false, err
	}

	rel, err := filepath.Rel(baseDir, targetPath)
	if err != nil {
		return false, fmt.Errorf("failed to evaluate path %q: %w", targetPath, err)
	}
	if rel == "." {
		return true, nil
	}
	if rel == ".." {
		return false, nil
	}
	if strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false, nil
	}
	return !filepath.IsAbs(rel), nil
}

func resolveSymlinks(path string) string {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return path
	}
	return resolved
}
