package headerindex

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/LegacyCodeHQ/includefix/internal/pathutil"
)

// DefaultHeaderExtension is the only extension catalogued unless widened with WithExtensions.
const DefaultHeaderExtension = ".h"

// Entry lists every location at which a header with a given basename was found.
type Entry struct {
	Basename string
	// Candidates are root-relative, slash-separated paths in discovery order.
	Candidates []string
	// Roots holds, for each candidate, the position in Index.Roots of the root it was found under.
	Roots []int
}

// IsAmbiguous reports whether more than one candidate shares the basename.
func (e Entry) IsAmbiguous() bool {
	return len(e.Candidates) > 1
}

// Index maps header basenames to their candidates. It is not modified after Build returns.
type Index struct {
	entries map[string]*Entry
	roots   []string
}

type buildOptions struct {
	extensions []string
	skipDirs   []string
}

// Option configures Build.
type Option func(*buildOptions)

// WithExtensions replaces the set of catalogued header extensions.
// Empty values are ignored; an empty set falls back to DefaultHeaderExtension.
func WithExtensions(exts ...string) Option {
	return func(o *buildOptions) {
		var cleaned []string
		for _, ext := range exts {
			ext = strings.TrimSpace(ext)
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			cleaned = append(cleaned, ext)
		}
		if len(cleaned) > 0 {
			o.extensions = cleaned
		}
	}
}

// WithSkipDirs excludes directories below a root from the scan. A root that
// is itself one of dirs is still scanned.
func WithSkipDirs(dirs ...string) Option {
	return func(o *buildOptions) {
		for _, dir := range dirs {
			if dir == "" {
				continue
			}
			if canonical, err := pathutil.Canonical(dir); err == nil {
				o.skipDirs = append(o.skipDirs, canonical)
			}
		}
	}
}

// Build scans every root in order and catalogues header files by basename.
// Roots or directories that cannot be read are skipped without error.
func Build(roots []string, opts ...Option) *Index {
	o := buildOptions{extensions: []string{DefaultHeaderExtension}}
	for _, opt := range opts {
		opt(&o)
	}

	idx := &Index{entries: make(map[string]*Entry)}
	for _, root := range roots {
		if root == "" {
			continue
		}
		idx.roots = append(idx.roots, root)
		idx.scanRoot(len(idx.roots)-1, o)
	}
	return idx
}

func (idx *Index) scanRoot(pos int, o buildOptions) {
	root := idx.roots[pos]
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && o.skipped(path) {
				return filepath.SkipDir
			}
			return nil
		}
		name := d.Name()
		if !hasAnySuffix(name, o.extensions) {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		idx.add(name, filepath.ToSlash(rel), pos)
		return nil
	})
}

func (o buildOptions) skipped(dir string) bool {
	if len(o.skipDirs) == 0 {
		return false
	}
	canonical, err := pathutil.Canonical(dir)
	if err != nil {
		return false
	}
	for _, skip := range o.skipDirs {
		if canonical == skip {
			return true
		}
	}
	return false
}

func (idx *Index) add(basename, candidate string, root int) {
	entry, ok := idx.entries[basename]
	if !ok {
		entry = &Entry{Basename: basename}
		idx.entries[basename] = entry
	}
	entry.Candidates = append(entry.Candidates, candidate)
	entry.Roots = append(entry.Roots, root)
}

// Roots returns the scanned roots in scan order.
func (idx *Index) Roots() []string {
	return append([]string(nil), idx.roots...)
}

// Lookup returns a copy of the entry for basename.
func (idx *Index) Lookup(basename string) (Entry, bool) {
	entry, ok := idx.entries[basename]
	if !ok {
		return Entry{}, false
	}
	return Entry{
		Basename:   entry.Basename,
		Candidates: append([]string(nil), entry.Candidates...),
		Roots:      append([]int(nil), entry.Roots...),
	}, true
}

// Len returns the number of distinct basenames.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Basenames returns all catalogued basenames, sorted.
func (idx *Index) Basenames() []string {
	names := make([]string, 0, len(idx.entries))
	for name := range idx.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Ambiguous returns the entries with more than one candidate, sorted by basename.
func (idx *Index) Ambiguous() []Entry {
	var out []Entry
	for _, name := range idx.Basenames() {
		entry, _ := idx.Lookup(name)
		if entry.IsAmbiguous() {
			out = append(out, entry)
		}
	}
	return out
}

func hasAnySuffix(name string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
