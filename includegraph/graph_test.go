package includegraph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/LegacyCodeHQ/includefix/headerindex"
	"github.com/LegacyCodeHQ/includefix/rewrite"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func buildFixture(t *testing.T) *Graph {
	t.Helper()
	base := t.TempDir()
	libA := filepath.Join(base, "lib", "a")
	libB := filepath.Join(base, "lib", "b")
	src := filepath.Join(base, "src")

	writeFile(t, filepath.Join(libA, "foo", "x.h"), "")
	writeFile(t, filepath.Join(libA, "c1", "common.h"), "")
	writeFile(t, filepath.Join(libB, "bar", "y.h"), "")
	writeFile(t, filepath.Join(libB, "c2", "common.h"), "")
	writeFile(t, filepath.Join(src, "main.c"), `#include "sub/x.h"
#include "y.h"
#include <stdio.h>
#include "common.h"
#include "missing.h"
#include "util/local.h"

int main(void) { return 0; }
`)
	writeFile(t, filepath.Join(src, "util", "local.h"), "#include \"peer.h\"\n")
	writeFile(t, filepath.Join(src, "util", "peer.h"), "#include \"local.h\"\n")
	writeFile(t, filepath.Join(src, "notes.txt"), "#include \"x.h\"\n")

	index := rewrite.BuildIndex([]string{libA, libB}, src, nil)
	g, err := Build(src, index, rewrite.FirstDiscovered)
	require.NoError(t, err)
	return g
}

func TestBuild_LinksResolvedAndUnresolvedIncludes(t *testing.T) {
	g := buildFixture(t)

	deps, err := g.Dependencies("main.c")
	require.NoError(t, err)
	assert.Equal(t, []string{"a:c1/common.h", "a:foo/x.h", "b:bar/y.h", "missing.h", "util/local.h"}, deps)

	unresolved, err := g.Unresolved()
	require.NoError(t, err)
	assert.Equal(t, []string{"missing.h"}, unresolved)

	vertices, err := g.Vertices()
	require.NoError(t, err)
	assert.NotContains(t, vertices, "notes.txt")
}

func TestDependencies_UnknownVertex(t *testing.T) {
	g := buildFixture(t)

	_, err := g.Dependencies("nope.c")
	assert.Error(t, err)
}

func TestCycles(t *testing.T) {
	g := buildFixture(t)

	cycles, err := g.Cycles()

	require.NoError(t, err)
	assert.Equal(t, [][]string{{"util/local.h", "util/peer.h"}}, cycles)
}

func TestCycles_SelfInclude(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "self.h"), "#include \"self.h\"\n#include \"self.h\"\n")

	g, err := Build(src, headerindex.Build([]string{src}), nil)
	require.NoError(t, err)

	cycles, err := g.Cycles()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"self.h"}}, cycles)
}

func TestBuild_SourceFileSharingPathWithLibraryHeaderIsDistinct(t *testing.T) {
	base := t.TempDir()
	lib := filepath.Join(base, "lib")
	src := filepath.Join(base, "src")
	writeFile(t, filepath.Join(lib, "foo", "x.h"), "")
	writeFile(t, filepath.Join(src, "foo", "x.h"), "#include \"x.h\"\n")

	g, err := Build(src, rewrite.BuildIndex([]string{lib}, src, nil), nil)
	require.NoError(t, err)

	cycles, err := g.Cycles()
	require.NoError(t, err)
	assert.Empty(t, cycles)

	deps, err := g.Dependencies("foo/x.h")
	require.NoError(t, err)
	assert.Equal(t, []string{"lib:foo/x.h"}, deps)
}

func TestBuild_SourceRootHeaderIsSharedWithSourceVertex(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "a.c"), "#include \"inc/h.h\"\n")
	writeFile(t, filepath.Join(src, "inc", "h.h"), "")

	g, err := Build(src, rewrite.BuildIndex(nil, src, nil), nil)
	require.NoError(t, err)

	vertices, err := g.Vertices()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.c", "inc/h.h"}, vertices)
}

func TestBuild_RootsWithSameBaseNameGetDistinctKeys(t *testing.T) {
	base := t.TempDir()
	first := filepath.Join(base, "one", "include")
	second := filepath.Join(base, "two", "include")
	src := filepath.Join(base, "src")
	writeFile(t, filepath.Join(first, "a.h"), "")
	writeFile(t, filepath.Join(second, "b.h"), "")
	writeFile(t, filepath.Join(src, "main.c"), "#include \"a.h\"\n#include \"b.h\"\n")

	g, err := Build(src, rewrite.BuildIndex([]string{first, second}, src, nil), nil)
	require.NoError(t, err)

	deps, err := g.Dependencies("main.c")
	require.NoError(t, err)
	assert.Equal(t, []string{"include#2:b.h", "include:a.h"}, deps)
}

func TestBuild_ResolvesBackslashIncludePaths(t *testing.T) {
	base := t.TempDir()
	lib := filepath.Join(base, "lib")
	src := filepath.Join(base, "src")
	writeFile(t, filepath.Join(lib, "foo", "y.h"), "")
	writeFile(t, filepath.Join(src, "main.c"), "#include \"sub\\y.h\"\n")

	g, err := Build(src, rewrite.BuildIndex([]string{lib}, src, nil), nil)
	require.NoError(t, err)

	unresolved, err := g.Unresolved()
	require.NoError(t, err)
	assert.Empty(t, unresolved)
	deps, err := g.Dependencies("main.c")
	require.NoError(t, err)
	assert.Equal(t, []string{"lib:foo/y.h"}, deps)
}

func TestBuild_MissingSourceDirectory(t *testing.T) {
	_, err := Build(filepath.Join(t.TempDir(), "nope"), headerindex.Build(nil), nil)
	assert.Error(t, err)
}

func TestDOT(t *testing.T) {
	g := buildFixture(t)

	out, err := g.Render(FormatDOT)

	require.NoError(t, err)
	goldie.New(t).Assert(t, "graph_dot", []byte(out))
}

func TestMermaid(t *testing.T) {
	g := buildFixture(t)

	out, err := g.Render(FormatMermaid)

	require.NoError(t, err)
	goldie.New(t).Assert(t, "graph_mermaid", []byte(out))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatDOT, f)

	f, err = ParseFormat("Mermaid")
	require.NoError(t, err)
	assert.Equal(t, FormatMermaid, f)

	_, err = ParseFormat("svg")
	assert.Error(t, err)
}
