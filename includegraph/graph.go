// Package includegraph models which header each source file resolves to after rewriting.
package includegraph

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"sort"

	"github.com/LegacyCodeHQ/includefix/headerindex"
	"github.com/LegacyCodeHQ/includefix/includes"
	"github.com/LegacyCodeHQ/includefix/internal/pathutil"
	"github.com/LegacyCodeHQ/includefix/rewrite"
	graphlib "github.com/dominikbraun/graph"
)

const (
	kindSource    = "source"
	kindHeader    = "header"
	kindMissing   = "unresolved"
	attrAmbiguous = "ambiguous"
)

// Graph is a directed include graph keyed by slash-separated paths.
// Source files and headers found in the source directory are keyed relative
// to it, so a header inside the source tree is a single vertex. Headers from
// other roots are keyed "<root>:<candidate>", where <root> is the root's base
// name, numbered when two roots share one.
type Graph struct {
	g         graphlib.Graph[string, string]
	kinds     map[string]string
	selfLoops []string
	rootKeys  []string
}

// Build parses every eligible file under sourceDir and links each local
// include to the candidate chosen by policy. Includes with no candidate
// become unresolved vertices named after the include path as written.
func Build(sourceDir string, index *headerindex.Index, policy rewrite.Policy) (*Graph, error) {
	if policy == nil {
		policy = rewrite.FirstDiscovered
	}
	ig := &Graph{
		g:        graphlib.New(graphlib.StringHash, graphlib.Directed()),
		kinds:    make(map[string]string),
		rootKeys: rootKeys(index.Roots(), sourceDir),
	}

	err := filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !rewrite.IsEligible(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		from := filepath.ToSlash(rel)
		if err := ig.addVertex(from, kindSource); err != nil {
			return err
		}

		found, err := includes.FileIncludes(path)
		if err != nil {
			return fmt.Errorf("failed to parse includes in %s: %w", from, err)
		}
		for _, inc := range found {
			if inc.Kind != includes.Local {
				continue
			}
			if err := ig.link(from, inc.Path, index, policy); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build include graph: %w", err)
	}
	return ig, nil
}

func (ig *Graph) link(from, includePath string, index *headerindex.Index, policy rewrite.Policy) error {
	entry, ok := index.Lookup(rewrite.Basename(includePath))
	if !ok {
		if err := ig.addVertex(includePath, kindMissing); err != nil {
			return err
		}
		return ig.addEdge(from, includePath, false)
	}

	to := ig.vertexFor(entry, policy.Choose(entry.Candidates))
	if err := ig.addVertex(to, kindHeader); err != nil {
		return err
	}
	if to == from {
		if !slices.Contains(ig.selfLoops, from) {
			ig.selfLoops = append(ig.selfLoops, from)
		}
		return nil
	}
	return ig.addEdge(from, to, entry.IsAmbiguous())
}

// vertexFor keys the chosen candidate by the root it was found under.
func (ig *Graph) vertexFor(entry headerindex.Entry, chosen string) string {
	i := slices.Index(entry.Candidates, chosen)
	if i < 0 || i >= len(entry.Roots) {
		return chosen
	}
	root := entry.Roots[i]
	if root >= len(ig.rootKeys) || ig.rootKeys[root] == "" {
		return chosen
	}
	return ig.rootKeys[root] + ":" + chosen
}

// rootKeys returns a vertex prefix per root, empty for the source directory.
func rootKeys(roots []string, sourceDir string) []string {
	keys := make([]string, len(roots))
	seen := make(map[string]int)
	for i, root := range roots {
		if pathutil.Same(root, sourceDir) {
			continue
		}
		name := filepath.Base(filepath.Clean(root))
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s#%d", name, n)
		}
		keys[i] = name
	}
	return keys
}

// addVertex adds a vertex, upgrading a header vertex to a source vertex
// when the header also lives in the source tree.
func (ig *Graph) addVertex(name, kind string) error {
	err := ig.g.AddVertex(name)
	if err != nil && !errors.Is(err, graphlib.ErrVertexAlreadyExists) {
		return fmt.Errorf("failed to add vertex %s: %w", name, err)
	}
	if current, ok := ig.kinds[name]; !ok || kind == kindSource || current == kindMissing {
		ig.kinds[name] = kind
	}
	return nil
}

func (ig *Graph) addEdge(from, to string, ambiguous bool) error {
	var opts []func(*graphlib.EdgeProperties)
	if ambiguous {
		opts = append(opts, graphlib.EdgeAttribute(attrAmbiguous, "true"))
	}
	err := ig.g.AddEdge(from, to, opts...)
	if err != nil && !errors.Is(err, graphlib.ErrEdgeAlreadyExists) {
		return fmt.Errorf("failed to add edge %s -> %s: %w", from, to, err)
	}
	return nil
}

// Vertices returns every vertex, sorted.
func (ig *Graph) Vertices() ([]string, error) {
	adjacency, err := ig.g.AdjacencyMap()
	if err != nil {
		return nil, err
	}
	vertices := make([]string, 0, len(adjacency))
	for v := range adjacency {
		vertices = append(vertices, v)
	}
	sort.Strings(vertices)
	return vertices, nil
}

// Dependencies returns the sorted direct includes of vertex.
func (ig *Graph) Dependencies(vertex string) ([]string, error) {
	adjacency, err := ig.g.AdjacencyMap()
	if err != nil {
		return nil, err
	}
	targets, ok := adjacency[vertex]
	if !ok {
		return nil, fmt.Errorf("vertex %s: %w", vertex, graphlib.ErrVertexNotFound)
	}
	deps := make([]string, 0, len(targets))
	for to := range targets {
		deps = append(deps, to)
	}
	sort.Strings(deps)
	return deps, nil
}

// Unresolved returns the include paths that matched no header, sorted.
func (ig *Graph) Unresolved() ([]string, error) {
	return ig.verticesOfKind(kindMissing)
}

func (ig *Graph) verticesOfKind(kind string) ([]string, error) {
	vertices, err := ig.Vertices()
	if err != nil {
		return nil, err
	}
	var out []string
	for _, v := range vertices {
		if ig.kinds[v] == kind {
			out = append(out, v)
		}
	}
	return out, nil
}

// Cycles returns every include cycle, each sorted, in sorted order.
// A file that includes itself is reported as a single-element cycle.
func (ig *Graph) Cycles() ([][]string, error) {
	components, err := graphlib.StronglyConnectedComponents(ig.g)
	if err != nil {
		return nil, fmt.Errorf("failed to compute cycles: %w", err)
	}

	var cycles [][]string
	for _, component := range components {
		if len(component) < 2 {
			continue
		}
		cycle := append([]string(nil), component...)
		sort.Strings(cycle)
		cycles = append(cycles, cycle)
	}
	for _, v := range ig.selfLoops {
		cycles = append(cycles, []string{v})
	}

	sort.Slice(cycles, func(i, j int) bool {
		return cycles[i][0] < cycles[j][0]
	})
	return cycles, nil
}
