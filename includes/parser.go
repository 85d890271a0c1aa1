// Package includes extracts #include directives from C and C++ sources using tree-sitter.
package includes

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
)

// Kind distinguishes between system and local includes.
type Kind int

const (
	Local Kind = iota
	System
)

func (k Kind) String() string {
	if k == System {
		return "system"
	}
	return "local"
}

// Include represents one include directive.
type Include struct {
	Path string
	Kind Kind
	// Line is 1-based.
	Line int
}

// Language selects the tree-sitter grammar.
type Language int

const (
	C Language = iota
	Cpp
)

// LanguageFor picks the grammar for a file name. Headers are parsed as C++,
// whose grammar is a superset for include directives.
func LanguageFor(filePath string) Language {
	if strings.EqualFold(filepath.Ext(filePath), ".c") {
		return C
	}
	return Cpp
}

// FileIncludes reads and parses a file, choosing the grammar from its extension.
func FileIncludes(filePath string) ([]Include, error) {
	sourceCode, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return Parse(sourceCode, LanguageFor(filePath))
}

// Parse extracts includes from source code in document order.
func Parse(sourceCode []byte, lang Language) ([]Include, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	switch lang {
	case C:
		parser.SetLanguage(c.GetLanguage())
	default:
		parser.SetLanguage(cpp.GetLanguage())
	}

	tree, err := parser.ParseCtx(context.Background(), nil, sourceCode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse code: %w", err)
	}
	defer tree.Close()

	return extractIncludes(tree.RootNode(), sourceCode), nil
}

func extractIncludes(rootNode *sitter.Node, sourceCode []byte) []Include {
	var found []Include

	var walk func(*sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}

		if n.Type() == "preproc_include" {
			if inc := extractIncludeFromNode(n, sourceCode); inc.Path != "" {
				found = append(found, inc)
			}
		}

		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}

	walk(rootNode)
	return found
}

func extractIncludeFromNode(node *sitter.Node, sourceCode []byte) Include {
	line := int(node.StartPoint().Row) + 1
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "string_literal":
			return Include{Path: cleanStringLiteral(child.Content(sourceCode)), Kind: Local, Line: line}
		case "system_lib_string":
			return Include{Path: cleanSystemInclude(child.Content(sourceCode)), Kind: System, Line: line}
		}
	}

	return Include{}
}

func cleanStringLiteral(raw string) string {
	return strings.Trim(raw, "\"' ")
}

func cleanSystemInclude(raw string) string {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "<")
	trimmed = strings.TrimSuffix(trimmed, ">")
	return strings.TrimSpace(trimmed)
}
