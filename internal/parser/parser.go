// Package parser wraps the tree-sitter Java grammar behind a pooled,
// panic-safe parsing API. Parser instances are pooled because creating
// them crosses the CGO boundary and is comparatively expensive.
package parser

import (
	"fmt"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"

	"github.com/perfradar/radar/internal/debug"
	radarerrors "github.com/perfradar/radar/internal/errors"
)

var (
	javaLanguage *tree_sitter.Language
	languageOnce sync.Once
)

// Language returns the shared Java grammar, initialized lazily.
func Language() *tree_sitter.Language {
	languageOnce.Do(func() {
		javaLanguage = tree_sitter.NewLanguage(tree_sitter_java.Language())
	})
	return javaLanguage
}

// Parser parses Java source files. Safe for concurrent use: each Parse
// call checks a parser instance out of an internal pool.
type Parser struct {
	pool sync.Pool
}

// New creates a Java parser.
func New() *Parser {
	return &Parser{
		pool: sync.Pool{
			New: func() interface{} {
				p := tree_sitter.NewParser()
				if err := p.SetLanguage(Language()); err != nil {
					debug.CatastrophicError("failed to set Java language: %v\n", err)
					return nil
				}
				return p
			},
		},
	}
}

// Parse parses Java source and returns the syntax tree. The caller owns
// the tree and must Close it. Trees containing ERROR nodes are returned
// as-is; callers analyze them best-effort.
func (p *Parser) Parse(content []byte) (tree *tree_sitter.Tree, err error) {
	raw := p.pool.Get()
	if raw == nil {
		return nil, radarerrors.NewParseError("", 0, 0, fmt.Errorf("parser initialization failed"))
	}
	tsp := raw.(*tree_sitter.Parser)
	defer p.pool.Put(tsp)

	// The C library has been observed to read past short buffers when
	// handed a slice aliasing a larger allocation. Copy defensively.
	buf := make([]byte, len(content))
	copy(buf, content)

	defer func() {
		if r := recover(); r != nil {
			debug.CatastrophicError("tree-sitter panic during parse: %v\n", r)
			tree = nil
			err = radarerrors.NewParseError("", 0, 0, fmt.Errorf("parser panic: %v", r))
		}
	}()

	tree = tsp.Parse(buf, nil)
	if tree == nil {
		return nil, radarerrors.NewParseError("", 0, 0, fmt.Errorf("parse returned nil tree"))
	}
	return tree, nil
}

// NodeText extracts the source text a node spans.
func NodeText(node *tree_sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}
	start, end := node.StartByte(), node.EndByte()
	if int(end) > len(content) || start > end {
		return ""
	}
	return string(content[start:end])
}

// Line returns the 1-based line number of a node's start.
func Line(node *tree_sitter.Node) int {
	return int(node.StartPosition().Row) + 1
}

// EndLine returns the 1-based line number of a node's end.
func EndLine(node *tree_sitter.Node) int {
	return int(node.EndPosition().Row) + 1
}

// EachChild visits all named and unnamed children of a node.
func EachChild(node *tree_sitter.Node, visit func(child *tree_sitter.Node)) {
	count := node.ChildCount()
	for i := uint(0); i < count; i++ {
		if child := node.Child(i); child != nil {
			visit(child)
		}
	}
}

// Walk performs a preorder traversal from node. Returning false from
// visit prunes the subtree.
func Walk(node *tree_sitter.Node, visit func(n *tree_sitter.Node) bool) {
	if node == nil || !visit(node) {
		return
	}
	count := node.ChildCount()
	for i := uint(0); i < count; i++ {
		if child := node.Child(i); child != nil {
			Walk(child, visit)
		}
	}
}

// EnclosingOfKind walks up the parent chain for the nearest ancestor of
// the given kind, or nil.
func EnclosingOfKind(node *tree_sitter.Node, kind string) *tree_sitter.Node {
	for cur := node.Parent(); cur != nil; cur = cur.Parent() {
		if cur.Kind() == kind {
			return cur
		}
	}
	return nil
}
