// Package detect implements the AST anti-pattern detectors. Detectors
// are pure functions over a parsed file plus the read-only symbol
// index; the scanner runs them per file, in parallel across files.
package detect

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/perfradar/radar/internal/config"
	"github.com/perfradar/radar/internal/indexing"
	"github.com/perfradar/radar/internal/types"
)

// loopKinds are the Java loop constructs detectors descend into.
var loopKinds = map[string]bool{
	"for_statement":          true,
	"enhanced_for_statement": true,
	"while_statement":        true,
	"do_statement":           true,
}

// Context carries everything a detector needs for one file.
type Context struct {
	Root     *tree_sitter.Node
	Content  []byte
	FilePath string
	Index    *indexing.SymbolIndex
	Config   *config.Config
}

// Detector finds occurrences of one anti-pattern family in a file.
type Detector interface {
	Name() string
	Detect(dctx *Context) []types.Finding
}

// DefaultDetectors returns the full detector set in a stable order.
func DefaultDetectors() []Detector {
	return []Detector{
		&NPlusOneDetector{},
		&NestedLoopDetector{},
		&ThreadLocalDetector{},
		&LockDetector{},
		&ResourceDetector{},
	}
}

// RunAll executes every detector over one file.
func RunAll(dctx *Context, detectors []Detector) []types.Finding {
	var findings []types.Finding
	for _, d := range detectors {
		findings = append(findings, d.Detect(dctx)...)
	}
	return findings
}

func isLoop(n *tree_sitter.Node) bool {
	return loopKinds[n.Kind()]
}

// loopBody returns the body of a loop statement.
func loopBody(n *tree_sitter.Node) *tree_sitter.Node {
	if body := n.ChildByFieldName("body"); body != nil {
		return body
	}
	return n
}
