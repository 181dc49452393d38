package detect

import (
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/perfradar/radar/internal/parser"
	"github.com/perfradar/radar/internal/types"
)

// ThreadLocalDetector flags ThreadLocal fields that are never removed
// in a finally block anywhere in the file. On pooled threads a
// ThreadLocal left populated survives the request that set it.
//
// The remove() check is textual and file-scoped; a remove() in another
// file does not count. Known limitation carried over deliberately.
type ThreadLocalDetector struct{}

func (d *ThreadLocalDetector) Name() string { return "threadlocal-leak" }

func (d *ThreadLocalDetector) Detect(dctx *Context) []types.Finding {
	var findings []types.Finding

	parser.Walk(dctx.Root, func(n *tree_sitter.Node) bool {
		if n.Kind() != "field_declaration" {
			return true
		}
		typeNode := n.ChildByFieldName("type")
		if typeNode == nil || !strings.Contains(parser.NodeText(typeNode, dctx.Content), "ThreadLocal") {
			return true
		}

		parser.EachChild(n, func(child *tree_sitter.Node) {
			if child.Kind() != "variable_declarator" {
				return
			}
			nameNode := child.ChildByFieldName("name")
			if nameNode == nil {
				return
			}
			name := parser.NodeText(nameNode, dctx.Content)
			if removedInFinally(dctx, name) {
				return
			}
			findings = append(findings, types.Finding{
				Kind:       types.FindingThreadLocalLeak,
				Severity:   types.SeverityP0,
				FilePath:   dctx.FilePath,
				Line:       parser.Line(child),
				Symbol:     name,
				Message:    fmt.Sprintf("ThreadLocal %q has no remove() in a finally block in this file", name),
				Suggestion: "call " + name + ".remove() in a finally block after each use; pooled threads retain values otherwise",
			})
		})
		return true
	})

	return findings
}

// removedInFinally reports whether any finally clause in the file calls
// remove() on the named ThreadLocal.
func removedInFinally(dctx *Context, name string) bool {
	needle := name + ".remove"
	found := false
	parser.Walk(dctx.Root, func(n *tree_sitter.Node) bool {
		if found {
			return false
		}
		if n.Kind() == "finally_clause" && strings.Contains(parser.NodeText(n, dctx.Content), needle) {
			found = true
			return false
		}
		return true
	})
	return found
}
