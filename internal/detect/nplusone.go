package detect

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/perfradar/radar/internal/indexing"
	"github.com/perfradar/radar/internal/parser"
	"github.com/perfradar/radar/internal/types"
)

// NPlusOneDetector flags data-access calls inside loop bodies. A call
// whose receiver resolves through the symbol index to a data-access
// type is a confirmed P0; a call that merely looks like a query by its
// verb prefix is a heuristic P1. One finding per call site: the P0
// suppresses the P1 for the same line.
type NPlusOneDetector struct{}

func (d *NPlusOneDetector) Name() string { return "n-plus-one" }

func (d *NPlusOneDetector) Detect(dctx *Context) []types.Finding {
	// severity per call-site line; P0 wins over P1
	sites := make(map[int]types.Finding)

	parser.Walk(dctx.Root, func(n *tree_sitter.Node) bool {
		if !isLoop(n) {
			return true
		}
		d.scanLoopBody(dctx, loopBody(n), sites)
		return true
	})

	findings := make([]types.Finding, 0, len(sites))
	for _, f := range sites {
		findings = append(findings, f)
	}
	return findings
}

func (d *NPlusOneDetector) scanLoopBody(dctx *Context, body *tree_sitter.Node, sites map[int]types.Finding) {
	parser.Walk(body, func(n *tree_sitter.Node) bool {
		if n.Kind() != "method_invocation" {
			return true
		}

		nameNode := n.ChildByFieldName("name")
		if nameNode == nil {
			return true
		}
		method := parser.NodeText(nameNode, dctx.Content)
		receiver := receiverName(n, dctx.Content)
		line := parser.Line(n)

		if existing, ok := sites[line]; ok && existing.Severity == types.SeverityP0 {
			return true
		}

		enclosing := enclosingClass(n, dctx.Content)
		callText := fmt.Sprintf("%s.%s()", receiver, method)
		if receiver == "" {
			callText = method + "()"
		}

		if dctx.Index != nil && dctx.Index.IsDataAccessCall(enclosing, receiver, method) {
			sites[line] = types.Finding{
				Kind:       types.FindingNPlusOne,
				Severity:   types.SeverityP0,
				FilePath:   dctx.FilePath,
				Line:       line,
				Symbol:     callText,
				Message:    fmt.Sprintf("data-access call %s executes once per loop iteration", callText),
				Suggestion: "batch the query before the loop (findAllById, IN clause, or a join fetch)",
			}
			return true
		}

		if indexing.IsQueryMethod(method) {
			if _, taken := sites[line]; !taken {
				sites[line] = types.Finding{
					Kind:       types.FindingNPlusOne,
					Severity:   types.SeverityP1,
					FilePath:   dctx.FilePath,
					Line:       line,
					Symbol:     callText,
					Message:    fmt.Sprintf("query-shaped call %s inside a loop; receiver type could not be confirmed", callText),
					Suggestion: "verify whether this call hits a data store; if so, batch it outside the loop",
				}
			}
		}
		return true
	})
}

// receiverName extracts a simple identifier receiver, or "" when the
// receiver is a chained or complex expression.
func receiverName(invocation *tree_sitter.Node, content []byte) string {
	object := invocation.ChildByFieldName("object")
	if object == nil {
		return ""
	}
	if object.Kind() == "identifier" {
		return parser.NodeText(object, content)
	}
	// this.repo.find(...) resolves through the field access.
	if object.Kind() == "field_access" {
		if field := object.ChildByFieldName("field"); field != nil {
			return parser.NodeText(field, content)
		}
	}
	return ""
}

// enclosingClass names the type declaration the node sits in.
func enclosingClass(node *tree_sitter.Node, content []byte) string {
	for cur := node.Parent(); cur != nil; cur = cur.Parent() {
		switch cur.Kind() {
		case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration":
			if nameNode := cur.ChildByFieldName("name"); nameNode != nil {
				return parser.NodeText(nameNode, content)
			}
		}
	}
	return "Unknown"
}
