package detect

import (
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/perfradar/radar/internal/parser"
	"github.com/perfradar/radar/internal/types"
)

// collectionTypes are the raw collection names checked for unbounded
// static growth.
var collectionTypes = map[string]bool{
	"Map": true, "HashMap": true, "ConcurrentHashMap": true,
	"List": true, "ArrayList": true, "LinkedList": true,
	"Set": true, "HashSet": true, "Queue": true, "Deque": true,
}

// ResourceDetector covers resource-exhaustion patterns: unbounded
// thread pools, static collections that only grow, string
// concatenation in loops, and object allocation in hot loops.
type ResourceDetector struct{}

func (d *ResourceDetector) Name() string { return "resource-exhaustion" }

func (d *ResourceDetector) Detect(dctx *Context) []types.Finding {
	var findings []types.Finding

	parser.Walk(dctx.Root, func(n *tree_sitter.Node) bool {
		switch n.Kind() {
		case "method_invocation":
			if f := d.checkPoolCreation(dctx, n); f != nil {
				findings = append(findings, *f)
			}
		case "field_declaration":
			if f := d.checkStaticCollection(dctx, n); f != nil {
				findings = append(findings, *f)
			}
		case "assignment_expression":
			if f := d.checkStringConcat(dctx, n); f != nil {
				findings = append(findings, *f)
			}
		case "object_creation_expression":
			if f := d.checkAllocInLoop(dctx, n); f != nil {
				findings = append(findings, *f)
			}
		}
		return true
	})

	return findings
}

func (d *ResourceDetector) checkPoolCreation(dctx *Context, n *tree_sitter.Node) *types.Finding {
	text := parser.NodeText(n, dctx.Content)
	if !strings.HasPrefix(text, "Executors.newCachedThreadPool") &&
		!strings.Contains(text, "newFixedThreadPool(Integer.MAX_VALUE") {
		return nil
	}
	return &types.Finding{
		Kind:       types.FindingUnboundedPool,
		Severity:   types.SeverityP0,
		FilePath:   dctx.FilePath,
		Line:       parser.Line(n),
		Message:    "unbounded thread pool; every queued task spawns a new thread",
		Suggestion: "use newFixedThreadPool with a sized bound, or a ThreadPoolExecutor with a bounded queue",
	}
}

func (d *ResourceDetector) checkStaticCollection(dctx *Context, n *tree_sitter.Node) *types.Finding {
	isStatic := false
	parser.EachChild(n, func(child *tree_sitter.Node) {
		if child.Kind() == "modifiers" && strings.Contains(parser.NodeText(child, dctx.Content), "static") {
			isStatic = true
		}
	})
	if !isStatic {
		return nil
	}

	typeNode := n.ChildByFieldName("type")
	if typeNode == nil {
		return nil
	}
	typeName := parser.NodeText(typeNode, dctx.Content)
	if idx := strings.IndexByte(typeName, '<'); idx > 0 {
		typeName = typeName[:idx]
	}
	if !collectionTypes[typeName] {
		return nil
	}

	// final static caches with an eviction wrapper would need deeper
	// analysis; everything matching here is a candidate, not a proof.
	return &types.Finding{
		Kind:       types.FindingStaticCollection,
		Severity:   types.SeverityP0,
		FilePath:   dctx.FilePath,
		Line:       parser.Line(n),
		Message:    fmt.Sprintf("static %s field can grow without bound", typeName),
		Suggestion: "bound it with an evicting cache or scope it to the request",
	}
}

func (d *ResourceDetector) checkStringConcat(dctx *Context, n *tree_sitter.Node) *types.Finding {
	if parser.EnclosingOfKind(n, "for_statement") == nil &&
		parser.EnclosingOfKind(n, "enhanced_for_statement") == nil &&
		parser.EnclosingOfKind(n, "while_statement") == nil &&
		parser.EnclosingOfKind(n, "do_statement") == nil {
		return nil
	}
	text := parser.NodeText(n, dctx.Content)
	if !strings.Contains(text, "+=") && !strings.Contains(text, "+ \"") {
		return nil
	}
	// Only flag when the target looks like a string accumulator.
	if !strings.Contains(text, "\"") && !strings.Contains(text, "String") {
		return nil
	}
	return &types.Finding{
		Kind:       types.FindingStringConcatLoop,
		Severity:   types.SeverityP1,
		FilePath:   dctx.FilePath,
		Line:       parser.Line(n),
		Message:    "string concatenation in a loop reallocates on every iteration",
		Suggestion: "accumulate with StringBuilder and build once after the loop",
	}
}

func (d *ResourceDetector) checkAllocInLoop(dctx *Context, n *tree_sitter.Node) *types.Finding {
	loop := parser.EnclosingOfKind(n, "for_statement")
	if loop == nil {
		loop = parser.EnclosingOfKind(n, "while_statement")
	}
	if loop == nil {
		return nil
	}

	typeNode := n.ChildByFieldName("type")
	if typeNode == nil {
		return nil
	}
	typeName := parser.NodeText(typeNode, dctx.Content)
	if idx := strings.IndexByte(typeName, '<'); idx > 0 {
		typeName = typeName[:idx]
	}
	// Collection/builder churn in loops is the expensive case; plain
	// domain objects per iteration are usually intended.
	if !collectionTypes[typeName] && typeName != "StringBuilder" && typeName != "StringBuffer" {
		return nil
	}
	return &types.Finding{
		Kind:       types.FindingAllocInLoop,
		Severity:   types.SeverityP1,
		FilePath:   dctx.FilePath,
		Line:       parser.Line(n),
		Symbol:     typeName,
		Message:    fmt.Sprintf("new %s allocated on every loop iteration", typeName),
		Suggestion: "hoist the allocation above the loop and clear/reuse it",
	}
}
