package detect

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/perfradar/radar/internal/parser"
	"github.com/perfradar/radar/internal/types"
)

// NestedLoopDetector flags loops nested inside other loops. The
// outermost loop never fires; each inner loop yields one finding at its
// own start line carrying its nesting depth, so a triple nesting
// produces findings at depths 2 and 3.
type NestedLoopDetector struct{}

func (d *NestedLoopDetector) Name() string { return "nested-loop" }

func (d *NestedLoopDetector) Detect(dctx *Context) []types.Finding {
	var findings []types.Finding
	d.descend(dctx, dctx.Root, 0, &findings)
	return findings
}

func (d *NestedLoopDetector) descend(dctx *Context, node *tree_sitter.Node, depth int, findings *[]types.Finding) {
	childDepth := depth
	if isLoop(node) {
		childDepth = depth + 1
		if childDepth >= 2 {
			severity := types.SeverityP1
			if childDepth >= 3 {
				severity = types.SeverityP0
			}
			*findings = append(*findings, types.Finding{
				Kind:       types.FindingNestedLoop,
				Severity:   severity,
				FilePath:   dctx.FilePath,
				Line:       parser.Line(node),
				Message:    fmt.Sprintf("loop nested %d levels deep", childDepth),
				Suggestion: "restructure with a lookup map or precomputed join to avoid O(n^2) iteration",
				Details:    fmt.Sprintf("depth=%d", childDepth),
			})
		}
	}

	count := node.ChildCount()
	for i := uint(0); i < count; i++ {
		if child := node.Child(i); child != nil {
			d.descend(dctx, child, childDepth, findings)
		}
	}
}
