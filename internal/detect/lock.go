package detect

import (
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/perfradar/radar/internal/parser"
	"github.com/perfradar/radar/internal/types"
)

// ioCallFragments mark calls that perform I/O or otherwise block while
// a lock is held.
var ioCallFragments = []string{
	".write(", ".read(", ".flush(", ".query(", ".execute(",
	".save(", ".find(", ".send(", ".get(", ".post(",
	"Files.", "RestTemplate", "HttpClient", "Socket",
}

// reactiveBlockFragments only apply when the build declares a reactive
// stack: collapsing a pipeline with block() while holding a lock stalls
// the event loop behind the monitor.
var reactiveBlockFragments = []string{
	".block(", ".blockFirst(", ".blockLast(", ".toIterable(",
}

// blockingFragments returns the fragment set for this project, extended
// by the index's framework hints.
func blockingFragments(dctx *Context) []string {
	fragments := ioCallFragments
	if dctx.Index == nil {
		return fragments
	}
	for _, hint := range dctx.Index.FrameworkHints {
		if hint == "reactive" {
			fragments = append(append([]string(nil), fragments...), reactiveBlockFragments...)
			break
		}
	}
	return fragments
}

// LockDetector covers the lock-related anti-patterns: oversized
// synchronized blocks, blocking work inside synchronized regions,
// synchronized methods, explicit locks without a finally unlock, and
// Thread.sleep under a lock.
type LockDetector struct{}

func (d *LockDetector) Name() string { return "lock-contention" }

func (d *LockDetector) Detect(dctx *Context) []types.Finding {
	var findings []types.Finding

	parser.Walk(dctx.Root, func(n *tree_sitter.Node) bool {
		switch n.Kind() {
		case "synchronized_statement":
			findings = append(findings, d.checkSyncBlock(dctx, n)...)
		case "method_declaration":
			findings = append(findings, d.checkMethod(dctx, n)...)
		}
		return true
	})

	return findings
}

// checkSyncBlock inspects one synchronized block. The size check and
// the blocking-call check are independent; both can fire on the same
// block.
func (d *LockDetector) checkSyncBlock(dctx *Context, n *tree_sitter.Node) []types.Finding {
	var findings []types.Finding

	span := parser.EndLine(n) - parser.Line(n) + 1
	threshold := dctx.Config.Scan.SyncBlockLines
	if threshold <= 0 {
		threshold = 20
	}
	if span > threshold {
		findings = append(findings, types.Finding{
			Kind:       types.FindingLargeSyncBlock,
			Severity:   types.SeverityP1,
			FilePath:   dctx.FilePath,
			Line:       parser.Line(n),
			Message:    fmt.Sprintf("synchronized block spans %d lines (threshold %d)", span, threshold),
			Suggestion: "shrink the critical section to the shared-state mutation only",
			Details:    fmt.Sprintf("span=%d", span),
		})
	}

	body := n.ChildByFieldName("body")
	if body == nil {
		body = n
	}
	bodyText := parser.NodeText(body, dctx.Content)

	if strings.Contains(bodyText, "Thread.sleep") {
		findings = append(findings, types.Finding{
			Kind:       types.FindingSleepInLock,
			Severity:   types.SeverityP0,
			FilePath:   dctx.FilePath,
			Line:       parser.Line(n),
			Message:    "Thread.sleep inside a synchronized block stalls every waiting thread",
			Suggestion: "move the sleep outside the critical section or replace it with a condition wait",
		})
	}

	for _, fragment := range blockingFragments(dctx) {
		if strings.Contains(bodyText, fragment) {
			findings = append(findings, types.Finding{
				Kind:       types.FindingLockContention,
				Severity:   types.SeverityP0,
				FilePath:   dctx.FilePath,
				Line:       parser.Line(n),
				Message:    fmt.Sprintf("blocking call (%s...) inside a synchronized block", strings.Trim(fragment, ".(")),
				Suggestion: "perform I/O outside the lock; hold the lock only to publish the result",
			})
			break
		}
	}

	return findings
}

// checkMethod flags synchronized method declarations and explicit lock
// acquisitions with no unlock in a finally clause.
func (d *LockDetector) checkMethod(dctx *Context, n *tree_sitter.Node) []types.Finding {
	var findings []types.Finding

	nameNode := n.ChildByFieldName("name")
	methodName := parser.NodeText(nameNode, dctx.Content)

	parser.EachChild(n, func(child *tree_sitter.Node) {
		if child.Kind() != "modifiers" {
			return
		}
		if strings.Contains(parser.NodeText(child, dctx.Content), "synchronized") {
			findings = append(findings, types.Finding{
				Kind:       types.FindingSyncMethod,
				Severity:   types.SeverityP1,
				FilePath:   dctx.FilePath,
				Line:       parser.Line(n),
				Symbol:     methodName,
				Message:    fmt.Sprintf("method %s is synchronized; the whole body is one critical section", methodName),
				Suggestion: "narrow to a synchronized block around the shared-state access",
			})
		}
	})

	bodyNode := n.ChildByFieldName("body")
	if bodyNode == nil {
		return findings
	}
	bodyText := parser.NodeText(bodyNode, dctx.Content)
	if strings.Contains(bodyText, ".lock()") && !unlockInFinally(bodyText) {
		findings = append(findings, types.Finding{
			Kind:       types.FindingLockNoUnlock,
			Severity:   types.SeverityP0,
			FilePath:   dctx.FilePath,
			Line:       parser.Line(n),
			Symbol:     methodName,
			Message:    fmt.Sprintf("method %s acquires a lock without unlock() in a finally block", methodName),
			Suggestion: "wrap the locked region in try/finally with unlock() in the finally",
		})
	}

	return findings
}

// unlockInFinally is a textual check: the method body must contain a
// finally clause that calls unlock().
func unlockInFinally(bodyText string) bool {
	idx := strings.Index(bodyText, "finally")
	for idx >= 0 {
		if strings.Contains(bodyText[idx:], ".unlock()") {
			return true
		}
		next := strings.Index(bodyText[idx+len("finally"):], "finally")
		if next < 0 {
			break
		}
		idx += len("finally") + next
	}
	return false
}
