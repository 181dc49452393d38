package report

import (
	"strings"
	"testing"

	"github.com/perfradar/radar/internal/checklist"
	"github.com/perfradar/radar/internal/types"
)

func sampleScan() *types.ScanResult {
	return &types.ScanResult{
		Root: "/src/shop",
		Findings: []types.Finding{
			{
				Kind: types.FindingNPlusOne, Severity: types.SeverityP0,
				FilePath: "OrderService.java", Line: 42,
				Message: "data-access call orders.findById() executes once per loop iteration", Suggestion: "batch it",
			},
			{
				Kind: types.FindingNestedLoop, Severity: types.SeverityP1,
				FilePath: "ReportBuilder.java", Line: 10,
				Message: "loop nested 2 levels deep",
			},
		},
		Stats: types.ScanStats{FilesScanned: 12, P0Count: 1, P1Count: 1},
	}
}

func TestRenderScanFull(t *testing.T) {
	out := RenderScan(sampleScan(), false)
	for _, want := range []string{"P0", "P1", "OrderService.java:42", "batch it", "N_PLUS_ONE"} {
		if !strings.Contains(out, want) {
			t.Errorf("full report missing %q:\n%s", want, out)
		}
	}
}

func TestRenderScanCompactOneLinePerFinding(t *testing.T) {
	out := RenderScan(sampleScan(), true)
	if !strings.Contains(out, "- [P0] N_PLUS_ONE OrderService.java:42") {
		t.Errorf("compact line missing:\n%s", out)
	}
	if strings.Contains(out, "Fix:") {
		t.Error("compact mode must not include suggestions")
	}
}

func TestRenderScanEmpty(t *testing.T) {
	out := RenderScan(&types.ScanResult{}, false)
	if !strings.Contains(out, "No anti-patterns detected") {
		t.Errorf("empty scan message missing:\n%s", out)
	}
}

func TestRenderLogMentionsTruncation(t *testing.T) {
	result := &types.LogAnalysisResult{
		FilePath:    "app.log",
		LinesRead:   100,
		Truncated:   true,
		TruncateWhy: "time budget exceeded (30s)",
		Exceptions: []types.ExceptionFingerprint{
			{Key: "TimeoutException@InventoryClient.call", Count: 1500, Band: "likely noise"},
		},
	}
	out := RenderLog(result)
	if !strings.Contains(out, "truncated: time budget exceeded") {
		t.Errorf("truncation reason missing:\n%s", out)
	}
	if !strings.Contains(out, "TimeoutException@InventoryClient.call") {
		t.Errorf("fingerprint table missing:\n%s", out)
	}
}

func TestRenderInvestigationSections(t *testing.T) {
	report := &types.InvestigationReport{
		Mode: types.ModeEvidenceDriven,
		RootCauses: []types.Finding{
			{Kind: types.FindingNPlusOne, Severity: types.SeverityP0, FilePath: "A.java", Line: 1, Message: "m"},
		},
		Risks: []types.Finding{
			{Kind: types.FindingNestedLoop, Severity: types.SeverityP1, FilePath: "B.java", Line: 2, Message: "n"},
		},
		JDK: []string{"threads: 3 RUNNABLE, 17 BLOCKED, 0 WAITING, 0 TIMED_WAITING"},
	}
	out := RenderInvestigation(report)
	for _, want := range []string{"evidence-driven", "Root causes", "Risks", "17 BLOCKED"} {
		if !strings.Contains(out, want) {
			t.Errorf("investigation report missing %q:\n%s", want, out)
		}
	}
}

func TestRenderChecklistItems(t *testing.T) {
	out := RenderChecklist(checklist.AllSections())
	for _, want := range []string{"Code-level amplification", "[P0]", "verify:", "fix:"} {
		if !strings.Contains(out, want) {
			t.Errorf("checklist rendering missing %q", want)
		}
	}
}

func TestRenderJSONRoundTrips(t *testing.T) {
	out, err := RenderJSON(sampleScan())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "\"kind\": \"N_PLUS_ONE\"") {
		t.Errorf("JSON output missing finding kind:\n%s", out)
	}
}
