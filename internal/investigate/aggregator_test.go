package investigate

import (
	"testing"

	"github.com/perfradar/radar/internal/types"
)

func TestDecideModeEvidenceOutranksSymptoms(t *testing.T) {
	logResult := &types.LogAnalysisResult{
		Coordinates: []types.CodeCoordinate{{File: "OrderService.java", Line: 42}},
	}
	if mode := decideMode(logResult, []string{"memory"}); mode != types.ModeEvidenceDriven {
		t.Errorf("coordinates present: expected evidence-driven, got %s", mode)
	}
}

func TestDecideModeSymptomDriven(t *testing.T) {
	// A log without coordinates does not make the run evidence-driven.
	logResult := &types.LogAnalysisResult{}
	if mode := decideMode(logResult, []string{"cpu"}); mode != types.ModeSymptomDriven {
		t.Errorf("expected symptom-driven, got %s", mode)
	}
}

func TestDecideModeBaseline(t *testing.T) {
	if mode := decideMode(nil, nil); mode != types.ModeBaselineCheck {
		t.Errorf("expected baseline-check, got %s", mode)
	}
}

func TestClassifySplitsByCorrelation(t *testing.T) {
	findings := []types.Finding{
		{Kind: types.FindingNPlusOne, Severity: types.SeverityP0, FilePath: "src/main/java/OrderService.java", Line: 45},
		{Kind: types.FindingNestedLoop, Severity: types.SeverityP1, FilePath: "src/main/java/ReportBuilder.java", Line: 200},
	}
	coords := []types.CodeCoordinate{{File: "OrderService.java", Line: 42}}

	rootCauses, risks := classify(findings, coords)
	if len(rootCauses) != 1 || rootCauses[0].Kind != types.FindingNPlusOne {
		t.Errorf("expected the proximate finding as root cause, got %+v", rootCauses)
	}
	if len(risks) != 1 || risks[0].Kind != types.FindingNestedLoop {
		t.Errorf("expected the uncorrelated finding as risk, got %+v", risks)
	}
}

func TestCorrelatedProximityWindow(t *testing.T) {
	coords := []types.CodeCoordinate{{File: "OrderService.java", Line: 100}}

	inside := types.Finding{FilePath: "a/OrderService.java", Line: 110}
	if !correlated(inside, coords) {
		t.Error("line within the window must correlate")
	}

	outside := types.Finding{FilePath: "a/OrderService.java", Line: 111}
	if correlated(outside, coords) {
		t.Error("line outside the window must not correlate")
	}

	otherFile := types.Finding{FilePath: "a/UserService.java", Line: 100}
	if correlated(otherFile, coords) {
		t.Error("different basename must not correlate")
	}
}

func TestCapListKeepsOrder(t *testing.T) {
	findings := []types.Finding{
		{Line: 1}, {Line: 2}, {Line: 3},
	}
	capped := capList(findings, 2)
	if len(capped) != 2 || capped[0].Line != 1 || capped[1].Line != 2 {
		t.Errorf("cap must truncate from the tail, got %+v", capped)
	}
	if got := capList(findings, 0); len(got) != 3 {
		t.Errorf("zero cap means unlimited, got %d", len(got))
	}
}
