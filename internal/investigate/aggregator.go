// Package investigate drives a full investigation: scan the code,
// analyze the evidence, and split findings into root causes and risks
// by correlation with log coordinates.
package investigate

import (
	"context"
	"path/filepath"

	"github.com/perfradar/radar/internal/checklist"
	"github.com/perfradar/radar/internal/config"
	"github.com/perfradar/radar/internal/debug"
	"github.com/perfradar/radar/internal/detect"
	"github.com/perfradar/radar/internal/forensic"
	"github.com/perfradar/radar/internal/jdk"
	"github.com/perfradar/radar/internal/types"
)

// proximityLines is the correlation window: a finding whose line falls
// within this distance of a log coordinate in the same file counts as
// corroborated.
const proximityLines = 10

// Request describes one investigation.
type Request struct {
	Evidence string   // log file path; empty means no log evidence
	Symptoms []string // operator-reported symptom labels
	PID      string   // live JVM to sample, optional
	MaxLines int      // log line cap override
}

// Run executes an investigation end to end. Symptom labels are
// validated up front; an unknown label fails the whole request before
// any scanning starts.
func Run(ctx context.Context, cfg *config.Config, req Request) (*types.InvestigationReport, error) {
	var symptoms []string
	for _, s := range req.Symptoms {
		resolved, err := checklist.Resolve(s)
		if err != nil {
			return nil, err
		}
		symptoms = append(symptoms, resolved)
	}

	var logResult *types.LogAnalysisResult
	if req.Evidence != "" {
		analyzer := forensic.NewAnalyzer(cfg.Forensic)
		result, err := analyzer.Analyze(req.Evidence, req.MaxLines)
		if err != nil {
			return nil, err
		}
		logResult = result
	}

	scanner := detect.NewScanner(cfg)
	scan, err := scanner.ScanProject(ctx)
	if err != nil {
		return nil, err
	}

	report := &types.InvestigationReport{
		Mode:     decideMode(logResult, symptoms),
		Log:      logResult,
		Symptoms: symptoms,
		Stats:    scan.Stats,
	}

	var coords []types.CodeCoordinate
	if logResult != nil {
		coords = logResult.Coordinates
	}
	report.RootCauses, report.Risks = classify(scan.Findings, coords)

	// Root causes keep their full cap; risks are trimmed harder.
	report.RootCauses = capList(report.RootCauses, cfg.Scan.MaxP0Findings)
	report.Risks = capList(report.Risks, cfg.Scan.MaxP1Findings)

	if req.PID != "" {
		if _, summary, err := jdk.ThreadDump(ctx, req.PID); err == nil {
			report.JDK = append(report.JDK, summary.Summarize())
		} else {
			debug.Printf("thread dump failed for pid %s: %v\n", req.PID, err)
		}
	}

	return report, nil
}

// decideMode picks the investigation mode. Log coordinates outrank
// declared symptoms; with neither, the scan is a baseline check.
func decideMode(logResult *types.LogAnalysisResult, symptoms []string) types.InvestigationMode {
	if logResult != nil && len(logResult.Coordinates) > 0 {
		return types.ModeEvidenceDriven
	}
	if len(symptoms) > 0 {
		return types.ModeSymptomDriven
	}
	return types.ModeBaselineCheck
}

// classify splits findings into root causes (corroborated by a log
// coordinate) and risks (everything else). Input order is preserved in
// both outputs, so the severity sort from the scan carries through.
func classify(findings []types.Finding, coords []types.CodeCoordinate) (rootCauses, risks []types.Finding) {
	for _, f := range findings {
		if correlated(f, coords) {
			rootCauses = append(rootCauses, f)
		} else {
			risks = append(risks, f)
		}
	}
	return rootCauses, risks
}

// correlated checks a finding against every coordinate: same file
// basename, line within the proximity window.
func correlated(f types.Finding, coords []types.CodeCoordinate) bool {
	base := filepath.Base(f.FilePath)
	for _, c := range coords {
		if c.File != base {
			continue
		}
		delta := f.Line - c.Line
		if delta < 0 {
			delta = -delta
		}
		if delta <= proximityLines {
			return true
		}
	}
	return false
}

func capList(findings []types.Finding, max int) []types.Finding {
	if max > 0 && len(findings) > max {
		return findings[:max]
	}
	return findings
}
