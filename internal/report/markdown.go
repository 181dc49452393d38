// Package report renders scan, forensic and investigation results as
// markdown or JSON for the CLI and MCP surfaces.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/perfradar/radar/internal/checklist"
	"github.com/perfradar/radar/internal/types"
)

// RenderScan renders a project scan. Compact mode prints one line per
// finding; full mode includes suggestions.
func RenderScan(result *types.ScanResult, compact bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Performance Radar\n\n")
	fmt.Fprintf(&b, "Scanned %d files in %s (%d skipped)\n\n",
		result.Stats.FilesScanned, result.Stats.Duration.Round(1e6), result.Stats.FilesSkipped)
	fmt.Fprintf(&b, "**%d P0** confirmed, **%d P1** suspected\n\n",
		result.Stats.P0Count, result.Stats.P1Count)

	if len(result.Findings) == 0 {
		b.WriteString("No anti-patterns detected.\n")
		return b.String()
	}

	if compact {
		for _, f := range result.Findings {
			fmt.Fprintf(&b, "- [%s] %s %s:%d %s\n", f.Severity, f.Kind, f.FilePath, f.Line, f.Message)
		}
		return b.String()
	}

	for _, severity := range []types.Severity{types.SeverityP0, types.SeverityP1} {
		header := severityHeader(severity)
		wroteHeader := false
		for _, f := range result.Findings {
			if f.Severity != severity {
				continue
			}
			if !wroteHeader {
				fmt.Fprintf(&b, "## %s\n\n", header)
				wroteHeader = true
			}
			fmt.Fprintf(&b, "### %s at %s:%d\n\n", f.Kind, f.FilePath, f.Line)
			fmt.Fprintf(&b, "%s\n\n", f.Message)
			if f.Suggestion != "" {
				fmt.Fprintf(&b, "Fix: %s\n\n", f.Suggestion)
			}
		}
	}

	return b.String()
}

func severityHeader(s types.Severity) string {
	if s == types.SeverityP0 {
		return "P0: confirmed"
	}
	return "P1: needs confirmation"
}

// RenderLog renders a forensic analysis result.
func RenderLog(result *types.LogAnalysisResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Log Forensics: %s\n\n", result.FilePath)
	fmt.Fprintf(&b, "Read %d lines (%d bytes)", result.LinesRead, result.BytesRead)
	if result.Truncated {
		fmt.Fprintf(&b, ", truncated: %s", result.TruncateWhy)
	}
	b.WriteString("\n\n")

	if len(result.Exceptions) > 0 {
		b.WriteString("## Exception fingerprints\n\n")
		b.WriteString("| Count | Fingerprint | Assessment |\n|---|---|---|\n")
		limit := len(result.Exceptions)
		if limit > 10 {
			limit = 10
		}
		for _, fp := range result.Exceptions[:limit] {
			fmt.Fprintf(&b, "| %d | %s | %s |\n", fp.Count, fp.Key, fp.Band)
		}
		b.WriteString("\nBands are heuristic: high-count exceptions are often retry noise, rare ones often mark the trigger.\n\n")
	}

	anomalous := 0
	for _, p := range result.Patterns {
		if p.Anomalous {
			anomalous++
		}
	}
	if anomalous > 0 {
		b.WriteString("## Burst patterns\n\n")
		for _, p := range result.Patterns {
			if !p.Anomalous {
				continue
			}
			fmt.Fprintf(&b, "- %dx (%.1f/s): `%s`\n", p.Count, p.Rate, p.Pattern)
		}
		b.WriteString("\n")
	}

	if len(result.Coordinates) > 0 {
		b.WriteString("## Code coordinates\n\n")
		for _, c := range result.Coordinates {
			fmt.Fprintf(&b, "- %s:%d\n", c.File, c.Line)
		}
		b.WriteString("\n")
	}
	if result.PatternDrops > 0 {
		fmt.Fprintf(&b, "%d lines fell outside the pattern cap and were counted as drops.\n", result.PatternDrops)
	}

	return b.String()
}

// RenderInvestigation renders a full investigation report.
func RenderInvestigation(report *types.InvestigationReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Investigation (%s)\n\n", report.Mode)
	if len(report.Symptoms) > 0 {
		fmt.Fprintf(&b, "Symptoms: %s\n\n", strings.Join(report.Symptoms, ", "))
	}

	if len(report.RootCauses) > 0 {
		b.WriteString("## Root causes (corroborated by log evidence)\n\n")
		for _, f := range report.RootCauses {
			fmt.Fprintf(&b, "- [%s] %s %s:%d %s\n", f.Severity, f.Kind, f.FilePath, f.Line, f.Message)
		}
		b.WriteString("\n")
	}

	if len(report.Risks) > 0 {
		b.WriteString("## Risks (detected, not corroborated)\n\n")
		for _, f := range report.Risks {
			fmt.Fprintf(&b, "- [%s] %s %s:%d %s\n", f.Severity, f.Kind, f.FilePath, f.Line, f.Message)
		}
		b.WriteString("\n")
	}

	if len(report.RootCauses) == 0 && len(report.Risks) == 0 {
		b.WriteString("No anti-patterns detected.\n\n")
	}

	for _, evidence := range report.JDK {
		fmt.Fprintf(&b, "JVM evidence: %s\n", evidence)
	}

	if report.Log != nil && report.Log.Truncated {
		fmt.Fprintf(&b, "\nLog analysis was truncated (%s); conclusions reflect the analyzed portion.\n", report.Log.TruncateWhy)
	}

	return b.String()
}

// RenderChecklist renders checklist sections.
func RenderChecklist(sections []checklist.Section) string {
	var b strings.Builder
	for _, section := range sections {
		fmt.Fprintf(&b, "## %s\n\n", section.Title)
		for _, item := range section.Items {
			fmt.Fprintf(&b, "- **[%s] %s**\n", item.Priority, item.Title)
			if item.Verify != "" {
				fmt.Fprintf(&b, "  - verify: %s\n", item.Verify)
			}
			if item.Fix != "" {
				fmt.Fprintf(&b, "  - fix: %s\n", item.Fix)
			}
			if item.Why != "" {
				fmt.Fprintf(&b, "  - why: %s\n", item.Why)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderJSON marshals any result shape with indentation.
func RenderJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
