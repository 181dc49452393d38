package detect

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/perfradar/radar/internal/types"
)

var (
	fromLatestRe   = regexp.MustCompile(`(?i)^FROM\s+\S+:latest\b`)
	fromNoTagRe    = regexp.MustCompile(`(?i)^FROM\s+(\S+)\s*$`)
	sensitiveEnvRe = regexp.MustCompile(`(?i)^ENV\s+\S*(PASSWORD|SECRET|KEY|TOKEN)\S*\s*=`)
	addRemoteRe    = regexp.MustCompile(`(?i)^ADD\s+https?://`)
	aptInstallRe   = regexp.MustCompile(`(?i)^RUN\s+apt(-get)?\s+install`)
)

// A RUN count above this suggests layers worth merging.
const maxRunLayers = 5

type dockerfileRule struct {
	kind       types.FindingKind
	severity   types.Severity
	pattern    *regexp.Regexp
	message    string
	suggestion string
}

var dockerfileRules = []dockerfileRule{
	{
		kind:       types.FindingDockerLatestTag,
		severity:   types.SeverityP0,
		pattern:    fromLatestRe,
		message:    "base image pinned to :latest; builds are not reproducible",
		suggestion: "pin the base image to an explicit version tag",
	},
	{
		kind:       types.FindingDockerNoTag,
		severity:   types.SeverityP0,
		pattern:    fromNoTagRe,
		message:    "FROM has no tag and defaults to :latest",
		suggestion: "pin the base image to an explicit version tag",
	},
	{
		kind:       types.FindingDockerSensitiveEnv,
		severity:   types.SeverityP0,
		pattern:    sensitiveEnvRe,
		message:    "ENV carries credential-shaped data baked into the image",
		suggestion: "pass secrets at runtime or via build secrets, never ENV",
	},
	{
		kind:       types.FindingDockerAddURL,
		severity:   types.SeverityP1,
		pattern:    addRemoteRe,
		message:    "ADD from a remote URL skips integrity checking",
		suggestion: "use curl with a checksum verification instead",
	},
}

// AnalyzeDockerfile scans a Dockerfile line by line for build
// anti-patterns. Whole-file checks (layer count, apt cache cleanup)
// report at line 1.
func AnalyzeDockerfile(path string, content []byte) []types.Finding {
	var findings []types.Finding
	text := string(content)

	runCount := 0
	aptWithoutClean := false

	for lineIdx, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		for _, rule := range dockerfileRules {
			if !rule.pattern.MatchString(trimmed) {
				continue
			}
			// A colon in the FROM line means a tag is present.
			if rule.kind == types.FindingDockerNoTag && strings.Contains(trimmed, ":") {
				continue
			}
			context := trimmed
			if len(context) > 60 {
				context = context[:60]
			}
			findings = append(findings, types.Finding{
				Kind:       rule.kind,
				Severity:   rule.severity,
				FilePath:   path,
				Line:       lineIdx + 1,
				Message:    rule.message,
				Suggestion: rule.suggestion,
				Details:    context,
			})
		}

		if strings.HasPrefix(strings.ToUpper(trimmed), "RUN ") {
			runCount++
		}
		if aptInstallRe.MatchString(trimmed) {
			if !strings.Contains(text, "apt-get clean") && !strings.Contains(text, "rm -rf /var/lib/apt") {
				aptWithoutClean = true
			}
		}
	}

	if runCount > maxRunLayers {
		findings = append(findings, types.Finding{
			Kind:       types.FindingDockerManyLayers,
			Severity:   types.SeverityP1,
			FilePath:   path,
			Line:       1,
			Message:    fmt.Sprintf("%d RUN instructions create %d layers", runCount, runCount),
			Suggestion: "chain related commands with && to reduce layer count",
		})
	}
	if aptWithoutClean {
		findings = append(findings, types.Finding{
			Kind:       types.FindingDockerAptNoClean,
			Severity:   types.SeverityP1,
			FilePath:   path,
			Line:       1,
			Message:    "apt-get install without cleaning the package cache bloats the image",
			Suggestion: "append apt-get clean && rm -rf /var/lib/apt/lists/* to the install RUN",
		})
	}

	return findings
}

// IsDockerfile reports whether a path names a Dockerfile variant
// (Dockerfile, Dockerfile.prod, app.Dockerfile).
func IsDockerfile(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	return base == "dockerfile" || strings.HasPrefix(base, "dockerfile.") || strings.HasSuffix(base, ".dockerfile")
}

// AnalyzeDeployFile dispatches a non-Java file to the right analyzer.
func AnalyzeDeployFile(path string, content []byte) []types.Finding {
	if IsDockerfile(path) {
		return AnalyzeDockerfile(path, content)
	}
	return AnalyzeConfigFile(path, content)
}
