package detect

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/perfradar/radar/internal/types"
)

// configRule checks one key in Spring-style configuration files. Keys
// are matched line by line against both the dotted properties form and
// the YAML leaf key; no YAML parser is involved, which is enough for
// key=value and key: value lines.
type configRule struct {
	kind       types.FindingKind
	severity   types.Severity
	fullKey    string // dotted form used in .properties files
	leafKey    string // trailing key used for YAML line matching
	ok         func(value string) bool
	message    string
	suggestion string
}

var configRules = []configRule{
	{
		kind:       types.FindingSmallDBPool,
		severity:   types.SeverityP1,
		fullKey:    "spring.datasource.hikari.maximum-pool-size",
		leafKey:    "maximum-pool-size",
		ok:         intAtLeast(5),
		message:    "database connection pool is undersized",
		suggestion: "raise maximum-pool-size to at least 10",
	},
	{
		kind:       types.FindingLowServerThreads,
		severity:   types.SeverityP1,
		fullKey:    "server.tomcat.max-threads",
		leafKey:    "max-threads",
		ok:         intAtLeast(200),
		message:    "servlet worker thread cap is below the Tomcat default",
		suggestion: "keep max-threads at or above the default of 200",
	},
}

// intAtLeast accepts a value when it parses to an integer >= min.
// Unparsable values pass; a placeholder like ${POOL_SIZE} is not a
// finding.
func intAtLeast(min int) func(string) bool {
	return func(raw string) bool {
		v := strings.TrimSpace(strings.SplitN(raw, "#", 2)[0])
		n, err := strconv.Atoi(v)
		if err != nil {
			return true
		}
		return n >= min
	}
}

// AnalyzeConfigFile scans a .properties/.yml/.yaml file line by line
// against the configuration rules.
func AnalyzeConfigFile(path string, content []byte) []types.Finding {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	isYAML := ext == "yml" || ext == "yaml"
	if !isYAML && ext != "properties" {
		return nil
	}

	var findings []types.Finding
	for lineIdx, line := range strings.Split(string(content), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		for _, rule := range configRules {
			key := rule.fullKey
			if isYAML {
				key = rule.leafKey
			}
			if !strings.Contains(trimmed, key) {
				continue
			}

			var parts []string
			if strings.Contains(trimmed, "=") {
				parts = strings.SplitN(trimmed, "=", 2)
			} else {
				parts = strings.SplitN(trimmed, ":", 2)
			}
			if len(parts) != 2 {
				continue
			}
			// The key must end with the pattern, so max-threads does
			// not match some-other-max-threads-window.
			if !strings.HasSuffix(strings.TrimSpace(parts[0]), key) {
				continue
			}

			value := strings.TrimSpace(parts[1])
			if rule.ok(value) {
				continue
			}
			findings = append(findings, types.Finding{
				Kind:       rule.kind,
				Severity:   rule.severity,
				FilePath:   path,
				Line:       lineIdx + 1,
				Message:    fmt.Sprintf("%s (value: %s)", rule.message, value),
				Suggestion: rule.suggestion,
				Details:    trimmed,
			})
		}
	}
	return findings
}
