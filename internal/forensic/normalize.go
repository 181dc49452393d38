// Package forensic analyzes production log files under strict resource
// bounds. Files stream through in fixed-size chunks; aggregation maps
// are capacity-capped; time and memory budgets trip mid-file and yield
// a truncated but fully valid result.
package forensic

import (
	"regexp"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// maxPatternLen bounds the stored normalized form of a line.
const maxPatternLen = 200

var (
	timestampRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(?:[.,]\d+)?`)
	uuidRe      = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
	ipRe        = regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`)
	hexRe       = regexp.MustCompile(`\b0x[0-9a-fA-F]+\b|\b[0-9a-f]{16,}\b`)
	numberRe    = regexp.MustCompile(`\b\d+\b`)

	exceptionRe  = regexp.MustCompile(`\b(\w+(?:Exception|Error))\b`)
	locationRe   = regexp.MustCompile(`\b(?:\w+\.){2,}\w+\b`)
	coordinateRe = regexp.MustCompile(`(\w+\.java):(\d+)`)

	timestampLayouts = []string{
		"2006-01-02 15:04:05.000",
		"2006-01-02 15:04:05,000",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05.000",
		"2006-01-02T15:04:05",
	}
)

// normalizeLine collapses the variable parts of a log line so that
// structurally identical lines share one pattern. Order matters:
// timestamps and UUIDs contain digits and must be replaced before the
// bare-number pass.
func normalizeLine(line string) string {
	s := timestampRe.ReplaceAllString(line, "<TS>")
	s = uuidRe.ReplaceAllString(s, "<UUID>")
	s = ipRe.ReplaceAllString(s, "<IP>")
	s = hexRe.ReplaceAllString(s, "<HEX>")
	s = numberRe.ReplaceAllString(s, "<N>")
	if len(s) > maxPatternLen {
		s = s[:maxPatternLen]
	}
	return s
}

// patternKey hashes a normalized line for use as a map key.
func patternKey(normalized string) uint64 {
	return xxhash.Sum64String(normalized)
}

// extractTimestamp parses the first timestamp found in a line.
func extractTimestamp(line string) (time.Time, bool) {
	match := timestampRe.FindString(line)
	if match == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, match); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// fingerprintKey builds the type@location key for an exception line.
// The location keeps only its last two dotted segments.
func fingerprintKey(excType, line string) (key, where string) {
	where = "unknown"
	for _, loc := range locationRe.FindAllString(line, -1) {
		// Skip the exception's own FQN; the interesting location is
		// the code coordinate next to it.
		if strings.HasSuffix(loc, excType) {
			continue
		}
		parts := strings.Split(loc, ".")
		if len(parts) >= 2 {
			where = strings.Join(parts[len(parts)-2:], ".")
		}
		break
	}
	return excType + "@" + where, where
}
