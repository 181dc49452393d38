package forensic

import (
	"bytes"
	"io"
	"os"
	"runtime"
	"sort"
	"strconv"
	"time"

	"github.com/perfradar/radar/internal/config"
	"github.com/perfradar/radar/internal/debug"
	radarerrors "github.com/perfradar/radar/internal/errors"
	"github.com/perfradar/radar/internal/types"
)

// Banding thresholds for exception fingerprints. Very frequent
// exceptions are usually retry noise; rare ones are often the trigger.
const (
	noiseBandCount     = 1000
	rootCauseBandCount = 10
)

// Anomaly thresholds for pattern entries.
const (
	anomalousCount = 1000
	anomalousRate  = 100.0
)

// Analyzer runs bounded forensic analysis over log files. One Analyzer
// handles one file at a time; the per-file pass is single-threaded so
// that its memory use stays proportional to the map caps, not to file
// size.
type Analyzer struct {
	cfg config.Forensic
}

// NewAnalyzer creates an analyzer with the given budgets.
func NewAnalyzer(cfg config.Forensic) *Analyzer {
	return &Analyzer{cfg: cfg}
}

type patternAgg struct {
	normalized string
	count      int
	firstSeen  time.Time
	lastSeen   time.Time
	example    string
}

type exceptionAgg struct {
	excType string
	where   string
	count   int
	example string
}

// Analyze processes one log file. maxLines <= 0 means the configured
// default. A tripped budget returns the partial result with Truncated
// set, never an error; only failing to open the file is an error.
func (a *Analyzer) Analyze(path string, maxLines int) (*types.LogAnalysisResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if maxLines <= 0 {
		maxLines = a.cfg.MaxLines
	}

	var sizeMB int64
	if info, err := f.Stat(); err == nil {
		sizeMB = info.Size() / (1024 * 1024)
	}
	budget := time.Duration(a.cfg.TimeFloorSeconds) * time.Second
	if dynamic := time.Duration(sizeMB) * time.Duration(a.cfg.MsPerMB) * time.Millisecond; dynamic > budget {
		budget = dynamic
	}
	deadline := time.Now().Add(budget)

	var memBase runtime.MemStats
	runtime.ReadMemStats(&memBase)
	memCeiling := uint64(a.cfg.MaxMemoryGrowthMB) * 1024 * 1024

	result := &types.LogAnalysisResult{FilePath: path}
	patterns := make(map[uint64]*patternAgg)
	exceptions := make(map[string]*exceptionAgg)
	coordSeen := make(map[types.CodeCoordinate]bool)

	chunkSize := a.cfg.ChunkSizeKB * 1024
	if chunkSize <= 0 {
		chunkSize = 64 * 1024
	}
	buf := make([]byte, chunkSize)
	var carry []byte

	for !result.Truncated {
		n, readErr := f.Read(buf)
		if n > 0 {
			result.BytesRead += int64(n)
			data := append(carry, buf[:n]...)
			lines := bytes.Split(data, []byte{'\n'})
			carry = append([]byte(nil), lines[len(lines)-1]...)
			for _, raw := range lines[:len(lines)-1] {
				a.processLine(string(raw), result, patterns, exceptions, coordSeen)
				result.LinesRead++
				if result.LinesRead >= maxLines {
					result.Truncated = true
					result.TruncateWhy = radarerrors.NewBudgetError(path, "line", strconv.Itoa(maxLines)).Error()
					break
				}
			}
		}

		if !result.Truncated {
			if time.Now().After(deadline) {
				result.Truncated = true
				result.TruncateWhy = radarerrors.NewBudgetError(path, "time", budget.String()).Error()
			} else if memCeiling > 0 {
				var mem runtime.MemStats
				runtime.ReadMemStats(&mem)
				if mem.HeapAlloc > memBase.HeapAlloc && mem.HeapAlloc-memBase.HeapAlloc > memCeiling {
					result.Truncated = true
					result.TruncateWhy = radarerrors.NewBudgetError(path, "memory growth",
						strconv.Itoa(a.cfg.MaxMemoryGrowthMB)+"MB").Error()
				}
			}
		}

		if readErr == io.EOF {
			if len(carry) > 0 && !result.Truncated && result.LinesRead < maxLines {
				a.processLine(string(carry), result, patterns, exceptions, coordSeen)
				result.LinesRead++
			}
			break
		}
		if readErr != nil {
			debug.LogForensic("read error on %s after %d bytes: %v\n", path, result.BytesRead, readErr)
			result.Truncated = true
			result.TruncateWhy = "read error: " + readErr.Error()
			break
		}
	}

	a.finalize(result, patterns, exceptions)
	return result, nil
}

// processLine updates every aggregation map for one log line.
func (a *Analyzer) processLine(line string, result *types.LogAnalysisResult,
	patterns map[uint64]*patternAgg, exceptions map[string]*exceptionAgg,
	coordSeen map[types.CodeCoordinate]bool) {

	if line == "" {
		return
	}

	ts, hasTS := extractTimestamp(line)

	normalized := normalizeLine(line)
	key := patternKey(normalized)
	if agg, ok := patterns[key]; ok {
		agg.count++
		if hasTS {
			if agg.firstSeen.IsZero() {
				agg.firstSeen = ts
			}
			agg.lastSeen = ts
		}
	} else if len(patterns) < a.cfg.MaxPatterns {
		agg := &patternAgg{normalized: normalized, count: 1, example: line}
		if hasTS {
			agg.firstSeen = ts
			agg.lastSeen = ts
		}
		patterns[key] = agg
	} else {
		// Map is full: existing patterns keep counting, new ones drop.
		result.PatternDrops++
	}

	if m := exceptionRe.FindStringSubmatch(line); m != nil {
		excType := m[1]
		key, where := fingerprintKey(excType, line)
		if agg, ok := exceptions[key]; ok {
			agg.count++
		} else if len(exceptions) < a.cfg.MaxExceptionKeys {
			exceptions[key] = &exceptionAgg{excType: excType, where: where, count: 1, example: line}
		}
	}

	if len(coordSeen) < a.cfg.MaxCoordinates {
		for _, m := range coordinateRe.FindAllStringSubmatch(line, -1) {
			lineNo, err := strconv.Atoi(m[2])
			if err != nil {
				continue
			}
			coord := types.CodeCoordinate{File: m[1], Line: lineNo}
			if !coordSeen[coord] {
				coordSeen[coord] = true
				result.Coordinates = append(result.Coordinates, coord)
				if len(coordSeen) >= a.cfg.MaxCoordinates {
					break
				}
			}
		}
	}
}

// finalize computes burst rates, bands and sort orders.
func (a *Analyzer) finalize(result *types.LogAnalysisResult,
	patterns map[uint64]*patternAgg, exceptions map[string]*exceptionAgg) {

	result.Patterns = make([]types.LogPatternEntry, 0, len(patterns))
	for _, agg := range patterns {
		entry := types.LogPatternEntry{
			Pattern:   agg.normalized,
			Count:     agg.count,
			FirstSeen: agg.firstSeen,
			LastSeen:  agg.lastSeen,
			Example:   agg.example,
		}
		if !agg.firstSeen.IsZero() && agg.lastSeen.After(agg.firstSeen) {
			span := agg.lastSeen.Sub(agg.firstSeen).Seconds()
			entry.Rate = float64(agg.count) / span
		} else if agg.count > 1 {
			// All occurrences share one timestamp (or none); treat the
			// burst as instantaneous at one-second resolution.
			entry.Rate = float64(agg.count)
		}
		entry.Anomalous = entry.Count >= anomalousCount || entry.Rate >= anomalousRate
		result.Patterns = append(result.Patterns, entry)
	}
	sort.Slice(result.Patterns, func(i, j int) bool {
		if result.Patterns[i].Rate != result.Patterns[j].Rate {
			return result.Patterns[i].Rate > result.Patterns[j].Rate
		}
		return result.Patterns[i].Count > result.Patterns[j].Count
	})

	result.Exceptions = make([]types.ExceptionFingerprint, 0, len(exceptions))
	for key, agg := range exceptions {
		fp := types.ExceptionFingerprint{
			Key:     key,
			Type:    agg.excType,
			Where:   agg.where,
			Count:   agg.count,
			Example: agg.example,
		}
		switch {
		case agg.count > noiseBandCount:
			fp.Band = "likely noise"
		case agg.count < rootCauseBandCount:
			fp.Band = "likely root cause"
		}
		result.Exceptions = append(result.Exceptions, fp)
	}
	sort.Slice(result.Exceptions, func(i, j int) bool {
		if result.Exceptions[i].Count != result.Exceptions[j].Count {
			return result.Exceptions[i].Count > result.Exceptions[j].Count
		}
		return result.Exceptions[i].Key < result.Exceptions[j].Key
	})
}
