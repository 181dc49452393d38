// Package config holds engine configuration loaded from .radar.kdl
// with CLI flag overrides layered on top.
package config

import (
	"fmt"
	"runtime"
	"strconv"

	radarerrors "github.com/perfradar/radar/internal/errors"
)

// Config is the root configuration for the radar engine.
type Config struct {
	Version     int
	Project     Project
	Scan        Scan
	Forensic    Forensic
	Performance Performance
	Exclude     []string
}

// Project identifies the code base under investigation.
type Project struct {
	Root string
	Name string
}

// Scan controls the project scan phase.
type Scan struct {
	MaxFileSize    int64
	MaxFileCount   int
	MaxDepth       int
	FollowSymlinks bool
	MaxP1Findings  int
	MaxP0Findings  int
	SyncBlockLines int
}

// Forensic controls the log analyzer budgets.
type Forensic struct {
	MaxLines          int
	MaxPatterns       int
	MaxExceptionKeys  int
	MaxCoordinates    int
	TimeFloorSeconds  int
	MsPerMB           int
	MaxMemoryGrowthMB int
	ChunkSizeKB       int
}

// Performance bounds engine resource usage.
type Performance struct {
	MaxGoroutines int
	DebounceMs    int
}

// Default returns the baseline configuration.
func Default() *Config {
	return &Config{
		Version: 1,
		Project: Project{Root: "."},
		Scan: Scan{
			MaxFileSize:    10 * 1024 * 1024,
			MaxFileCount:   50000,
			MaxDepth:       40,
			FollowSymlinks: false,
			MaxP1Findings:  50,
			MaxP0Findings:  100,
			SyncBlockLines: 20,
		},
		Forensic: Forensic{
			MaxLines:          200000,
			MaxPatterns:       1000,
			MaxExceptionKeys:  1000,
			MaxCoordinates:    20,
			TimeFloorSeconds:  30,
			MsPerMB:           100,
			MaxMemoryGrowthMB: 1024,
			ChunkSizeKB:       64,
		},
		Performance: Performance{
			MaxGoroutines: runtime.NumCPU(),
			DebounceMs:    100,
		},
		Exclude: defaultExclusions(),
	}
}

// Validate checks configuration invariants. All violations are
// reported at once, not just the first.
func (c *Config) Validate() error {
	var errs []error
	if c.Project.Root == "" {
		errs = append(errs, radarerrors.NewConfigError("project.root", "",
			fmt.Errorf("must not be empty")))
	}
	mustBePositive := func(field string, value int64) {
		if value <= 0 {
			errs = append(errs, radarerrors.NewConfigError(field,
				strconv.FormatInt(value, 10), fmt.Errorf("must be positive")))
		}
	}
	mustBePositive("scan.max_file_size", c.Scan.MaxFileSize)
	mustBePositive("scan.max_depth", int64(c.Scan.MaxDepth))
	mustBePositive("forensic.max_patterns", int64(c.Forensic.MaxPatterns))
	mustBePositive("forensic.time_floor_seconds", int64(c.Forensic.TimeFloorSeconds))
	mustBePositive("performance.max_goroutines", int64(c.Performance.MaxGoroutines))

	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return radarerrors.NewMultiError(errs)
	}
}

// defaultExclusions lists directories never worth scanning for Java
// sources: VCS metadata, build outputs, dependency caches.
func defaultExclusions() []string {
	return []string{
		"**/.*/**",
		"**/target/**",
		"**/build/**",
		"**/out/**",
		"**/bin/**",
		"**/node_modules/**",
		"**/vendor/**",
		"**/.gradle/**",
		"**/.m2/**",
		"**/generated/**",
		"**/generated-sources/**",
		"**/*.class",
		"**/*.jar",
		"**/*.war",
	}
}
