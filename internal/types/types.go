// Package types defines the shared data model for the radar engine:
// symbol records produced by indexing, findings produced by detectors,
// and the aggregate report shapes consumed by rendering and MCP layers.
package types

import "time"

// Severity classifies a finding by confidence and impact.
type Severity string

const (
	// SeverityP0 marks confirmed anti-patterns backed by index evidence.
	SeverityP0 Severity = "P0"
	// SeverityP1 marks heuristic matches that need human confirmation.
	SeverityP1 Severity = "P1"
)

// Rank orders severities for sorting (lower sorts first).
func (s Severity) Rank() int {
	if s == SeverityP0 {
		return 0
	}
	return 1
}

// FindingKind identifies the anti-pattern a detector matched.
type FindingKind string

const (
	FindingNPlusOne         FindingKind = "N_PLUS_ONE"
	FindingNestedLoop       FindingKind = "NESTED_LOOP"
	FindingThreadLocalLeak  FindingKind = "THREAD_LOCAL_LEAK"
	FindingLockContention   FindingKind = "LOCK_CONTENTION"
	FindingLargeSyncBlock   FindingKind = "LARGE_SYNC_BLOCK"
	FindingSyncMethod       FindingKind = "SYNC_METHOD"
	FindingLockNoUnlock     FindingKind = "LOCK_NO_UNLOCK"
	FindingSleepInLock      FindingKind = "SLEEP_IN_LOCK"
	FindingUnboundedPool    FindingKind = "UNBOUNDED_POOL"
	FindingStaticCollection FindingKind = "STATIC_COLLECTION"
	FindingStringConcatLoop FindingKind = "STRING_CONCAT_LOOP"
	FindingAllocInLoop      FindingKind = "ALLOC_IN_LOOP"

	// Deployment descriptors scanned alongside the Java sources.
	FindingSmallDBPool        FindingKind = "DB_POOL_SMALL"
	FindingLowServerThreads   FindingKind = "TOMCAT_THREADS_LOW"
	FindingDockerLatestTag    FindingKind = "DOCKER_LATEST_TAG"
	FindingDockerNoTag        FindingKind = "DOCKER_NO_TAG"
	FindingDockerSensitiveEnv FindingKind = "DOCKER_SENSITIVE_ENV"
	FindingDockerAddURL       FindingKind = "DOCKER_ADD_URL"
	FindingDockerManyLayers   FindingKind = "DOCKER_MANY_LAYERS"
	FindingDockerAptNoClean   FindingKind = "DOCKER_APT_NO_CLEAN"
)

// Finding is one detected anti-pattern occurrence at a source location.
type Finding struct {
	Kind       FindingKind `json:"kind"`
	Severity   Severity    `json:"severity"`
	FilePath   string      `json:"file_path"`
	Line       int         `json:"line"`
	Symbol     string      `json:"symbol,omitempty"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
	Details    string      `json:"details,omitempty"`
}

// Layer is the architectural role inferred from class annotations.
type Layer string

const (
	LayerController Layer = "controller"
	LayerService    Layer = "service"
	LayerRepository Layer = "repository"
	LayerComponent  Layer = "component"
	LayerUnknown    Layer = "unknown"
)

// LayerFromAnnotation maps a Java annotation name to a layer.
func LayerFromAnnotation(name string) Layer {
	switch name {
	case "Controller", "RestController":
		return LayerController
	case "Service":
		return LayerService
	case "Repository", "Mapper":
		return LayerRepository
	case "Component":
		return LayerComponent
	default:
		return LayerUnknown
	}
}

// MethodRecord is one indexed method declaration.
type MethodRecord struct {
	Name         string
	ClassName    string
	FilePath     string
	Line         int
	Synchronized bool
}

// TypeRecord is one indexed class or interface declaration.
type TypeRecord struct {
	Name        string
	FilePath    string
	Line        int
	Layer       Layer
	Annotations []string
}

// FieldRecord binds a field name to its declared type within a class.
type FieldRecord struct {
	Name      string
	TypeName  string
	ClassName string
	FilePath  string
	Line      int
}

// ScanStats summarizes one radar scan pass.
type ScanStats struct {
	FilesScanned int           `json:"files_scanned"`
	FilesSkipped int           `json:"files_skipped"`
	P0Count      int           `json:"p0_count"`
	P1Count      int           `json:"p1_count"`
	Duration     time.Duration `json:"duration"`
}

// ScanResult is the output of a full project scan.
type ScanResult struct {
	Root     string    `json:"root"`
	Findings []Finding `json:"findings"`
	Stats    ScanStats `json:"stats"`
}

// LogPatternEntry is one normalized log line shape with its occurrence data.
type LogPatternEntry struct {
	Pattern   string    `json:"pattern"`
	Count     int       `json:"count"`
	FirstSeen time.Time `json:"first_seen,omitempty"`
	LastSeen  time.Time `json:"last_seen,omitempty"`
	Example   string    `json:"example"`
	Rate      float64   `json:"rate_per_sec"`
	Anomalous bool      `json:"anomalous"`
}

// ExceptionFingerprint aggregates exception occurrences keyed type@location.
type ExceptionFingerprint struct {
	Key     string `json:"key"`
	Type    string `json:"type"`
	Where   string `json:"where"`
	Count   int    `json:"count"`
	Example string `json:"example"`
	Band    string `json:"band"`
}

// CodeCoordinate is a File.java:line reference extracted from log text.
type CodeCoordinate struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

// LogAnalysisResult is the bounded output of the forensic analyzer.
// Truncated results are valid: every populated field reflects the
// portion of the file processed before a budget tripped.
type LogAnalysisResult struct {
	FilePath     string                 `json:"file_path"`
	LinesRead    int                    `json:"lines_read"`
	BytesRead    int64                  `json:"bytes_read"`
	Truncated    bool                   `json:"truncated"`
	TruncateWhy  string                 `json:"truncate_reason,omitempty"`
	Patterns     []LogPatternEntry      `json:"patterns"`
	Exceptions   []ExceptionFingerprint `json:"exceptions"`
	Coordinates  []CodeCoordinate       `json:"coordinates"`
	PatternDrops int                    `json:"pattern_drops"`
}

// InvestigationMode describes how an investigation was driven.
type InvestigationMode string

const (
	ModeEvidenceDriven InvestigationMode = "evidence-driven"
	ModeSymptomDriven  InvestigationMode = "symptom-driven"
	ModeBaselineCheck  InvestigationMode = "baseline-check"
)

// InvestigationReport correlates scan findings with log evidence.
type InvestigationReport struct {
	Mode       InvestigationMode  `json:"mode"`
	RootCauses []Finding          `json:"root_causes"`
	Risks      []Finding          `json:"risks"`
	Log        *LogAnalysisResult `json:"log,omitempty"`
	Symptoms   []string           `json:"symptoms,omitempty"`
	JDK        []string           `json:"jdk_evidence,omitempty"`
	Stats      ScanStats          `json:"stats"`
}
