// Package mcp exposes the radar engine as an MCP tool server over
// stdio. Tool handlers are thin: decode arguments, call the engine,
// render markdown.
package mcp

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/perfradar/radar/internal/config"
	"github.com/perfradar/radar/internal/debug"
	"github.com/perfradar/radar/internal/version"
)

// Server wires the radar engine into an MCP server.
type Server struct {
	server *mcp.Server
	cfg    *config.Config
}

// NewServer creates the MCP server and registers all tools.
func NewServer(cfg *config.Config) *Server {
	s := &Server{
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "java-perf-radar",
			Version: version.Info(),
		}, nil),
		cfg: cfg,
	}
	s.registerTools()
	return s
}

// Start runs the server on stdio until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	debug.LogMCP("starting MCP server (stdio)\n")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// registerTools registers the full tool surface.
func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "radar_scan",
		Description: "Scan a Java project for performance anti-patterns (N+1 queries, nested loops, lock contention, ThreadLocal leaks, unbounded resources). Two-phase: builds a cross-file symbol index first, so repository calls are confirmed rather than guessed.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"path": {
					Type:        "string",
					Description: "Project root to scan (defaults to configured root)",
				},
				"compact": {
					Type:        "boolean",
					Description: "One line per finding instead of the full report",
				},
			},
		},
	}, s.handleRadarScan)

	s.server.AddTool(&mcp.Tool{
		Name:        "scan_file",
		Description: "Scan a single Java file for performance anti-patterns. Without a prior project scan the detectors fall back to naming heuristics (P1 instead of P0).",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"file": {
					Type:        "string",
					Description: "Path to the .java file",
				},
			},
			Required: []string{"file"},
		},
	}, s.handleScanFile)

	s.server.AddTool(&mcp.Tool{
		Name:        "analyze_log",
		Description: "Forensic analysis of a production log file: normalized line patterns with burst rates, exception fingerprints (type@location) with noise/root-cause banding, and File.java:line coordinates for correlation. Bounded by time and memory budgets; oversized files yield truncated but valid results.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"file": {
					Type:        "string",
					Description: "Path to the log file",
				},
				"max_lines": {
					Type:        "integer",
					Description: "Line cap override",
				},
			},
			Required: []string{"file"},
		},
	}, s.handleAnalyzeLog)

	s.server.AddTool(&mcp.Tool{
		Name:        "investigate",
		Description: "Full investigation: scan the project, optionally analyze a log file and/or sample a live JVM, then split findings into root causes (corroborated by log coordinates) and risks. Mode is evidence-driven, symptom-driven, or baseline-check depending on inputs.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"path": {
					Type:        "string",
					Description: "Project root (defaults to configured root)",
				},
				"evidence": {
					Type:        "string",
					Description: "Log file to analyze as evidence",
				},
				"symptoms": {
					Type:        "array",
					Items:       &jsonschema.Schema{Type: "string"},
					Description: "Observed symptoms: memory, cpu, slow, latency, resource, backlog, gc, timeout",
				},
				"pid": {
					Type:        "string",
					Description: "Live JVM PID to thread-dump",
				},
			},
		},
	}, s.handleInvestigate)

	s.server.AddTool(&mcp.Tool{
		Name:        "get_checklist",
		Description: "Diagnostic checklist for a reported symptom. Unknown symptoms are rejected with a did-you-mean suggestion.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"symptom": {
					Type:        "string",
					Description: "Symptom label (memory, cpu, slow, latency, resource, backlog, gc, timeout)",
				},
				"priority": {
					Type:        "string",
					Description: "Filter to one priority (P0 or P1)",
				},
			},
			Required: []string{"symptom"},
		},
	}, s.handleGetChecklist)

	s.server.AddTool(&mcp.Tool{
		Name:        "list_antipatterns",
		Description: "The full anti-pattern knowledge base, all sections.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{},
		},
	}, s.handleListAntipatterns)

	s.server.AddTool(&mcp.Tool{
		Name:        "thread_dump",
		Description: "jstack a live JVM and summarize thread states (RUNNABLE/BLOCKED/WAITING) plus deadlock detection.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"pid": {
					Type:        "string",
					Description: "JVM process ID",
				},
			},
			Required: []string{"pid"},
		},
	}, s.handleThreadDump)

	s.server.AddTool(&mcp.Tool{
		Name:        "heap_histogram",
		Description: "jmap -histo:live of a live JVM, top classes by live instance footprint.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"pid": {
					Type:        "string",
					Description: "JVM process ID",
				},
			},
			Required: []string{"pid"},
		},
	}, s.handleHeapHistogram)

	s.server.AddTool(&mcp.Tool{
		Name:        "bytecode",
		Description: "javap -c -v disassembly of a compiled class.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"class": {
					Type:        "string",
					Description: "Fully qualified class name",
				},
				"classpath": {
					Type:        "string",
					Description: "Classpath to resolve the class",
				},
			},
			Required: []string{"class"},
		},
	}, s.handleBytecode)
}
