package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/perfradar/radar/internal/checklist"
	"github.com/perfradar/radar/internal/config"
	"github.com/perfradar/radar/internal/detect"
	"github.com/perfradar/radar/internal/forensic"
	"github.com/perfradar/radar/internal/investigate"
	"github.com/perfradar/radar/internal/jdk"
	"github.com/perfradar/radar/internal/report"
)

// textResult wraps markdown text as a tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// errorResult reports a handler failure through the protocol.
func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
	}
}

// decodeArgs unmarshals tool arguments into params.
func decodeArgs(req *mcp.CallToolRequest, params interface{}) error {
	if len(req.Params.Arguments) == 0 {
		return nil
	}
	return json.Unmarshal(req.Params.Arguments, params)
}

// scopedConfig copies the config with an overridden project root.
func (s *Server) scopedConfig(path string) *config.Config {
	cfg := *s.cfg
	if path != "" {
		cfg.Project.Root = path
	}
	return &cfg
}

func (s *Server) handleRadarScan(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Path    string `json:"path"`
		Compact bool   `json:"compact"`
	}
	if err := decodeArgs(req, &params); err != nil {
		return errorResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}

	scanner := detect.NewScanner(s.scopedConfig(params.Path))
	result, err := scanner.ScanProject(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return textResult(report.RenderScan(result, params.Compact)), nil
}

func (s *Server) handleScanFile(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		File string `json:"file"`
	}
	if err := decodeArgs(req, &params); err != nil || params.File == "" {
		return errorResult(fmt.Errorf("file argument is required")), nil
	}

	scanner := detect.NewScanner(s.cfg)
	findings, err := scanner.ScanFile(params.File, nil)
	if err != nil {
		return errorResult(err), nil
	}

	text, err := report.RenderJSON(findings)
	if err != nil {
		return errorResult(err), nil
	}
	return textResult(text), nil
}

func (s *Server) handleAnalyzeLog(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		File     string `json:"file"`
		MaxLines int    `json:"max_lines"`
	}
	if err := decodeArgs(req, &params); err != nil || params.File == "" {
		return errorResult(fmt.Errorf("file argument is required")), nil
	}

	analyzer := forensic.NewAnalyzer(s.cfg.Forensic)
	result, err := analyzer.Analyze(params.File, params.MaxLines)
	if err != nil {
		return errorResult(err), nil
	}
	return textResult(report.RenderLog(result)), nil
}

func (s *Server) handleInvestigate(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Path     string   `json:"path"`
		Evidence string   `json:"evidence"`
		Symptoms []string `json:"symptoms"`
		PID      string   `json:"pid"`
	}
	if err := decodeArgs(req, &params); err != nil {
		return errorResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}

	result, err := investigate.Run(ctx, s.scopedConfig(params.Path), investigate.Request{
		Evidence: params.Evidence,
		Symptoms: params.Symptoms,
		PID:      params.PID,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return textResult(report.RenderInvestigation(result)), nil
}

func (s *Server) handleGetChecklist(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Symptom  string `json:"symptom"`
		Priority string `json:"priority"`
	}
	if err := decodeArgs(req, &params); err != nil || params.Symptom == "" {
		return errorResult(fmt.Errorf("symptom argument is required")), nil
	}

	sections, err := checklist.ForSymptom(params.Symptom, params.Priority)
	if err != nil {
		return errorResult(err), nil
	}
	return textResult(report.RenderChecklist(sections)), nil
}

func (s *Server) handleListAntipatterns(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return textResult(report.RenderChecklist(checklist.AllSections())), nil
}

func (s *Server) handleThreadDump(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		PID string `json:"pid"`
	}
	if err := decodeArgs(req, &params); err != nil || params.PID == "" {
		return errorResult(fmt.Errorf("pid argument is required")), nil
	}

	dump, summary, err := jdk.ThreadDump(ctx, params.PID)
	if err != nil {
		return errorResult(err), nil
	}
	return textResult(summary.Summarize() + "\n\n```\n" + dump + "\n```"), nil
}

func (s *Server) handleHeapHistogram(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		PID string `json:"pid"`
	}
	if err := decodeArgs(req, &params); err != nil || params.PID == "" {
		return errorResult(fmt.Errorf("pid argument is required")), nil
	}

	histo, err := jdk.HeapHistogram(ctx, params.PID)
	if err != nil {
		return errorResult(err), nil
	}
	return textResult("```\n" + histo + "\n```"), nil
}

func (s *Server) handleBytecode(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Class     string `json:"class"`
		Classpath string `json:"classpath"`
	}
	if err := decodeArgs(req, &params); err != nil || params.Class == "" {
		return errorResult(fmt.Errorf("class argument is required")), nil
	}

	out, err := jdk.Bytecode(ctx, params.Classpath, params.Class)
	if err != nil {
		return errorResult(err), nil
	}
	return textResult("```\n" + out + "\n```"), nil
}
