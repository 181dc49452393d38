package detect

import (
	"context"
	"os"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/perfradar/radar/internal/config"
	"github.com/perfradar/radar/internal/debug"
	"github.com/perfradar/radar/internal/indexing"
	"github.com/perfradar/radar/internal/parser"
	"github.com/perfradar/radar/internal/types"
)

// Scanner runs the two-phase radar scan: build the symbol index, then
// run every detector over every file against the completed index.
type Scanner struct {
	cfg       *config.Config
	parser    *parser.Parser
	detectors []Detector

	lastIndex *indexing.SymbolIndex
}

// NewScanner creates a scanner with the default detector set.
func NewScanner(cfg *config.Config) *Scanner {
	return &Scanner{
		cfg:       cfg,
		parser:    parser.New(),
		detectors: DefaultDetectors(),
	}
}

// ScanProject scans every Java file under the configured root.
func (s *Scanner) ScanProject(ctx context.Context) (*types.ScanResult, error) {
	start := time.Now()

	idx, err := indexing.BuildIndex(ctx, s.cfg, s.parser)
	if err != nil {
		return nil, err
	}
	s.lastIndex = idx

	files, err := indexing.CollectJavaFiles(s.cfg.Project.Root, s.cfg)
	if err != nil {
		return nil, err
	}

	workers := s.cfg.Performance.MaxGoroutines
	if workers < 1 {
		workers = 1
	}

	var (
		g, gctx = errgroup.WithContext(ctx)
		paths   = make(chan string)
		results = make(chan []types.Finding, workers)
	)

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for path := range paths {
				if err := gctx.Err(); err != nil {
					return err
				}
				findings := s.scanOne(path, idx)
				if len(findings) > 0 {
					select {
					case results <- findings:
					case <-gctx.Done():
						return gctx.Err()
					}
				}
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(paths)
		for _, path := range files {
			select {
			case paths <- path:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	collected := make([]types.Finding, 0, 64)
	done := make(chan struct{})
	go func() {
		for findings := range results {
			collected = append(collected, findings...)
		}
		close(done)
	}()

	err = g.Wait()
	close(results)
	<-done
	if err != nil {
		return nil, err
	}

	collected = append(collected, s.scanDeployFiles()...)

	sortFindings(collected)
	collected = capFindings(collected, s.cfg.Scan.MaxP0Findings, s.cfg.Scan.MaxP1Findings)

	stats := types.ScanStats{
		FilesScanned: idx.FilesIndexed,
		FilesSkipped: idx.FilesSkipped,
		Duration:     time.Since(start),
	}
	for _, f := range collected {
		if f.Severity == types.SeverityP0 {
			stats.P0Count++
		} else {
			stats.P1Count++
		}
	}

	return &types.ScanResult{
		Root:     s.cfg.Project.Root,
		Findings: collected,
		Stats:    stats,
	}, nil
}

// Index returns the symbol index from the most recent ScanProject,
// or nil before the first scan.
func (s *Scanner) Index() *indexing.SymbolIndex {
	return s.lastIndex
}

// ScanFile analyzes a single file. The index argument may be nil;
// detection then falls back to heuristics only.
func (s *Scanner) ScanFile(path string, idx *indexing.SymbolIndex) ([]types.Finding, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	tree, err := s.parser.Parse(content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	findings := RunAll(&Context{
		Root:     tree.RootNode(),
		Content:  content,
		FilePath: path,
		Index:    idx,
		Config:   s.cfg,
	}, s.detectors)
	sortFindings(findings)
	return findings, nil
}

// scanDeployFiles analyzes the deployment descriptors alongside the
// Java sources: Spring config files and Dockerfiles. These are few and
// small, so the pass is serial.
func (s *Scanner) scanDeployFiles() []types.Finding {
	files, err := indexing.CollectDeployFiles(s.cfg.Project.Root, s.cfg)
	if err != nil {
		debug.LogScan("deploy file walk failed: %v\n", err)
		return nil
	}

	var findings []types.Finding
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			debug.LogScan("skipping %s: %v\n", path, err)
			continue
		}
		findings = append(findings, AnalyzeDeployFile(path, content)...)
	}
	return findings
}

// scanOne is the per-worker unit of work; errors are skip-and-continue.
func (s *Scanner) scanOne(path string, idx *indexing.SymbolIndex) []types.Finding {
	findings, err := s.ScanFile(path, idx)
	if err != nil {
		debug.LogScan("skipping %s: %v\n", path, err)
		return nil
	}
	return findings
}

// sortFindings orders P0 before P1, then by path and line.
func sortFindings(findings []types.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Severity != findings[j].Severity {
			return findings[i].Severity.Rank() < findings[j].Severity.Rank()
		}
		if findings[i].FilePath != findings[j].FilePath {
			return findings[i].FilePath < findings[j].FilePath
		}
		return findings[i].Line < findings[j].Line
	})
}

// capFindings truncates each severity class independently. The slice
// must already be sorted; P0 findings are never displaced by P1s.
func capFindings(findings []types.Finding, maxP0, maxP1 int) []types.Finding {
	if maxP0 <= 0 && maxP1 <= 0 {
		return findings
	}
	out := findings[:0]
	p0, p1 := 0, 0
	for _, f := range findings {
		switch f.Severity {
		case types.SeverityP0:
			if maxP0 > 0 && p0 >= maxP0 {
				continue
			}
			p0++
		default:
			if maxP1 > 0 && p1 >= maxP1 {
				continue
			}
			p1++
		}
		out = append(out, f)
	}
	return out
}
