package forensic

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/perfradar/radar/internal/config"
)

func writeLog(t *testing.T, lines []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.log")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNormalizeLineCollapsesVariableParts(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "timestamp and number",
			in:   "2024-03-01 12:00:01.123 ERROR order 12345 failed",
			want: "<TS> ERROR order <N> failed",
		},
		{
			name: "uuid",
			in:   "request 550e8400-e29b-41d4-a716-446655440000 rejected",
			want: "request <UUID> rejected",
		},
		{
			name: "ip address",
			in:   "connect to 10.0.0.17 refused",
			want: "connect to <IP> refused",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeLine(tt.in); got != tt.want {
				t.Errorf("normalizeLine(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIdenticalLinesAggregateToOnePattern(t *testing.T) {
	// 10s worth of the same error repeated 10000 times: one pattern,
	// full count, burst rate around 1000/s, flagged anomalous.
	lines := make([]string, 0, 10000)
	for i := 0; i < 10000; i++ {
		sec := i / 1000
		lines = append(lines, fmt.Sprintf("2024-03-01 12:00:%02d ERROR timeout calling inventory id=%d", sec, i))
	}
	path := writeLog(t, lines)

	a := NewAnalyzer(config.Default().Forensic)
	result, err := a.Analyze(path, 0)
	if err != nil {
		t.Fatal(err)
	}

	if result.LinesRead != 10000 {
		t.Errorf("expected 10000 lines read, got %d", result.LinesRead)
	}
	if len(result.Patterns) != 1 {
		t.Fatalf("expected 1 aggregated pattern, got %d", len(result.Patterns))
	}
	p := result.Patterns[0]
	if p.Count != 10000 {
		t.Errorf("expected count 10000, got %d", p.Count)
	}
	if p.Rate < 900 || p.Rate > 1200 {
		t.Errorf("expected rate near 1000/s, got %.1f", p.Rate)
	}
	if !p.Anomalous {
		t.Error("expected the burst to be flagged anomalous")
	}
}

func TestLineCapTruncatesWithValidResult(t *testing.T) {
	lines := make([]string, 0, 500)
	for i := 0; i < 500; i++ {
		lines = append(lines, fmt.Sprintf("2024-03-01 12:00:00 INFO tick %d", i))
	}
	path := writeLog(t, lines)

	cfg := config.Default().Forensic
	a := NewAnalyzer(cfg)
	result, err := a.Analyze(path, 100)
	if err != nil {
		t.Fatal(err)
	}

	if !result.Truncated {
		t.Fatal("expected truncation at the line cap")
	}
	if result.TruncateWhy == "" {
		t.Error("truncated result must carry a reason")
	}
	if result.LinesRead != 100 {
		t.Errorf("expected 100 lines read, got %d", result.LinesRead)
	}
	if len(result.Patterns) == 0 {
		t.Error("truncated result must still carry the partial aggregation")
	}
}

func TestTimeBudgetTruncatesWithValidResult(t *testing.T) {
	// A zero time floor and zero per-MB allowance put the deadline in
	// the past; the breaker must trip after the first chunk, leaving a
	// partial but well-formed result.
	lines := make([]string, 0, 20000)
	for i := 0; i < 20000; i++ {
		lines = append(lines, fmt.Sprintf("2024-03-01 12:00:00 ERROR timeout calling inventory id=%d", i))
	}
	path := writeLog(t, lines)

	cfg := config.Default().Forensic
	cfg.TimeFloorSeconds = 0
	cfg.MsPerMB = 0
	cfg.ChunkSizeKB = 1
	a := NewAnalyzer(cfg)
	result, err := a.Analyze(path, 0)
	if err != nil {
		t.Fatal(err)
	}

	if !result.Truncated {
		t.Fatal("expected truncation from the time budget")
	}
	if !strings.Contains(result.TruncateWhy, "time") {
		t.Errorf("expected a time-budget reason, got %q", result.TruncateWhy)
	}
	if result.LinesRead == 0 || result.LinesRead >= 20000 {
		t.Errorf("expected a partial read, got %d lines", result.LinesRead)
	}
	if len(result.Patterns) == 0 {
		t.Error("truncated result must still carry the partial aggregation")
	}
}

func TestPatternCapDropsNewKeepsCounting(t *testing.T) {
	cfg := config.Default().Forensic
	cfg.MaxPatterns = 2

	var lines []string
	for i := 0; i < 10; i++ {
		lines = append(lines, "alpha event")
		lines = append(lines, "beta event")
	}
	lines = append(lines, "gamma never fits", "delta never fits either")
	path := writeLog(t, lines)

	a := NewAnalyzer(cfg)
	result, err := a.Analyze(path, 0)
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Patterns) != 2 {
		t.Fatalf("expected the pattern map capped at 2, got %d", len(result.Patterns))
	}
	for _, p := range result.Patterns {
		if p.Count != 10 {
			t.Errorf("existing patterns must keep counting past the cap, got %d", p.Count)
		}
	}
	if result.PatternDrops != 2 {
		t.Errorf("expected 2 dropped lines, got %d", result.PatternDrops)
	}
}

func TestExceptionFingerprintsAndBands(t *testing.T) {
	var lines []string
	for i := 0; i < 1500; i++ {
		lines = append(lines, "WARN retry failed with SocketTimeoutException at com.shop.client.InventoryClient.call")
	}
	lines = append(lines, "ERROR NullPointerException at com.shop.order.OrderService.total")
	path := writeLog(t, lines)

	a := NewAnalyzer(config.Default().Forensic)
	result, err := a.Analyze(path, 0)
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Exceptions) != 2 {
		t.Fatalf("expected 2 fingerprints, got %d: %+v", len(result.Exceptions), result.Exceptions)
	}
	// Sorted by count desc: the noisy timeout first.
	if result.Exceptions[0].Type != "SocketTimeoutException" || result.Exceptions[0].Band != "likely noise" {
		t.Errorf("expected noisy timeout banded as noise, got %+v", result.Exceptions[0])
	}
	if result.Exceptions[1].Type != "NullPointerException" || result.Exceptions[1].Band != "likely root cause" {
		t.Errorf("expected rare NPE banded as root cause, got %+v", result.Exceptions[1])
	}
	if !strings.HasPrefix(result.Exceptions[1].Key, "NullPointerException@") {
		t.Errorf("fingerprint key must be type@location, got %q", result.Exceptions[1].Key)
	}
}

func TestCodeCoordinatesExtractedAndCapped(t *testing.T) {
	var lines []string
	for i := 1; i <= 30; i++ {
		lines = append(lines, fmt.Sprintf("    at com.shop.OrderService.load(OrderService%d.java:%d)", i, i*10))
	}
	// Duplicate of the first coordinate must not double-count.
	lines = append(lines, "    at com.shop.OrderService.load(OrderService1.java:10)")
	path := writeLog(t, lines)

	a := NewAnalyzer(config.Default().Forensic)
	result, err := a.Analyze(path, 0)
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Coordinates) != 20 {
		t.Fatalf("expected the coordinate list capped at 20, got %d", len(result.Coordinates))
	}
	if result.Coordinates[0].File != "OrderService1.java" || result.Coordinates[0].Line != 10 {
		t.Errorf("unexpected first coordinate: %+v", result.Coordinates[0])
	}
}

func TestFingerprintKeyKeepsLastTwoSegments(t *testing.T) {
	key, where := fingerprintKey("TimeoutException", "TimeoutException at com.shop.client.InventoryClient.call")
	if where != "InventoryClient.call" {
		t.Errorf("expected last two segments, got %q", where)
	}
	if key != "TimeoutException@InventoryClient.call" {
		t.Errorf("unexpected key %q", key)
	}
}
