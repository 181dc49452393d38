package jdk

import (
	"strings"
	"testing"
)

func TestValidPID(t *testing.T) {
	tests := []struct {
		pid     string
		wantErr bool
	}{
		{"1234", false},
		{"", true},
		{"12a4", true},
		{"1234; rm -rf /", true},
	}
	for _, tt := range tests {
		err := validPID(tt.pid)
		if (err != nil) != tt.wantErr {
			t.Errorf("validPID(%q) error = %v, wantErr %v", tt.pid, err, tt.wantErr)
		}
	}
}

func TestHeadLines(t *testing.T) {
	in := "a\nb\nc\nd"
	out := headLines(in, 2)
	if !strings.HasPrefix(out, "a\nb") || !strings.Contains(out, "truncated") {
		t.Errorf("headLines = %q", out)
	}
	if headLines("a\nb", 5) != "a\nb" {
		t.Error("short input must pass through unchanged")
	}
}

func TestSummarize(t *testing.T) {
	s := &ThreadDumpSummary{Runnable: 3, Blocked: 17, Deadlock: true}
	out := s.Summarize()
	if !strings.Contains(out, "17 BLOCKED") || !strings.Contains(out, "DEADLOCK") {
		t.Errorf("summary = %q", out)
	}
}
