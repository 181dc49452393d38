// Package jdk shells out to the JDK diagnostic tools. The tool output
// is returned near-verbatim; this engine summarizes but never reparses
// it into findings.
package jdk

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	histogramHead = 50
	bytecodeHead  = 200
	toolTimeout   = 30 * time.Second
)

// ThreadDumpSummary counts thread states in a jstack dump.
type ThreadDumpSummary struct {
	Blocked      int  `json:"blocked"`
	Waiting      int  `json:"waiting"`
	TimedWaiting int  `json:"timed_waiting"`
	Runnable     int  `json:"runnable"`
	Deadlock     bool `json:"deadlock"`
}

// toolPath resolves a JDK tool via JAVA_HOME, falling back to PATH.
func toolPath(name string) string {
	if home := os.Getenv("JAVA_HOME"); home != "" {
		candidate := filepath.Join(home, "bin", name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return name
}

// validPID guards the subprocess argument; jstack and jmap take a bare
// numeric PID only.
func validPID(pid string) error {
	if pid == "" {
		return fmt.Errorf("empty pid")
	}
	if _, err := strconv.Atoi(pid); err != nil {
		return fmt.Errorf("invalid pid %q: must be numeric", pid)
	}
	return nil
}

func run(ctx context.Context, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, toolTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, toolPath(name), args...).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%s failed: %v (output: %s)", name, err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

// ThreadDump captures a jstack dump and summarizes thread states.
func ThreadDump(ctx context.Context, pid string) (string, *ThreadDumpSummary, error) {
	if err := validPID(pid); err != nil {
		return "", nil, err
	}
	out, err := run(ctx, "jstack", pid)
	if err != nil {
		return "", nil, err
	}

	summary := &ThreadDumpSummary{
		Blocked:      strings.Count(out, "BLOCKED"),
		Waiting:      strings.Count(out, "WAITING") - strings.Count(out, "TIMED_WAITING"),
		TimedWaiting: strings.Count(out, "TIMED_WAITING"),
		Runnable:     strings.Count(out, "RUNNABLE"),
		Deadlock:     strings.Contains(out, "Found one Java-level deadlock") || strings.Contains(out, "deadlock"),
	}
	return out, summary, nil
}

// HeapHistogram returns the top live-object classes from jmap.
func HeapHistogram(ctx context.Context, pid string) (string, error) {
	if err := validPID(pid); err != nil {
		return "", err
	}
	out, err := run(ctx, "jmap", "-histo:live", pid)
	if err != nil {
		return "", err
	}
	return headLines(out, histogramHead), nil
}

// Bytecode disassembles a compiled class with javap.
func Bytecode(ctx context.Context, classPath, className string) (string, error) {
	if className == "" {
		return "", fmt.Errorf("empty class name")
	}
	args := []string{"-c", "-v"}
	if classPath != "" {
		args = append(args, "-classpath", classPath)
	}
	args = append(args, className)

	out, err := run(ctx, "javap", args...)
	if err != nil {
		return "", err
	}
	return headLines(out, bytecodeHead), nil
}

// headLines truncates output to its first n lines.
func headLines(s string, n int) string {
	lines := strings.SplitN(s, "\n", n+1)
	if len(lines) > n {
		return strings.Join(lines[:n], "\n") + "\n... (truncated)"
	}
	return s
}

// Summarize renders a thread dump summary for report attachment.
func (s *ThreadDumpSummary) Summarize() string {
	status := ""
	if s.Deadlock {
		status = " DEADLOCK DETECTED"
	}
	return fmt.Sprintf("threads: %d RUNNABLE, %d BLOCKED, %d WAITING, %d TIMED_WAITING%s",
		s.Runnable, s.Blocked, s.Waiting, s.TimedWaiting, status)
}
