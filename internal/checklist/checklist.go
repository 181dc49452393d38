// Package checklist holds the diagnostic knowledge base: checklist
// sections of known Java performance anti-patterns, mapped from the
// symptom labels an operator reports.
package checklist

import (
	"strings"

	"github.com/hbollon/go-edlib"
	"github.com/surgebase/porter2"

	radarerrors "github.com/perfradar/radar/internal/errors"
)

// Item is one checklist entry.
type Item struct {
	Priority string `json:"priority"`
	Title    string `json:"title"`
	Verify   string `json:"verify,omitempty"`
	Fix      string `json:"fix,omitempty"`
	Why      string `json:"why,omitempty"`
}

// Section groups items under one diagnostic theme.
type Section struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Items []Item `json:"items"`
}

// symptomSections maps a symptom label to the section IDs worth
// checking, most relevant first.
var symptomSections = map[string][]string{
	"memory":   {"memory-cache", "code-amplification", "resource-pools"},
	"cpu":      {"code-amplification", "locks"},
	"slow":     {"code-amplification", "io-blocking", "external-calls"},
	"latency":  {"code-amplification", "io-blocking", "external-calls"},
	"resource": {"resource-pools", "io-blocking"},
	"backlog":  {"code-amplification", "resource-pools"},
	"gc":       {"memory-cache", "code-amplification"},
	"timeout":  {"external-calls", "locks"},
}

var sections = []Section{
	{
		ID:    "code-amplification",
		Title: "Code-level amplification",
		Items: []Item{
			{
				Priority: "P0",
				Title:    "Query inside a loop (N+1)",
				Verify:   "grep -n \"for.*{\" and check the body for dao/rpc calls",
				Fix:      "replace per-iteration queries with one batch query",
				Why:      "N iterations become N round trips; latency scales with data size",
			},
			{
				Priority: "P0",
				Title:    "Nested loops over large collections",
				Verify:   "search for nested for loops over query results",
				Fix:      "index one side in a Map to drop O(N*M) to O(N+M)",
				Why:      "quadratic work is invisible at test scale, dominant in production",
			},
			{
				Priority: "P1",
				Title:    "Per-iteration object allocation",
				Verify:   "async-profiler -e alloc",
				Fix:      "hoist or pool the allocation",
				Why:      "allocation churn drives young-gen GC frequency",
			},
		},
	},
	{
		ID:    "locks",
		Title: "Locks and concurrency",
		Items: []Item{
			{
				Priority: "P0",
				Title:    "Coarse lock on a hot path",
				Verify:   "jstack | grep -A 20 BLOCKED",
				Fix:      "narrow the critical section or use a read-write lock",
				Why:      "every blocked thread queues behind one holder",
			},
			{
				Priority: "P0",
				Title:    "Deadlock",
				Verify:   "jstack | grep deadlock",
				Why:      "two lock orders crossing freeze both paths permanently",
			},
			{
				Priority: "P1",
				Title:    "lock() without finally unlock()",
				Verify:   "search for .lock() and check the finally clause",
				Fix:      "try/finally with unlock() in the finally",
				Why:      "an exception between lock and unlock strands the lock forever",
			},
		},
	},
	{
		ID:    "io-blocking",
		Title: "IO and blocking",
		Items: []Item{
			{
				Priority: "P0",
				Title:    "Blocking IO on an event-loop thread",
				Verify:   "check EventLoop threads for JDBC/file IO",
				Why:      "one blocked event-loop thread stalls every connection it serves",
			},
			{
				Priority: "P1",
				Title:    "Unclosed streams and connections",
				Verify:   "lsof -p PID | wc -l",
				Fix:      "try-with-resources",
				Why:      "leaked descriptors exhaust the process limit over time",
			},
		},
	},
	{
		ID:    "external-calls",
		Title: "External calls",
		Items: []Item{
			{
				Priority: "P0",
				Title:    "Missing timeouts on remote calls",
				Verify:   "search for timeout/connectTimeout configuration",
				Fix:      "configure timeouts uniformly (3-5s)",
				Why:      "a hung dependency without timeouts hangs every caller thread",
			},
			{
				Priority: "P1",
				Title:    "Serial calls that could be parallel",
				Verify:   "arthas: trace the call chain",
				Fix:      "CompletableFuture fan-out",
				Why:      "serial remote latency adds; parallel takes the max",
			},
		},
	},
	{
		ID:    "resource-pools",
		Title: "Resource pool management",
		Items: []Item{
			{
				Priority: "P0",
				Title:    "Unbounded thread pool",
				Verify:   "arthas: thread -n 10",
				Fix:      "bounded ThreadPoolExecutor with a bounded queue",
				Why:      "each queued task spawning a thread turns load spikes into OOM",
			},
			{
				Priority: "P1",
				Title:    "Pool resources not returned",
				Verify:   "jstack | grep pool",
				Fix:      "return in finally",
				Why:      "a drained pool blocks every subsequent borrower",
			},
		},
	},
	{
		ID:    "memory-cache",
		Title: "Memory and caching",
		Items: []Item{
			{
				Priority: "P0",
				Title:    "Unbounded static collection",
				Verify:   "jmap -histo:live | head -50",
				Fix:      "evicting cache with a size bound",
				Why:      "static collections that only grow are slow-motion OOM",
			},
			{
				Priority: "P0",
				Title:    "ThreadLocal without remove()",
				Verify:   "search ThreadLocal set() without finally remove()",
				Fix:      "remove() in a finally block",
				Why:      "pooled threads carry stale values across requests and pin memory",
			},
			{
				Priority: "P1",
				Title:    "Oversized query result sets",
				Verify:   "check queries without LIMIT or paging",
				Fix:      "page or stream the result",
				Why:      "one unbounded query can allocate the whole heap",
			},
		},
	},
}

// KnownSymptoms lists the accepted symptom labels.
func KnownSymptoms() []string {
	known := make([]string, 0, len(symptomSections))
	for s := range symptomSections {
		known = append(known, s)
	}
	return known
}

// Resolve validates a symptom label. Unknown labels are rejected with a
// SymptomError carrying a did-you-mean suggestion when a known label is
// close enough by stem or edit distance.
func Resolve(symptom string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(symptom))
	if _, ok := symptomSections[normalized]; ok {
		return normalized, nil
	}

	stem := porter2.Stem(normalized)
	best := ""
	bestScore := float32(0)
	for known := range symptomSections {
		if porter2.Stem(known) == stem {
			best = known
			bestScore = 1
			break
		}
		score, err := edlib.StringsSimilarity(normalized, known, edlib.Levenshtein)
		if err == nil && score > bestScore {
			best, bestScore = known, score
		}
	}

	if bestScore >= 0.6 {
		return "", radarerrors.NewSymptomError(symptom, best, KnownSymptoms())
	}
	return "", radarerrors.NewSymptomError(symptom, "", KnownSymptoms())
}

// ForSymptom returns the checklist sections for a resolved symptom,
// optionally filtered to one priority.
func ForSymptom(symptom, priority string) ([]Section, error) {
	resolved, err := Resolve(symptom)
	if err != nil {
		return nil, err
	}

	var out []Section
	for _, id := range symptomSections[resolved] {
		for _, section := range sections {
			if section.ID != id {
				continue
			}
			if priority == "" {
				out = append(out, section)
				continue
			}
			filtered := Section{ID: section.ID, Title: section.Title}
			for _, item := range section.Items {
				if item.Priority == priority {
					filtered.Items = append(filtered.Items, item)
				}
			}
			if len(filtered.Items) > 0 {
				out = append(out, filtered)
			}
		}
	}
	return out, nil
}

// AllSections returns the complete knowledge base.
func AllSections() []Section {
	return sections
}
