package checklist

import (
	"errors"
	"testing"

	radarerrors "github.com/perfradar/radar/internal/errors"
)

func TestResolveKnownSymptoms(t *testing.T) {
	for _, symptom := range KnownSymptoms() {
		if got, err := Resolve(symptom); err != nil || got != symptom {
			t.Errorf("Resolve(%q) = %q, %v", symptom, got, err)
		}
	}
}

func TestResolveNormalizesCase(t *testing.T) {
	if got, err := Resolve("  Memory "); err != nil || got != "memory" {
		t.Errorf("Resolve with whitespace/case = %q, %v", got, err)
	}
}

func TestResolveUnknownSuggestsClosest(t *testing.T) {
	_, err := Resolve("memori")
	if err == nil {
		t.Fatal("expected rejection for unknown symptom")
	}
	var symErr *radarerrors.SymptomError
	if !errors.As(err, &symErr) {
		t.Fatalf("expected SymptomError, got %T", err)
	}
	if symErr.Suggestion != "memory" {
		t.Errorf("expected suggestion memory, got %q", symErr.Suggestion)
	}
}

func TestResolveUnknownNoSuggestion(t *testing.T) {
	_, err := Resolve("zzzzzz")
	if err == nil {
		t.Fatal("expected rejection")
	}
	var symErr *radarerrors.SymptomError
	if !errors.As(err, &symErr) {
		t.Fatalf("expected SymptomError, got %T", err)
	}
	if symErr.Suggestion != "" {
		t.Errorf("expected no suggestion for gibberish, got %q", symErr.Suggestion)
	}
	if len(symErr.Known) == 0 {
		t.Error("rejection must list the known symptoms")
	}
}

func TestForSymptomOrdersSections(t *testing.T) {
	sections, err := ForSymptom("gc", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections for gc, got %d", len(sections))
	}
	if sections[0].ID != "memory-cache" {
		t.Errorf("most relevant section first, got %s", sections[0].ID)
	}
}

func TestForSymptomPriorityFilter(t *testing.T) {
	sections, err := ForSymptom("memory", "P0")
	if err != nil {
		t.Fatal(err)
	}
	for _, section := range sections {
		for _, item := range section.Items {
			if item.Priority != "P0" {
				t.Errorf("priority filter leaked %s item %q", item.Priority, item.Title)
			}
		}
	}
}

func TestAllSectionsComplete(t *testing.T) {
	sections := AllSections()
	if len(sections) != 6 {
		t.Errorf("expected 6 sections, got %d", len(sections))
	}
	for _, section := range sections {
		if len(section.Items) == 0 {
			t.Errorf("section %s has no items", section.ID)
		}
	}
}
