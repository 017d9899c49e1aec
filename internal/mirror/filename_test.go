package mirror

import (
	"testing"
	"time"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"My Prompt", "my-prompt"},
		{"Hello World", "hello-world"},
		{"a  b", "a--b"}, // consecutive spaces are not collapsed
		{"under_score kept", "under_score-kept"},
		{"MiXeD CaSe-Dash", "mixed-case-dash"},
		{"GPT 4 Summarizer", "gpt-4-summarizer"},
		{"Café Ideas", "café-ideas"},
		{"Symbols!@# stripped", "symbols-stripped"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slug(tt.title); got != tt.want {
			t.Errorf("Slug(%q): got %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestFilename(t *testing.T) {
	date := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	got := Filename(date, "my-prompt", "1.0.2")
	want := "2025-01-15--my-prompt--v1.0.2.md"
	if got != want {
		t.Errorf("Filename: got %q, want %q", got, want)
	}

	// An empty slug still produces a parseable name.
	got = Filename(date, "", "1.0.0")
	if got != "2025-01-15----v1.0.0.md" {
		t.Errorf("Filename empty slug: got %q", got)
	}
}

func TestParseFilename(t *testing.T) {
	parts, ok := ParseFilename("2025-01-15--my-prompt--v1.0.2.md")
	if !ok {
		t.Fatal("expected ok=true")
	}
	if parts.Slug != "my-prompt" {
		t.Errorf("Slug: got %q, want %q", parts.Slug, "my-prompt")
	}
	if parts.Semver != "1.0.2" {
		t.Errorf("Semver: got %q, want %q", parts.Semver, "1.0.2")
	}
	if parts.Date.Format(time.DateOnly) != "2025-01-15" {
		t.Errorf("Date: got %v", parts.Date)
	}
}

func TestParseFilename_SlugContainingVersionMarker(t *testing.T) {
	// Greedy slug match: only the trailing --v<semver> terminates.
	parts, ok := ParseFilename("2025-01-15--big--v2-test--v1.0.0.md")
	if !ok {
		t.Fatal("expected ok=true")
	}
	if parts.Slug != "big--v2-test" {
		t.Errorf("Slug: got %q, want %q", parts.Slug, "big--v2-test")
	}
	if parts.Semver != "1.0.0" {
		t.Errorf("Semver: got %q, want %q", parts.Semver, "1.0.0")
	}
}

func TestParseFilename_EmptySlug(t *testing.T) {
	parts, ok := ParseFilename("2025-01-15----v1.0.0.md")
	if !ok {
		t.Fatal("expected ok=true for empty slug")
	}
	if parts.Slug != "" {
		t.Errorf("Slug: got %q, want empty", parts.Slug)
	}
}

func TestParseFilename_Rejects(t *testing.T) {
	names := []string{
		"notes.md",
		"2025-01-15--slug.md",
		"2025-01-15--slug--v1.0.md",
		"2025-01-15--slug--v1.0.0.txt",
		"20250115--slug--v1.0.0.md",
		"2025-13-40--slug--v1.0.0.md", // regex-shaped but not a date
	}
	for _, name := range names {
		if _, ok := ParseFilename(name); ok {
			t.Errorf("ParseFilename(%q): expected ok=false", name)
		}
	}
}
