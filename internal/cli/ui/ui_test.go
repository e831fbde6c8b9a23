package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, true, "METHOD", "PATH", "HANDLER")
	table.AddRow("GET", "/posts/{id}", "Read")
	table.AddRow("DELETE", "/posts/{id}")
	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %q", len(lines), buf.String())
	}
	if lines[0] != "METHOD  PATH         HANDLER" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "──────") {
		t.Errorf("expected separator, got %q", lines[1])
	}
	if lines[2] != "GET     /posts/{id}  Read" {
		t.Errorf("unexpected row %q", lines[2])
	}
	if lines[3] != "DELETE  /posts/{id}  " {
		t.Errorf("unexpected short row %q", lines[3])
	}
	if table.Len() != 2 {
		t.Errorf("expected 2 rows, got %d", table.Len())
	}
}

func TestTableWithoutHeaders(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, true)
	table.AddRow("x")
	table.Render()
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestFormatError(t *testing.T) {
	out := FormatError(ErrorOptions{
		Context:      "build failed",
		Problem:      "two problems",
		Details:      []string{"a.go:1:1: first", "a.go:2:1: second"},
		Suggestions:  []string{"Post"},
		HelpCommands: []string{"Get help: crudkit --help"},
		NoColor:      true,
	})

	for _, want := range []string{
		"✗ BUILD FAILED\n",
		"   two problems\n",
		"     a.go:2:1: second\n",
		"Did you mean: Post?",
		"→ Get help: crudkit --help",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestFormatErrorWithoutContext(t *testing.T) {
	out := Warning("nothing to do", true)
	if out != "! nothing to do\n" {
		t.Errorf("unexpected warning %q", out)
	}
}

func TestCannedErrors(t *testing.T) {
	out := ResourceNotFoundError("Pst", []string{"Post"}, true)
	if !strings.Contains(out, "No resource named 'Pst'.") || !strings.Contains(out, "Did you mean: Post?") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out = SchemaError([]string{"models.go:3:6: Post: no field is marked primary_key"}, true)
	if !strings.Contains(out, "1 problem(s)") || !strings.Contains(out, "primary_key") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out = ConfigError("defaults.max_limit must be positive", true)
	if !strings.Contains(out, "CONFIGURATION ERROR") || !strings.Contains(out, "crudkit init") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestFormatSuccess(t *testing.T) {
	var buf bytes.Buffer
	WriteSuccess(&buf, "wrote 2 files", true)
	if buf.String() != "✓ wrote 2 files\n" {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"post", "post", 0},
	}
	for _, tt := range tests {
		if got := LevenshteinDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("LevenshteinDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestFindSimilar(t *testing.T) {
	candidates := []string{"User", "Post", "Comment", "Posting"}

	got := FindSimilar("pst", candidates, 3)
	if len(got) == 0 || got[0] != "Post" {
		t.Errorf("expected Post first, got %v", got)
	}

	if got := FindSimilar("Invoice", candidates, 3); len(got) != 0 {
		t.Errorf("expected no suggestions, got %v", got)
	}

	if got := FindSimilar("Pos", candidates, 1); len(got) != 1 {
		t.Errorf("expected one suggestion, got %v", got)
	}
}
