package report

import (
	"strings"
	"testing"
)

func TestFormatTable(t *testing.T) {
	headers := []string{"Name", "Score"}
	rows := [][]string{
		{"uniform draw", "5.1300"},
		{"corrected draw", "9.1000"},
	}
	lines := formatTable(headers, rows, map[int]bool{1: true})
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	width := len(lines[0])
	for i, line := range lines {
		if len(line) != width {
			t.Fatalf("line %d width %d, want %d", i, len(line), width)
		}
	}
	if !strings.HasPrefix(lines[1], "uniform draw") {
		t.Fatalf("left column should be left-aligned: %q", lines[1])
	}
	if !strings.HasSuffix(lines[1], "5.1300") {
		t.Fatalf("right column should be right-aligned: %q", lines[1])
	}
}

func TestFormatTableEmpty(t *testing.T) {
	if lines := formatTable(nil, nil, nil); lines != nil {
		t.Fatalf("expected nil for empty input, got %v", lines)
	}
}

func TestFormatTableRaggedRows(t *testing.T) {
	headers := []string{"A", "B", "C"}
	rows := [][]string{{"only"}}
	lines := formatTable(headers, rows, nil)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if len(lines[0]) != len(lines[1]) {
		t.Fatalf("ragged row not padded: %q vs %q", lines[0], lines[1])
	}
}
