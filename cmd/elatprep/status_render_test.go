package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRenderStatusLine(t *testing.T) {
	plain := renderStatusLine("Videos rewritten", statusOK, "2 (1 changed)", false)
	if plain != "  Videos rewritten:  [OK] 2 (1 changed)" {
		t.Fatalf("unexpected plain line %q", plain)
	}
	colored := renderStatusLine("Malformed keys", statusWarn, "1", true)
	if !strings.HasPrefix(colored, ansiYellow) || !strings.HasSuffix(colored, ansiReset) {
		t.Fatalf("expected yellow line, got %q", colored)
	}
	if got := renderStatusLine("Entries", statusInfo, "", false); !strings.HasSuffix(got, "[INFO]") {
		t.Fatalf("unexpected empty-message line %q", got)
	}
}

func TestRenderSectionHeader(t *testing.T) {
	lines := renderSectionHeader(" Run abc ", false)
	if len(lines) != 2 || lines[0] != "== Run abc ==" || lines[1] != strings.Repeat("-", len(lines[0])) {
		t.Fatalf("unexpected header %q", lines)
	}
}

func TestShouldColorizeBuffer(t *testing.T) {
	if shouldColorize(&bytes.Buffer{}) {
		t.Fatal("buffers are never terminals")
	}
}

func TestRenderTableWrapsLongCells(t *testing.T) {
	long := strings.Repeat("k", maxColumnWidth+10)
	out := renderTable([]string{"Key", "Count"}, [][]string{{long, "3"}, {"short"}}, []columnAlignment{alignLeft, alignRight})
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, long) {
			t.Fatalf("long cell was not wrapped:\n%s", out)
		}
	}
	if !strings.Contains(out, "short") || !strings.Contains(out, "╭") {
		t.Fatalf("unexpected table:\n%s", out)
	}
	if renderTable(nil, nil, nil) != "" {
		t.Fatal("expected empty table for no headers")
	}
}
