package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/conduit-lang/derivewhere/internal/compiler/attr"
)

func TestTable(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	table := NewTable(&buf, []string{"Source", "Output", "Impls"}, &TableOptions{NoColor: true})

	table.AddRow("items/user.dw.yaml", "gen/items/user.rs", "3")
	table.AddRow("items/key.dw.yaml", "gen/items/key.rs", "1")

	table.Render()

	output := buf.String()

	for _, exp := range []string{"Source", "Output", "Impls", "items/user.dw.yaml", "gen/items/key.rs", "─"} {
		if !strings.Contains(output, exp) {
			t.Errorf("Table output missing %q", exp)
		}
	}
}

func TestTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, []string{}, &TableOptions{NoColor: true})

	table.Render()

	if buf.String() != "" {
		t.Errorf("Expected empty output for table with no headers, got: %q", buf.String())
	}
}

func TestTableAlignment(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, []string{"Short", "VeryLongHeader"}, &TableOptions{NoColor: true})

	table.AddRow("a", "b")
	table.AddRow("longer", "c")

	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("Expected 4 lines (header, separator, two rows), got %d", len(lines))
	}

	if lines[0] != "Short   VeryLongHeader" {
		t.Errorf("unexpected header line %q", lines[0])
	}
	if lines[2] != "a       b" {
		t.Errorf("unexpected first row %q", lines[2])
	}
	if lines[3] != "longer  c" {
		t.Errorf("unexpected second row %q", lines[3])
	}
	for i, line := range lines {
		if strings.HasSuffix(line, " ") {
			t.Errorf("line %d has trailing spaces: %q", i, line)
		}
	}
}

func TestTraitTable(t *testing.T) {
	var buf bytes.Buffer
	TraitTable(&buf, attr.Features{}, true)

	output := buf.String()
	for _, exp := range []string{"Clone", "::core::clone::Clone", "PartialOrd", "::core::cmp::PartialOrd"} {
		if !strings.Contains(output, exp) {
			t.Errorf("trait table missing %q", exp)
		}
	}
	if strings.Contains(output, "Zeroize") {
		t.Error("zeroize traits should be hidden without the feature")
	}

	buf.Reset()
	TraitTable(&buf, attr.Features{Zeroize: true}, true)
	if !strings.Contains(buf.String(), "::zeroize::ZeroizeOnDrop") {
		t.Errorf("expected zeroize traits with the feature, got:\n%s", buf.String())
	}
}

func TestKeyValueTable(t *testing.T) {
	var buf bytes.Buffer
	kvTable := NewKeyValueTable(&buf, true)

	kvTable.AddRow("Strategy", "pairwise")
	kvTable.AddRow("Workers", "4")

	kvTable.Render()

	expected := "Strategy: pairwise\nWorkers:  4\n"
	if buf.String() != expected {
		t.Errorf("KeyValueTable output = %q; want %q", buf.String(), expected)
	}
}

func TestKeyValueTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	kvTable := NewKeyValueTable(&buf, true)

	kvTable.Render()

	if buf.String() != "" {
		t.Errorf("Expected empty output for empty KeyValueTable, got: %q", buf.String())
	}
}

func TestDivider(t *testing.T) {
	var buf bytes.Buffer
	Divider(&buf, 40, true)

	if buf.String() != strings.Repeat("─", 40)+"\n" {
		t.Errorf("unexpected divider %q", buf.String())
	}

	buf.Reset()
	Divider(&buf, 0, true) // 0 should use default width of 80
	if strings.Count(buf.String(), "─") != 80 {
		t.Errorf("expected default width of 80")
	}
}

func TestHeader(t *testing.T) {
	var buf bytes.Buffer
	Header(&buf, "Traits", true)

	if buf.String() != "Traits\n──────\n" {
		t.Errorf("unexpected header %q", buf.String())
	}
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		input    string
		width    int
		expected string
	}{
		{"test", 10, "test      "},
		{"test", 4, "test"},
		{"test", 2, "test"},
		{"", 5, "     "},
	}

	for _, tt := range tests {
		result := padRight(tt.input, tt.width)
		if result != tt.expected {
			t.Errorf("padRight(%q, %d) = %q; want %q", tt.input, tt.width, result, tt.expected)
		}
	}
}
