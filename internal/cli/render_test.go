package cli

import (
	"strings"
	"testing"
)

func TestRenderTable_Layout(t *testing.T) {
	out := RenderTable(Table{
		Title:   "Per pay period",
		Headers: []string{"Item", "Amount"},
		Rows: [][]string{
			{"Gross pay", "$5,000.00"},
			SeparatorRow,
			{"Net pay", "$4,182.83"},
		},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// title, top, header, header rule, row, separator, row, bottom
	if len(lines) != 8 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	for _, want := range []string{"Per pay period", "Gross pay", "$5,000.00", "Net pay", "$4,182.83"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(lines[5], "┼") {
		t.Errorf("separator row not rendered as a rule: %q", lines[5])
	}
}

func TestRenderTable_Empty(t *testing.T) {
	if got := RenderTable(Table{}); got != "" {
		t.Errorf("empty table rendered %q", got)
	}
}

func TestColumnWidths(t *testing.T) {
	got := columnWidths(Table{
		Headers: []string{"Rate", "Over"},
		Rows:    [][]string{{"10%", "$0"}, {"37%", "$609,350"}},
	})
	if got[0] != 4 || got[1] != 8 {
		t.Errorf("widths = %v, want [4 8]", got)
	}
}

func TestRenderSparkline(t *testing.T) {
	got := []rune(RenderSparkline([]float64{0, 50, 100}))
	if len(got) != 3 || got[0] != '▁' || got[2] != '█' {
		t.Errorf("sparkline = %q", string(got))
	}
	if RenderSparkline(nil) != "" {
		t.Error("nil series should render empty")
	}
}
