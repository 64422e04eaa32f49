package reference

import (
	"errors"
	"testing"
)

func TestParseCell(t *testing.T) {
	tests := []struct {
		text      string
		col, row  int
		colAbs    bool
		rowAbs    bool
		roundTrip string
	}{
		{"A1", 0, 0, false, false, "A1"},
		{"b7", 1, 6, false, false, "B7"},
		{"$C$3", 2, 2, true, true, "$C$3"},
		{"AA10", 26, 9, false, false, "AA10"},
		{"$XFD1048576", MaxColumns - 1, MaxRows - 1, true, false, "$XFD1048576"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			c, err := ParseCell(tt.text)
			if err != nil {
				t.Fatalf("ParseCell(%q): %v", tt.text, err)
			}
			if c.Column.Index != tt.col || c.Row.Index != tt.row {
				t.Fatalf("ParseCell(%q) = col %d row %d, want %d %d", tt.text, c.Column.Index, c.Row.Index, tt.col, tt.row)
			}
			if c.Column.Absolute != tt.colAbs || c.Row.Absolute != tt.rowAbs {
				t.Fatalf("ParseCell(%q) absolute markers = %v/%v", tt.text, c.Column.Absolute, c.Row.Absolute)
			}
			if got := c.String(); got != tt.roundTrip {
				t.Fatalf("String() = %q, want %q", got, tt.roundTrip)
			}
		})
	}
}

func TestParseCell_Invalid(t *testing.T) {
	for _, text := range []string{"", "A", "1", "A0", "A-1", "XFE1", "A1048577", "A99999999999999999999", "A+1", "1A", "A1B"} {
		if _, err := ParseCell(text); !errors.Is(err, ErrInvalidReference) {
			t.Fatalf("ParseCell(%q) err = %v, want ErrInvalidReference", text, err)
		}
	}
}

func TestRangeCellsRowMajor(t *testing.T) {
	r, err := ParseRange("B2:A1")
	if err != nil {
		t.Fatalf("ParseRange: %v", err)
	}
	if r.String() != "A1:B2" {
		t.Fatalf("range not normalised: %s", r)
	}
	want := []string{"A1", "B1", "A2", "B2"}
	cells := r.Cells()
	if len(cells) != len(want) {
		t.Fatalf("Cells() len = %d, want %d", len(cells), len(want))
	}
	for i, c := range cells {
		if c.String() != want[i] {
			t.Fatalf("Cells()[%d] = %s, want %s", i, c, want[i])
		}
		if r.Index(c) != i {
			t.Fatalf("Index(%s) = %d, want %d", c, r.Index(c), i)
		}
	}
	if r.Index(Cell(5, 5)) != -1 {
		t.Fatalf("Index outside range must be -1")
	}
}

func TestParse(t *testing.T) {
	if ref, err := Parse("A1:A3"); err != nil || ref.String() != "A1:A3" {
		t.Fatalf("Parse range = %v, %v", ref, err)
	}
	if ref, err := Parse("C4"); err != nil {
		t.Fatalf("Parse cell: %v", err)
	} else if _, ok := ref.(CellReference); !ok {
		t.Fatalf("Parse(C4) = %T, want CellReference", ref)
	}
	if ref, err := Parse("Total_2"); err != nil {
		t.Fatalf("Parse label: %v", err)
	} else if ref != LabelName("Total_2") {
		t.Fatalf("Parse(Total_2) = %#v", ref)
	}
	if _, err := Parse("1abc"); !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("Parse(1abc) err = %v", err)
	}
}

func TestKeyDropsAbsoluteMarkers(t *testing.T) {
	a, _ := ParseCell("$B$2")
	b, _ := ParseCell("B2")
	if a == b {
		t.Fatalf("absolute and relative references must differ before Key")
	}
	if a.Key() != b.Key() {
		t.Fatalf("Key() mismatch: %v vs %v", a.Key(), b.Key())
	}
}

func TestRangeCheck(t *testing.T) {
	tests := []struct {
		text string
		ok   bool
	}{
		{"A1:A1048576", true},
		{"A1:B524288", true},
		{"A1:B524289", false},
		{"A1:XFD1048576", false},
	}
	for _, tt := range tests {
		r, err := ParseRange(tt.text)
		if err != nil {
			t.Fatalf("ParseRange(%q): %v", tt.text, err)
		}
		err = r.Check()
		if (err == nil) != tt.ok {
			t.Errorf("%s.Check() = %v", tt.text, err)
		}
		if err != nil && !errors.Is(err, ErrRangeTooLarge) {
			t.Errorf("%s.Check() = %v, want ErrRangeTooLarge", tt.text, err)
		}
	}
}
