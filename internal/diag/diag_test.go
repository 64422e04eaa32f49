package diag

import (
	"errors"
	"testing"

	"sheetcalc/internal/source"
)

func TestBagSortDedupAndFormat(t *testing.T) {
	bag := NewBag(0)
	r := BagReporter{Bag: bag}
	ReportWarning(r, EvalErrorValue, "B2", source.Span{Start: 1, End: 3}, "result is #DIV/0!").Emit()
	ReportError(r, EvalCycle, "A1", source.Span{Start: 1, End: 3}, "cycle\nvia B1").Emit()
	ReportError(r, EvalCycle, "A1", source.Span{Start: 1, End: 3}, "cycle again").Emit()

	bag.Dedup()
	bag.Sort()
	if bag.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", bag.Len())
	}
	want := "error EVL3001 A1:1-3 cycle via B1\n" +
		"warning EVL3003 B2:1-3 result is #DIV/0!"
	if got := FormatShort(bag.Items()); got != want {
		t.Fatalf("unexpected output:\nwant:\n%s\n\ngot:\n%s", want, got)
	}
	if !bag.HasErrors() {
		t.Fatalf("HasErrors() = false")
	}
}

func TestBagLimit(t *testing.T) {
	bag := NewBag(1)
	if !bag.Add(NewError(EngWorkbook, "book", source.Span{}, "first")) {
		t.Fatalf("first Add rejected")
	}
	if bag.Add(NewError(EngWorkbook, "book", source.Span{}, "second")) {
		t.Fatalf("second Add accepted past the limit")
	}
	other := NewBag(0)
	other.Add(NewError(EngSnapshot, "book", source.Span{}, "third"))
	bag.Merge(other)
	if bag.Len() != 2 || bag.Cap() != 2 {
		t.Fatalf("after Merge Len=%d Cap=%d", bag.Len(), bag.Cap())
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(BagReporter{Bag: bag})
	d := NewError(SynUnexpectedToken, "formula", source.Span{Start: 2, End: 3}, "unexpected '&'")
	r.Report(d)
	r.Report(d)
	r.Report(d.WithNote(source.Span{}, "note does not change identity"))
	if bag.Len() != 1 || r.Suppressed() != 2 {
		t.Fatalf("Len() = %d, Suppressed() = %d", bag.Len(), r.Suppressed())
	}
	if len(d.Notes) != 0 {
		t.Fatalf("WithNote modified the original diagnostic")
	}
}

func TestCodeID(t *testing.T) {
	tests := map[Code]string{
		TokInvalid:         "TOK1001",
		SynUnexpectedToken: "SYN2001",
		EvalCycle:          "EVL3001",
		EngDependencyCycle: "ENG4001",
		UnknownCode:        "E0000",
	}
	for code, want := range tests {
		if got := code.ID(); got != want {
			t.Errorf("%d.ID() = %s, want %s", code, got, want)
		}
	}
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want Severity
	}{
		{"info", SevInfo},
		{"Warn", SevWarning},
		{" ERROR ", SevError},
	}
	for _, tt := range tests {
		got, err := ParseSeverity(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseSeverity(%q) = %v, %v", tt.in, got, err)
		}
	}
	if _, err := ParseSeverity("fatal"); !errors.Is(err, ErrSeverity) {
		t.Fatalf("ParseSeverity(fatal) err = %v", err)
	}
	if SevWarning.String() != "WARNING" || SevWarning.Label() != "warning" {
		t.Fatalf("names = %s, %s", SevWarning.String(), SevWarning.Label())
	}
}

func TestBagAtLeast(t *testing.T) {
	bag := NewBag(5)
	bag.Add(New(SevInfo, EngInfo, "workbook", source.Span{}, "timings"))
	bag.Add(New(SevWarning, EvalErrorValue, "A1", source.Span{}, "A1 evaluates to #DIV/0!"))
	bag.Add(NewError(EngDependencyCycle, "B1", source.Span{}, "cycle"))

	if got := bag.AtLeast(SevWarning); got.Len() != 2 || got.Cap() != 5 {
		t.Fatalf("AtLeast(warning) = %d items, cap %d", got.Len(), got.Cap())
	}
	if got := bag.AtLeast(SevError); got.Len() != 1 || !got.HasErrors() {
		t.Fatalf("AtLeast(error) = %s", FormatShort(got.Items()))
	}
	if bag.Len() != 3 {
		t.Fatalf("AtLeast modified the source bag")
	}
}
