package source

import (
	"math"
	"testing"
)

func TestNewSpan(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
		expected   Span
	}{
		{"normal", 2, 5, Span{Start: 2, End: 5}},
		{"empty", 3, 3, Span{Start: 3, End: 3}},
		{"reversed collapses", 5, 2, Span{Start: 5, End: 5}},
		{"negative start", -1, 4, Span{}},
		{"end overflow", 1, math.MaxInt64, Span{Start: 1, End: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewSpan(tt.start, tt.end); got != tt.expected {
				t.Fatalf("NewSpan(%d, %d) = %v, want %v", tt.start, tt.end, got, tt.expected)
			}
		})
	}
}

func TestSpan_Cover(t *testing.T) {
	a := Span{Start: 4, End: 6}
	b := Span{Start: 1, End: 5}
	if got := a.Cover(b); got != (Span{Start: 1, End: 6}) {
		t.Fatalf("Cover = %v, want 1-6", got)
	}
	if got := b.Cover(a); got != (Span{Start: 1, End: 6}) {
		t.Fatalf("Cover is not symmetric: %v", got)
	}
}

func TestSpan_Slice(t *testing.T) {
	text := "=SUM(A1:A3)"
	if got := (Span{Start: 1, End: 4}).Slice(text); got != "SUM" {
		t.Fatalf("Slice = %q, want SUM", got)
	}
	if got := (Span{Start: 8, End: 40}).Slice(text); got != "A3)" {
		t.Fatalf("Slice clamp = %q, want A3)", got)
	}
	if got := (Span{Start: 40, End: 41}).Slice(text); got != "" {
		t.Fatalf("Slice out of range = %q, want empty", got)
	}
}

func TestSpan_ShiftRight(t *testing.T) {
	sp := Span{Start: 1, End: 3}.ShiftRight(2)
	if sp.Start != 3 || sp.End != 5 || sp.Len() != 2 {
		t.Fatalf("ShiftRight = %v", sp)
	}
}
