package source

import (
	"fmt"

	"fortio.org/safecast"
)

// Span is a byte range inside a single formula text.
type Span struct {
	Start uint32 // в байтах включительно
	End   uint32 // в байтах не включительно
}

// NewSpan narrows int offsets into a Span. Offsets that do not fit into
// uint32 collapse to an empty span at zero.
func NewSpan(start, end int) Span {
	s, err := safecast.Conv[uint32](start)
	if err != nil {
		return Span{}
	}
	e, err := safecast.Conv[uint32](end)
	if err != nil || e < s {
		return Span{Start: s, End: s}
	}
	return Span{Start: s, End: e}
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d-%d", s.Start, s.End)
}

// Cover returns the smallest span containing both s and other.
func (s Span) Cover(other Span) Span {
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// ShiftRight moves the span n bytes to the right.
func (s Span) ShiftRight(n uint32) Span {
	return Span{
		Start: s.Start + n,
		End:   s.End + n,
	}
}

// Slice returns the part of text covered by the span, clamped to text bounds.
func (s Span) Slice(text string) string {
	start, end := int(s.Start), int(s.End)
	if start > len(text) {
		return ""
	}
	if end > len(text) {
		end = len(text)
	}
	return text[start:end]
}
