// Package reference defines the targets an expression can point at: single
// cells, rectangular cell ranges, label names and environment value names.
//
// Column and row indices are zero based internally and rendered in the usual
// A1 notation. The '$' absolute markers are preserved for round tripping but
// ignored by Key, which is what stores and graphs index by.
package reference

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

const (
	// MaxColumns is the number of addressable columns (A..XFD).
	MaxColumns = 16384
	// MaxRows is the number of addressable rows.
	MaxRows = 1048576
	// MaxRangeCells bounds the ranges whose values can be read at once:
	// one full column.
	MaxRangeCells = MaxRows
)

var (
	// ErrInvalidReference is returned by the parse helpers.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrRangeTooLarge is returned by CellRange.Check.
	ErrRangeTooLarge = errors.New("range too large")
)

// ExpressionReference is implemented by CellReference, CellRange, LabelName
// and EnvironmentValueName.
type ExpressionReference interface {
	fmt.Stringer
	isExpressionReference()
}

// Column is a zero based column index.
type Column struct {
	Index    int
	Absolute bool
}

// Row is a zero based row index.
type Row struct {
	Index    int
	Absolute bool
}

// ParseColumn parses letters such as "B" or "$AA".
func ParseColumn(text string) (Column, error) {
	s := text
	abs := strings.HasPrefix(s, "$")
	if abs {
		s = s[1:]
	}
	if s == "" || len(s) > 3 {
		return Column{}, fmt.Errorf("%w: column %q", ErrInvalidReference, text)
	}
	idx := 0
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch >= 'A' && ch <= 'Z':
			idx = idx*26 + int(ch-'A') + 1
		case ch >= 'a' && ch <= 'z':
			idx = idx*26 + int(ch-'a') + 1
		default:
			return Column{}, fmt.Errorf("%w: column %q", ErrInvalidReference, text)
		}
	}
	if idx > MaxColumns {
		return Column{}, fmt.Errorf("%w: column %q out of range", ErrInvalidReference, text)
	}
	return Column{Index: idx - 1, Absolute: abs}, nil
}

// ParseRow parses a one based row number such as "7" or "$7".
func ParseRow(text string) (Row, error) {
	s := text
	abs := strings.HasPrefix(s, "$")
	if abs {
		s = s[1:]
	}
	if s == "" || s[0] == '+' || s[0] == '-' {
		return Row{}, fmt.Errorf("%w: row %q", ErrInvalidReference, text)
	}
	u, err := strconv.ParseUint(s, 10, 32)
	if err != nil || u < 1 || u > MaxRows {
		return Row{}, fmt.Errorf("%w: row %q", ErrInvalidReference, text)
	}
	n, err := safecast.Conv[int](u)
	if err != nil {
		return Row{}, fmt.Errorf("%w: row %q: %w", ErrInvalidReference, text, err)
	}
	return Row{Index: n - 1, Absolute: abs}, nil
}

func (c Column) String() string {
	var buf [4]byte
	i := len(buf)
	n := c.Index + 1
	for n > 0 {
		n--
		i--
		buf[i] = byte('A' + n%26)
		n /= 26
	}
	if c.Absolute {
		return "$" + string(buf[i:])
	}
	return string(buf[i:])
}

func (r Row) String() string {
	if r.Absolute {
		return "$" + strconv.Itoa(r.Index+1)
	}
	return strconv.Itoa(r.Index + 1)
}

// CellReference addresses a single cell.
type CellReference struct {
	Column Column
	Row    Row
}

// Cell builds a relative reference from zero based indices.
func Cell(column, row int) CellReference {
	return CellReference{Column: Column{Index: column}, Row: Row{Index: row}}
}

// ParseCell parses "B7", "$B$7" and mixed forms.
func ParseCell(text string) (CellReference, error) {
	split := splitCell(text)
	if split <= 0 || split >= len(text) {
		return CellReference{}, fmt.Errorf("%w: cell %q", ErrInvalidReference, text)
	}
	col, err := ParseColumn(text[:split])
	if err != nil {
		return CellReference{}, err
	}
	row, err := ParseRow(text[split:])
	if err != nil {
		return CellReference{}, err
	}
	return CellReference{Column: col, Row: row}, nil
}

// splitCell returns the offset where the row part of text begins.
func splitCell(text string) int {
	i := 0
	if i < len(text) && text[i] == '$' {
		i++
	}
	for i < len(text) && isLetter(text[i]) {
		i++
	}
	return i
}

func isLetter(ch byte) bool {
	return (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z')
}

// Key drops the absolute markers.
func (c CellReference) Key() CellReference {
	return Cell(c.Column.Index, c.Row.Index)
}

func (c CellReference) String() string {
	return c.Column.String() + c.Row.String()
}

func (CellReference) isExpressionReference() {}

// CellRange is a rectangle of cells; Begin is always the top left corner.
type CellRange struct {
	Begin CellReference
	End   CellReference
}

// NewRange normalises two corners into a range.
func NewRange(a, b CellReference) CellRange {
	begin, end := a, b
	if b.Column.Index < a.Column.Index {
		begin.Column, end.Column = b.Column, a.Column
	}
	if b.Row.Index < a.Row.Index {
		begin.Row, end.Row = b.Row, a.Row
	}
	return CellRange{Begin: begin, End: end}
}

// ParseRange parses "A1:B3". A single cell is accepted as a 1x1 range.
func ParseRange(text string) (CellRange, error) {
	before, after, found := strings.Cut(text, ":")
	a, err := ParseCell(before)
	if err != nil {
		return CellRange{}, err
	}
	if !found {
		return NewRange(a, a), nil
	}
	b, err := ParseCell(after)
	if err != nil {
		return CellRange{}, err
	}
	return NewRange(a, b), nil
}

// Width is the number of columns.
func (r CellRange) Width() int { return r.End.Column.Index - r.Begin.Column.Index + 1 }

// Height is the number of rows.
func (r CellRange) Height() int { return r.End.Row.Index - r.Begin.Row.Index + 1 }

// Count is the number of cells. It can exceed MaxRangeCells; callers that
// materialise the range use Check first.
func (r CellRange) Count() int { return r.Width() * r.Height() }

// Check reports ErrRangeTooLarge when the range holds more than
// MaxRangeCells cells.
func (r CellRange) Check() error {
	n := int64(r.Width()) * int64(r.Height())
	if n > MaxRangeCells {
		return fmt.Errorf("%w: %s has %d cells, limit %d", ErrRangeTooLarge, r, n, MaxRangeCells)
	}
	return nil
}

// Contains reports whether cell lies inside the range.
func (r CellRange) Contains(cell CellReference) bool {
	c, row := cell.Column.Index, cell.Row.Index
	return c >= r.Begin.Column.Index && c <= r.End.Column.Index &&
		row >= r.Begin.Row.Index && row <= r.End.Row.Index
}

// Index returns the position of cell in Cells order, or -1.
func (r CellRange) Index(cell CellReference) int {
	if !r.Contains(cell) {
		return -1
	}
	return (cell.Row.Index-r.Begin.Row.Index)*r.Width() + cell.Column.Index - r.Begin.Column.Index
}

// Cells lists the range row by row, left to right. The returned
// references carry no absolute markers. Call Check first for ranges that
// come from user input.
func (r CellRange) Cells() []CellReference {
	out := make([]CellReference, 0, r.Count())
	for row := r.Begin.Row.Index; row <= r.End.Row.Index; row++ {
		for col := r.Begin.Column.Index; col <= r.End.Column.Index; col++ {
			out = append(out, Cell(col, row))
		}
	}
	return out
}

func (r CellRange) String() string {
	return r.Begin.String() + ":" + r.End.String()
}

func (CellRange) isExpressionReference() {}

// LabelName is a user defined name mapped to a cell, range or another label.
type LabelName string

func (l LabelName) String() string { return string(l) }

func (LabelName) isExpressionReference() {}

// EnvironmentValueName names a value supplied by the environment or by a
// lambda parameter binding.
type EnvironmentValueName string

func (n EnvironmentValueName) String() string { return string(n) }

func (EnvironmentValueName) isExpressionReference() {}

// IsName reports whether text is usable as a label or value name: a letter or
// underscore followed by letters, digits, underscores or dots, and not
// parseable as a cell reference.
func IsName(text string) bool {
	if text == "" {
		return false
	}
	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch {
		case isLetter(ch), ch == '_':
		case i > 0 && (ch >= '0' && ch <= '9' || ch == '.'):
		default:
			return false
		}
	}
	_, err := ParseCell(text)
	return err != nil
}

// Parse resolves text to a cell, a range or a label name.
func Parse(text string) (ExpressionReference, error) {
	if strings.Contains(text, ":") {
		return ParseRange(text)
	}
	if cell, err := ParseCell(text); err == nil {
		return cell, nil
	}
	if IsName(text) {
		return LabelName(text), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidReference, text)
}
