package value

import (
	"fmt"
	"strconv"
	"strings"
)

// NumberKind selects how canonical number text is turned into a value.
type NumberKind uint8

const (
	// NumberDouble parses into the nearest float64.
	NumberDouble NumberKind = iota
	// NumberExcel keeps at most 15 significant digits, like desktop spreadsheets.
	NumberExcel
)

func (k NumberKind) String() string {
	switch k {
	case NumberDouble:
		return "double"
	case NumberExcel:
		return "excel"
	}
	return "unknown"
}

// ParseNumberKind converts a configuration string to a NumberKind.
func ParseNumberKind(s string) (NumberKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "double":
		return NumberDouble, nil
	case "excel":
		return NumberExcel, nil
	default:
		return NumberDouble, fmt.Errorf("invalid number kind: %q (expected: double|excel)", s)
	}
}

// Parse converts canonical number text ('.' decimal point, 'E' exponent).
func (k NumberKind) Parse(text string) (float64, error) {
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("parse number %q: %w", text, err)
	}
	if k == NumberExcel {
		return k.Round(f), nil
	}
	return f, nil
}

// Round applies the kind's precision to an arithmetic result.
func (k NumberKind) Round(f float64) float64 {
	if k != NumberExcel {
		return f
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(f, 'g', 15, 64), 64)
	if err != nil {
		return f
	}
	return r
}

// FormatNumber renders a number without trailing zeros.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
