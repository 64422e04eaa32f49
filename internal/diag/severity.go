package diag

import (
	"errors"
	"fmt"
	"strings"
)

// Severity defines the importance of a diagnostic. Errors mark input that
// produced #VALUE! or #CYCLE!; warnings mark formulas that evaluated to an
// error value; info carries timings.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

// ErrSeverity is returned by ParseSeverity for an unknown name.
var ErrSeverity = errors.New("invalid severity")

// String returns the upper-case name used in rendered reports.
func (s Severity) String() string {
	return strings.ToUpper(s.Label())
}

// Label returns the lower-case name used in short listings and flags.
func (s Severity) Label() string {
	switch s {
	case SevInfo:
		return "info"
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	}
	return "unknown"
}

// ParseSeverity reads a severity name as accepted by --min-severity.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info":
		return SevInfo, nil
	case "warning", "warn":
		return SevWarning, nil
	case "error":
		return SevError, nil
	}
	return SevInfo, fmt.Errorf("%w: %q (expected: info|warning|error)", ErrSeverity, s)
}
