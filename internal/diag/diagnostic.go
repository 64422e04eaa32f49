package diag

import "sheetcalc/internal/source"

// Note points at a secondary span in the subject's formula.
type Note struct {
	Span source.Span
	Msg  string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	// Subject names what the diagnostic is about: a cell such as "B3",
	// a label, or "formula" for text given on the command line.
	Subject string
	Primary source.Span
	Notes   []Note
}

// New builds a diagnostic without notes.
func New(sev Severity, code Code, subject string, primary source.Span, msg string) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Subject: subject, Primary: primary, Message: msg}
}

// NewError builds a SevError diagnostic.
func NewError(code Code, subject string, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, subject, primary, msg)
}

// WithNote returns a copy of d with one more note. The notes slice of d is
// never shared with the copy.
func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	notes := make([]Note, len(d.Notes), len(d.Notes)+1)
	copy(notes, d.Notes)
	d.Notes = append(notes, Note{Span: sp, Msg: msg})
	return d
}
