package diag

import "sheetcalc/internal/source"

// Reporter принимает диагностики от движка, графа зависимостей и драйвера.
type Reporter interface {
	Report(d Diagnostic)
}

// BagReporter adds every diagnostic to Bag; a nil Bag discards them.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag != nil {
		r.Bag.Add(d)
	}
}

// ReportBuilder collects notes for one diagnostic and emits it once.
type ReportBuilder struct {
	to   Reporter
	d    Diagnostic
	sent bool
}

// NewReportBuilder starts a diagnostic bound for r.
func NewReportBuilder(r Reporter, sev Severity, code Code, subject string, primary source.Span, msg string) *ReportBuilder {
	return &ReportBuilder{to: r, d: New(sev, code, subject, primary, msg)}
}

// ReportError starts a SevError diagnostic.
func ReportError(r Reporter, code Code, subject string, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevError, code, subject, primary, msg)
}

// ReportWarning starts a SevWarning diagnostic.
func ReportWarning(r Reporter, code Code, subject string, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevWarning, code, subject, primary, msg)
}

func (b *ReportBuilder) WithNote(sp source.Span, msg string) *ReportBuilder {
	if b != nil {
		b.d = b.d.WithNote(sp, msg)
	}
	return b
}

// Emit reports the diagnostic. Later calls do nothing.
func (b *ReportBuilder) Emit() {
	if b == nil || b.sent {
		return
	}
	b.sent = true
	if b.to != nil {
		b.to.Report(b.d)
	}
}

// Diagnostic returns the diagnostic built so far.
func (b *ReportBuilder) Diagnostic() Diagnostic {
	if b == nil {
		return Diagnostic{}
	}
	return b.d
}
