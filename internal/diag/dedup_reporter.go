package diag

import (
	"sync"

	"sheetcalc/internal/source"
)

type dedupKey struct {
	code    Code
	sev     Severity
	subject string
	span    source.Span
	msg     string
}

// DedupReporter forwards the first of several identical diagnostics and
// counts the rest. Notes are not part of the identity. Safe for concurrent use.
type DedupReporter struct {
	mu         sync.Mutex
	next       Reporter
	seen       map[dedupKey]struct{}
	suppressed int
}

func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{next: next, seen: make(map[dedupKey]struct{})}
}

func (r *DedupReporter) Report(d Diagnostic) {
	if r == nil {
		return
	}
	key := dedupKey{code: d.Code, sev: d.Severity, subject: d.Subject, span: d.Primary, msg: d.Message}
	r.mu.Lock()
	_, dup := r.seen[key]
	if dup {
		r.suppressed++
	} else {
		r.seen[key] = struct{}{}
	}
	r.mu.Unlock()
	if !dup && r.next != nil {
		r.next.Report(d)
	}
}

// Suppressed returns how many duplicates were dropped.
func (r *DedupReporter) Suppressed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.suppressed
}
