package trace

import (
	"slices"
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

// NextSeq returns a monotonically increasing sequence number.
func NextSeq() uint64 {
	return seqCounter.Add(1)
}

// Span is an open traced operation. A span whose scope is filtered out by
// the tracer level emits nothing unless it fails.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	scope   Scope
	name    string
	cell    string
	started time.Time
	attrs   []Attr
	loud    bool
}

// Begin opens a span. parent is the enclosing span ID (0 for a root).
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	return begin(t, scope, name, "", parent)
}

// BeginCell opens a ScopeCell span for the cell at address.
func BeginCell(t Tracer, address string, parent uint64) *Span {
	return begin(t, ScopeCell, "cell:"+address, address, parent)
}

func begin(t Tracer, scope Scope, name, cell string, parent uint64) *Span {
	if !Enabled(t) {
		return &Span{}
	}
	s := &Span{
		tracer:  t,
		id:      spanCounter.Add(1),
		parent:  parent,
		scope:   scope,
		name:    name,
		cell:    cell,
		started: time.Now(),
		loud:    t.Level().ShouldEmit(scope),
	}
	if s.loud {
		t.Emit(s.event(KindBegin, s.started))
	}
	return s
}

func (s *Span) event(kind Kind, at time.Time) *Event {
	return &Event{
		Time:     at,
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Cell:     s.cell,
		Name:     s.name,
		Attrs:    slices.Clone(s.attrs),
	}
}

// With attaches an attribute reported when the span closes.
func (s *Span) With(key, value string) *Span {
	if s == nil || s.tracer == nil {
		return s
	}
	s.attrs = append(s.attrs, Attr{Key: key, Value: value})
	return s
}

// End closes the span and returns its duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.tracer == nil {
		return 0
	}
	now := time.Now()
	dur := now.Sub(s.started)
	if s.loud {
		ev := s.event(KindEnd, now)
		ev.Detail, ev.Elapsed = detail, dur
		s.tracer.Emit(ev)
	}
	return dur
}

// Fail closes the span with err. Failures are emitted at every level above
// LevelOff, even for scopes the level otherwise hides. A nil err is End("").
func (s *Span) Fail(err error) time.Duration {
	if err == nil {
		return s.End("")
	}
	if s == nil || s.tracer == nil {
		return 0
	}
	now := time.Now()
	dur := now.Sub(s.started)
	ev := s.event(KindFail, now)
	ev.Err, ev.Elapsed = err.Error(), dur
	s.tracer.Emit(ev)
	return dur
}

// ID returns the span ID, 0 for a disabled span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}
