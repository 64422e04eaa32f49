package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	KindBegin     Kind = iota + 1 // span opened
	KindEnd                       // span closed normally
	KindFail                      // span closed with an error
	KindHeartbeat                 // periodic liveness signal
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindBegin:
		return "begin"
	case KindEnd:
		return "end"
	case KindFail:
		return "fail"
	case KindHeartbeat:
		return "heartbeat"
	default:
		return "unknown"
	}
}

// Scope indicates the granularity level of the event.
// Lower numeric values represent coarser events.
type Scope uint8

const (
	ScopeEngine    Scope = iota + 1 // whole recalculation or CLI command
	ScopeBatch                      // one topological batch of cells
	ScopeCell                       // evaluation of a single cell
	ScopeReference                  // one reference resolution hop
)

// String returns the string representation of Scope.
func (s Scope) String() string {
	switch s {
	case ScopeEngine:
		return "engine"
	case ScopeBatch:
		return "batch"
	case ScopeCell:
		return "cell"
	case ScopeReference:
		return "reference"
	default:
		return "unknown"
	}
}

// Attr is an ordered key-value annotation on an event.
type Attr struct {
	Key   string
	Value string
}

// Event represents a single trace event.
type Event struct {
	Time     time.Time
	Seq      uint64 // assigned by the first tracer that accepts the event
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for root spans
	Cell     string // cell address the span belongs to, if any
	Name     string // e.g. "recalc", "batch:2", "ref:Price"
	Detail   string
	Err      string        // set on KindFail
	Elapsed  time.Duration // set on KindEnd and KindFail
	Attrs    []Attr
}

// stamp fills in the sequence number and time if nobody did yet.
func stamp(ev *Event) {
	if ev.Seq == 0 {
		ev.Seq = NextSeq()
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
}
