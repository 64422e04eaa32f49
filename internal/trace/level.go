package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	// LevelOff disables tracing.
	LevelOff    Level = iota // no tracing
	LevelError               // only emit on failures
	LevelPhase               // engine and batch boundaries
	LevelDetail              // per-cell events
	LevelDebug               // everything including reference hops
)

// String returns the string representation of Level.
func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelError:
		return "error"
	case LevelPhase:
		return "phase"
	case LevelDetail:
		return "detail"
	case LevelDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// ParseLevel converts a string to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "off":
		return LevelOff, nil
	case "error":
		return LevelError, nil
	case "phase":
		return LevelPhase, nil
	case "detail":
		return LevelDetail, nil
	case "debug":
		return LevelDebug, nil
	default:
		return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|error|phase|detail|debug)", s)
	}
}

// ShouldEmit returns true if the given scope should emit at this level.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelOff:
		return false
	case LevelError:
		return false
	case LevelPhase:
		return scope <= ScopeBatch
	case LevelDetail:
		return scope <= ScopeCell
	case LevelDebug:
		return true
	}
	return false
}

// accepts reports whether a tracer at this level records ev. Failures and
// heartbeats pass at every level above LevelOff.
func (l Level) accepts(ev *Event) bool {
	switch {
	case l == LevelOff:
		return false
	case ev.Kind == KindFail, ev.Kind == KindHeartbeat:
		return true
	default:
		return l.ShouldEmit(ev.Scope)
	}
}
