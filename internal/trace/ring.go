package trace

import (
	"fmt"
	"io"
	"slices"
	"sync"
)

// DefaultRingSize is the ring capacity used when none is configured.
const DefaultRingSize = 4096

// RingTracer keeps the most recent events in memory and counts failures,
// so the tail of a bad recalculation can be dumped after the fact.
type RingTracer struct {
	mu       sync.Mutex
	buf      []Event
	total    uint64
	failures int
	level    Level
}

// NewRingTracer creates a RingTracer holding up to capacity events.
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = DefaultRingSize
	}
	return &RingTracer{buf: make([]Event, capacity), level: level}
}

// Emit records ev, overwriting the oldest event when the ring is full.
func (t *RingTracer) Emit(ev *Event) {
	if !t.level.accepts(ev) {
		return
	}
	stamp(ev)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf[t.total%uint64(len(t.buf))] = *ev
	t.total++
	if ev.Kind == KindFail {
		t.failures++
	}
}

// Snapshot returns the stored events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := uint64(len(t.buf))
	if t.total <= n {
		return slices.Clone(t.buf[:t.total])
	}
	start := t.total % n
	return append(slices.Clone(t.buf[start:]), t.buf[:start]...)
}

// Dropped returns the number of events overwritten so far.
func (t *RingTracer) Dropped() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n := uint64(len(t.buf)); t.total > n {
		return t.total - n
	}
	return 0
}

// Failures returns the number of failed spans recorded, including dropped ones.
func (t *RingTracer) Failures() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failures
}

// Dump writes the stored events to w, preceded by a line counting dropped
// events if the ring wrapped.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	if dropped := t.Dropped(); dropped > 0 && format != FormatNDJSON {
		if _, err := fmt.Fprintf(w, "... %d earlier events dropped\n", dropped); err != nil {
			return err
		}
	}
	for _, ev := range t.Snapshot() {
		if _, err := w.Write(FormatEvent(&ev, format)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error { return nil }

func (t *RingTracer) Close() error { return nil }

// Level returns the ring's tracing level.
func (t *RingTracer) Level() Level { return t.level }
