package trace

import (
	"bufio"
	"io"
	"os"
	"sync"
)

// StreamTracer writes each accepted event as it arrives. Output to a file
// is buffered until Flush; stdout and stderr are written through.
type StreamTracer struct {
	mu     sync.Mutex
	out    io.Writer
	buf    *bufio.Writer // nil for terminals
	closer io.Closer     // nil when the writer is not ours to close
	level  Level
	format Format
}

// NewStreamTracer creates a StreamTracer writing to w.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	t := &StreamTracer{out: w, level: level, format: format}
	if w == os.Stderr || w == os.Stdout {
		return t
	}
	if f, ok := w.(*os.File); ok {
		t.buf = bufio.NewWriter(f)
		t.out, t.closer = t.buf, f
	}
	return t
}

// Emit writes ev. Write errors are dropped: a broken trace sink must not
// fail a recalculation.
func (t *StreamTracer) Emit(ev *Event) {
	if !t.level.accepts(ev) {
		return
	}
	stamp(ev)
	data := FormatEvent(ev, t.format)
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = t.out.Write(data) //nolint:errcheck
}

// Flush writes out buffered events.
func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.buf != nil {
		return t.buf.Flush()
	}
	if f, ok := t.out.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Close flushes and closes the file the tracer opened over.
func (t *StreamTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	if t.closer != nil {
		return t.closer.Close()
	}
	return nil
}

// Level returns the stream's tracing level.
func (t *StreamTracer) Level() Level { return t.level }
