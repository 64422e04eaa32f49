package trace

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Format represents the output format for trace events.
type Format uint8

const (
	FormatAuto   Format = iota // pick from the output path
	FormatText                 // human-readable text
	FormatNDJSON               // newline-delimited JSON
)

// ParseFormat converts a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson":
		return FormatNDJSON, nil
	default:
		return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson)", s)
	}
}

// FormatEvent formats an event according to the specified format.
func FormatEvent(ev *Event, format Format) []byte {
	switch format {
	case FormatNDJSON:
		return formatNDJSON(ev)
	default:
		return formatText(ev)
	}
}

// formatNDJSON formats an event as newline-delimited JSON.
func formatNDJSON(ev *Event) []byte {
	type jsonEvent struct {
		Time      string            `json:"time"`
		Seq       uint64            `json:"seq"`
		Kind      string            `json:"kind"`
		Scope     string            `json:"scope"`
		SpanID    uint64            `json:"span_id,omitempty"`
		ParentID  uint64            `json:"parent_id,omitempty"`
		Cell      string            `json:"cell,omitempty"`
		Name      string            `json:"name"`
		Detail    string            `json:"detail,omitempty"`
		Err       string            `json:"error,omitempty"`
		ElapsedUS int64             `json:"elapsed_us,omitempty"`
		Attrs     map[string]string `json:"attrs,omitempty"`
	}
	j := jsonEvent{
		Time:      ev.Time.Format("2006-01-02T15:04:05.000000Z07:00"),
		Seq:       ev.Seq,
		Kind:      ev.Kind.String(),
		Scope:     ev.Scope.String(),
		SpanID:    ev.SpanID,
		ParentID:  ev.ParentID,
		Cell:      ev.Cell,
		Name:      ev.Name,
		Detail:    ev.Detail,
		Err:       ev.Err,
		ElapsedUS: ev.Elapsed.Microseconds(),
	}
	if len(ev.Attrs) > 0 {
		j.Attrs = make(map[string]string, len(ev.Attrs))
		for _, a := range ev.Attrs {
			j.Attrs[a.Key] = a.Value
		}
	}
	data, _ := json.Marshal(j)
	return append(data, '\n')
}

// formatText formats an event as one human-readable line:
// [clock] #seq [indent]marker name (detail) {attrs} elapsed
func formatText(ev *Event) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] #%d ", ev.Time.Format("15:04:05.000"), ev.Seq)
	if ev.ParentID > 0 {
		sb.WriteString("  ")
	}
	switch ev.Kind {
	case KindBegin:
		sb.WriteString("\u2192 ") // →
	case KindEnd:
		sb.WriteString("\u2190 ") // ←
	case KindFail:
		sb.WriteString("\u2717 ") // ✗
	case KindHeartbeat:
		sb.WriteString("\u2661 ") // ♡
	}
	sb.WriteString(ev.Name)
	if ev.Detail != "" {
		fmt.Fprintf(&sb, " (%s)", ev.Detail)
	}
	if ev.Err != "" {
		fmt.Fprintf(&sb, ": %s", ev.Err)
	}
	if len(ev.Attrs) > 0 {
		sb.WriteString(" {")
		for i, a := range ev.Attrs {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(a.Key + "=" + a.Value)
		}
		sb.WriteString("}")
	}
	if ev.Elapsed > 0 {
		fmt.Fprintf(&sb, " %s", ev.Elapsed.Round(time.Microsecond))
	}
	sb.WriteString("\n")
	return []byte(sb.String())
}
