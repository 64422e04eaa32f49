package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"sheetcalc/internal/value"
)

// Row is one line of a result table.
type Row struct {
	Cell  string
	Input string
	Value any
}

// Table prints rows as aligned columns: cell, input, value. Error values
// are red and inputs longer than opts.Width are truncated.
func Table(w io.Writer, rows []Row, opts PrettyOpts) error {
	errColor := color.New(color.FgRed)
	headColor := color.New(color.Bold)
	if !opts.Color {
		errColor.DisableColor()
		headColor.DisableColor()
	}
	inputWidth := opts.Width
	if inputWidth <= 0 {
		inputWidth = 40
	}

	cellW, inW := runewidth.StringWidth("CELL"), runewidth.StringWidth("INPUT")
	inputs := make([]string, len(rows))
	for i, r := range rows {
		cellW = max(cellW, runewidth.StringWidth(r.Cell))
		inputs[i] = truncate(r.Input, inputWidth)
		inW = max(inW, runewidth.StringWidth(inputs[i]))
	}

	header := pad("CELL", cellW) + "  " + pad("INPUT", inW) + "  VALUE"
	if _, err := fmt.Fprintln(w, headColor.Sprint(header)); err != nil {
		return err
	}
	for i, r := range rows {
		shown := Value(r.Value)
		if _, isErr := r.Value.(value.Error); isErr {
			shown = errColor.Sprint(shown)
		}
		line := pad(r.Cell, cellW) + "  " + pad(inputs[i], inW) + "  " + shown
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}

// TableJSON writes rows as a JSON array of {cell, input, value, type}.
func TableJSON(w io.Writer, rows []Row) error {
	type rowJSON struct {
		Cell  string `json:"cell"`
		Input string `json:"input,omitempty"`
		Value string `json:"value"`
		Type  string `json:"type"`
	}
	out := make([]rowJSON, len(rows))
	for i, r := range rows {
		out[i] = rowJSON{Cell: r.Cell, Input: r.Input, Value: Value(r.Value), Type: TypeName(r.Value)}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// Value renders a cell value for display. Text is quoted so that it
// stands apart from numbers.
func Value(v any) string {
	switch x := v.(type) {
	case string:
		return fmt.Sprintf("%q", x)
	case value.Error:
		if x.Message != "" {
			return x.String() + " (" + x.Message + ")"
		}
		return x.String()
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = Value(e)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case fmt.Stringer:
		return x.String()
	}
	return value.ToText(v)
}

// TypeName names the kind of a cell value.
func TypeName(v any) string {
	switch v.(type) {
	case nil:
		return "empty"
	case float64:
		return "number"
	case string:
		return "text"
	case bool:
		return "boolean"
	case value.Error:
		return "error"
	case []any:
		return "list"
	}
	return strings.ToLower(strings.TrimPrefix(fmt.Sprintf("%T", v), "civil."))
}

func pad(s string, width int) string {
	return s + strings.Repeat(" ", max(width-runewidth.StringWidth(s), 0))
}

func truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}
