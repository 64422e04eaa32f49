package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"sheetcalc/internal/diag"
	"sheetcalc/internal/source"
)

// Pretty печатает диагностики в человекочитаемом виде.
// Идёт по bag.Items() (ожидается bag.Sort() заранее). Для каждой:
//
//	<subject>: <SEV> <CODE>: <Message>
//	  <formula>
//	  ^~~~
//
// sources maps a subject to its formula text; subjects without text get
// no excerpt.
func Pretty(w io.Writer, bag *diag.Bag, sources map[string]string, opts PrettyOpts) error {
	sevColor := map[diag.Severity]*color.Color{
		diag.SevError:   color.New(color.FgRed, color.Bold),
		diag.SevWarning: color.New(color.FgYellow, color.Bold),
		diag.SevInfo:    color.New(color.FgBlue),
	}
	caret := color.New(color.FgGreen)
	if !opts.Color {
		for _, c := range sevColor {
			c.DisableColor()
		}
		caret.DisableColor()
	}

	for _, d := range bag.Items() {
		sev := sevColor[d.Severity].Sprint(d.Severity.String())
		if _, err := fmt.Fprintf(w, "%s: %s %s: %s\n", d.Subject, sev, d.Code.ID(), d.Message); err != nil {
			return err
		}
		text, ok := sources[d.Subject]
		if ok {
			if _, err := fmt.Fprint(w, excerpt(text, d.Primary, caret)); err != nil {
				return err
			}
		}
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			if _, err := fmt.Fprintf(w, "  note: %s\n", n.Msg); err != nil {
				return err
			}
			if ok {
				if _, err := fmt.Fprint(w, excerpt(text, n.Span, caret)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// excerpt renders text with a caret line under span. Column offsets use
// display width so wide characters line up.
func excerpt(text string, span source.Span, caret *color.Color) string {
	line := strings.ReplaceAll(text, "\n", " ")
	start := min(int(span.Start), len(line))
	end := min(max(int(span.End), start), len(line))
	pad := runewidth.StringWidth(line[:start])
	width := max(runewidth.StringWidth(line[start:end]), 1)
	marker := "^" + strings.Repeat("~", width-1)

	var sb strings.Builder
	sb.WriteString("  ")
	sb.WriteString(line)
	sb.WriteString("\n  ")
	sb.WriteString(strings.Repeat(" ", pad))
	sb.WriteString(caret.Sprint(marker))
	sb.WriteString("\n")
	return sb.String()
}

// LocationJSON представляет место диагностики.
type LocationJSON struct {
	Subject   string `json:"subject"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
}

type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Title    string       `json:"title"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

// BuildDiagnosticsOutput формирует структуру JSON-вывода без сериализации.
func BuildDiagnosticsOutput(bag *diag.Bag, opts JSONOpts) DiagnosticsOutput {
	items := bag.Items()
	maxItems := len(items)
	if opts.Max > 0 && opts.Max < maxItems {
		maxItems = opts.Max
	}
	diagnostics := make([]DiagnosticJSON, 0, maxItems)
	for _, d := range items[:maxItems] {
		out := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Message:  d.Message,
			Location: LocationJSON{Subject: d.Subject, StartByte: d.Primary.Start, EndByte: d.Primary.End},
		}
		if opts.IncludeNotes {
			for _, n := range d.Notes {
				out.Notes = append(out.Notes, NoteJSON{
					Message:  n.Msg,
					Location: LocationJSON{Subject: d.Subject, StartByte: n.Span.Start, EndByte: n.Span.End},
				})
			}
		}
		diagnostics = append(diagnostics, out)
	}
	return DiagnosticsOutput{Diagnostics: diagnostics, Count: len(diagnostics)}
}

// JSON форматирует диагностики в JSON.
func JSON(w io.Writer, bag *diag.Bag, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(bag, opts))
}
