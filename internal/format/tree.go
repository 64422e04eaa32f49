package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/xuri/efp"

	"sheetcalc/internal/token"
	"sheetcalc/internal/value"
)

// TokenNode is the JSON form of a token tree.
type TokenNode struct {
	Kind     string      `json:"kind"`
	Text     string      `json:"text"`
	Value    any         `json:"value,omitempty"`
	Children []TokenNode `json:"children,omitempty"`
}

// BuildTokenNode converts tok and its children. Leaf values are rendered
// as text, except numbers and booleans.
func BuildTokenNode(tok token.Token) TokenNode {
	n := TokenNode{Kind: tok.Kind().String(), Text: tok.Text()}
	if tok.IsParent() {
		for _, c := range tok.Children() {
			n.Children = append(n.Children, BuildTokenNode(c))
		}
		return n
	}
	if tok.IsSymbol() {
		return n
	}
	switch v := tok.Value().(type) {
	case int, bool, string:
		n.Value = v
	case fmt.Stringer:
		n.Value = v.String()
	default:
		n.Value = value.ToText(v)
	}
	return n
}

// TokenTreeJSON writes tok as indented JSON.
func TokenTreeJSON(w io.Writer, tok token.Token) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildTokenNode(tok))
}

// TokenTreePretty prints tok as an indented outline, one token per line.
// Symbol tokens are dimmed when color is on.
func TokenTreePretty(w io.Writer, tok token.Token, opts PrettyOpts) error {
	p := treePrinter{w: w, kind: color.New(color.FgCyan), symbol: color.New(color.Faint)}
	if !opts.Color {
		p.kind.DisableColor()
		p.symbol.DisableColor()
	}
	return p.print(tok, 0)
}

type treePrinter struct {
	w      io.Writer
	kind   *color.Color
	symbol *color.Color
}

func (p treePrinter) print(t token.Token, depth int) error {
	indent := strings.Repeat("  ", depth)
	var line string
	switch {
	case t.IsSymbol():
		line = indent + p.symbol.Sprintf("%s %q", t.Kind(), t.Text())
	case t.IsLeaf():
		line = fmt.Sprintf("%s%s %q = %v", indent, p.kind.Sprint(t.Kind()), t.Text(), BuildTokenNode(t).Value)
	default:
		line = fmt.Sprintf("%s%s %q", indent, p.kind.Sprint(t.Kind()), t.Text())
	}
	if _, err := fmt.Fprintln(p.w, line); err != nil {
		return err
	}
	for _, c := range t.Children() {
		if err := p.print(c, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// RawTokens prints the tokenizer stream of a formula, one token per line.
func RawTokens(w io.Writer, toks []efp.Token) error {
	for i, t := range toks {
		sub := t.TSubType
		if sub == "" {
			sub = "-"
		}
		if _, err := fmt.Fprintf(w, "%3d: %-18s %-12s %q\n", i+1, t.TType, sub, t.TValue); err != nil {
			return err
		}
	}
	return nil
}
