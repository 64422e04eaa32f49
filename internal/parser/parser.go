// Package parser builds formula token trees from text.
//
// Formulas are tokenized by github.com/xuri/efp and assembled into a typed
// token tree with precedence climbing over token.Priority. Plain cell
// input that is not a formula is recognised by ParseLiteral.
package parser

import (
	"errors"
	"fmt"

	"sheetcalc/internal/source"
)

// ErrSyntax reports text that does not form a formula or literal.
var ErrSyntax = errors.New("syntax error")

// Options tunes name and number recognition.
type Options struct {
	// ValueNames reports whether a bare name denotes an environment value
	// rather than a label. Nil treats every name as a label.
	ValueNames func(name string) bool
	// DecimalSeparator is the decimal point of literal input; '.' when zero.
	// Formulas always use '.'.
	DecimalSeparator byte
}

func (o Options) decimal() byte {
	if o.DecimalSeparator == 0 {
		return '.'
	}
	return o.DecimalSeparator
}

func (o Options) group() byte {
	if o.decimal() == ',' {
		return '.'
	}
	return ','
}

func (o Options) isValueName(name string) bool {
	return o.ValueNames != nil && o.ValueNames(name)
}

// SyntaxError locates a syntax problem in the parsed text.
type SyntaxError struct {
	Span source.Span
	Msg  string
	// Unsupported marks valid spreadsheet syntax this parser does not
	// handle, such as range intersection.
	Unsupported bool
	// Err is an additional cause, such as token.ErrTooDeep.
	Err error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at %s: %s", ErrSyntax, e.Span, e.Msg)
}

func (e *SyntaxError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrSyntax}
	}
	return []error{ErrSyntax, e.Err}
}

func syntaxErrorf(span source.Span, format string, args ...any) error {
	return &SyntaxError{Span: span, Msg: fmt.Sprintf(format, args...)}
}

func unsupportedf(span source.Span, format string, args ...any) error {
	return &SyntaxError{Span: span, Msg: fmt.Sprintf(format, args...), Unsupported: true}
}
