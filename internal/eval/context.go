// Package eval supplies formulas with everything they need at evaluation
// time: cell values from a store, label indirection, environment values,
// locale rules and functions.
//
// A Context is confined to one goroutine. Derived helpers that depend on
// the environment are rebuilt by WithEnvironment, never patched in place.
package eval

import (
	"errors"
	"maps"
	"strings"

	"sheetcalc/internal/expr"
	"sheetcalc/internal/lower"
	"sheetcalc/internal/parser"
	"sheetcalc/internal/reference"
	"sheetcalc/internal/store"
	"sheetcalc/internal/token"
	"sheetcalc/internal/trace"
	"sheetcalc/internal/value"
)

// Environment is the configuration a Context evaluates against.
type Environment interface {
	lower.Context
	EnvironmentValue(name reference.EnvironmentValueName) (any, bool)
	IsValueName(name string) bool
	DecimalSeparator() byte
}

// FunctionProvider looks functions up by name.
type FunctionProvider interface {
	Lookup(name string) (expr.Function, bool)
}

// derived holds values computed from the environment.
type derived struct {
	parseOpts parser.Options
}

func derive(env Environment) derived {
	return derived{
		parseOpts: parser.Options{
			ValueNames:       env.IsValueName,
			DecimalSeparator: env.DecimalSeparator(),
		},
	}
}

// Context evaluates formulas against a store and an environment.
type Context struct {
	store   store.Reader
	env     Environment
	funcs   FunctionProvider
	locals  map[reference.EnvironmentValueName]any
	tracer  trace.Tracer
	span    uint64
	derived derived
}

// New builds a Context. funcs may be nil when no functions are available.
func New(st store.Reader, env Environment, funcs FunctionProvider) *Context {
	return &Context{
		store:   st,
		env:     env,
		funcs:   funcs,
		tracer:  trace.Nop,
		derived: derive(env),
	}
}

// WithTracer returns a copy that traces reference hops as children of the
// span parent.
func (c *Context) WithTracer(t trace.Tracer, parent uint64) *Context {
	out := *c
	if t == nil {
		t = trace.Nop
	}
	out.tracer, out.span = t, parent
	return &out
}

// WithEnvironment returns a copy evaluating against env.
func (c *Context) WithEnvironment(env Environment) *Context {
	out := *c
	out.env = env
	out.derived = derive(env)
	return &out
}

func (c *Context) Environment() Environment { return c.env }

func (c *Context) NumberKind() value.NumberKind { return c.env.NumberKind() }

func (c *Context) DefaultYear() int { return c.env.DefaultYear() }

func (c *Context) TwoToFourDigitYear(year int) int { return c.env.TwoToFourDigitYear(year) }

func (c *Context) Function(name string) (expr.Function, bool) {
	if c.funcs == nil {
		return nil, false
	}
	return c.funcs.Lookup(name)
}

// WithLocals layers locals over the current ones. Names match case
// insensitively.
func (c *Context) WithLocals(locals map[reference.EnvironmentValueName]any) expr.Context {
	out := *c
	out.locals = make(map[reference.EnvironmentValueName]any, len(c.locals)+len(locals))
	maps.Copy(out.locals, c.locals)
	for name, v := range locals {
		out.locals[localKey(name)] = v
	}
	return &out
}

func localKey(name reference.EnvironmentValueName) reference.EnvironmentValueName {
	return reference.EnvironmentValueName(strings.ToUpper(string(name)))
}

// Parse turns cell input into a token tree: text starting with '=' is a
// formula, anything else a literal.
func (c *Context) Parse(text string) (token.Token, error) {
	if strings.HasPrefix(strings.TrimLeft(text, " \t"), "=") {
		return parser.ParseFormula(text, c.derived.parseOpts)
	}
	return parser.ParseLiteral(text, c.derived.parseOpts)
}

// Lower converts a token tree into an expression. ok is false for an
// empty formula.
func (c *Context) Lower(tok token.Token) (expr.Expression, bool, error) {
	return lower.Expression(tok, c)
}

// Evaluate parses, lowers and evaluates text. Reference cycles and
// unknown references become error values; syntax and structural problems
// are returned as Go errors.
func (c *Context) Evaluate(text string) (any, error) {
	tok, err := c.Parse(text)
	if err != nil {
		return nil, err
	}
	e, ok, err := c.Lower(tok)
	if err != nil || !ok {
		return nil, err
	}
	return c.EvaluateExpression(e)
}

// EvaluateExpression evaluates e and translates resolution failures into
// spreadsheet error values.
func (c *Context) EvaluateExpression(e expr.Expression) (any, error) {
	v, err := expr.Eval(c, e)
	if err == nil {
		return v, nil
	}
	if ev, ok := ErrorValue(err); ok {
		return ev, nil
	}
	return nil, err
}

// ErrorValue maps a resolution failure to the error value a cell shows.
// Cycles give #CYCLE! and ranges over MaxRangeCells give #NUM!. Unknown
// names give #NAME?, unknown cells or ranges #REF!.
func ErrorValue(err error) (value.Error, bool) {
	if errors.Is(err, ErrCycle) {
		return value.NewError(value.ErrorCycle, err.Error()), true
	}
	if errors.Is(err, reference.ErrRangeTooLarge) {
		return value.NewError(value.ErrorNum, err.Error()), true
	}
	var unknown *expr.UnknownReferenceError
	if errors.As(err, &unknown) {
		switch unknown.Ref.(type) {
		case reference.LabelName, reference.EnvironmentValueName:
			return value.NewError(value.ErrorName, unknown.Error()), true
		}
		return value.NewError(value.ErrorRef, unknown.Error()), true
	}
	return value.Error{}, false
}
