// Package function provides the builtin spreadsheet functions and a
// case-insensitive registry for them.
package function

import (
	"fmt"
	"sort"

	"golang.org/x/text/cases"

	"sheetcalc/internal/expr"
	"sheetcalc/internal/value"
)

// Variadic marks a builtin without an upper argument limit.
const Variadic = -1

// Builtin is a function implemented in Go.
type Builtin struct {
	name     string
	min, max int
	call     func(ctx expr.Context, args []expr.Expression) (any, error)
}

// NewBuiltin wraps fn as a function accepting between min and max
// arguments.
func NewBuiltin(name string, min, max int, fn func(ctx expr.Context, args []expr.Expression) (any, error)) *Builtin {
	return &Builtin{name: name, min: min, max: max, call: fn}
}

func (b *Builtin) Name() string { return b.name }

func (b *Builtin) Call(ctx expr.Context, args []expr.Expression) (any, error) {
	if len(args) < b.min || (b.max != Variadic && len(args) > b.max) {
		return value.NewError(value.ErrorValue, fmt.Sprintf("%s: wrong number of arguments: %d", b.name, len(args))), nil
	}
	return b.call(ctx, args)
}

// Registry maps names to functions. It is not safe for concurrent
// registration; lookups may run concurrently once it is built.
type Registry struct {
	fns map[string]expr.Function
}

func NewRegistry() *Registry {
	return &Registry{fns: make(map[string]expr.Function)}
}

func key(name string) string {
	return cases.Fold().String(name)
}

// Register adds fn, replacing a function of the same name.
func (r *Registry) Register(fn expr.Function) {
	r.fns[key(fn.Name())] = fn
}

func (r *Registry) Lookup(name string) (expr.Function, bool) {
	fn, ok := r.fns[key(name)]
	return fn, ok
}

// Names lists registered names sorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.fns))
	for _, fn := range r.fns {
		out = append(out, fn.Name())
	}
	sort.Strings(out)
	return out
}
