package expr

import (
	"fmt"

	"sheetcalc/internal/reference"
)

// Binding is the outcome of resolving a known reference. Present is false
// for a reference that exists but holds nothing, such as an empty cell.
type Binding struct {
	Value   any
	Present bool
}

// Function is a callable registered under a name. It receives its
// arguments unevaluated so it can decide which ones to evaluate.
type Function interface {
	Name() string
	Call(ctx Context, args []Expression) (any, error)
}

// Context supplies everything evaluation needs from the outside.
type Context interface {
	// Reference resolves ref. ok is false when the reference is unknown.
	Reference(ref reference.ExpressionReference) (b Binding, ok bool, err error)
	// Function looks up a function by name.
	Function(name string) (Function, bool)
	// WithLocals returns a context in which the given environment value
	// names resolve to the given values first.
	WithLocals(locals map[reference.EnvironmentValueName]any) Context
}

// UnknownReferenceError reports a reference the context does not know.
type UnknownReferenceError struct {
	Ref reference.ExpressionReference
}

func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("unknown reference %s", e.Ref)
}
