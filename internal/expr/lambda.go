package expr

import (
	"strings"

	"sheetcalc/internal/reference"
	"sheetcalc/internal/value"
)

// Lambda is a function value built by LAMBDA(param, ..., body).
type Lambda struct {
	Params []reference.EnvironmentValueName
	Body   Expression
}

// Invoke evaluates args in ctx, binds them to the parameters and evaluates
// the body in the resulting scope.
func (l Lambda) Invoke(ctx Context, args []Expression) (any, error) {
	if len(args) != len(l.Params) {
		return value.NewError(value.ErrorValue, "lambda argument count mismatch"), nil
	}
	locals := make(map[reference.EnvironmentValueName]any, len(args))
	for i, a := range args {
		v, err := Eval(ctx, a)
		if err != nil {
			return nil, err
		}
		locals[l.Params[i]] = v
	}
	return Eval(ctx.WithLocals(locals), l.Body)
}

func (l Lambda) String() string {
	parts := make([]string, 0, len(l.Params)+1)
	for _, p := range l.Params {
		parts = append(parts, string(p))
	}
	parts = append(parts, l.Body.String())
	return "LAMBDA(" + strings.Join(parts, ", ") + ")"
}
