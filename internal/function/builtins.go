package function

import (
	"math"
	"strings"

	"cloud.google.com/go/civil"

	"sheetcalc/internal/expr"
	"sheetcalc/internal/reference"
	"sheetcalc/internal/value"
)

// Builtins returns a registry holding every builtin function.
func Builtins() *Registry {
	r := NewRegistry()
	for _, b := range []*Builtin{
		NewBuiltin("SUM", 1, Variadic, sum),
		NewBuiltin("MIN", 1, Variadic, minimum),
		NewBuiltin("MAX", 1, Variadic, maximum),
		NewBuiltin("AVERAGE", 1, Variadic, average),
		NewBuiltin("COUNT", 1, Variadic, count),
		NewBuiltin("ABS", 1, 1, abs),
		NewBuiltin("IF", 2, 3, ifFn),
		NewBuiltin("AND", 1, Variadic, and),
		NewBuiltin("OR", 1, Variadic, or),
		NewBuiltin("NOT", 1, 1, not),
		NewBuiltin("CONCAT", 1, Variadic, concat),
		NewBuiltin("LAMBDA", 1, Variadic, lambda),
	} {
		r.Register(b)
	}
	return r
}

func isNumeric(v any) bool {
	switch v.(type) {
	case float64, civil.Date, civil.Time, civil.DateTime:
		return true
	}
	return false
}

// numbers evaluates args into numbers. Scalars are coerced; values inside
// ranges count only when they already are numbers. The first error value
// is returned as result.
func numbers(ctx expr.Context, args []expr.Expression) ([]float64, any, error) {
	var out []float64
	for _, a := range args {
		v, err := expr.Eval(ctx, a)
		if err != nil {
			return nil, nil, err
		}
		if list, ok := v.([]any); ok {
			for _, x := range value.Flatten(list) {
				if e, isErr := x.(value.Error); isErr {
					return nil, e, nil
				}
				if isNumeric(x) {
					n, _ := value.ToNumber(x)
					out = append(out, n)
				}
			}
			continue
		}
		n, verr := value.ToNumber(v)
		if verr != nil {
			return nil, *verr, nil
		}
		out = append(out, n)
	}
	return out, nil, nil
}

func sum(ctx expr.Context, args []expr.Expression) (any, error) {
	ns, bad, err := numbers(ctx, args)
	if err != nil || bad != nil {
		return bad, err
	}
	total := 0.0
	for _, n := range ns {
		total += n
	}
	return total, nil
}

func minimum(ctx expr.Context, args []expr.Expression) (any, error) {
	return extreme(ctx, args, math.Min)
}

func maximum(ctx expr.Context, args []expr.Expression) (any, error) {
	return extreme(ctx, args, math.Max)
}

func extreme(ctx expr.Context, args []expr.Expression, pick func(a, b float64) float64) (any, error) {
	ns, bad, err := numbers(ctx, args)
	if err != nil || bad != nil {
		return bad, err
	}
	if len(ns) == 0 {
		return 0.0, nil
	}
	out := ns[0]
	for _, n := range ns[1:] {
		out = pick(out, n)
	}
	return out, nil
}

func average(ctx expr.Context, args []expr.Expression) (any, error) {
	ns, bad, err := numbers(ctx, args)
	if err != nil || bad != nil {
		return bad, err
	}
	if len(ns) == 0 {
		return value.NewError(value.ErrorDiv0, "AVERAGE of no numbers"), nil
	}
	total := 0.0
	for _, n := range ns {
		total += n
	}
	return total / float64(len(ns)), nil
}

func count(ctx expr.Context, args []expr.Expression) (any, error) {
	n := 0
	for _, a := range args {
		v, err := expr.Eval(ctx, a)
		if err != nil {
			return nil, err
		}
		list, ok := v.([]any)
		if !ok {
			list = []any{v}
		}
		for _, x := range value.Flatten(list) {
			if isNumeric(x) {
				n++
			}
		}
	}
	return float64(n), nil
}

func abs(ctx expr.Context, args []expr.Expression) (any, error) {
	v, err := expr.Eval(ctx, args[0])
	if err != nil {
		return nil, err
	}
	n, verr := value.ToNumber(v)
	if verr != nil {
		return *verr, nil
	}
	return math.Abs(n), nil
}

func ifFn(ctx expr.Context, args []expr.Expression) (any, error) {
	c, err := expr.Eval(ctx, args[0])
	if err != nil {
		return nil, err
	}
	ok, verr := value.ToBool(c)
	if verr != nil {
		return *verr, nil
	}
	switch {
	case ok:
		return expr.Eval(ctx, args[1])
	case len(args) == 3:
		return expr.Eval(ctx, args[2])
	}
	return false, nil
}

// logical folds the booleans of args; values inside ranges count only
// when they are booleans or numbers.
func logical(ctx expr.Context, args []expr.Expression, fold func(acc, b bool) bool, start bool) (any, error) {
	acc := start
	seen := false
	for _, a := range args {
		v, err := expr.Eval(ctx, a)
		if err != nil {
			return nil, err
		}
		if list, ok := v.([]any); ok {
			for _, x := range value.Flatten(list) {
				switch y := x.(type) {
				case value.Error:
					return y, nil
				case bool, float64:
					b, _ := value.ToBool(y)
					acc, seen = fold(acc, b), true
				}
			}
			continue
		}
		b, verr := value.ToBool(v)
		if verr != nil {
			return *verr, nil
		}
		acc, seen = fold(acc, b), true
	}
	if !seen {
		return value.NewError(value.ErrorValue, "no logical values"), nil
	}
	return acc, nil
}

func and(ctx expr.Context, args []expr.Expression) (any, error) {
	return logical(ctx, args, func(acc, b bool) bool { return acc && b }, true)
}

func or(ctx expr.Context, args []expr.Expression) (any, error) {
	return logical(ctx, args, func(acc, b bool) bool { return acc || b }, false)
}

func not(ctx expr.Context, args []expr.Expression) (any, error) {
	v, err := expr.Eval(ctx, args[0])
	if err != nil {
		return nil, err
	}
	b, verr := value.ToBool(v)
	if verr != nil {
		return *verr, nil
	}
	return !b, nil
}

func concat(ctx expr.Context, args []expr.Expression) (any, error) {
	var b strings.Builder
	for _, a := range args {
		v, err := expr.Eval(ctx, a)
		if err != nil {
			return nil, err
		}
		list, ok := v.([]any)
		if !ok {
			list = []any{v}
		}
		for _, x := range value.Flatten(list) {
			if e, isErr := x.(value.Error); isErr {
				return e, nil
			}
			b.WriteString(value.ToText(x))
		}
	}
	return b.String(), nil
}

// lambda builds a Lambda from parameter names followed by a body. The
// arguments are not evaluated.
func lambda(_ expr.Context, args []expr.Expression) (any, error) {
	params := make([]reference.EnvironmentValueName, 0, len(args)-1)
	for _, a := range args[:len(args)-1] {
		ref, ok := a.(expr.RefExpr)
		if !ok {
			return value.NewError(value.ErrorValue, "LAMBDA parameter is not a name: "+a.String()), nil
		}
		switch name := ref.Ref.(type) {
		case reference.EnvironmentValueName:
			params = append(params, name)
		case reference.LabelName:
			params = append(params, reference.EnvironmentValueName(name))
		default:
			return value.NewError(value.ErrorValue, "LAMBDA parameter is not a name: "+a.String()), nil
		}
	}
	return expr.Lambda{Params: params, Body: args[len(args)-1]}, nil
}
