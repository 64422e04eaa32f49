package expr

import (
	"math"

	"sheetcalc/internal/value"
)

// Eval computes e in ctx. Spreadsheet errors such as #DIV/0! are returned
// as value.Error results; a Go error means evaluation could not proceed,
// for example a reference cycle or an unknown reference.
func Eval(ctx Context, e Expression) (any, error) {
	switch x := e.(type) {
	case Lit:
		return x.V, nil
	case RefExpr:
		b, ok, err := ctx.Reference(x.Ref)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &UnknownReferenceError{Ref: x.Ref}
		}
		if !b.Present {
			return nil, nil
		}
		return b.Value, nil
	case BinaryExpr:
		l, err := Eval(ctx, x.Left)
		if err != nil {
			return nil, err
		}
		r, err := Eval(ctx, x.Right)
		if err != nil {
			return nil, err
		}
		return binary(x.Op, l, r), nil
	case NegExpr:
		v, err := Eval(ctx, x.X)
		if err != nil {
			return nil, err
		}
		n, verr := value.ToNumber(v)
		if verr != nil {
			return *verr, nil
		}
		return -n, nil
	case CallExpr:
		return call(ctx, x)
	case FuncName:
		if fn, ok := ctx.Function(x.Name); ok {
			return fn, nil
		}
		return value.NewError(value.ErrorName, "unknown function "+x.Name), nil
	}
	return value.NewError(value.ErrorValue, "unknown expression"), nil
}

func call(ctx Context, c CallExpr) (any, error) {
	var target any
	if name, ok := c.Fn.(FuncName); ok {
		fn, found := ctx.Function(name.Name)
		if !found {
			return value.NewError(value.ErrorName, "unknown function "+name.Name), nil
		}
		target = fn
	} else {
		v, err := Eval(ctx, c.Fn)
		if err != nil {
			return nil, err
		}
		target = v
	}
	switch fn := target.(type) {
	case Function:
		return fn.Call(ctx, c.Args)
	case Lambda:
		return fn.Invoke(ctx, c.Args)
	case value.Error:
		return fn, nil
	}
	return value.NewError(value.ErrorValue, "value is not callable"), nil
}

func binary(op Op, l, r any) any {
	if e, ok := l.(value.Error); ok {
		return e
	}
	if e, ok := r.(value.Error); ok {
		return e
	}
	if op.IsComparison() {
		c, err := value.Compare(l, r)
		if err != nil {
			return *err
		}
		switch op {
		case OpEq:
			return c == 0
		case OpNe:
			return c != 0
		case OpGt:
			return c > 0
		case OpGe:
			return c >= 0
		case OpLt:
			return c < 0
		default:
			return c <= 0
		}
	}
	a, err := value.ToNumber(l)
	if err != nil {
		return *err
	}
	b, err := value.ToNumber(r)
	if err != nil {
		return *err
	}
	var out float64
	switch op {
	case OpAdd:
		out = a + b
	case OpSub:
		out = a - b
	case OpMul:
		out = a * b
	case OpDiv:
		if b == 0 {
			return value.NewError(value.ErrorDiv0, "division by zero")
		}
		out = a / b
	case OpPow:
		if a == 0 && b == 0 {
			return value.NewError(value.ErrorNum, "0^0")
		}
		out = math.Pow(a, b)
	}
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return value.NewError(value.ErrorNum, "result out of range")
	}
	return out
}
