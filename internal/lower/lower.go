// Package lower turns a formula token tree into an executable expression.
package lower

import (
	"errors"
	"fmt"
	"strings"

	"sheetcalc/internal/expr"
	"sheetcalc/internal/reference"
	"sheetcalc/internal/token"
	"sheetcalc/internal/value"
)

// MaxDepth bounds token nesting.
const MaxDepth = token.MaxDepth

var (
	// ErrImbalanced reports a tree that lowers to the wrong number of
	// expressions at some level.
	ErrImbalanced = errors.New("imbalanced expression")
	// ErrUnsupported reports a token with no expression form.
	ErrUnsupported = errors.New("unsupported token")
	// ErrInvalidLiteral reports a number, date or time literal whose
	// components do not form a value.
	ErrInvalidLiteral = errors.New("invalid literal")
	// ErrTooDeep reports nesting beyond MaxDepth.
	ErrTooDeep = token.ErrTooDeep
)

// Context supplies the locale rules literals are built with.
type Context interface {
	NumberKind() value.NumberKind
	DefaultYear() int
	TwoToFourDigitYear(year int) int
}

var binaryOps = map[token.Kind]expr.Op{
	token.Addition:          expr.OpAdd,
	token.Subtraction:       expr.OpSub,
	token.Multiplication:    expr.OpMul,
	token.Division:          expr.OpDiv,
	token.Power:             expr.OpPow,
	token.Equals:            expr.OpEq,
	token.NotEquals:         expr.OpNe,
	token.GreaterThan:       expr.OpGt,
	token.GreaterThanEquals: expr.OpGe,
	token.LessThan:          expr.OpLt,
	token.LessThanEquals:    expr.OpLe,
}

// Expression lowers tok. ok is false when the tree holds no expression,
// as for a formula consisting of "=" alone.
func Expression(tok token.Token, ctx Context) (e expr.Expression, ok bool, err error) {
	l := lowerer{ctx: ctx}
	out, err := l.visit(tok, 0)
	if err != nil {
		return nil, false, err
	}
	switch len(out) {
	case 0:
		return nil, false, nil
	case 1:
		return out[0], true, nil
	}
	return nil, false, imbalanced(tok, out)
}

func imbalanced(tok token.Token, out []expr.Expression) error {
	parts := make([]string, len(out))
	for i, e := range out {
		parts[i] = e.String()
	}
	return fmt.Errorf("%w: %s %q produced %d expressions: %s",
		ErrImbalanced, tok.Kind(), tok.Text(), len(out), strings.Join(parts, ", "))
}

type lowerer struct {
	ctx Context
}

// visit returns the expressions tok contributes to its parent: none for
// noise, several for a parameter list, one otherwise.
func (l *lowerer) visit(tok token.Token, depth int) ([]expr.Expression, error) {
	if depth > MaxDepth {
		return nil, fmt.Errorf("%w: more than %d levels", ErrTooDeep, MaxDepth)
	}
	kind := tok.Kind()
	if kind.IsSymbol() {
		return nil, nil
	}
	if kind.IsConditionRight() {
		return nil, fmt.Errorf("%w: %s %q has no left operand", ErrUnsupported, kind, tok.Text())
	}

	// Leaves and literals whose children are not expressions.
	switch kind {
	case token.LabelName:
		return one(expr.Ref(tok.Value().(reference.LabelName)))
	case token.ValueName:
		return one(expr.Ref(tok.Value().(reference.EnvironmentValueName)))
	case token.ErrorLiteral:
		return one(expr.Value(tok.Value().(value.Error)))
	case token.BooleanLiteral:
		return one(expr.Value(tok.Value().(bool)))
	case token.Cell:
		c, _ := tok.Cell()
		return one(expr.Ref(c))
	case token.CellRange:
		r, _ := tok.Range()
		return one(expr.Ref(r))
	case token.Number:
		n, err := Number(tok, l.ctx)
		if err != nil {
			return nil, err
		}
		return one(expr.Value(n))
	case token.Date, token.DateTime, token.Time:
		v, err := Temporal(tok, l.ctx)
		if err != nil {
			return nil, err
		}
		return one(expr.Value(v))
	case token.Text:
		return one(expr.Value(text(tok)))
	case token.Boolean:
		for _, c := range tok.Operands() {
			if c.Kind() == token.BooleanLiteral {
				return one(expr.Value(c.Value().(bool)))
			}
		}
	}
	if kind.IsLeaf() {
		return nil, fmt.Errorf("%w: %s %q outside its literal", ErrUnsupported, kind, tok.Text())
	}

	var (
		args   []expr.Expression
		groups [][]expr.Expression
		name   string
	)
	for _, c := range tok.Children() {
		switch c.Kind() {
		case token.FunctionName:
			name = c.Value().(string)
			continue
		case token.FunctionParameters:
			ps, err := l.visit(c, depth+1)
			if err != nil {
				return nil, err
			}
			groups = append(groups, ps)
			args = append(args, ps...)
			continue
		}
		out, err := l.visit(c, depth+1)
		if err != nil {
			return nil, err
		}
		args = append(args, out...)
	}

	if op, ok := binaryOps[kind]; ok {
		if len(args) != 2 {
			return nil, imbalanced(tok, args)
		}
		return one(expr.Binary(op, args[0], args[1]))
	}
	switch kind {
	case token.Expression:
		if len(args) > 1 {
			return nil, imbalanced(tok, args)
		}
		return args, nil
	case token.Group, token.Negative:
		if len(args) != 1 {
			return nil, imbalanced(tok, args)
		}
		if kind == token.Negative {
			return one(expr.Negate(args[0]))
		}
		return args, nil
	case token.FunctionParameters:
		return args, nil
	case token.NamedFunction:
		return one(expr.Call(expr.NamedFunction(name), args...))
	case token.LambdaFunction:
		return lambda(name, groups)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, kind)
}

// lambda builds LAMBDA(params...) applied to each following argument group
// in turn.
func lambda(name string, groups [][]expr.Expression) ([]expr.Expression, error) {
	if len(groups) == 0 {
		return nil, fmt.Errorf("%w: %s without parameters", ErrImbalanced, name)
	}
	e := expr.Call(expr.NamedFunction(name), groups[0]...)
	for _, g := range groups[1:] {
		e = expr.Call(e, g...)
	}
	return one(e)
}

func text(tok token.Token) string {
	var b strings.Builder
	for _, c := range tok.Children() {
		if c.Kind() == token.TextLiteral {
			b.WriteString(c.Value().(string))
		}
	}
	return b.String()
}

func one(e expr.Expression) ([]expr.Expression, error) {
	return []expr.Expression{e}, nil
}
