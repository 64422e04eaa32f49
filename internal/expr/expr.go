// Package expr defines executable formula expressions.
//
// Expressions are immutable trees built by package lower and evaluated
// against a Context that resolves references and functions.
package expr

import (
	"reflect"

	"sheetcalc/internal/reference"
)

// Expression is one node of an executable formula.
type Expression interface {
	String() string
	isExpression()
}

// Lit is a constant value.
type Lit struct {
	V any
}

// RefExpr reads a cell, range, label or environment value.
type RefExpr struct {
	Ref reference.ExpressionReference
}

// BinaryExpr applies an arithmetic or comparison operator.
type BinaryExpr struct {
	Op    Op
	Left  Expression
	Right Expression
}

// NegExpr negates its operand.
type NegExpr struct {
	X Expression
}

// CallExpr applies Fn to Args. Fn is usually a FuncName; it may also be any
// expression that evaluates to a function or lambda.
type CallExpr struct {
	Fn   Expression
	Args []Expression
}

// FuncName names a registered function.
type FuncName struct {
	Name string
}

func (Lit) isExpression()        {}
func (RefExpr) isExpression()    {}
func (BinaryExpr) isExpression() {}
func (NegExpr) isExpression()    {}
func (CallExpr) isExpression()   {}
func (FuncName) isExpression()   {}

func Value(v any) Expression                        { return Lit{V: v} }
func Ref(r reference.ExpressionReference) Expression { return RefExpr{Ref: r} }
func Negate(x Expression) Expression                 { return NegExpr{X: x} }
func NamedFunction(name string) Expression           { return FuncName{Name: name} }

// Call builds a call; args are copied.
func Call(fn Expression, args ...Expression) Expression {
	a := make([]Expression, len(args))
	copy(a, args)
	return CallExpr{Fn: fn, Args: a}
}

func Binary(op Op, left, right Expression) Expression {
	return BinaryExpr{Op: op, Left: left, Right: right}
}

func Add(l, r Expression) Expression               { return Binary(OpAdd, l, r) }
func Subtract(l, r Expression) Expression          { return Binary(OpSub, l, r) }
func Multiply(l, r Expression) Expression          { return Binary(OpMul, l, r) }
func Divide(l, r Expression) Expression            { return Binary(OpDiv, l, r) }
func Power(l, r Expression) Expression             { return Binary(OpPow, l, r) }
func Equals(l, r Expression) Expression            { return Binary(OpEq, l, r) }
func NotEquals(l, r Expression) Expression         { return Binary(OpNe, l, r) }
func GreaterThan(l, r Expression) Expression       { return Binary(OpGt, l, r) }
func GreaterThanEquals(l, r Expression) Expression { return Binary(OpGe, l, r) }
func LessThan(l, r Expression) Expression          { return Binary(OpLt, l, r) }
func LessThanEquals(l, r Expression) Expression    { return Binary(OpLe, l, r) }

// Equal reports whether a and b are the same tree.
func Equal(a, b Expression) bool {
	switch x := a.(type) {
	case Lit:
		y, ok := b.(Lit)
		return ok && litEqual(x.V, y.V)
	case RefExpr:
		y, ok := b.(RefExpr)
		return ok && x.Ref == y.Ref
	case BinaryExpr:
		y, ok := b.(BinaryExpr)
		return ok && x.Op == y.Op && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case NegExpr:
		y, ok := b.(NegExpr)
		return ok && Equal(x.X, y.X)
	case CallExpr:
		y, ok := b.(CallExpr)
		if !ok || len(x.Args) != len(y.Args) || !Equal(x.Fn, y.Fn) {
			return false
		}
		for i := range x.Args {
			if !Equal(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	case FuncName:
		y, ok := b.(FuncName)
		return ok && x.Name == y.Name
	}
	return a == nil && b == nil
}

func litEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}
