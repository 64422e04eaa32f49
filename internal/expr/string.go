package expr

import (
	"strconv"
	"strings"

	"cloud.google.com/go/civil"

	"sheetcalc/internal/value"
)

func (l Lit) String() string {
	switch v := l.V.(type) {
	case string:
		return strconv.Quote(v)
	case civil.Date, civil.Time, civil.DateTime:
		return "<" + value.ToText(v) + ">"
	}
	return value.ToText(l.V)
}

func (r RefExpr) String() string { return r.Ref.String() }

func (b BinaryExpr) String() string {
	var sb strings.Builder
	writeOperand(&sb, b.Left, b.Op.precedence(), false)
	sb.WriteString(b.Op.String())
	writeOperand(&sb, b.Right, b.Op.precedence(), true)
	return sb.String()
}

// writeOperand parenthesises x when it binds looser than its parent; a right
// operand of equal precedence is parenthesised too, operators being left
// associative.
func writeOperand(sb *strings.Builder, x Expression, prec int, right bool) {
	if b, ok := x.(BinaryExpr); ok {
		p := b.Op.precedence()
		if p < prec || (right && p == prec) {
			sb.WriteString("(")
			sb.WriteString(x.String())
			sb.WriteString(")")
			return
		}
	}
	sb.WriteString(x.String())
}

func (n NegExpr) String() string {
	if _, ok := n.X.(BinaryExpr); ok {
		return "-(" + n.X.String() + ")"
	}
	return "-" + n.X.String()
}

func (c CallExpr) String() string {
	var sb strings.Builder
	if _, ok := c.Fn.(FuncName); ok {
		sb.WriteString(c.Fn.String())
	} else {
		sb.WriteString("(")
		sb.WriteString(c.Fn.String())
		sb.WriteString(")")
	}
	sb.WriteString("(")
	for i, a := range c.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.String())
	}
	sb.WriteString(")")
	return sb.String()
}

func (f FuncName) String() string { return f.Name }
