package lower

import (
	"fmt"
	"math"
	"strings"

	"sheetcalc/internal/token"
)

// Number computes the value of a Number token. Sign, digit, decimal and
// exponent leaves form a canonical numeric string; each percent character
// divides the result by 100.
func Number(tok token.Token, ctx Context) (float64, error) {
	if tok.Kind() != token.Number {
		return 0, fmt.Errorf("%w: %s is not a number", ErrUnsupported, tok.Kind())
	}
	var (
		b       strings.Builder
		percent int
	)
	for _, c := range tok.Children() {
		switch c.Kind() {
		case token.Digits:
			b.WriteString(c.Value().(string))
		case token.PlusSymbol, token.MinusSymbol:
			b.WriteString(c.Text())
		case token.DecimalSeparatorSymbol:
			b.WriteByte('.')
		case token.ExponentSymbol:
			b.WriteByte('E')
		case token.PercentSymbol:
			percent += len(c.Text())
		}
	}
	s := b.String()
	n, err := ctx.NumberKind().Parse(s)
	if err != nil {
		return 0, fmt.Errorf("%w: number %q: %v", ErrInvalidLiteral, tok.Text(), err)
	}
	if percent > 0 {
		n /= math.Pow(10, float64(2*percent))
	}
	return n, nil
}
