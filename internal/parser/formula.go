package parser

import (
	"fmt"
	"strings"

	"github.com/xuri/efp"

	"sheetcalc/internal/reference"
	"sheetcalc/internal/source"
	"sheetcalc/internal/token"
	"sheetcalc/internal/value"
)

// ParseFormula parses text starting with '=' into an Expression token.
// Whitespace between tokens is not preserved: token text is the canonical
// spelling of the formula.
func ParseFormula(text string, opts Options) (token.Token, error) {
	trimmed := strings.TrimLeft(text, " \t")
	if !strings.HasPrefix(trimmed, "=") {
		return token.Token{}, syntaxErrorf(source.NewSpan(0, 0), "formula must start with '='")
	}
	eq := token.MustSymbol(token.EqualsSymbol, "=")
	start := len(text) - len(trimmed) + 1
	rest := text[start:]
	if strings.TrimSpace(rest) == "" {
		return token.NewParent(token.Expression, []token.Token{eq}, "=")
	}

	ps := efp.ExcelParser()
	toks := ps.Parse(rest)
	// efp prefixes a missing '=' and may report it as an operator.
	if len(toks) > 0 && toks[0].TType == efp.TokenTypeOperatorInfix && toks[0].TValue == "=" {
		toks = toks[1:]
	}
	p := &formulaParser{src: text, toks: toks, cursor: start, opts: opts}
	body, err := p.expression(token.PriorityComparison)
	if err != nil {
		return token.Token{}, err
	}
	if t, ok := p.peek(); ok {
		return token.Token{}, p.unexpected(t)
	}
	return token.NewParent(token.Expression, []token.Token{eq, body}, "="+body.Text())
}

type formulaParser struct {
	src    string
	toks   []efp.Token
	pos    int
	cursor int
	opts   Options
	depth  int
}

// nest enters one nesting level. Past token.MaxDepth the formula is
// rejected before its tree gets any deeper.
func (p *formulaParser) nest() error {
	p.depth++
	if p.depth > token.MaxDepth {
		return &SyntaxError{
			Span: p.here(),
			Msg:  fmt.Sprintf("formula nested deeper than %d levels", token.MaxDepth),
			Err:  token.ErrTooDeep,
		}
	}
	return nil
}

func (p *formulaParser) peek() (efp.Token, bool) {
	if p.pos >= len(p.toks) {
		return efp.Token{}, false
	}
	return p.toks[p.pos], true
}

func (p *formulaParser) next() efp.Token {
	t := p.toks[p.pos]
	p.pos++
	p.locate(t)
	return t
}

// locate advances the source cursor past t and returns its span. efp drops
// offsets, so the span is found by searching forward for the token text.
func (p *formulaParser) locate(t efp.Token) source.Span {
	needle := t.TValue
	switch {
	case t.TType == efp.TokenTypeOperand && t.TSubType == efp.TokenSubTypeText:
		needle = `"` + strings.ReplaceAll(t.TValue, `"`, `""`) + `"`
	case t.TSubType == efp.TokenSubTypeStart && t.TType == efp.TokenTypeSubexpression:
		needle = "("
	case t.TSubType == efp.TokenSubTypeStop:
		needle = ")"
	}
	if needle == "" || p.cursor > len(p.src) {
		return source.NewSpan(p.cursor, p.cursor)
	}
	i := strings.Index(p.src[p.cursor:], needle)
	if i < 0 {
		return source.NewSpan(p.cursor, p.cursor)
	}
	start := p.cursor + i
	p.cursor = start + len(needle)
	return source.NewSpan(start, p.cursor)
}

func (p *formulaParser) here() source.Span {
	return source.NewSpan(p.cursor, p.cursor)
}

func (p *formulaParser) unexpected(t efp.Token) error {
	span := p.locate(t)
	if t.TValue == "" {
		return syntaxErrorf(span, "unexpected %s", strings.ToLower(t.TType))
	}
	return syntaxErrorf(span, "unexpected %q", t.TValue)
}

var infixKinds = map[string]token.Kind{
	"+":  token.PlusSymbol,
	"-":  token.MinusSymbol,
	"*":  token.MultiplySymbol,
	"/":  token.DivideSymbol,
	"^":  token.PowerSymbol,
	"=":  token.EqualsSymbol,
	"<>": token.NotEqualsSymbol,
	">":  token.GreaterThanSymbol,
	">=": token.GreaterThanEqualsSymbol,
	"<":  token.LessThanSymbol,
	"<=": token.LessThanEqualsSymbol,
}

// expression parses operands joined by infix operators binding at least as
// tightly as min. Operators of equal priority associate to the left.
func (p *formulaParser) expression(min token.Priority) (token.Token, error) {
	saved := p.depth
	defer func() { p.depth = saved }()
	if err := p.nest(); err != nil {
		return token.Token{}, err
	}
	left, err := p.unary()
	if err != nil {
		return token.Token{}, err
	}
	for {
		t, ok := p.peek()
		if !ok || t.TType != efp.TokenTypeOperatorInfix || t.TSubType == efp.TokenSubTypeUnion {
			return left, nil
		}
		if t.TSubType == efp.TokenSubTypeIntersection {
			return token.Token{}, unsupportedf(p.locate(t), "range intersection is not supported")
		}
		kind, known := infixKinds[t.TValue]
		if !known {
			return token.Token{}, unsupportedf(p.locate(t), "operator %q is not supported", t.TValue)
		}
		sym := token.MustSymbol(kind, t.TValue)
		prio := sym.Priority()
		if prio < min {
			return left, nil
		}
		p.next()
		// Each fold puts left one level deeper.
		if err := p.nest(); err != nil {
			return token.Token{}, err
		}
		right, err := p.expression(prio + 1)
		if err != nil {
			return token.Token{}, err
		}
		left, err = sym.BinaryOperand([]token.Token{left, sym, right}, left.Text()+sym.Text()+right.Text())
		if err != nil {
			return token.Token{}, err
		}
	}
}

func (p *formulaParser) unary() (token.Token, error) {
	t, ok := p.peek()
	if !ok {
		return token.Token{}, syntaxErrorf(p.here(), "missing operand")
	}
	if t.TType == efp.TokenTypeOperatorPrefix && t.TValue == "-" {
		p.next()
		if err := p.nest(); err != nil {
			return token.Token{}, err
		}
		operand, err := p.unary()
		p.depth--
		if err != nil {
			return token.Token{}, err
		}
		minus := token.MustSymbol(token.MinusSymbol, "-")
		return token.NewParent(token.Negative, []token.Token{minus, operand}, "-"+operand.Text())
	}
	operand, err := p.primary()
	if err != nil {
		return token.Token{}, err
	}
	return p.percent(operand)
}

// percent folds trailing '%' operators into a number literal.
func (p *formulaParser) percent(operand token.Token) (token.Token, error) {
	var signs []token.Token
	for {
		t, ok := p.peek()
		if !ok || t.TType != efp.TokenTypeOperatorPostfix || t.TValue != "%" {
			break
		}
		span := p.locate(t)
		p.pos++
		if operand.Kind() != token.Number {
			return token.Token{}, unsupportedf(span, "%% applies to number literals only")
		}
		signs = append(signs, token.MustSymbol(token.PercentSymbol, "%"))
	}
	if len(signs) == 0 {
		return operand, nil
	}
	return operand.SetChildren(append(operand.Children(), signs...))
}

func (p *formulaParser) primary() (token.Token, error) {
	t, _ := p.peek()
	switch t.TType {
	case efp.TokenTypeOperand:
		span := p.locate(t)
		p.pos++
		return p.operand(t, span)
	case efp.TokenTypeFunction:
		if t.TSubType != efp.TokenSubTypeStart {
			return token.Token{}, p.unexpected(t)
		}
		return p.function()
	case efp.TokenTypeSubexpression:
		if t.TSubType != efp.TokenSubTypeStart {
			return token.Token{}, p.unexpected(t)
		}
		return p.group()
	}
	return token.Token{}, p.unexpected(t)
}

func (p *formulaParser) operand(t efp.Token, span source.Span) (token.Token, error) {
	switch t.TSubType {
	case efp.TokenSubTypeNumber:
		if n, ok := numberToken(t.TValue, '.', 0); ok {
			return n, nil
		}
		return token.Token{}, syntaxErrorf(span, "invalid number %q", t.TValue)
	case efp.TokenSubTypeText:
		return quotedText(t.TValue)
	case efp.TokenSubTypeLogical:
		return booleanToken(t.TValue)
	case efp.TokenSubTypeError:
		e, ok := value.ParseError(t.TValue)
		if !ok {
			return token.Token{}, syntaxErrorf(span, "unknown error value %q", t.TValue)
		}
		return token.NewLeaf(token.ErrorLiteral, e, t.TValue)
	}
	return p.reference(t.TValue, span)
}

// reference classifies a bare operand: range, cell, boolean or name.
func (p *formulaParser) reference(text string, span source.Span) (token.Token, error) {
	if before, after, found := strings.Cut(text, ":"); found {
		a, errA := cellToken(before)
		b, errB := cellToken(after)
		if errA != nil || errB != nil {
			return token.Token{}, syntaxErrorf(span, "invalid range %q", text)
		}
		between := token.MustSymbol(token.BetweenSymbol, ":")
		return between.BinaryOperand([]token.Token{a, between, b}, a.Text()+":"+b.Text())
	}
	if c, err := cellToken(text); err == nil {
		return c, nil
	}
	switch strings.ToUpper(text) {
	case "TRUE", "FALSE":
		return booleanToken(text)
	}
	if reference.IsName(text) {
		return p.name(text)
	}
	return token.Token{}, syntaxErrorf(span, "unknown reference %q", text)
}

func (p *formulaParser) name(text string) (token.Token, error) {
	if p.opts.isValueName(text) {
		return token.NewLeaf(token.ValueName, reference.EnvironmentValueName(text), text)
	}
	return token.NewLeaf(token.LabelName, reference.LabelName(text), text)
}

func (p *formulaParser) group() (token.Token, error) {
	p.next()
	inner, err := p.expression(token.PriorityComparison)
	if err != nil {
		return token.Token{}, err
	}
	if err := p.expectStop(efp.TokenTypeSubexpression); err != nil {
		return token.Token{}, err
	}
	open := token.MustSymbol(token.ParenthesisOpenSymbol, "(")
	closing := token.MustSymbol(token.ParenthesisCloseSymbol, ")")
	return token.NewParent(token.Group, []token.Token{open, inner, closing}, "("+inner.Text()+")")
}

func (p *formulaParser) expectStop(typ string) error {
	t, ok := p.peek()
	if !ok {
		return syntaxErrorf(p.here(), "missing ')'")
	}
	if t.TType != typ || t.TSubType != efp.TokenSubTypeStop {
		return p.unexpected(t)
	}
	p.next()
	return nil
}

func (p *formulaParser) function() (token.Token, error) {
	start := p.next()
	name := start.TValue
	nameTok, err := token.NewLeaf(token.FunctionName, strings.ToUpper(name), name)
	if err != nil {
		return token.Token{}, err
	}
	args, err := p.arguments(efp.TokenTypeFunction, efp.TokenTypeArgument)
	if err != nil {
		return token.Token{}, err
	}
	if !strings.EqualFold(name, "LAMBDA") {
		ps, err := parameters(args)
		if err != nil {
			return token.Token{}, err
		}
		return token.NewParent(token.NamedFunction, []token.Token{nameTok, ps}, name+ps.Text())
	}
	return p.lambda(nameTok, args)
}

// arguments parses a parenthesised list whose opening token has been
// consumed and whose items are separated by tokens of type sep.
func (p *formulaParser) arguments(stop, sep string) ([]token.Token, error) {
	if t, ok := p.peek(); ok && t.TType == stop && t.TSubType == efp.TokenSubTypeStop {
		p.next()
		return nil, nil
	}
	var args []token.Token
	for {
		arg, err := p.expression(token.PriorityComparison)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		t, ok := p.peek()
		if !ok {
			return nil, syntaxErrorf(p.here(), "missing ')'")
		}
		switch {
		case t.TType == stop && t.TSubType == efp.TokenSubTypeStop:
			p.next()
			return args, nil
		case isSeparator(t, sep):
			p.next()
		default:
			return nil, p.unexpected(t)
		}
	}
}

func isSeparator(t efp.Token, sep string) bool {
	if sep == efp.TokenTypeOperatorInfix {
		return t.TType == sep && t.TSubType == efp.TokenSubTypeUnion
	}
	return t.TType == sep
}

func parameters(args []token.Token) (token.Token, error) {
	children := []token.Token{token.MustSymbol(token.ParenthesisOpenSymbol, "(")}
	var b strings.Builder
	b.WriteString("(")
	for i, a := range args {
		if i > 0 {
			children = append(children, token.MustSymbol(token.ValueSeparatorSymbol, ","))
			b.WriteString(",")
		}
		children = append(children, a)
		b.WriteString(a.Text())
	}
	children = append(children, token.MustSymbol(token.ParenthesisCloseSymbol, ")"))
	b.WriteString(")")
	return token.NewParent(token.FunctionParameters, children, b.String())
}

// lambda turns LAMBDA(params..., body) and any immediately following
// argument lists into a LambdaFunction. Parameter names become value names
// throughout the declaration.
func (p *formulaParser) lambda(nameTok token.Token, args []token.Token) (token.Token, error) {
	if len(args) == 0 {
		return token.Token{}, syntaxErrorf(p.here(), "LAMBDA needs a body")
	}
	names := make(map[string]bool, len(args)-1)
	for _, a := range args[:len(args)-1] {
		switch a.Kind() {
		case token.LabelName, token.ValueName:
			names[strings.ToUpper(a.Text())] = true
		default:
			return token.Token{}, syntaxErrorf(p.here(), "LAMBDA parameter %q is not a name", a.Text())
		}
	}
	decl := make([]token.Token, len(args))
	for i, a := range args {
		r, err := bindParams(a, names)
		if err != nil {
			return token.Token{}, err
		}
		decl[i] = r
	}
	ps, err := parameters(decl)
	if err != nil {
		return token.Token{}, err
	}
	children := []token.Token{nameTok, ps}
	text := nameTok.Text() + ps.Text()
	for {
		t, ok := p.peek()
		if !ok || t.TType != efp.TokenTypeSubexpression || t.TSubType != efp.TokenSubTypeStart {
			break
		}
		p.next()
		call, err := p.arguments(efp.TokenTypeSubexpression, efp.TokenTypeOperatorInfix)
		if err != nil {
			return token.Token{}, err
		}
		cp, err := parameters(call)
		if err != nil {
			return token.Token{}, err
		}
		children = append(children, cp)
		text += cp.Text()
	}
	return token.NewParent(token.LambdaFunction, children, text)
}

// bindParams rewrites label leaves naming a lambda parameter into value
// name leaves.
func bindParams(tok token.Token, names map[string]bool) (token.Token, error) {
	if tok.Kind() == token.LabelName && names[strings.ToUpper(tok.Text())] {
		return token.NewLeaf(token.ValueName, reference.EnvironmentValueName(tok.Text()), tok.Text())
	}
	if !tok.IsParent() {
		return tok, nil
	}
	children := tok.Children()
	changed := false
	for i, c := range children {
		r, err := bindParams(c, names)
		if err != nil {
			return token.Token{}, err
		}
		if !r.Equal(c) {
			children[i] = r
			changed = true
		}
	}
	if !changed {
		return tok, nil
	}
	return token.NewParent(tok.Kind(), children, tok.Text())
}

func cellToken(text string) (token.Token, error) {
	ref, err := reference.ParseCell(text)
	if err != nil {
		return token.Token{}, err
	}
	col, err := token.NewLeaf(token.ColumnReference, ref.Column, ref.Column.String())
	if err != nil {
		return token.Token{}, err
	}
	row, err := token.NewLeaf(token.RowReference, ref.Row, ref.Row.String())
	if err != nil {
		return token.Token{}, err
	}
	return token.NewParent(token.Cell, []token.Token{col, row}, ref.String())
}

func booleanToken(text string) (token.Token, error) {
	lit, err := token.NewLeaf(token.BooleanLiteral, strings.EqualFold(text, "TRUE"), text)
	if err != nil {
		return token.Token{}, err
	}
	return token.NewParent(token.Boolean, []token.Token{lit}, text)
}

func quotedText(s string) (token.Token, error) {
	escaped := strings.ReplaceAll(s, `"`, `""`)
	lit, err := token.NewLeaf(token.TextLiteral, s, escaped)
	if err != nil {
		return token.Token{}, err
	}
	q := token.MustSymbol(token.DoubleQuoteSymbol, `"`)
	return token.NewParent(token.Text, []token.Token{q, lit, q}, `"`+escaped+`"`)
}
