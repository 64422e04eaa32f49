package parser

import (
	"strconv"
	"strings"
	"time"

	"sheetcalc/internal/token"
	"sheetcalc/internal/value"
)

// ParseLiteral recognises plain cell input: numbers, booleans, error
// values, dates, times and date-times. Anything else, and any input
// starting with an apostrophe, is text.
func ParseLiteral(text string, opts Options) (token.Token, error) {
	if rest, ok := strings.CutPrefix(text, "'"); ok {
		apos := token.MustSymbol(token.ApostropheSymbol, "'")
		lit, err := token.NewLeaf(token.TextLiteral, rest, rest)
		if err != nil {
			return token.Token{}, err
		}
		return token.NewParent(token.Text, []token.Token{apos, lit}, text)
	}
	s := strings.TrimSpace(text)
	if n, ok := numberToken(s, opts.decimal(), opts.group()); ok {
		return n, nil
	}
	switch strings.ToUpper(s) {
	case "TRUE", "FALSE":
		return booleanToken(s)
	}
	if e, ok := value.ParseError(s); ok {
		return token.NewLeaf(token.ErrorLiteral, e, s)
	}
	if t, ok := temporalToken(s); ok {
		return t, nil
	}
	lit, err := token.NewLeaf(token.TextLiteral, text, text)
	if err != nil {
		return token.Token{}, err
	}
	return token.NewParent(token.Text, []token.Token{lit}, text)
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

// numberToken splits number text into sign, digit, separator, exponent and
// percent leaves. group is the thousands separator, zero to disallow one.
func numberToken(text string, decimal, group byte) (token.Token, bool) {
	var children []token.Token
	i := 0
	symbol := func(kind token.Kind, n int) {
		children = append(children, token.MustSymbol(kind, text[i:i+n]))
		i += n
	}
	digits := func() int {
		j := i
		for j < len(text) && isDigit(text[j]) {
			j++
		}
		if j > i {
			children = append(children, token.MustLeaf(token.Digits, text[i:j], text[i:j]))
		}
		n := j - i
		i = j
		return n
	}
	sign := func() {
		if i < len(text) && text[i] == '+' {
			symbol(token.PlusSymbol, 1)
		} else if i < len(text) && text[i] == '-' {
			symbol(token.MinusSymbol, 1)
		}
	}

	sign()
	whole := digits()
	if whole > 0 && whole <= 3 && group != 0 {
		for i < len(text) && text[i] == group && threeDigits(text[i+1:]) {
			symbol(token.GroupSeparatorSymbol, 1)
			digits()
		}
	}
	frac := 0
	if i < len(text) && text[i] == decimal {
		symbol(token.DecimalSeparatorSymbol, 1)
		frac = digits()
	}
	if whole == 0 && frac == 0 {
		return token.Token{}, false
	}
	if i < len(text) && (text[i] == 'e' || text[i] == 'E') {
		symbol(token.ExponentSymbol, 1)
		sign()
		if digits() == 0 {
			return token.Token{}, false
		}
	}
	for i < len(text) && text[i] == '%' {
		symbol(token.PercentSymbol, 1)
	}
	if i != len(text) {
		return token.Token{}, false
	}
	n, err := token.NewParent(token.Number, children, text)
	return n, err == nil
}

// threeDigits reports whether s starts with exactly three digits.
func threeDigits(s string) bool {
	if len(s) < 3 || !isDigit(s[0]) || !isDigit(s[1]) || !isDigit(s[2]) {
		return false
	}
	return len(s) == 3 || !isDigit(s[3])
}

type piece struct {
	class byte // 'd' digits, 'a' letters, 's' anything else
	text  string
}

func pieces(s string) []piece {
	var out []piece
	for i := 0; i < len(s); {
		j := i + 1
		var class byte
		switch ch := s[i]; {
		case isDigit(ch):
			class = 'd'
			for j < len(s) && isDigit(s[j]) {
				j++
			}
		case ch >= 'A' && ch <= 'Z' || ch >= 'a' && ch <= 'z':
			class = 'a'
			for j < len(s) && (s[j] >= 'A' && s[j] <= 'Z' || s[j] >= 'a' && s[j] <= 'z') {
				j++
			}
		case ch == ' ':
			class = 's'
			for j < len(s) && s[j] == ' ' {
				j++
			}
		default:
			class = 's'
		}
		out = append(out, piece{class: class, text: s[i:j]})
		i = j
	}
	return out
}

func (p piece) is(class byte, minLen, maxLen int) bool {
	return p.class == class && len(p.text) >= minLen && len(p.text) <= maxLen
}

func (p piece) sep(texts ...string) bool {
	if p.class != 's' {
		return false
	}
	for _, t := range texts {
		if p.text == t || (t == " " && strings.Trim(p.text, " ") == "") {
			return true
		}
	}
	return false
}

func temporalToken(s string) (token.Token, bool) {
	ps := pieces(s)
	split := -1
	for k := 0; k+1 < len(ps); k++ {
		if ps[k].class == 'd' && ps[k+1].text == ":" {
			split = k
			break
		}
	}
	var (
		kind     token.Kind
		children []token.Token
		ok       bool
	)
	switch {
	case split == 0:
		kind = token.Time
		children, ok = matchTime(ps)
	case split > 1 && ps[split-1].sep(" "):
		kind = token.DateTime
		var date, tm []token.Token
		date, ok = matchDate(ps[:split-1])
		if ok {
			tm, ok = matchTime(ps[split:])
		}
		children = append(append(date, leafSymbol(token.WhitespaceSymbol, ps[split-1].text)), tm...)
	case split < 0:
		kind = token.Date
		children, ok = matchDate(ps)
	}
	if !ok {
		return token.Token{}, false
	}
	t, err := token.NewParent(kind, children, s)
	return t, err == nil
}

func leafSymbol(kind token.Kind, text string) token.Token {
	return token.MustSymbol(kind, text)
}

func intLeaf(kind token.Kind, text string) token.Token {
	n, _ := strconv.Atoi(text)
	return token.MustLeaf(kind, n, text)
}

func matchTime(ps []piece) ([]token.Token, bool) {
	if len(ps) < 3 || !ps[0].is('d', 1, 2) || !ps[2].is('d', 2, 2) {
		return nil, false
	}
	out := []token.Token{
		intLeaf(token.Hour, ps[0].text),
		leafSymbol(token.SeparatorSymbol, ":"),
		intLeaf(token.Minute, ps[2].text),
	}
	rest := ps[3:]
	if len(rest) >= 2 && rest[0].text == ":" && rest[1].is('d', 2, 2) {
		out = append(out, leafSymbol(token.SeparatorSymbol, ":"), intLeaf(token.Seconds, rest[1].text))
		rest = rest[2:]
		if len(rest) >= 2 && rest[0].text == "." && rest[1].is('d', 1, 3) {
			ms, _ := strconv.Atoi((rest[1].text + "00")[:3])
			out = append(out, leafSymbol(token.DecimalSeparatorSymbol, "."), token.MustLeaf(token.Millisecond, ms, rest[1].text))
			rest = rest[2:]
		}
	}
	if len(rest) > 0 && rest[0].sep(" ") {
		out = append(out, leafSymbol(token.WhitespaceSymbol, rest[0].text))
		rest = rest[1:]
	}
	if len(rest) == 1 && rest[0].class == 'a' {
		switch strings.ToUpper(rest[0].text) {
		case "AM":
			out = append(out, token.MustLeaf(token.AmPm, 0, rest[0].text))
		case "PM":
			out = append(out, token.MustLeaf(token.AmPm, 12, rest[0].text))
		default:
			return nil, false
		}
		rest = nil
	}
	if len(rest) != 0 {
		return nil, false
	}
	return out, true
}

func matchDate(ps []piece) ([]token.Token, bool) {
	sepTok := func(p piece) token.Token {
		if strings.Trim(p.text, " ") == "" {
			return leafSymbol(token.WhitespaceSymbol, p.text)
		}
		return leafSymbol(token.SeparatorSymbol, p.text)
	}
	switch {
	// 2024/03/15, 2024-03-15
	case len(ps) == 5 && ps[0].is('d', 4, 4) && ps[1].sep("/", "-", ".") && ps[2].is('d', 1, 2) &&
		ps[3].text == ps[1].text && ps[4].is('d', 1, 2):
		return []token.Token{
			intLeaf(token.Year, ps[0].text), sepTok(ps[1]),
			intLeaf(token.MonthNumber, ps[2].text), sepTok(ps[3]),
			intLeaf(token.DayNumber, ps[4].text),
		}, true
	// 15-Mar-24, 15 March 2024, 15 Mar
	case (len(ps) == 3 || len(ps) == 5) && ps[0].is('d', 1, 2) && ps[1].sep("-", " ") && ps[2].class == 'a':
		month, ok := monthToken(ps[2].text)
		if !ok {
			return nil, false
		}
		out := []token.Token{intLeaf(token.DayNumber, ps[0].text), sepTok(ps[1]), month}
		if len(ps) == 5 {
			if !ps[3].sep("-", " ") || !(ps[4].is('d', 2, 2) || ps[4].is('d', 4, 4)) {
				return nil, false
			}
			out = append(out, sepTok(ps[3]), intLeaf(token.Year, ps[4].text))
		}
		return out, true
	// March 15, March 15, 2024
	case len(ps) >= 3 && ps[0].class == 'a' && ps[1].sep(" ") && ps[2].is('d', 1, 2):
		month, ok := monthToken(ps[0].text)
		if !ok {
			return nil, false
		}
		out := []token.Token{month, sepTok(ps[1]), intLeaf(token.DayNumber, ps[2].text)}
		rest := ps[3:]
		if len(rest) == 0 {
			return out, true
		}
		if rest[0].text != "," {
			return nil, false
		}
		out = append(out, leafSymbol(token.ValueSeparatorSymbol, ","))
		rest = rest[1:]
		if len(rest) > 0 && rest[0].sep(" ") {
			out = append(out, sepTok(rest[0]))
			rest = rest[1:]
		}
		if len(rest) != 1 || !rest[0].is('d', 4, 4) {
			return nil, false
		}
		return append(out, intLeaf(token.Year, rest[0].text)), true
	}
	return nil, false
}

// monthInitials lists the initials that name exactly one month.
var monthInitials = map[string]time.Month{
	"F": time.February,
	"S": time.September,
	"O": time.October,
	"N": time.November,
	"D": time.December,
}

func monthToken(text string) (token.Token, bool) {
	upper := strings.ToUpper(text)
	for m := time.January; m <= time.December; m++ {
		name := strings.ToUpper(m.String())
		switch upper {
		case name:
			return token.MustLeaf(token.MonthName, int(m), text), true
		case name[:3]:
			return token.MustLeaf(token.MonthNameAbbreviation, int(m), text), true
		}
	}
	if m, ok := monthInitials[upper]; ok {
		return token.MustLeaf(token.MonthNameInitial, int(m), text), true
	}
	return token.Token{}, false
}
