package driver

import (
	"strings"

	"github.com/xuri/efp"

	"sheetcalc/internal/diag"
	"sheetcalc/internal/source"
)

// Subject is the diagnostic subject of formula text given directly rather
// than read from a cell.
const Subject = "formula"

type TokenizeResult struct {
	Formula string
	Tokens  []efp.Token
	Bag     *diag.Bag
}

// Tokenize runs the raw formula tokenizer. Tokens the tokenizer cannot
// classify are reported as TokInvalid.
func Tokenize(formula string, maxDiagnostics int) *TokenizeResult {
	bag := diag.NewBag(maxDiagnostics)
	body := strings.TrimPrefix(strings.TrimLeft(formula, " \t"), "=")
	ps := efp.ExcelParser()
	tokens := ps.Parse(body)
	if len(tokens) > 0 && tokens[0].TType == efp.TokenTypeOperatorInfix && tokens[0].TValue == "=" {
		tokens = tokens[1:]
	}

	// Позиции токенов восстанавливаем поиском по тексту: efp их не хранит.
	offset := len(formula) - len(body)
	for _, t := range tokens {
		at := strings.Index(formula[offset:], t.TValue)
		span := source.Span{}
		if at >= 0 && t.TValue != "" {
			span = source.NewSpan(offset+at, offset+at+len(t.TValue))
			offset += at + len(t.TValue)
		}
		if t.TType == efp.TokenTypeUnknown {
			bag.Add(diag.NewError(diag.TokInvalid, Subject, span, "unrecognised token "+t.TValue))
		}
	}
	return &TokenizeResult{Formula: formula, Tokens: tokens, Bag: bag}
}
