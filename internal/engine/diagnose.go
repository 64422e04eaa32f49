package engine

import (
	"errors"

	"sheetcalc/internal/diag"
	"sheetcalc/internal/lower"
	"sheetcalc/internal/parser"
	"sheetcalc/internal/reference"
	"sheetcalc/internal/source"
	"sheetcalc/internal/token"
)

// Diagnose turns an error from parsing, lowering or evaluating the input
// of subject into a diagnostic.
func Diagnose(subject string, err error) diag.Diagnostic {
	var syn *parser.SyntaxError
	if errors.As(err, &syn) {
		code := diag.SynUnexpectedToken
		switch {
		case errors.Is(syn, token.ErrTooDeep):
			code = diag.SynNestingTooDeep
		case syn.Unsupported:
			code = diag.SynUnsupportedOp
		}
		return diag.NewError(code, subject, syn.Span, syn.Msg)
	}
	code := diag.EvalFailure
	switch {
	case errors.Is(err, lower.ErrImbalanced):
		code = diag.SynImbalancedTree
	case errors.Is(err, lower.ErrInvalidLiteral):
		code = diag.SynInvalidLiteral
	case errors.Is(err, lower.ErrTooDeep):
		code = diag.SynNestingTooDeep
	case errors.Is(err, lower.ErrUnsupported), errors.Is(err, token.ErrUnsupported):
		code = diag.TokUnsupported
	case errors.Is(err, token.ErrInvalidToken):
		code = diag.TokInvalid
	case errors.Is(err, reference.ErrInvalidReference):
		code = diag.SynInvalidReference
	}
	return diag.NewError(code, subject, source.Span{}, err.Error())
}
