package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Структура токенов
	TokInfo        Code = 1000
	TokInvalid     Code = 1001
	TokUnsupported Code = 1002

	// Грамматика
	SynInfo             Code = 2000
	SynUnexpectedToken  Code = 2001
	SynUnsupportedOp    Code = 2002
	SynImbalancedTree   Code = 2003
	SynInvalidLiteral   Code = 2004
	SynNestingTooDeep   Code = 2005
	SynMissingEquals    Code = 2006
	SynInvalidReference Code = 2007

	// Вычисление
	EvalInfo             Code = 3000
	EvalCycle            Code = 3001
	EvalUnknownReference Code = 3002
	EvalErrorValue       Code = 3003
	EvalFailure          Code = 3004

	// Движок пересчёта
	EngInfo            Code = 4000
	EngDependencyCycle Code = 4001
	EngCanceled        Code = 4002
	EngWorkbook        Code = 4003
	EngSnapshot        Code = 4004
)

var (
	codeDescription = map[Code]string{
		UnknownCode:          "Unknown error",
		TokInfo:              "Token information",
		TokInvalid:           "Malformed token tree",
		TokUnsupported:       "Unsupported token operation",
		SynInfo:              "Syntax information",
		SynUnexpectedToken:   "Unexpected token",
		SynUnsupportedOp:     "Unsupported operator",
		SynImbalancedTree:    "Imbalanced expression tree",
		SynInvalidLiteral:    "Invalid literal",
		SynNestingTooDeep:    "Formula nested too deeply",
		SynMissingEquals:     "Formula must start with '='",
		SynInvalidReference:  "Invalid reference",
		EvalInfo:             "Evaluation information",
		EvalCycle:            "Circular reference",
		EvalUnknownReference: "Unknown reference",
		EvalErrorValue:       "Formula produced an error value",
		EvalFailure:          "Evaluation failed",
		EngInfo:              "Engine information",
		EngDependencyCycle:   "Cell is part of a dependency cycle",
		EngCanceled:          "Recalculation canceled",
		EngWorkbook:          "Invalid workbook",
		EngSnapshot:          "Snapshot error",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("TOK%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("EVL%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("ENG%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
