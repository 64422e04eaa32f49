// Package diag defines the diagnostic model shared by the formula parser,
// the evaluation context and the recalculation engine.
//
// A Diagnostic carries a Severity, a numeric Code, a short Message, the
// Subject it is about (a cell such as "B3", or "formula" for ad-hoc input)
// and a Primary span inside the subject's formula text. Notes add
// secondary spans.
//
// Producers emit through a Reporter; BagReporter collects into a Bag, which
// applies a limit, sorts deterministically and removes duplicates. Package
// diag performs no IO; rendering lives in internal/format.
//
// Code ranges:
//
//	1000-1999  TOK  structural token errors
//	2000-2999  SYN  formula and literal grammar
//	3000-3999  EVL  evaluation
//	4000-4999  ENG  recalculation engine and workbook IO
package diag
