package testkit

import (
	"testing"

	"sheetcalc/internal/parser"
	"sheetcalc/internal/token"
)

func TestCheckTokenInvariants(t *testing.T) {
	for _, in := range []string{"=1+2", `=IF(A1>0,"yes","no")`, "=SUM(A1:B2)*-3", "="} {
		tok, err := parser.ParseFormula(in, parser.Options{})
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if err := CheckTokenInvariants(tok); err != nil {
			t.Fatalf("%q: %v", in, err)
		}
	}
}

func TestCheckTokenInvariantsLeaf(t *testing.T) {
	leaf := token.MustSymbol(token.EqualsSymbol, "=")
	if err := CheckTokenInvariants(leaf); err != nil {
		t.Fatalf("symbol: %v", err)
	}
}

func TestWorkbook(t *testing.T) {
	m := Workbook(t, "[cells]\nA1 = 1\n")
	if len(m.Cells()) != 1 {
		t.Fatalf("cells = %d", len(m.Cells()))
	}
}
