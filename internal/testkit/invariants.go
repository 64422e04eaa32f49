// Package testkit holds checks shared by tests and fuzz harnesses.
package testkit

import (
	"fmt"
	"testing"

	"sheetcalc/internal/lower"
	"sheetcalc/internal/store"
	"sheetcalc/internal/token"
)

// CheckTokenInvariants runs structural checks on a parsed token tree:
// 1) parents have children and leaves do not
// 2) every parent except Text carries non-empty text
// 3) nesting stays within lower.MaxDepth
func CheckTokenInvariants(root token.Token) error {
	return check(root, 0)
}

func check(t token.Token, depth int) error {
	if depth > lower.MaxDepth {
		return fmt.Errorf("nesting deeper than %d", lower.MaxDepth)
	}
	children := t.Children()
	if t.IsParent() {
		if len(children) == 0 {
			return fmt.Errorf("%s %q has no children", t.Kind(), t.Text())
		}
		if t.Text() == "" && t.Kind() != token.Text {
			return fmt.Errorf("%s has empty text", t.Kind())
		}
	} else if len(children) != 0 {
		return fmt.Errorf("leaf %s %q has %d children", t.Kind(), t.Text(), len(children))
	}
	for _, c := range children {
		if err := check(c, depth+1); err != nil {
			return fmt.Errorf("%s: %w", t.Kind(), err)
		}
	}
	return nil
}

// Workbook decodes workbook TOML for a test, failing it on error.
func Workbook(tb testing.TB, data string) *store.Memory {
	tb.Helper()
	m, err := store.DecodeWorkbook(data)
	if err != nil {
		tb.Fatalf("decode workbook: %v", err)
	}
	return m
}
