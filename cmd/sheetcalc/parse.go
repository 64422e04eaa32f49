package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sheetcalc/internal/driver"
	"sheetcalc/internal/format"
	"sheetcalc/internal/token"
	"sheetcalc/internal/trace"
)

var errParse = errors.New("parsing failed")

var parseCmd = &cobra.Command{
	Use:   "parse [flags] <formula>",
	Short: "Parse a formula and print its token tree",
	Long:  `Parse builds the token tree of a formula or literal input and checks that it lowers to an expression`,
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runParse(cmd *cobra.Command, args []string) error {
	input := args[0]
	outFormat, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	limit, err := maxDiagnostics(cmd)
	if err != nil {
		return err
	}
	environment, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}

	span, _ := trace.Start(cmd.Context(), trace.ScopeEngine, "parse")
	result := driver.Parse(input, environment, limit)
	if result.Bag.HasErrors() {
		span.Fail(errParse)
	} else {
		span.End(fmt.Sprintf("%d tokens", countTokens(result.Token)))
	}

	printDiagnostics(cmd, result.Bag, map[string]string{driver.Subject: input})
	if result.Bag.HasErrors() {
		return errParse
	}

	switch outFormat {
	case "pretty":
		if err := format.TokenTreePretty(cmd.OutOrStdout(), result.Token, format.PrettyOpts{Color: colorFor(cmd, os.Stdout)}); err != nil {
			return err
		}
		if result.Expr != nil {
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "expr: %s\n", result.Expr)
		}
		return err
	case "json":
		return format.TokenTreeJSON(cmd.OutOrStdout(), result.Token)
	default:
		return fmt.Errorf("unknown format: %s", outFormat)
	}
}

// countTokens counts tok and all of its descendants.
func countTokens(tok token.Token) int {
	n := 0
	tok.Walk(func(token.Token) bool {
		n++
		return true
	})
	return n
}
