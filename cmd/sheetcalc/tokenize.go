package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sheetcalc/internal/driver"
	"sheetcalc/internal/format"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] <formula>",
	Short: "Show the raw tokenizer stream of a formula",
	Long:  `Tokenize splits a formula into operands, operators and function brackets without building a tree`,
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenize,
}

func runTokenize(cmd *cobra.Command, args []string) error {
	limit, err := maxDiagnostics(cmd)
	if err != nil {
		return err
	}
	result := driver.Tokenize(args[0], limit)
	printDiagnostics(cmd, result.Bag, map[string]string{driver.Subject: args[0]})
	if err := format.RawTokens(cmd.OutOrStdout(), result.Tokens); err != nil {
		return err
	}
	if result.Bag.HasErrors() {
		return fmt.Errorf("tokenization reported errors")
	}
	return nil
}
