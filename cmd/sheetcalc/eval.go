package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"sheetcalc/internal/driver"
	"sheetcalc/internal/env"
	"sheetcalc/internal/format"
	"sheetcalc/internal/store"
	"sheetcalc/internal/value"
)

var evalCmd = &cobra.Command{
	Use:   "eval [flags] <formula>",
	Short: "Evaluate a formula, optionally against a workbook",
	Long: `Eval evaluates a formula or literal input. With --workbook the workbook is
recalculated first so the formula sees computed cell values.`,
	Args: cobra.ExactArgs(1),
	RunE: runEval,
}

func init() {
	evalCmd.Flags().String("workbook", "", "workbook TOML file to evaluate against")
	evalCmd.Flags().Bool("snapshot", false, "treat --workbook as a snapshot file")
	evalCmd.Flags().Int("jobs", 0, "max parallel evaluations while recalculating (0=auto)")
	evalCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type evalPayload struct {
	Formula     string                   `json:"formula"`
	Value       string                   `json:"value"`
	Type        string                   `json:"type"`
	Diagnostics format.DiagnosticsOutput `json:"diagnostics"`
}

func runEval(cmd *cobra.Command, args []string) error {
	input := args[0]
	outFormat, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	workbookPath, err := cmd.Flags().GetString("workbook")
	if err != nil {
		return fmt.Errorf("failed to get workbook flag: %w", err)
	}
	snapshot, err := cmd.Flags().GetBool("snapshot")
	if err != nil {
		return fmt.Errorf("failed to get snapshot flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	limit, err := maxDiagnostics(cmd)
	if err != nil {
		return err
	}
	environment, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}

	var st *store.Memory
	if workbookPath != "" {
		recalc, recalcErr := driver.Recalc(cmd.Context(), driver.RecalcRequest{
			WorkbookPath:   workbookPath,
			Snapshot:       snapshot,
			Env:            environment,
			Jobs:           jobs,
			MaxDiagnostics: limit,
		})
		if recalcErr != nil {
			printDiagnostics(cmd, recalc.Bag, nil)
			return fmt.Errorf("workbook: %w", recalcErr)
		}
		if recalc.Bag.HasErrors() {
			printDiagnostics(cmd, recalc.Bag, nil)
		}
		st = recalc.Store
	}

	result, err := driver.Evaluate(input, st, environment, limit)
	if err != nil {
		return err
	}

	switch outFormat {
	case "pretty":
		printDiagnostics(cmd, result.Bag, map[string]string{driver.Subject: input})
		if result.Bag.HasErrors() {
			return fmt.Errorf("evaluation failed")
		}
		shown := format.Value(result.Value)
		if e, isErr := result.Value.(value.Error); isErr {
			if colorFor(cmd, os.Stdout) {
				shown = color.New(color.FgRed).Sprint(shown)
			}
			if e.Kind == value.ErrorName {
				printValueNames(cmd, environment)
			}
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), shown)
		return err
	case "json":
		result.Bag.Sort()
		payload := evalPayload{
			Formula:     input,
			Value:       format.Value(result.Value),
			Type:        format.TypeName(result.Value),
			Diagnostics: format.BuildDiagnosticsOutput(result.Bag, format.JSONOpts{Max: limit, IncludeNotes: true}),
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(payload); err != nil {
			return err
		}
		if result.Bag.HasErrors() {
			return fmt.Errorf("evaluation failed")
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", outFormat)
	}
}

// printValueNames lists the environment value names after a #NAME? result.
func printValueNames(cmd *cobra.Command, environment *env.Environment) {
	if quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet"); quiet {
		return
	}
	names := environment.ValueNames()
	if len(names) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "hint: the environment defines no value names")
		return
	}
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = string(n)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "hint: environment value names: %s\n", strings.Join(parts, ", "))
}
