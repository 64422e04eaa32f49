package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sheetcalc/internal/driver"
	"sheetcalc/internal/format"
)

var recalcCmd = &cobra.Command{
	Use:   "recalc [flags] <workbook.toml>",
	Short: "Recalculate every cell of a workbook",
	Long: `Recalc parses every cell of a workbook, evaluates formulas in dependency
order and prints the resulting values. Cells in a dependency cycle show #CYCLE!.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecalc,
}

func init() {
	recalcCmd.Flags().Int("jobs", 0, "max parallel evaluations (0=auto)")
	recalcCmd.Flags().String("out", "", "write a snapshot of the recalculated workbook to this file")
	recalcCmd.Flags().Bool("snapshot", false, "read the workbook from a snapshot file")
	recalcCmd.Flags().String("format", "table", "output format (table|json|none)")
	recalcCmd.Flags().String("diagnostics-format", "pretty", "diagnostics format (pretty|json)")
	recalcCmd.Flags().Int("width", 40, "max width of the input column")
	recalcCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
}

func runRecalc(cmd *cobra.Command, args []string) error {
	path := args[0]
	flags := cmd.Flags()
	jobs, err := flags.GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	out, err := flags.GetString("out")
	if err != nil {
		return fmt.Errorf("failed to get out flag: %w", err)
	}
	snapshot, err := flags.GetBool("snapshot")
	if err != nil {
		return fmt.Errorf("failed to get snapshot flag: %w", err)
	}
	outFormat, err := flags.GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	diagFormat, err := flags.GetString("diagnostics-format")
	if err != nil {
		return fmt.Errorf("failed to get diagnostics-format flag: %w", err)
	}
	width, err := flags.GetInt("width")
	if err != nil {
		return fmt.Errorf("failed to get width flag: %w", err)
	}
	uiFlag, err := flags.GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	limit, err := maxDiagnostics(cmd)
	if err != nil {
		return err
	}
	environment, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}

	req := driver.RecalcRequest{
		WorkbookPath:   path,
		Snapshot:       snapshot,
		SavePath:       out,
		Env:            environment,
		Jobs:           jobs,
		MaxDiagnostics: limit,
		Timings:        timings,
	}
	var result *driver.RecalcResult
	if shouldUseTUI(mode) {
		result, err = runRecalcWithUI(cmd.Context(), "recalc "+path, req)
	} else {
		result, err = driver.Recalc(cmd.Context(), req)
	}
	if result == nil {
		return err
	}

	sources := make(map[string]string)
	var rows []format.Row
	if result.Result != nil {
		for _, c := range result.Result.Cells {
			name := c.Cell.String()
			sources[name] = c.Input
			rows = append(rows, format.Row{Cell: name, Input: c.Input, Value: c.Value})
		}
	}

	switch diagFormat {
	case "pretty":
		printDiagnostics(cmd, result.Bag, sources)
	case "json":
		if result.Bag.Len() > 0 {
			if jsonErr := writeJSONDiagnostics(cmd.ErrOrStderr(), result.Bag, limit); jsonErr != nil {
				return jsonErr
			}
		}
	default:
		return fmt.Errorf("unknown diagnostics format: %s", diagFormat)
	}
	if err != nil {
		if driver.IsCanceled(err) {
			return fmt.Errorf("recalculation canceled")
		}
		return err
	}

	switch outFormat {
	case "table":
		opts := format.PrettyOpts{Color: colorFor(cmd, os.Stdout), Width: width}
		if err := format.Table(cmd.OutOrStdout(), rows, opts); err != nil {
			return err
		}
	case "json":
		if err := format.TableJSON(cmd.OutOrStdout(), rows); err != nil {
			return err
		}
	case "none":
	default:
		return fmt.Errorf("unknown format: %s", outFormat)
	}

	if timings {
		printPhaseTimings(cmd.ErrOrStderr(), result)
	}
	if result.Bag.HasErrors() {
		return fmt.Errorf("recalculation reported errors")
	}
	return nil
}
