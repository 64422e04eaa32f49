package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"sheetcalc/internal/diag"
	"sheetcalc/internal/env"
	"sheetcalc/internal/format"
)

type colorMode string

const (
	colorAuto colorMode = "auto"
	colorOn   colorMode = "on"
	colorOff  colorMode = "off"
)

func readColorMode(value string) (colorMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return colorAuto, nil
	case "on":
		return colorOn, nil
	case "off":
		return colorOff, nil
	default:
		return "", fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
}

func useColor(mode colorMode, f *os.File) bool {
	switch mode {
	case colorOn:
		return true
	case colorOff:
		return false
	default:
		return isTerminal(f)
	}
}

// colorFor resolves --color for output written to f.
func colorFor(cmd *cobra.Command, f *os.File) bool {
	value, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false
	}
	mode, err := readColorMode(value)
	if err != nil {
		return false
	}
	return useColor(mode, f)
}

// loadEnvironment reads --env, falling back to the default locale.
func loadEnvironment(cmd *cobra.Command) (*env.Environment, error) {
	path, err := cmd.Root().PersistentFlags().GetString("env")
	if err != nil {
		return nil, fmt.Errorf("failed to get env flag: %w", err)
	}
	if path == "" {
		return env.Default(), nil
	}
	environment, err := env.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}
	return environment, nil
}

func maxDiagnostics(cmd *cobra.Command) (int, error) {
	n, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return 0, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	return n, nil
}

// minSeverity reads --min-severity; --quiet raises it to errors.
func minSeverity(cmd *cobra.Command) (diag.Severity, error) {
	flags := cmd.Root().PersistentFlags()
	name, err := flags.GetString("min-severity")
	if err != nil {
		return diag.SevInfo, fmt.Errorf("failed to get min-severity flag: %w", err)
	}
	sev, err := diag.ParseSeverity(name)
	if err != nil {
		return diag.SevInfo, err
	}
	if quiet, _ := flags.GetBool("quiet"); quiet {
		sev = diag.SevError
	}
	return sev, nil
}

// printDiagnostics writes bag to stderr. sources maps subjects to the text
// shown under each diagnostic. Informational entries are produced only by
// --timings.
func printDiagnostics(cmd *cobra.Command, bag *diag.Bag, sources map[string]string) {
	if bag == nil {
		return
	}
	sev, err := minSeverity(cmd)
	if err != nil {
		sev = diag.SevInfo
	}
	bag = bag.AtLeast(sev)
	if bag.Len() == 0 {
		return
	}
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	bag.Dedup()
	bag.Sort()
	opts := format.PrettyOpts{Color: colorFor(cmd, os.Stderr), ShowNotes: !quiet}
	if err := format.Pretty(cmd.ErrOrStderr(), bag, sources, opts); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "failed to print diagnostics: %v\n", err)
	}
}

func writeJSONDiagnostics(w io.Writer, bag *diag.Bag, limit int) error {
	bag.Dedup()
	bag.Sort()
	return format.JSON(w, bag, format.JSONOpts{Max: limit, IncludeNotes: true})
}
