package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"sheetcalc/internal/prof"
	"sheetcalc/internal/trace"
	"sheetcalc/internal/version"
)

var rootCmd = &cobra.Command{
	Use:          "sheetcalc",
	Short:        "Spreadsheet formula parser and evaluator",
	Long:         `sheetcalc parses spreadsheet formulas, evaluates them and recalculates workbooks`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
		if err != nil {
			return err
		}
		mode, err := readColorMode(colorFlag)
		if err != nil {
			return err
		}
		color.NoColor = !useColor(mode, os.Stdout)
		if _, err := minSeverity(cmd); err != nil {
			return err
		}
		cleanup, err := setupTracing(cmd)
		if err != nil {
			return err
		}
		traceCleanup = cleanup
		return startProfiling(cmd)
	},
}

var (
	traceCleanup func()
	profSession  *prof.Session
)

// shutdown stops profilers and flushes the tracer. It runs after the
// command whether or not it failed.
func shutdown() {
	if err := profSession.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "profile: %v\n", err)
	}
	profSession = nil
	if traceCleanup != nil {
		traceCleanup()
		traceCleanup = nil
	}
}

func startProfiling(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()
	var opts prof.Options
	var err error
	if opts.CPU, err = flags.GetString("cpuprofile"); err != nil {
		return err
	}
	if opts.Mem, err = flags.GetString("memprofile"); err != nil {
		return err
	}
	if opts.Trace, err = flags.GetString("runtime-trace"); err != nil {
		return err
	}
	profSession, err = prof.Start(opts)
	return err
}

func init() {
	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(recalcCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().String("min-severity", "info", "lowest diagnostic severity to print (info|warning|error)")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	rootCmd.PersistentFlags().String("env", "", "environment TOML file (locale rules and named values)")
	rootCmd.PersistentFlags().String("trace", "", "trace output file (\"-\" for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-mode", "stream", "trace storage mode (stream|ring|both)")
	rootCmd.PersistentFlags().Int("trace-ring-size", trace.DefaultRingSize, "ring buffer size for ring trace mode")
	rootCmd.PersistentFlags().Duration("trace-heartbeat", 0, "trace heartbeat interval (0 disables)")
	rootCmd.PersistentFlags().String("cpuprofile", "", "write a CPU profile to this file")
	rootCmd.PersistentFlags().String("memprofile", "", "write a heap profile to this file")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to this file")
}

// main executes the root command; a failing command exits with status 1.
func main() {
	// Версия для автоматического флага --version
	rootCmd.Version = version.Version
	err := rootCmd.Execute()
	shutdown()
	if err != nil {
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
