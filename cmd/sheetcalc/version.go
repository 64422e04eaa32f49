package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"sheetcalc/internal/function"
	"sheetcalc/internal/version"
)

type versionOptions struct {
	format    string
	showHash  bool
	showDate  bool
	functions bool
}

type versionPayload struct {
	Tool string `json:"tool"`
	version.Info
	Functions []string `json:"functions,omitempty"`
}

var (
	versionFormat    string
	versionShowHash  bool
	versionShowDate  bool
	versionShowFull  bool
	versionFunctions bool
)

func init() {
	versionCmd.Flags().BoolVar(&versionShowHash, "hash", false, "include git commit hash")
	versionCmd.Flags().BoolVar(&versionShowDate, "date", false, "include build timestamp")
	versionCmd.Flags().BoolVar(&versionShowFull, "full", false, "show all build metadata")
	versionCmd.Flags().BoolVar(&versionFunctions, "functions", false, "list built-in functions")
	versionCmd.Flags().StringVar(&versionFormat, "format", "pretty", "output format (pretty|json)")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show sheetcalc build information",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := versionOptions{
			format:    strings.ToLower(versionFormat),
			showHash:  versionShowHash || versionShowFull,
			showDate:  versionShowDate || versionShowFull,
			functions: versionFunctions || versionShowFull,
		}
		info := version.Current()
		if info.Version == "" {
			info.Version = "dev"
		}
		switch opts.format {
		case "pretty":
			renderVersionPretty(cmd.OutOrStdout(), info, opts)
			return nil
		case "json":
			return renderVersionJSON(cmd.OutOrStdout(), info, opts)
		default:
			return fmt.Errorf("unsupported format %q (must be pretty or json)", versionFormat)
		}
	},
}

func renderVersionPretty(out io.Writer, info version.Info, opts versionOptions) {
	fmt.Fprintf(out, "sheetcalc %s\n", version.Colored())
	if opts.showHash {
		fmt.Fprintf(out, "commit: %s\n", valueOrUnknown(info.GitCommit))
	}
	if opts.showDate {
		fmt.Fprintf(out, "built:  %s\n", valueOrUnknown(info.BuildDate))
	}
	if opts.functions {
		fmt.Fprintf(out, "functions: %s\n", strings.Join(function.Builtins().Names(), ", "))
	}
}

func renderVersionJSON(out io.Writer, info version.Info, opts versionOptions) error {
	payload := versionPayload{Tool: "sheetcalc", Info: version.Info{Version: info.Version}}
	if opts.showHash {
		payload.GitCommit = valueOrUnknown(info.GitCommit)
	}
	if opts.showDate {
		payload.BuildDate = valueOrUnknown(info.BuildDate)
	}
	if opts.functions {
		payload.Functions = function.Builtins().Names()
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func valueOrUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
