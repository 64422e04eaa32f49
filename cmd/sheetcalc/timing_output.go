package main

import (
	"fmt"
	"io"

	"sheetcalc/internal/driver"
)

func printPhaseTimings(out io.Writer, result *driver.RecalcResult) {
	if out == nil || result == nil {
		return
	}
	if _, err := result.Timing.WriteTo(out); err != nil {
		return
	}
	if result.Result != nil {
		fmt.Fprintf(out, "batches  %d, cycles %d\n", result.Result.Batches, len(result.Result.Cycles))
	}
}
