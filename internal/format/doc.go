// Package format renders parse trees, diagnostics and recalculation
// results for the command line, as plain or colored text and as JSON.
package format
