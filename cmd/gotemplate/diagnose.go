package main

import (
	"fmt"

	"github.com/fatih/color"
	colorable "github.com/mattn/go-colorable"
)

// diagnose prints err to stderr, highlighting it in red when the stream is
// a terminal (or always, on Windows, via go-colorable's ANSI shim).
func diagnose(err error) {
	out := colorable.NewColorableStderr()
	fmt.Fprintln(out, color.New(color.FgRed, color.Bold).Sprint("error:"), err)
}

// diagnoseWarning prints a non-fatal diagnostic in yellow.
func diagnoseWarning(msg string) {
	out := colorable.NewColorableStderr()
	fmt.Fprintln(out, color.New(color.FgYellow, color.Bold).Sprint("warning:"), msg)
}
