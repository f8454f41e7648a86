// Package cliui holds small colored-output helpers shared by smartdbctl
// subcommands, adapted from a larger glamour/lipgloss-based printer that
// had no markdown or diff surface left to render in this domain.
package cliui

import (
	"os"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
)

// PrintSuccess prints a green success message.
func PrintSuccess(format string, args ...interface{}) {
	color.New(color.FgGreen, color.Bold).Printf(format+"\n", args...)
}

// PrintError prints a red error message to stderr.
func PrintError(format string, args ...interface{}) {
	color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, format+"\n", args...)
}

// PrintWarning prints a yellow warning message.
func PrintWarning(format string, args ...interface{}) {
	color.New(color.FgYellow, color.Bold).Printf(format+"\n", args...)
}

// PrintInfo prints a cyan informational message.
func PrintInfo(format string, args ...interface{}) {
	color.New(color.FgCyan).Printf(format+"\n", args...)
}

// PrintTable renders headers and rows as a bordered table.
func PrintTable(headers []string, rows [][]string) error {
	data := pterm.TableData{headers}
	data = append(data, rows...)
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// ColorPrinters returns named color printers for ad-hoc colored output.
func ColorPrinters() map[string]*color.Color {
	return map[string]*color.Color{
		"success": color.New(color.FgGreen, color.Bold),
		"error":   color.New(color.FgRed, color.Bold),
		"warning": color.New(color.FgYellow, color.Bold),
		"info":    color.New(color.FgCyan),
	}
}
