// Package ui provides helpers for human-readable console output.
//
// ConsoleCommandEventLogger narrates each git command in plain language while
// detailed telemetry keeps flowing through the structured diagnostic logger.
// LogProgressReporter renders run stages when the CLI runs outside a GitHub
// Actions runner.
package ui
