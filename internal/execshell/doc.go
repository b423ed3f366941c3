// Package execshell provides structured helpers for invoking git.
//
// OSCommandRunner executes processes and reports exit codes without treating
// them as errors. ShellExecutor layers zap logging and observer notifications
// on top of a runner and turns non-zero exits into CommandFailedError values
// that still carry the captured output, so callers can decide which failures
// are tolerable.
package execshell
