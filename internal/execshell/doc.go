// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec behind CommandRunner, exposes OSCommandRunner for default
// process execution, and adds ShellExecutor which records every invocation
// through zap and converts non-zero exit codes into CommandFailedError values.
package execshell
