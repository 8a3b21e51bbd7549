package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	sectionTemplateConstant      = "\n== %s ==\n"
	infoTemplateConstant         = "%s\n"
	warningTemplateConstant      = "WARNING: %s\n"
	errorTemplateConstant        = "ERROR: %s\n"
	proposedCommandTemplate      = "$ %s\n"
	skippedCommandTemplate       = "skipped: %s\n"
	exitCodeTemplateConstant     = "exit code %d: %s\n"
	checkPassedTemplateConstant  = "PASS %s: %s\n"
	checkFailedTemplateConstant  = "FAIL %s: %s\n"
	remediationTemplateConstant  = "  run: %s\n"
	indentedOutputPrefixConstant = "  "
	lineSeparatorConstant        = "\n"
)

// Console writes the interactive dialogue of a run to an output stream.
type Console struct {
	writer io.Writer
}

// NewConsole constructs a Console. A nil writer falls back to standard output.
func NewConsole(writer io.Writer) *Console {
	if writer == nil {
		writer = os.Stdout
	}
	return &Console{writer: writer}
}

// Writer exposes the underlying stream.
func (console *Console) Writer() io.Writer {
	return console.writer
}

// Section announces the start of a workflow stage.
func (console *Console) Section(title string) {
	fmt.Fprintf(console.writer, sectionTemplateConstant, title)
}

// Info prints a plain line.
func (console *Console) Info(format string, arguments ...any) {
	fmt.Fprintf(console.writer, infoTemplateConstant, fmt.Sprintf(format, arguments...))
}

// Warning prints an advisory line.
func (console *Console) Warning(format string, arguments ...any) {
	fmt.Fprintf(console.writer, warningTemplateConstant, fmt.Sprintf(format, arguments...))
}

// Error prints a failure cause and, when known, the command that fixes it.
func (console *Console) Error(message string, remediation string) {
	fmt.Fprintf(console.writer, errorTemplateConstant, message)
	if len(strings.TrimSpace(remediation)) > 0 {
		fmt.Fprintf(console.writer, remediationTemplateConstant, remediation)
	}
}

// ProposedCommand shows the literal text of a command awaiting approval.
func (console *Console) ProposedCommand(commandText string) {
	fmt.Fprintf(console.writer, proposedCommandTemplate, commandText)
}

// SkippedCommand records a declined command.
func (console *Console) SkippedCommand(commandText string) {
	fmt.Fprintf(console.writer, skippedCommandTemplate, commandText)
}

// CommandOutput relays captured process output, indented under the command.
func (console *Console) CommandOutput(output string) {
	trimmedOutput := strings.TrimRight(output, lineSeparatorConstant)
	if len(strings.TrimSpace(trimmedOutput)) == 0 {
		return
	}
	for _, line := range strings.Split(trimmedOutput, lineSeparatorConstant) {
		fmt.Fprint(console.writer, indentedOutputPrefixConstant+line+lineSeparatorConstant)
	}
}

// CommandFailed surfaces a non-zero exit code verbatim.
func (console *Console) CommandFailed(commandText string, exitCode int) {
	fmt.Fprintf(console.writer, exitCodeTemplateConstant, exitCode, commandText)
}

// Check prints the explicit pass/fail line of a verification check.
func (console *Console) Check(name string, passed bool, detail string) {
	if passed {
		fmt.Fprintf(console.writer, checkPassedTemplateConstant, name, detail)
		return
	}
	fmt.Fprintf(console.writer, checkFailedTemplateConstant, name, detail)
}
