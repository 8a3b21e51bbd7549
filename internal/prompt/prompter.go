package prompt

import (
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Mode selects the prompter implementation.
type Mode string

// Supported prompter modes.
const (
	ModeAuto Mode = "auto"
	ModeLine Mode = "line"
	ModeForm Mode = "form"
)

// Option is one selectable answer of a choice question.
type Option struct {
	Key   string
	Label string
}

// Question describes a single prompt. Key is stable across runs and identifies
// the prompt independently of its wording.
type Question struct {
	Key          string
	Text         string
	DefaultYes   bool
	DefaultValue string
	Options      []Option
}

// Prompter asks the user questions and returns typed answers.
type Prompter interface {
	Confirm(question Question) (bool, error)
	Input(question Question) (string, error)
	Choose(question Question) (string, error)
}

// ParseMode converts a configuration value into a Mode, defaulting to ModeAuto.
func ParseMode(raw string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeLine:
		return ModeLine
	case ModeForm:
		return ModeForm
	default:
		return ModeAuto
	}
}

// NewPrompter builds the prompter for mode. ModeAuto selects forms only when
// both streams are terminals.
func NewPrompter(mode Mode, input io.Reader, output io.Writer) Prompter {
	switch mode {
	case ModeForm:
		return NewFormPrompter()
	case ModeLine:
		return NewLinePrompter(input, output)
	default:
		if isTerminal(input) && isTerminal(output) {
			return NewFormPrompter()
		}
		return NewLinePrompter(input, output)
	}
}

func isTerminal(stream any) bool {
	file, isFile := stream.(*os.File)
	if !isFile || file == nil {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
