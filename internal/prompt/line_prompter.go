package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	confirmDefaultYesSuffixConstant = " [Y/n]: "
	confirmDefaultNoSuffixConstant  = " [y/N]: "
	inputDefaultSuffixTemplate      = " [%s]: "
	inputSuffixConstant             = ": "
	optionLineTemplateConstant      = "  %d) %s\n"
	unrecognizedAnswerMessage       = "Please answer y or n.\n"
	unrecognizedChoiceMessage       = "Please pick one of the listed options.\n"
	inputClosedMessageConstant      = "input closed before an answer was given"
	lineTerminatorConstant          = "\n"
)

// ErrInputClosed indicates the input stream ended while a question was pending.
var ErrInputClosed = errors.New(inputClosedMessageConstant)

// LinePrompter reads answers line by line from an io.Reader.
type LinePrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewLinePrompter constructs a prompter from the provided reader and writer.
func NewLinePrompter(input io.Reader, output io.Writer) *LinePrompter {
	if output == nil {
		output = io.Discard
	}
	return &LinePrompter{reader: bufio.NewReader(input), writer: output}
}

// Confirm asks a yes/no question; an empty answer selects the default.
func (prompter *LinePrompter) Confirm(question Question) (bool, error) {
	suffix := confirmDefaultNoSuffixConstant
	if question.DefaultYes {
		suffix = confirmDefaultYesSuffixConstant
	}

	for {
		response, readError := prompter.ask(question.Text + suffix)
		if readError != nil {
			return false, readError
		}

		switch strings.ToLower(strings.TrimSpace(response)) {
		case "":
			return question.DefaultYes, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		default:
			io.WriteString(prompter.writer, unrecognizedAnswerMessage)
		}
	}
}

// Input asks for free text. The answer is returned without its line terminator
// and otherwise unmodified; a blank answer selects DefaultValue.
func (prompter *LinePrompter) Input(question Question) (string, error) {
	suffix := inputSuffixConstant
	if len(question.DefaultValue) > 0 {
		suffix = fmt.Sprintf(inputDefaultSuffixTemplate, question.DefaultValue)
	}

	response, readError := prompter.ask(question.Text + suffix)
	if readError != nil {
		return "", readError
	}
	if len(strings.TrimSpace(response)) == 0 {
		return question.DefaultValue, nil
	}
	return response, nil
}

// Choose lists the options and accepts either an option number or key.
func (prompter *LinePrompter) Choose(question Question) (string, error) {
	for optionIndex, option := range question.Options {
		fmt.Fprintf(prompter.writer, optionLineTemplateConstant, optionIndex+1, option.Label)
	}

	for {
		answer, inputError := prompter.Input(Question{Text: question.Text, DefaultValue: question.DefaultValue})
		if inputError != nil {
			return "", inputError
		}

		if selected, matched := matchOption(question.Options, strings.TrimSpace(answer)); matched {
			return selected, nil
		}
		io.WriteString(prompter.writer, unrecognizedChoiceMessage)
	}
}

func (prompter *LinePrompter) ask(text string) (string, error) {
	if _, writeError := io.WriteString(prompter.writer, text); writeError != nil {
		return "", writeError
	}

	response, readError := prompter.reader.ReadString('\n')
	if readError != nil {
		if !errors.Is(readError, io.EOF) {
			return "", readError
		}
		if len(response) == 0 {
			return "", ErrInputClosed
		}
	}

	return strings.TrimSuffix(response, lineTerminatorConstant), nil
}

func matchOption(options []Option, answer string) (string, bool) {
	if optionNumber, parseError := strconv.Atoi(answer); parseError == nil {
		if optionNumber >= 1 && optionNumber <= len(options) {
			return options[optionNumber-1].Key, true
		}
		return "", false
	}
	for _, option := range options {
		if strings.EqualFold(option.Key, answer) {
			return option.Key, true
		}
	}
	return "", false
}
