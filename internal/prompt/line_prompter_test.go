package prompt_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/branchflow/internal/prompt"
)

func TestLinePrompterConfirm(testInstance *testing.T) {
	testCases := []struct {
		name       string
		input      string
		defaultYes bool
		expected   bool
		prompt     string
	}{
		{name: "explicit_yes", input: "y\n", expected: true, prompt: "Proceed? [y/N]: "},
		{name: "explicit_no_with_default_yes", input: "no\n", defaultYes: true, expected: false, prompt: "Proceed? [Y/n]: "},
		{name: "blank_uses_default_yes", input: "\n", defaultYes: true, expected: true, prompt: "Proceed? [Y/n]: "},
		{name: "blank_uses_default_no", input: "\n", expected: false, prompt: "Proceed? [y/N]: "},
		{name: "answer_without_newline", input: "YES", expected: true, prompt: "Proceed? [y/N]: "},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			var output bytes.Buffer
			prompter := prompt.NewLinePrompter(strings.NewReader(testCase.input), &output)

			confirmed, confirmError := prompter.Confirm(prompt.Question{Text: "Proceed?", DefaultYes: testCase.defaultYes})
			require.NoError(testInstance, confirmError)
			require.Equal(testInstance, testCase.expected, confirmed)
			require.Equal(testInstance, testCase.prompt, output.String())
		})
	}
}

func TestLinePrompterConfirmRepromptsOnUnrecognizedAnswer(testInstance *testing.T) {
	var output bytes.Buffer
	prompter := prompt.NewLinePrompter(strings.NewReader("maybe\ny\n"), &output)

	confirmed, confirmError := prompter.Confirm(prompt.Question{Text: "Proceed?"})
	require.NoError(testInstance, confirmError)
	require.True(testInstance, confirmed)
	require.Contains(testInstance, output.String(), "Please answer y or n.")
}

func TestLinePrompterReportsClosedInput(testInstance *testing.T) {
	prompter := prompt.NewLinePrompter(strings.NewReader(""), nil)

	_, confirmError := prompter.Confirm(prompt.Question{Text: "Proceed?"})
	require.ErrorIs(testInstance, confirmError, prompt.ErrInputClosed)

	_, inputError := prompter.Input(prompt.Question{Text: "Branch name"})
	require.ErrorIs(testInstance, inputError, prompt.ErrInputClosed)
}

func TestLinePrompterInput(testInstance *testing.T) {
	var output bytes.Buffer
	prompter := prompt.NewLinePrompter(strings.NewReader("  feature/x\r\n\n"), &output)

	answer, inputError := prompter.Input(prompt.Question{Text: "Branch name"})
	require.NoError(testInstance, inputError)
	require.Equal(testInstance, "  feature/x\r", answer)

	answer, inputError = prompter.Input(prompt.Question{Text: "Commit message", DefaultValue: "update"})
	require.NoError(testInstance, inputError)
	require.Equal(testInstance, "update", answer)
	require.Equal(testInstance, "Branch name: Commit message [update]: ", output.String())
}

func TestLinePrompterChoose(testInstance *testing.T) {
	options := []prompt.Option{{Key: "create", Label: "Create a new branch"}, {Key: "resume", Label: "Resume an existing branch"}}

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "by_number", input: "2\n", expected: "resume"},
		{name: "by_key", input: "CREATE\n", expected: "create"},
		{name: "default", input: "\n", expected: "create"},
		{name: "retry_after_out_of_range", input: "7\n1\n", expected: "create"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			var output bytes.Buffer
			prompter := prompt.NewLinePrompter(strings.NewReader(testCase.input), &output)

			selected, chooseError := prompter.Choose(prompt.Question{Text: "Branch", Options: options, DefaultValue: "create"})
			require.NoError(testInstance, chooseError)
			require.Equal(testInstance, testCase.expected, selected)
			require.True(testInstance, strings.HasPrefix(output.String(), "  1) Create a new branch\n  2) Resume an existing branch\n"))
		})
	}
}
