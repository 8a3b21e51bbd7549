package prompt_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/branchflow/internal/prompt"
)

func TestParseMode(testInstance *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected prompt.Mode
	}{
		{name: "line", raw: "line", expected: prompt.ModeLine},
		{name: "form_mixed_case", raw: " Form ", expected: prompt.ModeForm},
		{name: "auto", raw: "auto", expected: prompt.ModeAuto},
		{name: "empty", raw: "", expected: prompt.ModeAuto},
		{name: "unknown", raw: "gui", expected: prompt.ModeAuto},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, prompt.ParseMode(testCase.raw))
		})
	}
}

func TestNewPrompterSelectsImplementation(testInstance *testing.T) {
	testCases := []struct {
		name         string
		mode         prompt.Mode
		expectedType any
	}{
		{name: "auto_without_terminal", mode: prompt.ModeAuto, expectedType: &prompt.LinePrompter{}},
		{name: "line", mode: prompt.ModeLine, expectedType: &prompt.LinePrompter{}},
		{name: "form", mode: prompt.ModeForm, expectedType: &prompt.FormPrompter{}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			prompter := prompt.NewPrompter(testCase.mode, &bytes.Buffer{}, &bytes.Buffer{})
			require.IsType(testInstance, testCase.expectedType, prompter)
		})
	}
}
