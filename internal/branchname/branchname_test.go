package branchname_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/branchflow/internal/branchname"
	"github.com/temirov/branchflow/internal/prompt"
	"github.com/temirov/branchflow/internal/testsupport"
	"github.com/temirov/branchflow/internal/ui"
)

const (
	testBranchQuestionKeyConstant = "branch.name"
	testValidBranchNameConstant   = "feature/login"
)

func TestNormalize(testInstance *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected string
	}{
		{name: "plain", raw: "feature/x", expected: "feature/x"},
		{name: "trailing_carriage_return", raw: "feature/x\r", expected: "feature/x"},
		{name: "surrounding_whitespace", raw: "  feature/x\r\n", expected: "feature/x"},
		{name: "embedded_carriage_return", raw: "feat\rure/x", expected: "feature/x"},
		{name: "only_whitespace", raw: " \r\t ", expected: ""},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, branchname.Normalize(testCase.raw))
		})
	}
}

func TestValidatorValidate(testInstance *testing.T) {
	validator, creationError := branchname.NewValidator(testsupport.NewFakeRepository())
	require.NoError(testInstance, creationError)

	testCases := []struct {
		name          string
		raw           string
		expectedValid bool
	}{
		{name: "valid_after_normalization", raw: "  feature/x\r", expectedValid: true},
		{name: "empty", raw: "\r\n", expectedValid: false},
		{name: "contains_space", raw: "feature x", expectedValid: false},
		{name: "double_dot", raw: "feature..x", expectedValid: false},
		{name: "lock_suffix", raw: "feature.lock", expectedValid: false},
		{name: "uppercase_is_valid", raw: "Feature/X", expectedValid: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			name, validationError := validator.Validate(context.Background(), testCase.raw)
			require.NoError(testInstance, validationError)
			require.Equal(testInstance, testCase.raw, name.Raw)
			require.Equal(testInstance, testCase.expectedValid, name.Valid)
			if !testCase.expectedValid {
				require.NotEmpty(testInstance, name.Diagnostic)
			}
		})
	}
}

func TestNewValidatorRequiresChecker(testInstance *testing.T) {
	_, creationError := branchname.NewValidator(nil)
	require.ErrorIs(testInstance, creationError, branchname.ErrCheckerNotConfigured)
}

func TestRequesterRepromptsUntilValid(testInstance *testing.T) {
	validator, creationError := branchname.NewValidator(testsupport.NewFakeRepository())
	require.NoError(testInstance, creationError)

	prompter := testsupport.NewScriptedPrompter().Answer(testBranchQuestionKeyConstant, "", "bad name", testValidBranchNameConstant+"\r")
	output := &bytes.Buffer{}
	requester, requesterError := branchname.NewRequester(validator, prompter, ui.NewConsole(output))
	require.NoError(testInstance, requesterError)

	name, requestError := requester.Request(context.Background(), prompt.Question{Key: testBranchQuestionKeyConstant, Text: "Branch name"})
	require.NoError(testInstance, requestError)
	require.Equal(testInstance, testValidBranchNameConstant, name.Normalized)
	require.True(testInstance, name.Valid)
	require.Len(testInstance, prompter.Asked, 3)
	require.Contains(testInstance, output.String(), "must not be empty")
	require.Contains(testInstance, output.String(), "\"bad name\" is not a valid branch name")
}
