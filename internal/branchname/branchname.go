package branchname

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/branchflow/internal/prompt"
	"github.com/temirov/branchflow/internal/ui"
)

const (
	carriageReturnConstant            = "\r"
	emptyBranchNameDiagnosticConstant = "branch name must not be empty"
	invalidBranchNameTemplateConstant = "%q is not a valid branch name: %s"
	validationErrorTemplateConstant   = "unable to validate branch name %q: %w"
	requestErrorTemplateConstant      = "unable to read branch name: %w"
	namingGuidanceConstant            = "Branch names cannot contain spaces, '..', '~', '^', ':' or '\\', cannot start or end with '/', and cannot end with '.lock'. Lowercase names such as feature/short-description are recommended."
)

var (
	// ErrCheckerNotConfigured indicates that no reference-name checker was supplied.
	ErrCheckerNotConfigured = errors.New("branchname: reference name checker not configured")
	// ErrPrompterNotConfigured indicates that no prompter was supplied.
	ErrPrompterNotConfigured = errors.New("branchname: prompter not configured")
	// ErrConsoleNotConfigured indicates that no console was supplied.
	ErrConsoleNotConfigured = errors.New("branchname: console not configured")
)

// ReferenceNameChecker applies the version-control reference-name grammar.
type ReferenceNameChecker interface {
	CheckBranchName(executionContext context.Context, branchName string) (bool, string, error)
}

// BranchName pairs the raw user input with its normalized form and validity.
type BranchName struct {
	Raw        string
	Normalized string
	Valid      bool
	Diagnostic string
}

// Normalize removes every carriage return and trims surrounding whitespace.
func Normalize(raw string) string {
	return strings.TrimSpace(strings.ReplaceAll(raw, carriageReturnConstant, ""))
}

// Validator normalizes and validates branch names.
type Validator struct {
	checker ReferenceNameChecker
}

// NewValidator constructs a Validator.
func NewValidator(checker ReferenceNameChecker) (*Validator, error) {
	if checker == nil {
		return nil, ErrCheckerNotConfigured
	}
	return &Validator{checker: checker}, nil
}

// Validate normalizes raw input and checks the result. Only a failure to run the check is an error.
func (validator *Validator) Validate(executionContext context.Context, raw string) (BranchName, error) {
	name := BranchName{Raw: raw, Normalized: Normalize(raw)}
	if len(name.Normalized) == 0 {
		name.Diagnostic = emptyBranchNameDiagnosticConstant
		return name, nil
	}

	valid, diagnostic, checkError := validator.checker.CheckBranchName(executionContext, name.Normalized)
	if checkError != nil {
		return name, fmt.Errorf(validationErrorTemplateConstant, name.Normalized, checkError)
	}
	name.Valid = valid
	name.Diagnostic = strings.TrimSpace(diagnostic)
	return name, nil
}

// Requester asks for a branch name until a valid one is entered.
type Requester struct {
	validator *Validator
	prompter  prompt.Prompter
	console   *ui.Console
}

// NewRequester constructs a Requester.
func NewRequester(validator *Validator, prompter prompt.Prompter, console *ui.Console) (*Requester, error) {
	if validator == nil {
		return nil, ErrCheckerNotConfigured
	}
	if prompter == nil {
		return nil, ErrPrompterNotConfigured
	}
	if console == nil {
		return nil, ErrConsoleNotConfigured
	}
	return &Requester{validator: validator, prompter: prompter, console: console}, nil
}

// Request prompts with the question until the answer normalizes to a valid branch name.
func (requester *Requester) Request(executionContext context.Context, question prompt.Question) (BranchName, error) {
	for {
		raw, inputError := requester.prompter.Input(question)
		if inputError != nil {
			return BranchName{}, fmt.Errorf(requestErrorTemplateConstant, inputError)
		}

		name, validationError := requester.validator.Validate(executionContext, raw)
		if validationError != nil {
			return BranchName{}, validationError
		}
		if name.Valid {
			return name, nil
		}

		requester.console.Warning(invalidBranchNameTemplateConstant, name.Normalized, name.Diagnostic)
		requester.console.Info(namingGuidanceConstant)
	}
}
