package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/temirov/branchflow/internal/gitclient"
	"github.com/temirov/branchflow/internal/prompt"
)

const (
	obtainBranchSectionTitleConstant  = "Branch"
	branchModeQuestionConstant        = "Start a new branch or resume an existing one?"
	branchModeCreateLabelConstant     = "create a new branch from %s"
	branchModeResumeLabelConstant     = "resume an existing branch"
	branchNameQuestionConstant        = "Branch name"
	branchExistsMessageTemplate       = "Branch %s already exists; switching to it instead of creating it."
	branchSwitchDeclinedTemplate      = "Switch to %s skipped; the following stages run on the current branch."
	branchUnavailableTemplateConstant = "%w: %s exited with code %d"
	branchModeErrorTemplateConstant   = "unable to choose branch mode: %w"
	branchLookupErrorTemplateConstant = "unable to look up branch %s: %w"
)

// ErrBranchUnavailable indicates that the working branch could not be created or switched to.
var ErrBranchUnavailable = errors.New("working branch unavailable")

// ObtainBranchOperation creates a new branch from main or resumes an existing one.
type ObtainBranchOperation struct{}

// Stage identifies the operation.
func (operation *ObtainBranchOperation) Stage() Stage {
	return StageObtainBranch
}

// Execute asks for the mode and a valid name, then switches to the branch.
// Resuming does not check that the branch exists; a failed switch ends the run with ErrBranchUnavailable.
func (operation *ObtainBranchOperation) Execute(executionContext context.Context, environment *Environment, state *State) (StageResult, error) {
	options := environment.Options
	environment.Console.Section(obtainBranchSectionTitleConstant)

	mode, modeError := environment.Prompter.Choose(prompt.Question{
		Key:          QuestionKeyBranchMode,
		Text:         branchModeQuestionConstant,
		DefaultValue: BranchModeCreate,
		Options: []prompt.Option{
			{Key: BranchModeCreate, Label: fmt.Sprintf(branchModeCreateLabelConstant, options.MainBranch)},
			{Key: BranchModeResume, Label: branchModeResumeLabelConstant},
		},
	})
	if modeError != nil {
		return StageResultContinue, fmt.Errorf(branchModeErrorTemplateConstant, modeError)
	}

	name, nameError := environment.BranchRequester.Request(executionContext, prompt.Question{Key: QuestionKeyBranchName, Text: branchNameQuestionConstant})
	if nameError != nil {
		return StageResultContinue, nameError
	}
	state.BranchName = name.Normalized

	command := gitclient.SwitchBranch(state.BranchName)
	if mode != BranchModeResume {
		exists, lookupError := environment.Client.ReferenceExists(executionContext, gitclient.LocalBranchReference(state.BranchName))
		if lookupError != nil {
			return StageResultContinue, fmt.Errorf(branchLookupErrorTemplateConstant, state.BranchName, lookupError)
		}
		if exists {
			environment.Console.Info(branchExistsMessageTemplate, state.BranchName)
		} else {
			command = gitclient.CreateBranch(state.BranchName, options.MainBranch)
		}
	}

	outcome, executeError := environment.Gate.Execute(executionContext, command, true)
	if executeError != nil {
		return StageResultContinue, executeError
	}
	if outcome.Failed() {
		return StageResultContinue, fmt.Errorf(branchUnavailableTemplateConstant, ErrBranchUnavailable, outcome.Text, outcome.ExitCode)
	}
	if !outcome.Approved {
		environment.Console.Warning(branchSwitchDeclinedTemplate, state.BranchName)
		return StageResultContinue, nil
	}
	state.OnWorkingBranch = true
	return StageResultContinue, nil
}
