package workflow

import (
	"context"
	"fmt"

	"github.com/temirov/branchflow/internal/prompt"
)

const (
	developSectionTitleConstant     = "Develop"
	developQuestionTemplateConstant = "Make your changes on %s. Ready to commit and push them?"
	developPausedTemplateConstant   = "Paused. Run branchflow again and resume %s when the changes are ready."
	mergeSectionTitleConstant       = "Review and merge"
	mergeQuestionConstant           = "Has the change been merged on the hosting platform?"
	mergePausedTemplateConstant     = "Paused. Run branchflow again and resume %s after the merge."
	checkpointErrorTemplateConstant = "unable to read checkpoint answer: %w"
)

// DevelopOperation is a checkpoint with no repository action; declining pauses the run.
type DevelopOperation struct{}

// Stage identifies the operation.
func (operation *DevelopOperation) Stage() Stage {
	return StageDevelop
}

// Execute asks whether development is finished.
func (operation *DevelopOperation) Execute(executionContext context.Context, environment *Environment, state *State) (StageResult, error) {
	environment.Console.Section(developSectionTitleConstant)
	return checkpoint(environment, prompt.Question{
		Key:        QuestionKeyDevelopmentDone,
		Text:       fmt.Sprintf(developQuestionTemplateConstant, state.BranchName),
		DefaultYes: true,
	}, developPausedTemplateConstant, state.BranchName)
}

// AwaitExternalMergeOperation waits for the human confirmation that the change was merged elsewhere.
type AwaitExternalMergeOperation struct{}

// Stage identifies the operation.
func (operation *AwaitExternalMergeOperation) Stage() Stage {
	return StageAwaitExternalMerge
}

// Execute prints the compare link and asks whether the merge happened.
func (operation *AwaitExternalMergeOperation) Execute(executionContext context.Context, environment *Environment, state *State) (StageResult, error) {
	environment.Console.Section(mergeSectionTitleConstant)
	printCompareLink(environment, state)
	return checkpoint(environment, prompt.Question{
		Key:  QuestionKeyMergeConfirmed,
		Text: mergeQuestionConstant,
	}, mergePausedTemplateConstant, state.BranchName)
}

func checkpoint(environment *Environment, question prompt.Question, pausedTemplate string, branchName string) (StageResult, error) {
	confirmed, confirmError := environment.Prompter.Confirm(question)
	if confirmError != nil {
		return StageResultContinue, fmt.Errorf(checkpointErrorTemplateConstant, confirmError)
	}
	if !confirmed {
		environment.Console.Info(pausedTemplate, branchName)
		return StageResultPause, nil
	}
	return StageResultContinue, nil
}
