package workflow

import (
	"context"
	"fmt"

	"github.com/temirov/branchflow/internal/gitclient"
	"github.com/temirov/branchflow/internal/prompt"
)

const (
	rebaseSectionTitleConstant     = "Rebase before review"
	rebaseQuestionTemplateConstant = "Rebase %s onto %s before review?"
	rebasePausedTemplateConstant   = "Paused. Run branchflow again and resume %s to rebase and request review."
)

// RebaseBeforeReviewOperation rebases the branch and republishes it with a lease-protected force push.
type RebaseBeforeReviewOperation struct{}

// Stage identifies the operation.
func (operation *RebaseBeforeReviewOperation) Stage() Stage {
	return StageRebaseBeforeReview
}

// Execute confirms the rebase, runs RebaseFlow and offers git push --force-with-lease.
func (operation *RebaseBeforeReviewOperation) Execute(executionContext context.Context, environment *Environment, state *State) (StageResult, error) {
	options := environment.Options
	environment.Console.Section(rebaseSectionTitleConstant)

	result, checkpointError := checkpoint(environment, prompt.Question{
		Key:        QuestionKeyRebaseStart,
		Text:       fmt.Sprintf(rebaseQuestionTemplateConstant, state.BranchName, gitclient.RemoteTrackingName(options.RemoteName, options.MainBranch)),
		DefaultYes: true,
	}, rebasePausedTemplateConstant, state.BranchName)
	if checkpointError != nil || result == StageResultPause {
		return result, checkpointError
	}

	if flowError := (RebaseFlow{}).Run(executionContext, environment); flowError != nil {
		return StageResultContinue, flowError
	}
	if _, pushError := environment.Gate.Execute(executionContext, gitclient.PushForceWithLease(), pushDefault(environment, state)); pushError != nil {
		return StageResultContinue, pushError
	}
	return StageResultContinue, nil
}
