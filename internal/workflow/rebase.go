package workflow

import (
	"context"

	"github.com/temirov/branchflow/internal/gitclient"
)

const (
	rebaseCompletedTemplateConstant = "Rebase onto %s completed."
	rebaseConflictMessageConstant   = "Rebase stopped on conflicts. Nothing is resolved automatically: fix the files in another terminal and stage them with git add before continuing."
	rebaseContinuedMessageConstant  = "Rebase continued."
	rebaseUnfinishedMessageConstant = "The rebase may still be in progress; final verification reports whether the branch was integrated."
)

// RebaseFlow fetches and rebases the current branch onto the remote main branch.
// Conflicts are reported and one continue is offered; the flow never fails on them.
type RebaseFlow struct{}

// Run executes the flow. Only prompt or process launch failures are returned.
func (flow RebaseFlow) Run(executionContext context.Context, environment *Environment) error {
	options := environment.Options
	if _, fetchError := environment.Gate.Execute(executionContext, gitclient.Fetch(options.RemoteName), true); fetchError != nil {
		return fetchError
	}

	ontoReference := gitclient.RemoteTrackingName(options.RemoteName, options.MainBranch)
	rebased, rebaseError := environment.Gate.Execute(executionContext, gitclient.Rebase(ontoReference), true)
	if rebaseError != nil {
		return rebaseError
	}
	if !rebased.Approved {
		return nil
	}
	if rebased.ExitCode == 0 {
		environment.Console.Info(rebaseCompletedTemplateConstant, ontoReference)
		return nil
	}

	environment.Console.Warning(rebaseConflictMessageConstant)
	if _, statusError := environment.Gate.Execute(executionContext, gitclient.Status(), true); statusError != nil {
		return statusError
	}
	continued, continueError := environment.Gate.Execute(executionContext, gitclient.RebaseContinue(), false)
	if continueError != nil {
		return continueError
	}
	if continued.Succeeded() {
		environment.Console.Info(rebaseContinuedMessageConstant)
		return nil
	}
	environment.Console.Warning(rebaseUnfinishedMessageConstant)
	return nil
}
