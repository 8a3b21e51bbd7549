package workflow

import (
	"context"

	"github.com/temirov/branchflow/internal/gitclient"
)

const (
	cleanupSectionTitleConstant = "Cleanup"
	localDeleteRefusedTemplate  = "Local branch %s was not deleted (git refuses to delete branches that are not fully merged). Continuing."
	remoteDeleteRefusedTemplate = "Remote branch %s/%s was not deleted. Continuing."
)

// CleanupOperation deletes the merged branch locally and on the remote.
// Refused deletions are reported and never fail the run.
type CleanupOperation struct{}

// Stage identifies the operation.
func (operation *CleanupOperation) Stage() Stage {
	return StageCleanup
}

// Execute offers both deletions.
func (operation *CleanupOperation) Execute(executionContext context.Context, environment *Environment, state *State) (StageResult, error) {
	options := environment.Options
	environment.Console.Section(cleanupSectionTitleConstant)
	if len(state.BranchName) == 0 {
		return StageResultContinue, nil
	}

	localDeleted, localError := environment.Gate.Execute(executionContext, gitclient.DeleteLocalBranch(state.BranchName), true)
	if localError != nil {
		return StageResultContinue, localError
	}
	if localDeleted.Failed() {
		environment.Console.Warning(localDeleteRefusedTemplate, state.BranchName)
	}

	remoteDeleted, remoteError := environment.Gate.Execute(executionContext, gitclient.DeleteRemoteBranch(options.RemoteName, state.BranchName), true)
	if remoteError != nil {
		return StageResultContinue, remoteError
	}
	if remoteDeleted.Failed() {
		environment.Console.Warning(remoteDeleteRefusedTemplate, options.RemoteName, state.BranchName)
	}
	return StageResultContinue, nil
}
