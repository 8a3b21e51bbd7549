package workflow

import (
	"context"
	"fmt"

	"github.com/temirov/branchflow/internal/gitclient"
)

const (
	syncMainSectionTitleConstant   = "Sync %s"
	resyncMainSectionTitleConstant = "Resync %s"
	fastForwardFailedTemplate      = "Fast-forward of %s failed and was left as-is. Reconcile it manually, for example with git pull --ff-only %s %s."
)

// SyncMainOperation brings the local main branch up to date before work starts.
// The working tree must be clean before the run proceeds to branch selection.
type SyncMainOperation struct{}

// Stage identifies the operation.
func (operation *SyncMainOperation) Stage() Stage {
	return StageSyncMain
}

// Execute switches to main, enforces a clean tree, fetches and fast-forwards.
func (operation *SyncMainOperation) Execute(executionContext context.Context, environment *Environment, state *State) (StageResult, error) {
	options := environment.Options
	environment.Console.Section(fmt.Sprintf(syncMainSectionTitleConstant, options.MainBranch))

	if _, switchError := environment.Gate.Execute(executionContext, gitclient.SwitchBranch(options.MainBranch), true); switchError != nil {
		return StageResultContinue, switchError
	}
	if cleanError := environment.Preflight.EnsureCleanWorkingTree(executionContext); cleanError != nil {
		return StageResultContinue, cleanError
	}
	return StageResultContinue, fastForwardMain(executionContext, environment, gitclient.Fetch(options.RemoteName))
}

// ResyncMainOperation pulls the merged change into the local main branch.
type ResyncMainOperation struct{}

// Stage identifies the operation.
func (operation *ResyncMainOperation) Stage() Stage {
	return StageResyncMain
}

// Execute switches to main, fetches with pruning and fast-forwards.
func (operation *ResyncMainOperation) Execute(executionContext context.Context, environment *Environment, state *State) (StageResult, error) {
	options := environment.Options
	environment.Console.Section(fmt.Sprintf(resyncMainSectionTitleConstant, options.MainBranch))

	if _, switchError := environment.Gate.Execute(executionContext, gitclient.SwitchBranch(options.MainBranch), true); switchError != nil {
		return StageResultContinue, switchError
	}
	return StageResultContinue, fastForwardMain(executionContext, environment, gitclient.FetchPrune(options.RemoteName))
}

// fastForwardMain fetches and pulls main; a failed fast-forward is reported, not resolved.
func fastForwardMain(executionContext context.Context, environment *Environment, fetch gitclient.Command) error {
	options := environment.Options
	if _, fetchError := environment.Gate.Execute(executionContext, fetch, true); fetchError != nil {
		return fetchError
	}
	pulled, pullError := environment.Gate.Execute(executionContext, gitclient.PullFastForward(options.RemoteName, options.MainBranch), true)
	if pullError != nil {
		return pullError
	}
	if pulled.Failed() {
		environment.Console.Warning(fastForwardFailedTemplate, options.MainBranch, options.RemoteName, options.MainBranch)
	}
	return nil
}
