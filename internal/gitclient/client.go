package gitclient

import (
	"context"
	"fmt"

	"github.com/temirov/branchflow/internal/execshell"
)

const (
	localBranchReferenceTemplateConstant  = "refs/heads/%s"
	remoteBranchReferenceTemplateConstant = "refs/remotes/%s/%s"
	remoteTrackingNameTemplateConstant    = "%s/%s"
	operationNoneLabelConstant            = "none"
	operationMergeLabelConstant           = "merge"
	operationRebaseLabelConstant          = "rebase"
)

// Operation identifies a multi-step git operation left in progress.
type Operation int

const (
	// OperationNone means no merge or rebase is in progress.
	OperationNone Operation = iota
	// OperationMerge means a merge stopped before completion.
	OperationMerge
	// OperationRebase means a rebase stopped before completion.
	OperationRebase
)

// String returns a lowercase label for the operation.
func (operation Operation) String() string {
	switch operation {
	case OperationMerge:
		return operationMergeLabelConstant
	case OperationRebase:
		return operationRebaseLabelConstant
	default:
		return operationNoneLabelConstant
	}
}

// Client is the version-control capability consumed by the workflow components.
type Client interface {
	// Run executes a mutation and reports its exit status; a non-zero exit is not an error.
	Run(executionContext context.Context, command Command) (execshell.ExecutionResult, error)
	IsRepositoryRoot(executionContext context.Context) (bool, error)
	// RemoteURL reports the configured URL and whether the remote exists.
	RemoteURL(executionContext context.Context, remoteName string) (string, bool, error)
	InProgressOperation(executionContext context.Context) (Operation, error)
	UnstagedDiffEmpty(executionContext context.Context) (bool, error)
	StagedDiffEmpty(executionContext context.Context) (bool, error)
	ReferencesDiffEmpty(executionContext context.Context, fromReference string, toReference string) (bool, error)
	// LeftRightCount returns the raw output of a symmetric left/right commit count.
	LeftRightCount(executionContext context.Context, leftReference string, rightReference string) (string, error)
	// Cherry returns the raw patch-equivalence listing of head against upstream.
	Cherry(executionContext context.Context, upstreamReference string, headReference string) (string, error)
	// CheckBranchName applies the reference-name grammar and returns any diagnostic text.
	CheckBranchName(executionContext context.Context, branchName string) (bool, string, error)
	ReferenceExists(executionContext context.Context, reference string) (bool, error)
	IsAncestor(executionContext context.Context, ancestorReference string, descendantReference string) (bool, error)
	HasUpstream(executionContext context.Context) (bool, error)
}

// WorkingTreeClean reports whether both the unstaged and the staged diffs are empty.
func WorkingTreeClean(executionContext context.Context, client Client) (bool, error) {
	unstagedEmpty, unstagedError := client.UnstagedDiffEmpty(executionContext)
	if unstagedError != nil {
		return false, unstagedError
	}
	if !unstagedEmpty {
		return false, nil
	}
	return client.StagedDiffEmpty(executionContext)
}

// LocalBranchReference returns the fully qualified name of a local branch.
func LocalBranchReference(branchName string) string {
	return fmt.Sprintf(localBranchReferenceTemplateConstant, branchName)
}

// RemoteBranchReference returns the fully qualified remote-tracking reference of a branch.
func RemoteBranchReference(remoteName string, branchName string) string {
	return fmt.Sprintf(remoteBranchReferenceTemplateConstant, remoteName, branchName)
}

// RemoteTrackingName returns the short remote-tracking name, such as origin/main.
func RemoteTrackingName(remoteName string, branchName string) string {
	return fmt.Sprintf(remoteTrackingNameTemplateConstant, remoteName, branchName)
}
