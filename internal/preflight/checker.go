package preflight

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/branchflow/internal/gate"
	"github.com/temirov/branchflow/internal/gitclient"
	"github.com/temirov/branchflow/internal/prompt"
	"github.com/temirov/branchflow/internal/ui"
)

const (
	// QuestionKeyAbortInProgress identifies the confirmation to abort an unfinished merge or rebase.
	QuestionKeyAbortInProgress = "preflight.abort_in_progress"
	// QuestionKeyCommitAll identifies the confirmation to commit every local change.
	QuestionKeyCommitAll = "preflight.commit_all"
	// QuestionKeyCommitMessage identifies the commit message input of the commit remediation.
	QuestionKeyCommitMessage = "preflight.commit_message"

	defaultRemoteNameConstant                = "origin"
	defaultRemediationCommitMessageConstant  = "chore: save local changes"
	notRepositoryRootReasonConstant          = "the current directory is not the root of a git working copy"
	notRepositoryRootRemediationConstant     = "cd \"$(git rev-parse --show-toplevel)\""
	inProgressQuestionTemplateConstant       = "A %s is in progress. Abort it with git merge --abort and git rebase --abort?"
	inProgressReasonTemplateConstant         = "a %s is in progress"
	inProgressRemediationConstant            = "git merge --abort || git rebase --abort"
	missingRemoteReasonTemplateConstant      = "remote %q is not configured"
	missingRemoteRemediationTemplateConstant = "git remote add %s <url>"
	dirtyTreeWarningConstant                 = "The working tree has uncommitted changes."
	dirtyTreeOptionsConstant                 = "Choose a remediation: stash the changes, discard them with a hard reset, or commit everything."
	commitAllQuestionConstant                = "Commit all changes now?"
	commitMessageQuestionConstant            = "Commit message"
	dirtyTreeDeclinedReasonConstant          = "the working tree has uncommitted changes and no remediation was accepted"
	dirtyTreeRemainingReasonConstant         = "the working tree is still not clean after remediation"
	dirtyTreeRemediationConstant             = "git stash push --include-untracked"
	repositoryRootErrorTemplateConstant      = "unable to determine repository root: %w"
	inProgressErrorTemplateConstant          = "unable to detect in-progress operations: %w"
	remoteErrorTemplateConstant              = "unable to read remote %s: %w"
	workingTreeErrorTemplateConstant         = "unable to inspect working tree: %w"
	promptErrorTemplateConstant              = "unable to read answer: %w"
	logMessagePreconditionFailedConstant     = "precondition failed"
	logMessageRemediationAppliedConstant     = "working tree remediation applied"
	logFieldReasonConstant                   = "reason"
	logFieldRemediationConstant              = "remediation"
	remediationLabelStashConstant            = "stash"
	remediationLabelResetConstant            = "reset"
	remediationLabelCommitConstant           = "commit"
)

var (
	// ErrClientNotConfigured indicates that no git client was supplied.
	ErrClientNotConfigured = errors.New("preflight: git client not configured")
	// ErrGateNotConfigured indicates that no command gate was supplied.
	ErrGateNotConfigured = errors.New("preflight: command gate not configured")
	// ErrPrompterNotConfigured indicates that no prompter was supplied.
	ErrPrompterNotConfigured = errors.New("preflight: prompter not configured")
	// ErrConsoleNotConfigured indicates that no console was supplied.
	ErrConsoleNotConfigured = errors.New("preflight: console not configured")
)

// Dependencies enumerates collaborators required by the checker.
type Dependencies struct {
	Client   gitclient.Client
	Gate     *gate.Gate
	Prompter prompt.Prompter
	Console  *ui.Console
	Logger   *zap.Logger
}

// Options configures the checker.
type Options struct {
	RemoteName               string
	RemediationCommitMessage string
}

// Checker verifies repository preconditions.
type Checker struct {
	client   gitclient.Client
	gate     *gate.Gate
	prompter prompt.Prompter
	console  *ui.Console
	logger   *zap.Logger
	options  Options
}

// NewChecker validates dependencies and constructs a Checker.
func NewChecker(dependencies Dependencies, options Options) (*Checker, error) {
	if dependencies.Client == nil {
		return nil, ErrClientNotConfigured
	}
	if dependencies.Gate == nil {
		return nil, ErrGateNotConfigured
	}
	if dependencies.Prompter == nil {
		return nil, ErrPrompterNotConfigured
	}
	if dependencies.Console == nil {
		return nil, ErrConsoleNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(strings.TrimSpace(options.RemoteName)) == 0 {
		options.RemoteName = defaultRemoteNameConstant
	}
	if len(strings.TrimSpace(options.RemediationCommitMessage)) == 0 {
		options.RemediationCommitMessage = defaultRemediationCommitMessageConstant
	}
	return &Checker{
		client:   dependencies.Client,
		gate:     dependencies.Gate,
		prompter: dependencies.Prompter,
		console:  dependencies.Console,
		logger:   logger,
		options:  options,
	}, nil
}

// EnsureRepoRoot requires the working directory to be the top of a working copy.
func (checker *Checker) EnsureRepoRoot(executionContext context.Context) error {
	isRoot, rootError := checker.client.IsRepositoryRoot(executionContext)
	if rootError != nil {
		return fmt.Errorf(repositoryRootErrorTemplateConstant, rootError)
	}
	if !isRoot {
		return checker.fatal(notRepositoryRootReasonConstant, notRepositoryRootRemediationConstant)
	}
	return nil
}

// EnsureNoInProgressOperation offers to abort an unfinished merge or rebase; declining is fatal.
func (checker *Checker) EnsureNoInProgressOperation(executionContext context.Context) error {
	operation, detectionError := checker.client.InProgressOperation(executionContext)
	if detectionError != nil {
		return fmt.Errorf(inProgressErrorTemplateConstant, detectionError)
	}
	if operation == gitclient.OperationNone {
		return nil
	}

	abort, promptError := checker.prompter.Confirm(prompt.Question{
		Key:  QuestionKeyAbortInProgress,
		Text: fmt.Sprintf(inProgressQuestionTemplateConstant, operation),
	})
	if promptError != nil {
		return fmt.Errorf(promptErrorTemplateConstant, promptError)
	}
	if !abort {
		return checker.fatal(fmt.Sprintf(inProgressReasonTemplateConstant, operation), inProgressRemediationConstant)
	}

	// Only one of the two aborts applies; the other exits non-zero and is tolerated.
	for _, abortCommand := range []gitclient.Command{gitclient.MergeAbort(), gitclient.RebaseAbort()} {
		if _, abortError := checker.gate.RunApproved(executionContext, abortCommand); abortError != nil {
			return abortError
		}
	}

	remaining, recheckError := checker.client.InProgressOperation(executionContext)
	if recheckError != nil {
		return fmt.Errorf(inProgressErrorTemplateConstant, recheckError)
	}
	if remaining != gitclient.OperationNone {
		return checker.fatal(fmt.Sprintf(inProgressReasonTemplateConstant, remaining), inProgressRemediationConstant)
	}
	return nil
}

// EnsureOriginRemote requires the configured remote and returns its URL.
func (checker *Checker) EnsureOriginRemote(executionContext context.Context) (string, error) {
	remoteURL, exists, remoteError := checker.client.RemoteURL(executionContext, checker.options.RemoteName)
	if remoteError != nil {
		return "", fmt.Errorf(remoteErrorTemplateConstant, checker.options.RemoteName, remoteError)
	}
	if !exists {
		return "", checker.fatal(
			fmt.Sprintf(missingRemoteReasonTemplateConstant, checker.options.RemoteName),
			fmt.Sprintf(missingRemoteRemediationTemplateConstant, checker.options.RemoteName),
		)
	}
	return remoteURL, nil
}

// EnsureCleanWorkingTree offers stash, hard reset and commit-all in that order when the tree is dirty.
// The first accepted remediation is applied, then cleanliness is checked once more.
func (checker *Checker) EnsureCleanWorkingTree(executionContext context.Context) error {
	clean, inspectionError := gitclient.WorkingTreeClean(executionContext, checker.client)
	if inspectionError != nil {
		return fmt.Errorf(workingTreeErrorTemplateConstant, inspectionError)
	}
	if clean {
		return nil
	}

	checker.console.Warning(dirtyTreeWarningConstant)
	checker.console.Info(dirtyTreeOptionsConstant)

	applied, remediation, remediationError := checker.remediateWorkingTree(executionContext)
	if remediationError != nil {
		return remediationError
	}
	if !applied {
		return checker.fatal(dirtyTreeDeclinedReasonConstant, dirtyTreeRemediationConstant)
	}
	checker.logger.Info(logMessageRemediationAppliedConstant, zap.String(logFieldRemediationConstant, remediation))

	clean, inspectionError = gitclient.WorkingTreeClean(executionContext, checker.client)
	if inspectionError != nil {
		return fmt.Errorf(workingTreeErrorTemplateConstant, inspectionError)
	}
	if !clean {
		return checker.fatal(dirtyTreeRemainingReasonConstant, dirtyTreeRemediationConstant)
	}
	return nil
}

func (checker *Checker) remediateWorkingTree(executionContext context.Context) (bool, string, error) {
	stashed, stashError := checker.gate.Execute(executionContext, gitclient.StashAll(), false)
	if stashError != nil {
		return false, "", stashError
	}
	if stashed.Approved {
		return true, remediationLabelStashConstant, nil
	}

	reset, resetError := checker.gate.Execute(executionContext, gitclient.ResetHard(), false)
	if resetError != nil {
		return false, "", resetError
	}
	if reset.Approved {
		return true, remediationLabelResetConstant, nil
	}

	commitAll, promptError := checker.prompter.Confirm(prompt.Question{Key: QuestionKeyCommitAll, Text: commitAllQuestionConstant})
	if promptError != nil {
		return false, "", fmt.Errorf(promptErrorTemplateConstant, promptError)
	}
	if !commitAll {
		return false, "", nil
	}

	message, inputError := checker.prompter.Input(prompt.Question{
		Key:          QuestionKeyCommitMessage,
		Text:         commitMessageQuestionConstant,
		DefaultValue: checker.options.RemediationCommitMessage,
	})
	if inputError != nil {
		return false, "", fmt.Errorf(promptErrorTemplateConstant, inputError)
	}
	message = strings.TrimSpace(message)
	if len(message) == 0 {
		message = checker.options.RemediationCommitMessage
	}

	for _, commitCommand := range []gitclient.Command{gitclient.AddAll(), gitclient.Commit(message)} {
		if _, runError := checker.gate.RunApproved(executionContext, commitCommand); runError != nil {
			return false, "", runError
		}
	}
	return true, remediationLabelCommitConstant, nil
}

func (checker *Checker) fatal(reason string, remediation string) error {
	checker.console.Error(reason, remediation)
	checker.logger.Warn(logMessagePreconditionFailedConstant, zap.String(logFieldReasonConstant, reason), zap.String(logFieldRemediationConstant, remediation))
	return FatalPreconditionError{Reason: reason, Remediation: remediation}
}
