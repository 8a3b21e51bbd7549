package workflow

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/branchflow/internal/gitclient"
	"github.com/temirov/branchflow/internal/prompt"
)

const (
	publishSectionTitleConstant    = "Commit and push"
	commitMessageQuestionConstant  = "Commit message"
	compareLinkMessageTemplate     = "Open a pull request: %s"
	compareLinkUnavailableTemplate = "No compare link for remote %s: %v"
	upstreamErrorTemplateConstant  = "unable to determine upstream: %w"
	commitMessageErrorTemplate     = "unable to read commit message: %w"
	defaultCommitMessageConstant   = "update"
	offBranchPushWarningTemplate   = "The switch to %s was skipped, so this push publishes the current branch instead. It defaults to no."
	logMessageCompareLinkConstant  = "compare link derived"
	logFieldLinkConstant           = "link"
)

// CommitAndPushOperation stages, commits and publishes the branch.
type CommitAndPushOperation struct{}

// Stage identifies the operation.
func (operation *CommitAndPushOperation) Stage() Stage {
	return StageCommitAndPush
}

// Execute stages everything, shows status, commits with the entered message and pushes.
// The first push sets the upstream; later pushes are plain.
func (operation *CommitAndPushOperation) Execute(executionContext context.Context, environment *Environment, state *State) (StageResult, error) {
	options := environment.Options
	environment.Console.Section(publishSectionTitleConstant)

	for _, command := range []gitclient.Command{gitclient.AddAll(), gitclient.Status()} {
		if _, executeError := environment.Gate.Execute(executionContext, command, true); executeError != nil {
			return StageResultContinue, executeError
		}
	}

	defaultMessage := options.DefaultCommitMessage
	if len(strings.TrimSpace(defaultMessage)) == 0 {
		defaultMessage = defaultCommitMessageConstant
	}
	message, inputError := environment.Prompter.Input(prompt.Question{
		Key:          QuestionKeyCommitMessage,
		Text:         commitMessageQuestionConstant,
		DefaultValue: defaultMessage,
	})
	if inputError != nil {
		return StageResultContinue, fmt.Errorf(commitMessageErrorTemplate, inputError)
	}
	message = strings.TrimSpace(message)
	if len(message) == 0 {
		message = defaultMessage
	}
	if _, commitError := environment.Gate.Execute(executionContext, gitclient.Commit(message), true); commitError != nil {
		return StageResultContinue, commitError
	}

	hasUpstream, upstreamError := environment.Client.HasUpstream(executionContext)
	if upstreamError != nil {
		return StageResultContinue, fmt.Errorf(upstreamErrorTemplateConstant, upstreamError)
	}
	push := gitclient.Push()
	if !hasUpstream {
		push = gitclient.PushSetUpstream(options.RemoteName, state.BranchName)
	}
	pushed, pushError := environment.Gate.Execute(executionContext, push, pushDefault(environment, state))
	if pushError != nil {
		return StageResultContinue, pushError
	}
	if pushed.Succeeded() {
		printCompareLink(environment, state)
	}
	return StageResultContinue, nil
}

// pushDefault approves pushes by default only after the run switched to the working branch.
func pushDefault(environment *Environment, state *State) bool {
	if state.OnWorkingBranch {
		return true
	}
	environment.Console.Warning(offBranchPushWarningTemplate, state.BranchName)
	return false
}

// printCompareLink shows the pull-request link for HTTPS remotes and a warning otherwise.
func printCompareLink(environment *Environment, state *State) {
	if len(state.BranchName) == 0 {
		return
	}
	link, linkError := environment.LinkDeriver.CompareURL(state.RemoteURL, state.BranchName)
	if linkError != nil {
		environment.Console.Warning(compareLinkUnavailableTemplate, environment.Options.RemoteName, linkError)
		return
	}
	environment.Console.Info(compareLinkMessageTemplate, link)
	environment.Logger.Debug(logMessageCompareLinkConstant, zap.String(logFieldLinkConstant, link))
}
