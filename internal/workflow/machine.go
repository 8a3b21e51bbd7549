package workflow

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/branchflow/internal/branchname"
	"github.com/temirov/branchflow/internal/gate"
	"github.com/temirov/branchflow/internal/gitclient"
	"github.com/temirov/branchflow/internal/gitrepo"
	"github.com/temirov/branchflow/internal/preflight"
	"github.com/temirov/branchflow/internal/prompt"
	"github.com/temirov/branchflow/internal/ui"
	"github.com/temirov/branchflow/internal/verify"
)

const (
	defaultMainBranchConstant        = "main"
	defaultRemoteNameConstant        = "origin"
	preflightSectionTitleConstant    = "Preflight"
	summarySectionTitleConstant      = "Summary"
	summaryCompletedTemplateConstant = "Completed stages: %s"
	summaryNoStagesMessageConstant   = "No stage completed."
	summaryPausedMessageConstant     = "Run paused; nothing is lost. Start branchflow again to resume."
	summaryDoneMessageConstant       = "Feature cycle complete."
	summaryStoppedTemplateConstant   = "Run stopped during %s."
	stageListSeparatorConstant       = ", "
	logMessageStageStartedConstant   = "stage started"
	logMessageStageFinishedConstant  = "stage finished"
	logMessageRunFinishedConstant    = "run finished"
	logFieldStageConstant            = "stage"
	logFieldNextStageConstant        = "next_stage"
	logFieldBranchConstant           = "branch"
)

var (
	// ErrClientNotConfigured indicates that no git client was supplied.
	ErrClientNotConfigured = errors.New("workflow: git client not configured")
	// ErrGateNotConfigured indicates that no command gate was supplied.
	ErrGateNotConfigured = errors.New("workflow: command gate not configured")
	// ErrPreflightNotConfigured indicates that no precondition checker was supplied.
	ErrPreflightNotConfigured = errors.New("workflow: precondition checker not configured")
	// ErrBranchRequesterNotConfigured indicates that no branch name requester was supplied.
	ErrBranchRequesterNotConfigured = errors.New("workflow: branch name requester not configured")
	// ErrVerifierNotConfigured indicates that no verifier was supplied.
	ErrVerifierNotConfigured = errors.New("workflow: verifier not configured")
	// ErrPrompterNotConfigured indicates that no prompter was supplied.
	ErrPrompterNotConfigured = errors.New("workflow: prompter not configured")
	// ErrConsoleNotConfigured indicates that no console was supplied.
	ErrConsoleNotConfigured = errors.New("workflow: console not configured")
)

// Dependencies enumerates collaborators required by the machine.
type Dependencies struct {
	Client          gitclient.Client
	Gate            *gate.Gate
	Preflight       *preflight.Checker
	BranchRequester *branchname.Requester
	Verifier        *verify.Verifier
	Prompter        prompt.Prompter
	Console         *ui.Console
	FileReader      FileReader
	Logger          *zap.Logger
}

// Machine runs the stages of one feature-branch cycle in order.
type Machine struct {
	environment *Environment
	operations  map[Stage]Operation
}

// DefaultOperations returns one operation per stage, in execution order.
func DefaultOperations() []Operation {
	return []Operation{
		&SyncMainOperation{},
		&ObtainBranchOperation{},
		&DevelopOperation{},
		&CommitAndPushOperation{},
		&RebaseBeforeReviewOperation{},
		&AwaitExternalMergeOperation{},
		&ResyncMainOperation{},
		&CleanupOperation{},
		&FinalVerificationOperation{},
	}
}

// NewMachine validates dependencies and constructs a Machine running the default operations.
func NewMachine(dependencies Dependencies, options Options) (*Machine, error) {
	switch {
	case dependencies.Client == nil:
		return nil, ErrClientNotConfigured
	case dependencies.Gate == nil:
		return nil, ErrGateNotConfigured
	case dependencies.Preflight == nil:
		return nil, ErrPreflightNotConfigured
	case dependencies.BranchRequester == nil:
		return nil, ErrBranchRequesterNotConfigured
	case dependencies.Verifier == nil:
		return nil, ErrVerifierNotConfigured
	case dependencies.Prompter == nil:
		return nil, ErrPrompterNotConfigured
	case dependencies.Console == nil:
		return nil, ErrConsoleNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(strings.TrimSpace(options.MainBranch)) == 0 {
		options.MainBranch = defaultMainBranchConstant
	}
	if len(strings.TrimSpace(options.RemoteName)) == 0 {
		options.RemoteName = defaultRemoteNameConstant
	}
	if len(strings.TrimSpace(options.DefaultCommitMessage)) == 0 {
		options.DefaultCommitMessage = defaultCommitMessageConstant
	}

	operations := make(map[Stage]Operation)
	for _, operation := range DefaultOperations() {
		operations[operation.Stage()] = operation
	}

	return &Machine{
		environment: &Environment{
			Client:          dependencies.Client,
			Gate:            dependencies.Gate,
			Preflight:       dependencies.Preflight,
			BranchRequester: dependencies.BranchRequester,
			Verifier:        dependencies.Verifier,
			LinkDeriver:     gitrepo.NewLinkDeriver(options.MainBranch),
			Prompter:        dependencies.Prompter,
			Console:         dependencies.Console,
			FileReader:      dependencies.FileReader,
			Logger:          logger,
			Options:         options,
		},
		operations: operations,
	}, nil
}

// Run checks the repository preconditions and executes stages until the cycle finishes or pauses.
// Pausing at a checkpoint returns a nil error. Fatal preconditions, an unavailable branch and
// failed verification are returned as errors.
func (machine *Machine) Run(executionContext context.Context) (State, error) {
	environment := machine.environment
	state := &State{}

	environment.Console.Section(preflightSectionTitleConstant)
	if rootError := environment.Preflight.EnsureRepoRoot(executionContext); rootError != nil {
		return *state, rootError
	}
	if operationError := environment.Preflight.EnsureNoInProgressOperation(executionContext); operationError != nil {
		return *state, operationError
	}
	remoteURL, remoteError := environment.Preflight.EnsureOriginRemote(executionContext)
	if remoteError != nil {
		return *state, remoteError
	}
	state.RemoteURL = remoteURL
	announceCustomDomain(environment)

	stage := StageSyncMain
	for !stage.Terminal() {
		operation, registered := machine.operations[stage]
		if !registered {
			stage = Transition(stage, StageResultContinue)
			continue
		}

		environment.Logger.Info(logMessageStageStartedConstant, zap.String(logFieldStageConstant, stage.String()))
		result, executeError := operation.Execute(executionContext, environment, state)
		if executeError != nil {
			if errors.Is(executeError, ErrVerificationFailed) {
				state.MarkCompleted(stage)
			}
			machine.summarize(state, stage)
			return *state, executeError
		}
		if result == StageResultContinue {
			state.MarkCompleted(stage)
		}

		next := Transition(stage, result)
		environment.Logger.Info(logMessageStageFinishedConstant, zap.String(logFieldStageConstant, stage.String()), zap.String(logFieldNextStageConstant, next.String()))
		stage = next
	}

	machine.summarize(state, stage)
	return *state, nil
}

func (machine *Machine) summarize(state *State, finalStage Stage) {
	console := machine.environment.Console
	console.Section(summarySectionTitleConstant)

	if len(state.CompletedStages) == 0 {
		console.Info(summaryNoStagesMessageConstant)
	} else {
		names := make([]string, 0, len(state.CompletedStages))
		for _, completed := range state.CompletedStages {
			names = append(names, completed.String())
		}
		console.Info(summaryCompletedTemplateConstant, strings.Join(names, stageListSeparatorConstant))
	}

	switch finalStage {
	case StagePaused:
		console.Info(summaryPausedMessageConstant)
	case StageDone:
		console.Info(summaryDoneMessageConstant)
	default:
		console.Info(summaryStoppedTemplateConstant, finalStage)
	}
	machine.environment.Logger.Info(logMessageRunFinishedConstant, zap.String(logFieldStageConstant, finalStage.String()), zap.String(logFieldBranchConstant, state.BranchName))
}
