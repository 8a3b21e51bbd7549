package gate

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/branchflow/internal/gitclient"
	"github.com/temirov/branchflow/internal/prompt"
	"github.com/temirov/branchflow/internal/ui"
)

const (
	approvalQuestionTextConstant       = "Run this command?"
	commandLaunchErrorTemplateConstant = "unable to run %s: %w"
	approvalErrorTemplateConstant      = "unable to confirm %s: %w"
	logMessageCommandDeclinedConstant  = "command declined"
	logMessageCommandFinishedConstant  = "command finished"
	logFieldCommandConstant            = "command"
	logFieldExitCodeConstant           = "exit_code"
	launchFailureExitCodeConstant      = -1
)

var (
	// ErrClientNotConfigured indicates that no git client was supplied.
	ErrClientNotConfigured = errors.New("gate: git client not configured")
	// ErrPrompterNotConfigured indicates that no prompter was supplied.
	ErrPrompterNotConfigured = errors.New("gate: prompter not configured")
	// ErrConsoleNotConfigured indicates that no console was supplied.
	ErrConsoleNotConfigured = errors.New("gate: console not configured")
)

// ProposedCommand records what happened to a command shown to the user.
type ProposedCommand struct {
	Text     string
	Approved bool
	ExitCode int
}

// Succeeded reports whether the command was approved and exited with code zero.
func (proposed ProposedCommand) Succeeded() bool {
	return proposed.Approved && proposed.ExitCode == 0
}

// Failed reports whether the command was approved and exited with a non-zero code.
func (proposed ProposedCommand) Failed() bool {
	return proposed.Approved && proposed.ExitCode != 0
}

// Dependencies enumerates collaborators required by the gate.
type Dependencies struct {
	Client   gitclient.Client
	Prompter prompt.Prompter
	Console  *ui.Console
	Logger   *zap.Logger
}

// Gate shows commands verbatim, asks for approval and relays results.
type Gate struct {
	client   gitclient.Client
	prompter prompt.Prompter
	console  *ui.Console
	logger   *zap.Logger
}

// NewGate validates dependencies and constructs a Gate.
func NewGate(dependencies Dependencies) (*Gate, error) {
	if dependencies.Client == nil {
		return nil, ErrClientNotConfigured
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
	return &Gate{
		client:   dependencies.Client,
		prompter: dependencies.Prompter,
		console:  dependencies.Console,
		logger:   logger,
	}, nil
}

// Execute displays the command, asks for approval and runs it when approved.
// A declined command is reported as skipped and yields exit code zero.
// A non-zero exit is reported to the user and returned in ProposedCommand, not as an error.
func (gate *Gate) Execute(executionContext context.Context, command gitclient.Command, defaultYes bool) (ProposedCommand, error) {
	commandText := command.String()
	gate.console.ProposedCommand(commandText)

	approved, approvalError := gate.prompter.Confirm(prompt.Question{
		Key:        commandText,
		Text:       approvalQuestionTextConstant,
		DefaultYes: defaultYes,
	})
	if approvalError != nil {
		return ProposedCommand{Text: commandText}, fmt.Errorf(approvalErrorTemplateConstant, commandText, approvalError)
	}
	if !approved {
		gate.console.SkippedCommand(commandText)
		gate.logger.Debug(logMessageCommandDeclinedConstant, zap.String(logFieldCommandConstant, commandText))
		return ProposedCommand{Text: commandText}, nil
	}

	return gate.run(executionContext, command)
}

// RunApproved runs a command the user already approved through an earlier question.
// The command text is still displayed before it runs.
func (gate *Gate) RunApproved(executionContext context.Context, command gitclient.Command) (ProposedCommand, error) {
	gate.console.ProposedCommand(command.String())
	return gate.run(executionContext, command)
}

func (gate *Gate) run(executionContext context.Context, command gitclient.Command) (ProposedCommand, error) {
	commandText := command.String()
	result, runError := gate.client.Run(executionContext, command)
	if runError != nil {
		return ProposedCommand{Text: commandText, Approved: true, ExitCode: launchFailureExitCodeConstant}, fmt.Errorf(commandLaunchErrorTemplateConstant, commandText, runError)
	}

	gate.console.CommandOutput(result.StandardOutput)
	gate.console.CommandOutput(result.StandardError)
	if result.ExitCode != 0 {
		gate.console.CommandFailed(commandText, result.ExitCode)
	}
	gate.logger.Info(logMessageCommandFinishedConstant, zap.String(logFieldCommandConstant, commandText), zap.Int(logFieldExitCodeConstant, result.ExitCode))

	return ProposedCommand{Text: commandText, Approved: true, ExitCode: result.ExitCode}, nil
}
