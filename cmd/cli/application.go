package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/branchflow/internal/branchname"
	"github.com/temirov/branchflow/internal/execshell"
	"github.com/temirov/branchflow/internal/filesystem"
	"github.com/temirov/branchflow/internal/gate"
	"github.com/temirov/branchflow/internal/gitclient"
	"github.com/temirov/branchflow/internal/preflight"
	"github.com/temirov/branchflow/internal/prompt"
	"github.com/temirov/branchflow/internal/ui"
	"github.com/temirov/branchflow/internal/utils"
	"github.com/temirov/branchflow/internal/verify"
	"github.com/temirov/branchflow/internal/workflow"
)

const (
	applicationNameConstant                     = "branchflow"
	applicationShortDescriptionConstant         = "Guide one feature branch from creation to cleanup"
	applicationLongDescriptionConstant          = "branchflow walks through a feature-branch cycle: sync main, create or resume a branch, commit and push, rebase, wait for the pull request merge, clean up and verify. Every git command that changes state is shown and confirmed before it runs."
	configFileFlagNameConstant                  = "config"
	configFileFlagUsageConstant                 = "Optional path to a configuration file (YAML)."
	logLevelFlagNameConstant                    = "log-level"
	logLevelFlagUsageConstant                   = "Override the configured log level (debug, info, warn or error)."
	logFormatFlagNameConstant                   = "log-format"
	logFormatFlagUsageConstant                  = "Override the configured log format (structured or console)."
	commonConfigurationKeyConstant              = "common"
	commonLogLevelConfigKeyConstant             = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant            = commonConfigurationKeyConstant + ".log_format"
	workflowConfigurationKeyConstant            = "workflow"
	workflowMainBranchConfigKeyConstant         = workflowConfigurationKeyConstant + ".main_branch"
	workflowRemoteConfigKeyConstant             = workflowConfigurationKeyConstant + ".remote"
	workflowCommitMessageConfigKeyConstant      = workflowConfigurationKeyConstant + ".default_commit_message"
	workflowRemediationMessageConfigKeyConstant = workflowConfigurationKeyConstant + ".remediation_commit_message"
	workflowPrompterConfigKeyConstant           = workflowConfigurationKeyConstant + ".prompter"
	defaultMainBranchConstant                   = "main"
	defaultRemoteNameConstant                   = "origin"
	defaultCommitMessageConstant                = "update"
	defaultRemediationCommitMessageConstant     = "chore: save local changes"
	environmentPrefixConstant                   = "BRANCHFLOW"
	configurationNameConstant                   = "config"
	configurationTypeConstant                   = "yaml"
	defaultConfigurationSearchPathConstant      = "."
	userConfigurationSearchPathConstant         = "~/.config/branchflow"
	configurationInitializedMessageConstant     = "configuration initialized"
	configurationLogLevelFieldConstant          = "log_level"
	configurationLogFormatFieldConstant         = "log_format"
	configurationFileFieldConstant              = "config_file"
	configurationLoadErrorTemplateConstant      = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant         = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant             = "unable to flush logger: %w"
	flagValueErrorTemplateConstant              = "invalid --%s value: %w"
	workingDirectoryErrorTemplateConstant       = "unable to determine working directory: %w"
	wiringErrorTemplateConstant                 = "unable to prepare %s: %w"
	runStartedMessageConstant                   = "workflow run started"
	runFinishedMessageConstant                  = "workflow run finished"
	logFieldWorkingDirectoryConstant            = "working_directory"
	logFieldMainBranchConstant                  = "main_branch"
	logFieldRemoteConstant                      = "remote"
	logFieldPrompterConstant                    = "prompter"
	logFieldCompletedStagesConstant             = "completed_stages"
	loggerNotInitializedMessageConstant         = "logger not initialized"
	componentShellExecutorConstant              = "shell executor"
	componentGitClientConstant                  = "git client"
	componentGateConstant                       = "command gate"
	componentPreflightConstant                  = "preflight checker"
	componentBranchValidatorConstant            = "branch name validator"
	componentBranchRequesterConstant            = "branch name requester"
	componentVerifierConstant                   = "final verifier"
	componentMachineConstant                    = "workflow"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common   ApplicationCommonConfiguration   `mapstructure:"common"`
	Workflow ApplicationWorkflowConfiguration `mapstructure:"workflow"`
}

// ApplicationCommonConfiguration stores logging configuration.
type ApplicationCommonConfiguration struct {
	LogLevel  utils.LogLevel  `mapstructure:"log_level"`
	LogFormat utils.LogFormat `mapstructure:"log_format"`
}

// ApplicationWorkflowConfiguration stores branch and remote names and prompt defaults.
type ApplicationWorkflowConfiguration struct {
	MainBranch               string `mapstructure:"main_branch"`
	Remote                   string `mapstructure:"remote"`
	DefaultCommitMessage     string `mapstructure:"default_commit_message"`
	RemediationCommitMessage string `mapstructure:"remediation_commit_message"`
	Prompter                 string `mapstructure:"prompter"`
}

// ClientProvider builds the version-control client for a working directory.
type ClientProvider func(logger *zap.Logger, workingDirectory string) (gitclient.Client, error)

// PrompterProvider builds the prompter for the configured mode.
type PrompterProvider func(mode prompt.Mode, input io.Reader, output io.Writer) prompt.Prompter

// Application wires the Cobra root command, configuration loader, structured logger
// and the workflow machine.
type Application struct {
	rootCommand              *cobra.Command
	configurationLoader      *utils.ConfigurationLoader
	loggerFactory            *utils.LoggerFactory
	logger                   *zap.Logger
	configuration            ApplicationConfiguration
	configurationMetadata    utils.LoadedConfiguration
	configurationFilePath    string
	logLevelFlagValue        string
	logFormatFlagValue       string
	input                    io.Reader
	output                   io.Writer
	workingDirectoryProvider func() (string, error)
	clientProvider           ClientProvider
	prompterProvider         PrompterProvider
	fileReader               workflow.FileReader
	lastState                workflow.State
}

// NewApplication assembles a fully wired CLI application instance bound to the process streams.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant, userConfigurationSearchPathConstant},
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader:      configurationLoader,
		loggerFactory:            utils.NewLoggerFactory(),
		logger:                   zap.NewNop(),
		input:                    os.Stdin,
		output:                   os.Stdout,
		workingDirectoryProvider: os.Getwd,
		clientProvider:           newShellClient,
		prompterProvider:         prompt.NewPrompter,
		fileReader:               filesystem.OSFileSystem{},
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runWorkflow(command)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)

	application.rootCommand = cobraCommand
	return application
}

// Execute runs the root command and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes it.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:             string(utils.LogLevelWarn),
		commonLogFormatConfigKeyConstant:            string(utils.LogFormatConsole),
		workflowMainBranchConfigKeyConstant:         defaultMainBranchConstant,
		workflowRemoteConfigKeyConstant:             defaultRemoteNameConstant,
		workflowCommitMessageConfigKeyConstant:      defaultCommitMessageConstant,
		workflowRemediationMessageConfigKeyConstant: defaultRemediationCommitMessageConstant,
		workflowPrompterConfigKeyConstant:           string(prompt.ModeAuto),
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}
	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		if parseError := application.configuration.Common.LogLevel.UnmarshalText([]byte(application.logLevelFlagValue)); parseError != nil {
			return fmt.Errorf(flagValueErrorTemplateConstant, logLevelFlagNameConstant, parseError)
		}
	}
	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		if parseError := application.configuration.Common.LogFormat.UnmarshalText([]byte(application.logFormatFlagValue)); parseError != nil {
			return fmt.Errorf(flagValueErrorTemplateConstant, logFormatFlagNameConstant, parseError)
		}
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		application.configuration.Common.LogLevel,
		application.configuration.Common.LogFormat,
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}
	application.logger = logger

	application.logger.Info(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, string(application.configuration.Common.LogLevel)),
		zap.String(configurationLogFormatFieldConstant, string(application.configuration.Common.LogFormat)),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	return nil
}

func (application *Application) runWorkflow(command *cobra.Command) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	workingDirectory, workingDirectoryError := application.workingDirectoryProvider()
	if workingDirectoryError != nil {
		return fmt.Errorf(workingDirectoryErrorTemplateConstant, workingDirectoryError)
	}

	machine, wiringError := application.buildMachine(workingDirectory)
	if wiringError != nil {
		return wiringError
	}

	workflowConfiguration := application.configuration.Workflow
	application.logger.Info(
		runStartedMessageConstant,
		zap.String(logFieldWorkingDirectoryConstant, workingDirectory),
		zap.String(logFieldMainBranchConstant, workflowConfiguration.MainBranch),
		zap.String(logFieldRemoteConstant, workflowConfiguration.Remote),
		zap.String(logFieldPrompterConstant, workflowConfiguration.Prompter),
	)

	state, runError := machine.Run(command.Context())
	application.lastState = state

	completedStageNames := make([]string, 0, len(state.CompletedStages))
	for _, stage := range state.CompletedStages {
		completedStageNames = append(completedStageNames, stage.String())
	}
	application.logger.Info(runFinishedMessageConstant, zap.Strings(logFieldCompletedStagesConstant, completedStageNames))

	return runError
}

func (application *Application) buildMachine(workingDirectory string) (*workflow.Machine, error) {
	workflowConfiguration := application.configuration.Workflow
	logger := application.logger

	client, clientError := application.clientProvider(logger, workingDirectory)
	if clientError != nil {
		return nil, fmt.Errorf(wiringErrorTemplateConstant, componentGitClientConstant, clientError)
	}

	console := ui.NewConsole(application.output)
	prompter := application.prompterProvider(prompt.ParseMode(workflowConfiguration.Prompter), application.input, application.output)

	commandGate, gateError := gate.NewGate(gate.Dependencies{Client: client, Prompter: prompter, Console: console, Logger: logger})
	if gateError != nil {
		return nil, fmt.Errorf(wiringErrorTemplateConstant, componentGateConstant, gateError)
	}

	checker, checkerError := preflight.NewChecker(
		preflight.Dependencies{Client: client, Gate: commandGate, Prompter: prompter, Console: console, Logger: logger},
		preflight.Options{RemoteName: workflowConfiguration.Remote, RemediationCommitMessage: workflowConfiguration.RemediationCommitMessage},
	)
	if checkerError != nil {
		return nil, fmt.Errorf(wiringErrorTemplateConstant, componentPreflightConstant, checkerError)
	}

	validator, validatorError := branchname.NewValidator(client)
	if validatorError != nil {
		return nil, fmt.Errorf(wiringErrorTemplateConstant, componentBranchValidatorConstant, validatorError)
	}
	requester, requesterError := branchname.NewRequester(validator, prompter, console)
	if requesterError != nil {
		return nil, fmt.Errorf(wiringErrorTemplateConstant, componentBranchRequesterConstant, requesterError)
	}

	verifier, verifierError := verify.NewVerifier(
		verify.Dependencies{Client: client, Gate: commandGate, Console: console, Logger: logger},
		verify.Options{MainBranch: workflowConfiguration.MainBranch, RemoteName: workflowConfiguration.Remote},
	)
	if verifierError != nil {
		return nil, fmt.Errorf(wiringErrorTemplateConstant, componentVerifierConstant, verifierError)
	}

	machine, machineError := workflow.NewMachine(
		workflow.Dependencies{
			Client:          client,
			Gate:            commandGate,
			Preflight:       checker,
			BranchRequester: requester,
			Verifier:        verifier,
			Prompter:        prompter,
			Console:         console,
			FileReader:      application.fileReader,
			Logger:          logger,
		},
		workflow.Options{
			MainBranch:           workflowConfiguration.MainBranch,
			RemoteName:           workflowConfiguration.Remote,
			DefaultCommitMessage: workflowConfiguration.DefaultCommitMessage,
			RepositoryRoot:       workingDirectory,
		},
	)
	if machineError != nil {
		return nil, fmt.Errorf(wiringErrorTemplateConstant, componentMachineConstant, machineError)
	}
	return machine, nil
}

func newShellClient(logger *zap.Logger, workingDirectory string) (gitclient.Client, error) {
	shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), ui.NewCommandEventLogger(logger))
	if executorError != nil {
		return nil, fmt.Errorf(wiringErrorTemplateConstant, componentShellExecutorConstant, executorError)
	}
	return gitclient.NewShellClient(
		gitclient.ShellClientDependencies{GitExecutor: shellExecutor, FileSystem: filesystem.OSFileSystem{}},
		workingDirectory,
	)
}

func (application *Application) flushLogger() error {
	return application.syncLoggerInstance(application.logger)
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	if rootCommand := command.Root(); rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}
		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
