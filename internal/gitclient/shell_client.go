package gitclient

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/temirov/branchflow/internal/execshell"
)

const (
	gitExecutorMissingMessageConstant           = "git executor not configured"
	fileSystemMissingMessageConstant            = "file system not configured"
	workingDirectoryResolveErrorTemplate        = "failed to resolve working directory %q: %w"
	unexpectedExitCodeErrorTemplateConstant     = "%s exited with unexpected code %d: %s"
	gitPathLookupErrorTemplateConstant          = "failed to locate %s: %w"
	gitTerminalPromptEnvironmentNameConstant    = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisableConstant = "0"
	gitEditorEnvironmentNameConstant            = "GIT_EDITOR"
	gitEditorEnvironmentAcceptConstant          = "true"
	gitMergeHeadFileNameConstant                = "MERGE_HEAD"
	gitRebaseMergeDirectoryNameConstant         = "rebase-merge"
	gitRebaseApplyDirectoryNameConstant         = "rebase-apply"
	upstreamReferenceConstant                   = "@{u}"
	exitCodeUnavailableConstant                 = -1
	exitCodeDifferencesConstant                 = 1
)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrFileSystemNotConfigured indicates the file system dependency was missing.
var ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)

// GitExecutor runs git invocations; ShellExecutor satisfies it.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// FileSystem exposes the filesystem queries needed to inspect repository state.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	Abs(path string) (string, error)
	EvalSymlinks(path string) (string, error)
}

// ShellClientDependencies enumerates collaborators required by ShellClient.
type ShellClientDependencies struct {
	GitExecutor GitExecutor
	FileSystem  FileSystem
}

// ShellClient implements Client by invoking the git command-line tool in one working directory.
type ShellClient struct {
	executor         GitExecutor
	fileSystem       FileSystem
	workingDirectory string
}

// NewShellClient constructs a client bound to workingDirectory.
func NewShellClient(dependencies ShellClientDependencies, workingDirectory string) (*ShellClient, error) {
	if dependencies.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}

	absoluteWorkingDirectory, absoluteError := dependencies.FileSystem.Abs(workingDirectory)
	if absoluteError != nil {
		return nil, fmt.Errorf(workingDirectoryResolveErrorTemplate, workingDirectory, absoluteError)
	}

	return &ShellClient{
		executor:         dependencies.GitExecutor,
		fileSystem:       dependencies.FileSystem,
		workingDirectory: absoluteWorkingDirectory,
	}, nil
}

// WorkingDirectory returns the absolute directory every command runs in.
func (client *ShellClient) WorkingDirectory() string {
	return client.workingDirectory
}

// Run executes a proposed mutation, converting a non-zero exit into a plain result.
// Output is captured, so git never opens an editor and existing messages are kept.
func (client *ShellClient) Run(executionContext context.Context, command Command) (execshell.ExecutionResult, error) {
	result, executionError := client.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        append([]string{}, command.Arguments...),
		WorkingDirectory: client.workingDirectory,
		EnvironmentVariables: map[string]string{
			gitEditorEnvironmentNameConstant:         gitEditorEnvironmentAcceptConstant,
			gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentDisableConstant,
		},
	})
	if executionError == nil {
		return result, nil
	}

	var failedError execshell.CommandFailedError
	if errors.As(executionError, &failedError) {
		return failedError.Result, nil
	}
	return execshell.ExecutionResult{ExitCode: exitCodeUnavailableConstant}, executionError
}

// IsRepositoryRoot reports whether the working directory is the top level of a working copy.
func (client *ShellClient) IsRepositoryRoot(executionContext context.Context) (bool, error) {
	exitCode, result, queryError := client.query(executionContext, "rev-parse", "--show-toplevel")
	if queryError != nil {
		return false, queryError
	}
	if exitCode != 0 {
		return false, nil
	}

	topLevel := strings.TrimSpace(result.StandardOutput)
	if len(topLevel) == 0 {
		return false, nil
	}
	return client.samePath(topLevel, client.workingDirectory), nil
}

// RemoteURL returns the URL configured for remoteName.
func (client *ShellClient) RemoteURL(executionContext context.Context, remoteName string) (string, bool, error) {
	exitCode, result, queryError := client.query(executionContext, "remote", "get-url", remoteName)
	if queryError != nil {
		return "", false, queryError
	}
	if exitCode != 0 {
		return "", false, nil
	}
	return strings.TrimSpace(result.StandardOutput), true, nil
}

// InProgressOperation inspects the git directory for merge and rebase state markers.
func (client *ShellClient) InProgressOperation(executionContext context.Context) (Operation, error) {
	mergeInProgress, mergeError := client.gitPathExists(executionContext, gitMergeHeadFileNameConstant)
	if mergeError != nil {
		return OperationNone, mergeError
	}
	if mergeInProgress {
		return OperationMerge, nil
	}

	for _, rebaseMarker := range []string{gitRebaseMergeDirectoryNameConstant, gitRebaseApplyDirectoryNameConstant} {
		rebaseInProgress, rebaseError := client.gitPathExists(executionContext, rebaseMarker)
		if rebaseError != nil {
			return OperationNone, rebaseError
		}
		if rebaseInProgress {
			return OperationRebase, nil
		}
	}

	return OperationNone, nil
}

// UnstagedDiffEmpty reports whether the working tree matches the index.
func (client *ShellClient) UnstagedDiffEmpty(executionContext context.Context) (bool, error) {
	return client.quietDiff(executionContext, "diff", "--quiet")
}

// StagedDiffEmpty reports whether the index matches HEAD.
func (client *ShellClient) StagedDiffEmpty(executionContext context.Context) (bool, error) {
	return client.quietDiff(executionContext, "diff", "--cached", "--quiet")
}

// ReferencesDiffEmpty reports whether two references have identical content.
func (client *ShellClient) ReferencesDiffEmpty(executionContext context.Context, fromReference string, toReference string) (bool, error) {
	return client.quietDiff(executionContext, "diff", "--quiet", fromReference, toReference)
}

// LeftRightCount returns the raw output of rev-list --left-right --count left...right.
func (client *ShellClient) LeftRightCount(executionContext context.Context, leftReference string, rightReference string) (string, error) {
	return client.requireOutput(executionContext, "rev-list", "--left-right", "--count", leftReference+"..."+rightReference)
}

// Cherry returns the raw output of git cherry upstream head.
func (client *ShellClient) Cherry(executionContext context.Context, upstreamReference string, headReference string) (string, error) {
	return client.requireOutput(executionContext, "cherry", upstreamReference, headReference)
}

// CheckBranchName delegates validation to git check-ref-format --branch.
func (client *ShellClient) CheckBranchName(executionContext context.Context, branchName string) (bool, string, error) {
	exitCode, result, queryError := client.query(executionContext, "check-ref-format", "--branch", branchName)
	if queryError != nil {
		return false, "", queryError
	}
	if exitCode != 0 {
		return false, strings.TrimSpace(result.StandardError), nil
	}
	return true, "", nil
}

// ReferenceExists reports whether a fully qualified reference resolves.
func (client *ShellClient) ReferenceExists(executionContext context.Context, reference string) (bool, error) {
	exitCode, _, queryError := client.query(executionContext, "show-ref", "--verify", "--quiet", reference)
	if queryError != nil {
		return false, queryError
	}
	return exitCode == 0, nil
}

// IsAncestor reports whether ancestorReference is reachable from descendantReference.
func (client *ShellClient) IsAncestor(executionContext context.Context, ancestorReference string, descendantReference string) (bool, error) {
	arguments := []string{"merge-base", "--is-ancestor", ancestorReference, descendantReference}
	exitCode, result, queryError := client.query(executionContext, arguments...)
	if queryError != nil {
		return false, queryError
	}
	switch exitCode {
	case 0:
		return true, nil
	case exitCodeDifferencesConstant:
		return false, nil
	default:
		return false, unexpectedExitCodeError(arguments, exitCode, result)
	}
}

// HasUpstream reports whether the current branch tracks an upstream branch.
func (client *ShellClient) HasUpstream(executionContext context.Context) (bool, error) {
	exitCode, _, queryError := client.query(executionContext, "rev-parse", "--abbrev-ref", "--symbolic-full-name", upstreamReferenceConstant)
	if queryError != nil {
		return false, queryError
	}
	return exitCode == 0, nil
}

func (client *ShellClient) quietDiff(executionContext context.Context, arguments ...string) (bool, error) {
	exitCode, result, queryError := client.query(executionContext, arguments...)
	if queryError != nil {
		return false, queryError
	}
	switch exitCode {
	case 0:
		return true, nil
	case exitCodeDifferencesConstant:
		return false, nil
	default:
		return false, unexpectedExitCodeError(arguments, exitCode, result)
	}
}

func (client *ShellClient) requireOutput(executionContext context.Context, arguments ...string) (string, error) {
	exitCode, result, queryError := client.query(executionContext, arguments...)
	if queryError != nil {
		return "", queryError
	}
	if exitCode != 0 {
		return "", unexpectedExitCodeError(arguments, exitCode, result)
	}
	return result.StandardOutput, nil
}

func (client *ShellClient) gitPathExists(executionContext context.Context, name string) (bool, error) {
	gitPath, pathError := client.requireOutput(executionContext, "rev-parse", "--git-path", name)
	if pathError != nil {
		return false, fmt.Errorf(gitPathLookupErrorTemplateConstant, name, pathError)
	}

	resolvedPath := strings.TrimSpace(gitPath)
	if !filepath.IsAbs(resolvedPath) {
		resolvedPath = filepath.Join(client.workingDirectory, resolvedPath)
	}

	if _, statError := client.fileSystem.Stat(resolvedPath); statError != nil {
		if errors.Is(statError, fs.ErrNotExist) {
			return false, nil
		}
		return false, statError
	}
	return true, nil
}

// query runs a read-only git command and reports its exit code instead of failing on it.
func (client *ShellClient) query(executionContext context.Context, arguments ...string) (int, execshell.ExecutionResult, error) {
	result, executionError := client.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     client.workingDirectory,
		EnvironmentVariables: map[string]string{gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentDisableConstant},
	})
	if executionError == nil {
		return 0, result, nil
	}

	var failedError execshell.CommandFailedError
	if errors.As(executionError, &failedError) {
		return failedError.Result.ExitCode, failedError.Result, nil
	}
	return exitCodeUnavailableConstant, execshell.ExecutionResult{}, executionError
}

func (client *ShellClient) samePath(first string, second string) bool {
	return client.canonicalPath(first) == client.canonicalPath(second)
}

func (client *ShellClient) canonicalPath(path string) string {
	resolvedPath, resolveError := client.fileSystem.EvalSymlinks(path)
	if resolveError != nil {
		return filepath.Clean(path)
	}
	return filepath.Clean(resolvedPath)
}

func unexpectedExitCodeError(arguments []string, exitCode int, result execshell.ExecutionResult) error {
	return fmt.Errorf(unexpectedExitCodeErrorTemplateConstant, NewCommand(arguments...).String(), exitCode, strings.TrimSpace(result.StandardError))
}
