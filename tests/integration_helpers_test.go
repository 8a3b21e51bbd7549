package tests

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	integrationBinaryNameConstant       = "branchflow"
	integrationModuleRootConstant       = ".."
	integrationBuildTimeoutConstant     = 2 * time.Minute
	integrationCommandTimeoutConstant   = 30 * time.Second
	integrationMainBranchConstant       = "main"
	integrationReadmeFileNameConstant   = "README.md"
	integrationInitialContentConstant   = "widgets\n"
	integrationRemoteDirectoryConstant  = "remote.git"
	integrationWorkingDirectoryConstant = "work"
)

type integrationResult struct {
	output   string
	exitCode int
}

func requireGit(testInstance *testing.T) {
	testInstance.Helper()
	if _, lookupError := exec.LookPath("git"); lookupError != nil {
		testInstance.Skip("git executable not available")
	}
}

func buildIntegrationBinary(testInstance *testing.T) string {
	testInstance.Helper()

	executionContext, cancel := context.WithTimeout(context.Background(), integrationBuildTimeoutConstant)
	defer cancel()

	binaryPath := filepath.Join(testInstance.TempDir(), integrationBinaryNameConstant)
	command := exec.CommandContext(executionContext, "go", "build", "-o", binaryPath, ".")
	command.Dir = integrationModuleRootConstant

	outputBytes, buildError := command.CombinedOutput()
	requireNoError(testInstance, buildError, string(outputBytes))
	return binaryPath
}

// createSandbox returns a clone of a bare remote whose main branch holds one commit.
func createSandbox(testInstance *testing.T) (string, string) {
	testInstance.Helper()
	testInstance.Setenv("HOME", testInstance.TempDir())

	sandboxRoot := testInstance.TempDir()
	remotePath := filepath.Join(sandboxRoot, integrationRemoteDirectoryConstant)
	seedPath := filepath.Join(sandboxRoot, "seed")
	workingPath := filepath.Join(sandboxRoot, integrationWorkingDirectoryConstant)

	runGit(testInstance, sandboxRoot, "init", "--bare", "--initial-branch="+integrationMainBranchConstant, remotePath)
	runGit(testInstance, sandboxRoot, "init", "--initial-branch="+integrationMainBranchConstant, seedPath)
	require.NoError(testInstance, os.WriteFile(filepath.Join(seedPath, integrationReadmeFileNameConstant), []byte(integrationInitialContentConstant), 0o644))
	runGit(testInstance, seedPath, "add", "-A")
	runGit(testInstance, seedPath, "commit", "-m", "initial")
	runGit(testInstance, seedPath, "remote", "add", "origin", remotePath)
	runGit(testInstance, seedPath, "push", "-u", "origin", integrationMainBranchConstant)
	runGit(testInstance, sandboxRoot, "clone", remotePath, workingPath)

	return workingPath, remotePath
}

func runGit(testInstance *testing.T, workingDirectory string, arguments ...string) string {
	testInstance.Helper()

	executionContext, cancel := context.WithTimeout(context.Background(), integrationCommandTimeoutConstant)
	defer cancel()

	command := exec.CommandContext(executionContext, "git", arguments...)
	command.Dir = workingDirectory
	outputBytes, runError := command.CombinedOutput()
	requireNoError(testInstance, runError, string(outputBytes))
	return strings.TrimSpace(string(outputBytes))
}

// runIntegrationCommand feeds answers, one per line, to the binary running in workingDirectory.
func runIntegrationCommand(testInstance *testing.T, binaryPath string, workingDirectory string, answers []string, arguments ...string) integrationResult {
	testInstance.Helper()

	executionContext, cancel := context.WithTimeout(context.Background(), integrationCommandTimeoutConstant)
	defer cancel()

	command := exec.CommandContext(executionContext, binaryPath, arguments...)
	command.Dir = workingDirectory
	command.Stdin = strings.NewReader(strings.Join(answers, "\n") + "\n")

	var output bytes.Buffer
	command.Stdout = &output
	command.Stderr = &output

	runError := command.Run()
	result := integrationResult{output: output.String()}

	var exitError *exec.ExitError
	switch {
	case runError == nil:
	case errors.As(runError, &exitError):
		result.exitCode = exitError.ExitCode()
	default:
		requireNoError(testInstance, runError, result.output)
	}
	return result
}

func requireNoError(testInstance *testing.T, err error, output string) {
	testInstance.Helper()
	if err != nil {
		testInstance.Fatalf("command failed: %v\n%s", err, output)
	}
}
