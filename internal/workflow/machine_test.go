package workflow_test

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/branchflow/internal/branchname"
	"github.com/temirov/branchflow/internal/gate"
	"github.com/temirov/branchflow/internal/preflight"
	"github.com/temirov/branchflow/internal/testsupport"
	"github.com/temirov/branchflow/internal/ui"
	"github.com/temirov/branchflow/internal/verify"
	"github.com/temirov/branchflow/internal/workflow"
)

const (
	testRepositoryRootConstant = "/work/widgets"
	testBranchNameConstant     = "feature/login"
	testCompareLinkConstant    = "https://github.com/acme/widgets/compare/main...feature/login?expand=1"
	testRebaseContinueConstant = "git rebase --continue"
	testRemoteDeleteConstant   = "git push origin --delete feature/login"
	testLocalDeleteConstant    = "git branch -d feature/login"
	testPercentBranchConstant  = "feat%d"
	testCreateBranchConstant   = "git switch -c feature/login main"
)

type mapFileReader map[string]string

func (reader mapFileReader) ReadFile(path string) ([]byte, error) {
	contents, exists := reader[path]
	if !exists {
		return nil, fs.ErrNotExist
	}
	return []byte(contents), nil
}

type machineFixture struct {
	repository *testsupport.FakeRepository
	prompter   *testsupport.ScriptedPrompter
	output     *bytes.Buffer
	files      mapFileReader
	logs       *observer.ObservedLogs
}

func newMachineFixture() *machineFixture {
	return &machineFixture{
		repository: testsupport.NewFakeRepository(),
		prompter:   testsupport.NewScriptedPrompter(),
		output:     &bytes.Buffer{},
		files:      mapFileReader{},
	}
}

func (fixture *machineFixture) run(testInstance *testing.T) (workflow.State, error) {
	observerCore, observedLogs := observer.New(zap.InfoLevel)
	fixture.logs = observedLogs
	logger := zap.New(observerCore)
	console := ui.NewConsole(fixture.output)

	commandGate, gateError := gate.NewGate(gate.Dependencies{Client: fixture.repository, Prompter: fixture.prompter, Console: console, Logger: logger})
	require.NoError(testInstance, gateError)
	checker, checkerError := preflight.NewChecker(preflight.Dependencies{Client: fixture.repository, Gate: commandGate, Prompter: fixture.prompter, Console: console, Logger: logger}, preflight.Options{})
	require.NoError(testInstance, checkerError)
	validator, validatorError := branchname.NewValidator(fixture.repository)
	require.NoError(testInstance, validatorError)
	requester, requesterError := branchname.NewRequester(validator, fixture.prompter, console)
	require.NoError(testInstance, requesterError)
	verifier, verifierError := verify.NewVerifier(verify.Dependencies{Client: fixture.repository, Gate: commandGate, Console: console, Logger: logger}, verify.Options{})
	require.NoError(testInstance, verifierError)

	machine, machineError := workflow.NewMachine(workflow.Dependencies{
		Client:          fixture.repository,
		Gate:            commandGate,
		Preflight:       checker,
		BranchRequester: requester,
		Verifier:        verifier,
		Prompter:        fixture.prompter,
		Console:         console,
		FileReader:      fixture.files,
		Logger:          logger,
	}, workflow.Options{RepositoryRoot: testRepositoryRootConstant})
	require.NoError(testInstance, machineError)

	return machine.Run(context.Background())
}

func (fixture *machineFixture) startNewBranch() *machineFixture {
	fixture.prompter.Answer(workflow.QuestionKeyBranchMode, workflow.BranchModeCreate)
	fixture.prompter.Answer(workflow.QuestionKeyBranchName, testBranchNameConstant+"\r")
	fixture.prompter.OnAsk(workflow.QuestionKeyDevelopmentDone, func() {
		fixture.repository.UnstagedChanges = true
	})
	return fixture
}

func TestNewMachineValidatesDependencies(testInstance *testing.T) {
	_, creationError := workflow.NewMachine(workflow.Dependencies{}, workflow.Options{})
	require.ErrorIs(testInstance, creationError, workflow.ErrClientNotConfigured)
}

func TestMachineCompletesFullCycle(testInstance *testing.T) {
	fixture := newMachineFixture().startNewBranch()
	fixture.prompter.Answer(workflow.QuestionKeyMergeConfirmed, "y")
	fixture.prompter.OnAsk(workflow.QuestionKeyMergeConfirmed, func() {
		fixture.repository.MergeRemoteBranch(testBranchNameConstant)
	})

	state, runError := fixture.run(testInstance)
	require.NoError(testInstance, runError)
	require.Equal(testInstance, testBranchNameConstant, state.BranchName)
	require.Len(testInstance, state.CompletedStages, 9)
	require.True(testInstance, state.Verification.Passed())
	require.Len(testInstance, state.Verification.Outcomes, 4)

	require.Equal(testInstance, []string{
		"git switch main",
		"git fetch origin",
		"git pull --ff-only origin main",
		"git switch -c feature/login main",
		"git add -A",
		"git status",
		"git commit -m update",
		"git push -u origin feature/login",
		"git fetch origin",
		"git rebase origin/main",
		"git push --force-with-lease",
		"git switch main",
		"git fetch origin --prune",
		"git pull --ff-only origin main",
		testLocalDeleteConstant,
		testRemoteDeleteConstant,
		"git fetch origin --prune",
	}, fixture.repository.Executed)

	_, localExists := fixture.repository.LocalBranches[testBranchNameConstant]
	require.False(testInstance, localExists)
	_, remoteExists := fixture.repository.RemoteBranches[testBranchNameConstant]
	require.False(testInstance, remoteExists)

	output := fixture.output.String()
	require.Contains(testInstance, output, "Open a pull request: "+testCompareLinkConstant)
	require.Contains(testInstance, output, "PASS branch integration")
	require.Contains(testInstance, output, "Feature cycle complete.")
	require.Contains(testInstance, output, "Completed stages: sync-main, obtain-branch, develop, commit-and-push, rebase-before-review, await-external-merge, resync-main, cleanup, final-verification")

	startedStages := fixture.logs.FilterMessage("stage started").Len()
	require.Equal(testInstance, 9, startedStages)
}

func TestMachinePausesAtDevelopCheckpoint(testInstance *testing.T) {
	fixture := newMachineFixture().startNewBranch()
	fixture.prompter.Answer(workflow.QuestionKeyDevelopmentDone, "n")
	fixture.files[testRepositoryRootConstant+"/CNAME"] = "docs.example.com\n"

	state, runError := fixture.run(testInstance)
	require.NoError(testInstance, runError)
	require.Equal(testInstance, []workflow.Stage{workflow.StageSyncMain, workflow.StageObtainBranch}, state.CompletedStages)
	require.False(testInstance, fixture.repository.ExecutedCommand("git add -A"))

	output := fixture.output.String()
	require.Contains(testInstance, output, "custom domain docs.example.com")
	require.Contains(testInstance, output, "Paused. Run branchflow again and resume feature/login")
	require.Contains(testInstance, output, "Run paused")
}

func TestMachinePausesAtMergeCheckpointWithSSHRemote(testInstance *testing.T) {
	fixture := newMachineFixture().startNewBranch()
	fixture.repository.Remotes["origin"] = "git@github.com:acme/widgets.git"
	fixture.prompter.Answer(workflow.QuestionKeyMergeConfirmed, "n")

	state, runError := fixture.run(testInstance)
	require.NoError(testInstance, runError)
	require.Equal(testInstance, workflow.StageRebaseBeforeReview, state.CompletedStages[len(state.CompletedStages)-1])
	require.False(testInstance, fixture.repository.ExecutedCommand(testLocalDeleteConstant))
	require.Contains(testInstance, fixture.output.String(), "No compare link for remote origin")
	require.NotContains(testInstance, fixture.output.String(), "Open a pull request")
}

func TestMachineStopsBeforeBranchingWhenTreeStaysDirty(testInstance *testing.T) {
	fixture := newMachineFixture().startNewBranch()
	fixture.repository.UnstagedChanges = true

	state, runError := fixture.run(testInstance)
	_, isFatal := preflight.AsFatalPrecondition(runError)
	require.True(testInstance, isFatal)
	require.Empty(testInstance, state.CompletedStages)
	require.Equal(testInstance, []string{"git switch main"}, fixture.repository.Executed)
	require.NotContains(testInstance, fixture.prompter.AskedKeys(), workflow.QuestionKeyBranchName)
}

func TestMachineStopsOutsideRepositoryRoot(testInstance *testing.T) {
	fixture := newMachineFixture()
	fixture.repository.RepositoryRoot = false

	_, runError := fixture.run(testInstance)
	_, isFatal := preflight.AsFatalPrecondition(runError)
	require.True(testInstance, isFatal)
	require.Empty(testInstance, fixture.repository.Executed)
	require.Empty(testInstance, fixture.prompter.Asked)
}

func TestMachineReportsMissingResumedBranch(testInstance *testing.T) {
	fixture := newMachineFixture()
	fixture.prompter.Answer(workflow.QuestionKeyBranchMode, workflow.BranchModeResume)
	fixture.prompter.Answer(workflow.QuestionKeyBranchName, "feature/missing")

	state, runError := fixture.run(testInstance)
	require.ErrorIs(testInstance, runError, workflow.ErrBranchUnavailable)
	require.Equal(testInstance, []workflow.Stage{workflow.StageSyncMain}, state.CompletedStages)
	require.Contains(testInstance, fixture.output.String(), "exit code 128: git switch feature/missing")
	require.Contains(testInstance, fixture.output.String(), "Run stopped during obtain-branch.")
}

func TestMachineSwitchesToExistingBranchOnCreate(testInstance *testing.T) {
	fixture := newMachineFixture().startNewBranch()
	fixture.repository.LocalBranches[testBranchNameConstant] = append([]testsupport.FakeCommit{}, fixture.repository.LocalBranches["main"]...)
	fixture.prompter.Answer(workflow.QuestionKeyDevelopmentDone, "n")

	_, runError := fixture.run(testInstance)
	require.NoError(testInstance, runError)
	require.True(testInstance, fixture.repository.ExecutedCommand("git switch feature/login"))
	require.False(testInstance, fixture.repository.ExecutedCommand("git switch -c feature/login main"))
	require.Contains(testInstance, fixture.output.String(), "already exists; switching to it")
}

func TestMachineContinuesAfterRebaseConflict(testInstance *testing.T) {
	fixture := newMachineFixture().startNewBranch()
	fixture.repository.RebaseConflicts = 1
	fixture.prompter.Answer(testRebaseContinueConstant, "y")
	fixture.prompter.Answer(workflow.QuestionKeyMergeConfirmed, "n")

	state, runError := fixture.run(testInstance)
	require.NoError(testInstance, runError)
	require.True(testInstance, state.Completed(workflow.StageRebaseBeforeReview))
	require.True(testInstance, fixture.repository.ExecutedCommand(testRebaseContinueConstant))

	output := fixture.output.String()
	require.Contains(testInstance, output, "Rebase stopped on conflicts")
	require.Contains(testInstance, output, "Rebase continued.")
}

func TestMachineLeavesUnresolvedRebaseToVerification(testInstance *testing.T) {
	fixture := newMachineFixture().startNewBranch()
	fixture.repository.RebaseConflicts = 2
	fixture.prompter.Answer(testRebaseContinueConstant, "y")
	fixture.prompter.Answer(workflow.QuestionKeyMergeConfirmed, "n")

	state, runError := fixture.run(testInstance)
	require.NoError(testInstance, runError)
	require.True(testInstance, state.Completed(workflow.StageRebaseBeforeReview))
	require.Contains(testInstance, fixture.output.String(), "final verification reports whether the branch was integrated")
}

func TestMachineFailsWhenBranchWasNotIntegrated(testInstance *testing.T) {
	fixture := newMachineFixture().startNewBranch()
	fixture.prompter.Answer(workflow.QuestionKeyMergeConfirmed, "y")
	fixture.prompter.Answer(testRemoteDeleteConstant, "n")

	state, runError := fixture.run(testInstance)
	require.Error(testInstance, runError)
	require.True(testInstance, errors.Is(runError, workflow.ErrVerificationFailed))
	require.True(testInstance, state.Completed(workflow.StageCleanup))
	require.True(testInstance, state.Completed(workflow.StageFinalVerification))
	require.False(testInstance, state.Verification.Passed())

	output := fixture.output.String()
	require.Contains(testInstance, output, "Local branch feature/login was not deleted")
	require.Contains(testInstance, output, "FAIL branch integration: 1 commit(s) of origin/feature/login are not in origin/main")
}

func TestMachinePrintsBranchNamesContainingPercentVerbatim(testInstance *testing.T) {
	fixture := newMachineFixture()
	fixture.prompter.Answer(workflow.QuestionKeyBranchMode, workflow.BranchModeCreate)
	fixture.prompter.Answer(workflow.QuestionKeyBranchName, testPercentBranchConstant)
	fixture.prompter.Answer(workflow.QuestionKeyDevelopmentDone, "n")

	state, runError := fixture.run(testInstance)
	require.NoError(testInstance, runError)
	require.Equal(testInstance, testPercentBranchConstant, state.BranchName)

	output := fixture.output.String()
	require.Contains(testInstance, output, "resume "+testPercentBranchConstant+" when the changes are ready")
	require.NotContains(testInstance, output, "%!")
}

func TestMachineDefaultsPushesToNoWhenBranchSwitchDeclined(testInstance *testing.T) {
	fixture := newMachineFixture().startNewBranch()
	fixture.prompter.Answer(testCreateBranchConstant, "n")
	fixture.prompter.Answer(workflow.QuestionKeyMergeConfirmed, "n")

	state, runError := fixture.run(testInstance)
	require.NoError(testInstance, runError)
	require.False(testInstance, state.OnWorkingBranch)
	require.Equal(testInstance, "main", fixture.repository.CurrentBranch)
	require.False(testInstance, fixture.repository.ExecutedCommand("git push"))
	require.False(testInstance, fixture.repository.ExecutedCommand("git push --force-with-lease"))

	output := fixture.output.String()
	require.Contains(testInstance, output, "Switch to feature/login skipped")
	require.Contains(testInstance, output, "The switch to feature/login was skipped, so this push publishes the current branch instead.")
	require.Contains(testInstance, output, "skipped: git push\n")
}

func TestMachinePushesByDefaultOnWorkingBranch(testInstance *testing.T) {
	fixture := newMachineFixture().startNewBranch()
	fixture.prompter.Answer(workflow.QuestionKeyMergeConfirmed, "n")

	state, runError := fixture.run(testInstance)
	require.NoError(testInstance, runError)
	require.True(testInstance, state.OnWorkingBranch)
	require.True(testInstance, fixture.repository.ExecutedCommand("git push -u origin feature/login"))
	require.True(testInstance, fixture.repository.ExecutedCommand("git push --force-with-lease"))
	require.NotContains(testInstance, fixture.output.String(), "this push publishes the current branch")
}
