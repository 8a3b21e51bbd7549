package testsupport_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/branchflow/internal/gitclient"
	"github.com/temirov/branchflow/internal/testsupport"
)

const (
	testFeatureBranchConstant = "feature/fake"
	testMainBranchConstant    = "main"
	testRemoteNameConstant    = "origin"
)

func publishFeature(testInstance *testing.T, repository *testsupport.FakeRepository) {
	testInstance.Helper()
	executionContext := context.Background()

	for _, command := range []gitclient.Command{
		gitclient.CreateBranch(testFeatureBranchConstant, testMainBranchConstant),
	} {
		result, runError := repository.Run(executionContext, command)
		require.NoError(testInstance, runError)
		require.Zero(testInstance, result.ExitCode, command.String())
	}

	repository.UnstagedChanges = true
	for _, command := range []gitclient.Command{
		gitclient.AddAll(),
		gitclient.Commit("feature work"),
		gitclient.PushSetUpstream(testRemoteNameConstant, testFeatureBranchConstant),
		gitclient.SwitchBranch(testMainBranchConstant),
	} {
		result, runError := repository.Run(executionContext, command)
		require.NoError(testInstance, runError)
		require.Zero(testInstance, result.ExitCode, command.String())
	}
}

func TestFakeRepositoryDeleteBranchFollowsMergeStrategy(testInstance *testing.T) {
	testCases := []struct {
		name             string
		merge            func(repository *testsupport.FakeRepository)
		expectedExitCode int
		expectedCherry   string
		expectedAncestor bool
	}{
		{
			name: "merge_commit",
			merge: func(repository *testsupport.FakeRepository) {
				repository.MergeRemoteBranch(testFeatureBranchConstant)
			},
			expectedExitCode: 0,
			expectedCherry:   "",
			expectedAncestor: true,
		},
		{
			name: "squash_merge",
			merge: func(repository *testsupport.FakeRepository) {
				repository.SquashMergeRemoteBranch(testFeatureBranchConstant)
			},
			expectedExitCode: 1,
			expectedCherry:   "- c1\n",
			expectedAncestor: false,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executionContext := context.Background()
			repository := testsupport.NewFakeRepository()
			publishFeature(testInstance, repository)
			testCase.merge(repository)

			pullResult, pullError := repository.Run(executionContext, gitclient.PullFastForward(testRemoteNameConstant, testMainBranchConstant))
			require.NoError(testInstance, pullError)
			require.Zero(testInstance, pullResult.ExitCode)

			cherryOutput, cherryError := repository.Cherry(executionContext, "origin/main", "origin/"+testFeatureBranchConstant)
			require.NoError(testInstance, cherryError)
			require.Equal(testInstance, testCase.expectedCherry, cherryOutput)

			ancestor, ancestorError := repository.IsAncestor(executionContext, "refs/remotes/origin/"+testFeatureBranchConstant, "origin/main")
			require.NoError(testInstance, ancestorError)
			require.Equal(testInstance, testCase.expectedAncestor, ancestor)

			deleteResult, deleteError := repository.Run(executionContext, gitclient.DeleteLocalBranch(testFeatureBranchConstant))
			require.NoError(testInstance, deleteError)
			require.Equal(testInstance, testCase.expectedExitCode, deleteResult.ExitCode)

			diffEmpty, diffError := repository.ReferencesDiffEmpty(executionContext, testMainBranchConstant, "origin/main")
			require.NoError(testInstance, diffError)
			require.True(testInstance, diffEmpty)
		})
	}
}

func TestFakeRepositoryRebaseConflictLifecycle(testInstance *testing.T) {
	executionContext := context.Background()
	repository := testsupport.NewFakeRepository()
	publishFeature(testInstance, repository)
	repository.PushRemoteCommit(testMainBranchConstant, "upstream")
	repository.RebaseConflicts = 1

	_, switchError := repository.Run(executionContext, gitclient.SwitchBranch(testFeatureBranchConstant))
	require.NoError(testInstance, switchError)
	_, fetchError := repository.Run(executionContext, gitclient.Fetch(testRemoteNameConstant))
	require.NoError(testInstance, fetchError)

	rebaseResult, rebaseError := repository.Run(executionContext, gitclient.Rebase("origin/main"))
	require.NoError(testInstance, rebaseError)
	require.Equal(testInstance, 1, rebaseResult.ExitCode)

	operation, operationError := repository.InProgressOperation(executionContext)
	require.NoError(testInstance, operationError)
	require.Equal(testInstance, gitclient.OperationRebase, operation)

	continueResult, continueError := repository.Run(executionContext, gitclient.RebaseContinue())
	require.NoError(testInstance, continueError)
	require.Zero(testInstance, continueResult.ExitCode)

	ancestor, ancestorError := repository.IsAncestor(executionContext, "origin/main", testFeatureBranchConstant)
	require.NoError(testInstance, ancestorError)
	require.True(testInstance, ancestor)

	staleResult, staleError := repository.Run(executionContext, gitclient.Push())
	require.NoError(testInstance, staleError)
	require.Equal(testInstance, 1, staleResult.ExitCode)

	leaseResult, leaseError := repository.Run(executionContext, gitclient.PushForceWithLease())
	require.NoError(testInstance, leaseError)
	require.Zero(testInstance, leaseResult.ExitCode)
}

func TestFakeRepositoryForcedFailures(testInstance *testing.T) {
	repository := testsupport.NewFakeRepository()
	repository.FailingCommands["git fetch origin"] = 128

	result, runError := repository.Run(context.Background(), gitclient.Fetch(testRemoteNameConstant))
	require.NoError(testInstance, runError)
	require.Equal(testInstance, 128, result.ExitCode)
	require.True(testInstance, repository.ExecutedCommand("git fetch origin"))
	require.False(testInstance, repository.ExecutedCommand("git pull --ff-only origin main"))
}
