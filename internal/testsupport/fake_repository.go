package testsupport

import (
	"context"
	"fmt"
	"strings"

	"github.com/temirov/branchflow/internal/execshell"
	"github.com/temirov/branchflow/internal/gitclient"
)

const (
	defaultRemoteNameConstant         = "origin"
	defaultRemoteURLConstant          = "https://github.com/acme/widgets.git"
	defaultMainBranchConstant         = "main"
	initialCommitIdentifierConstant   = "c0"
	initialCommitPatchConstant        = "initial"
	commitIdentifierTemplateConstant  = "c%d"
	commitPatchTemplateConstant       = "p%d"
	rewrittenIdentifierTemplate       = "%s'"
	squashIdentifierTemplateConstant  = "s%d"
	squashPatchSeparatorConstant      = "+"
	leftRightTemplateConstant         = "%d\t%d\n"
	cherryLineTemplateConstant        = "%s %s\n"
	cherryUnappliedMarkerConstant     = "+"
	cherryAppliedMarkerConstant       = "-"
	localReferencePrefixConstant      = "refs/heads/"
	remoteReferencePrefixConstant     = "refs/remotes/"
	referencePathSeparatorConstant    = "/"
	pruneFlagConstant                 = "--prune"
	invalidReferenceTemplateConstant  = "fatal: invalid reference: %s\n"
	branchExistsTemplateConstant      = "fatal: a branch named '%s' already exists\n"
	nonFastForwardMessageConstant     = "fatal: Not possible to fast-forward, aborting.\n"
	nothingToCommitMessageConstant    = "nothing to commit, working tree clean\n"
	noUpstreamTemplateConstant        = "fatal: The current branch %s has no upstream branch.\n"
	pushRejectedMessageConstant       = "! [rejected] (non-fast-forward)\n"
	staleInfoMessageConstant          = "! [rejected] (stale info)\n"
	rebaseConflictMessageConstant     = "CONFLICT (content): Merge conflict in README.md\n"
	noRebaseMessageConstant           = "fatal: No rebase in progress?\n"
	noMergeMessageConstant            = "fatal: There is no merge to abort (MERGE_HEAD missing).\n"
	deleteCurrentTemplateConstant     = "error: cannot delete branch '%s' used by worktree\n"
	branchNotFoundTemplateConstant    = "error: branch '%s' not found.\n"
	notFullyMergedTemplateConstant    = "error: the branch '%s' is not fully merged.\n"
	remoteRefMissingTemplateConstant  = "error: unable to delete '%s': remote ref does not exist\n"
	unsupportedCommandTemplate        = "fake repository does not support %s\n"
	statusTemplateConstant            = "On branch %s\n"
	forcedFailureMessageConstant      = "forced failure\n"
	unknownReferenceTemplateConstant  = "unknown reference %s"
	invalidBranchNameTemplateConstant = "fatal: '%s' is not a valid branch name\n"
	exitCodeFailureConstant           = 1
	exitCodeFatalConstant             = 128
)

// FakeCommit is a commit in the in-memory history. Patch identifies its content change.
type FakeCommit struct {
	Identifier string
	Patch      string
}

// FakeRepository models a working copy, its remote and its remote-tracking references in memory.
type FakeRepository struct {
	RepositoryRoot    bool
	Remotes           map[string]string
	Operation         gitclient.Operation
	UnstagedChanges   bool
	StagedChanges     bool
	CurrentBranch     string
	LocalBranches     map[string][]FakeCommit
	RemoteBranches    map[string][]FakeCommit
	TrackingBranches  map[string][]FakeCommit
	Upstreams         map[string]bool
	RebaseConflicts   int
	FailingCommands   map[string]int
	Executed          []string
	remoteName        string
	commitSequence    int
	squashSequence    int
	pendingRebaseOnto string
}

// NewFakeRepository constructs a clean repository on main that matches its remote.
func NewFakeRepository() *FakeRepository {
	initialHistory := []FakeCommit{{Identifier: initialCommitIdentifierConstant, Patch: initialCommitPatchConstant}}
	return &FakeRepository{
		RepositoryRoot:   true,
		Remotes:          map[string]string{defaultRemoteNameConstant: defaultRemoteURLConstant},
		CurrentBranch:    defaultMainBranchConstant,
		LocalBranches:    map[string][]FakeCommit{defaultMainBranchConstant: copyHistory(initialHistory)},
		RemoteBranches:   map[string][]FakeCommit{defaultMainBranchConstant: copyHistory(initialHistory)},
		TrackingBranches: map[string][]FakeCommit{defaultMainBranchConstant: copyHistory(initialHistory)},
		Upstreams:        map[string]bool{defaultMainBranchConstant: true},
		FailingCommands:  map[string]int{},
		remoteName:       defaultRemoteNameConstant,
	}
}

// MergeRemoteBranch simulates a hosting platform merging a pushed branch into the remote main branch.
// Commits missing from main are appended with their identity preserved.
func (repository *FakeRepository) MergeRemoteBranch(branchName string) {
	mainHistory := repository.RemoteBranches[defaultMainBranchConstant]
	present := identifierSet(mainHistory)
	for _, commit := range repository.RemoteBranches[branchName] {
		if !present[commit.Identifier] {
			mainHistory = append(mainHistory, commit)
		}
	}
	repository.RemoteBranches[defaultMainBranchConstant] = mainHistory
}

// SquashMergeRemoteBranch simulates a squash merge: the branch content lands in main as one new commit.
func (repository *FakeRepository) SquashMergeRemoteBranch(branchName string) {
	mainHistory := repository.RemoteBranches[defaultMainBranchConstant]
	present := identifierSet(mainHistory)
	patches := make([]string, 0)
	for _, commit := range repository.RemoteBranches[branchName] {
		if !present[commit.Identifier] {
			patches = append(patches, commit.Patch)
		}
	}
	repository.squashSequence++
	squashed := FakeCommit{
		Identifier: fmt.Sprintf(squashIdentifierTemplateConstant, repository.squashSequence),
		Patch:      strings.Join(patches, squashPatchSeparatorConstant),
	}
	repository.RemoteBranches[defaultMainBranchConstant] = append(mainHistory, squashed)
}

// PushRemoteCommit simulates another contributor advancing a remote branch.
func (repository *FakeRepository) PushRemoteCommit(branchName string, patch string) {
	repository.commitSequence++
	commit := FakeCommit{Identifier: fmt.Sprintf(commitIdentifierTemplateConstant, repository.commitSequence), Patch: patch}
	repository.RemoteBranches[branchName] = append(copyHistory(repository.RemoteBranches[branchName]), commit)
}

// ExecutedCommand reports whether a command with the given literal text was run.
func (repository *FakeRepository) ExecutedCommand(commandText string) bool {
	for _, executed := range repository.Executed {
		if executed == commandText {
			return true
		}
	}
	return false
}

// Run implements gitclient.Client.
func (repository *FakeRepository) Run(executionContext context.Context, command gitclient.Command) (execshell.ExecutionResult, error) {
	commandText := command.String()
	repository.Executed = append(repository.Executed, commandText)
	if exitCode, failing := repository.FailingCommands[commandText]; failing {
		return failure(exitCode, forcedFailureMessageConstant), nil
	}

	arguments := command.Arguments
	if len(arguments) == 0 {
		return failure(exitCodeFailureConstant, fmt.Sprintf(unsupportedCommandTemplate, commandText)), nil
	}

	switch arguments[0] {
	case "switch":
		return repository.runSwitch(arguments[1:]), nil
	case "fetch":
		return repository.runFetch(arguments[1:]), nil
	case "pull":
		return repository.runPull(arguments[1:]), nil
	case "add":
		if repository.UnstagedChanges {
			repository.StagedChanges = true
			repository.UnstagedChanges = false
		}
		return success(""), nil
	case "status":
		return success(fmt.Sprintf(statusTemplateConstant, repository.CurrentBranch)), nil
	case "commit":
		return repository.runCommit(), nil
	case "push":
		return repository.runPush(arguments[1:]), nil
	case "rebase":
		return repository.runRebase(arguments[1:]), nil
	case "merge":
		if repository.Operation != gitclient.OperationMerge {
			return failure(exitCodeFatalConstant, noMergeMessageConstant), nil
		}
		repository.Operation = gitclient.OperationNone
		return success(""), nil
	case "stash", "reset":
		repository.UnstagedChanges = false
		repository.StagedChanges = false
		return success(""), nil
	case "branch":
		return repository.runDeleteBranch(arguments[len(arguments)-1]), nil
	default:
		return failure(exitCodeFailureConstant, fmt.Sprintf(unsupportedCommandTemplate, commandText)), nil
	}
}

func (repository *FakeRepository) runSwitch(arguments []string) execshell.ExecutionResult {
	if len(arguments) == 3 && arguments[0] == "-c" {
		branchName := arguments[1]
		if _, exists := repository.LocalBranches[branchName]; exists {
			return failure(exitCodeFatalConstant, fmt.Sprintf(branchExistsTemplateConstant, branchName))
		}
		startHistory, resolved := repository.resolve(arguments[2])
		if !resolved {
			return failure(exitCodeFatalConstant, fmt.Sprintf(invalidReferenceTemplateConstant, arguments[2]))
		}
		repository.LocalBranches[branchName] = copyHistory(startHistory)
		repository.CurrentBranch = branchName
		return success("")
	}

	branchName := arguments[len(arguments)-1]
	if _, exists := repository.LocalBranches[branchName]; !exists {
		return failure(exitCodeFatalConstant, fmt.Sprintf(invalidReferenceTemplateConstant, branchName))
	}
	repository.CurrentBranch = branchName
	return success("")
}

func (repository *FakeRepository) runFetch(arguments []string) execshell.ExecutionResult {
	for branchName, history := range repository.RemoteBranches {
		repository.TrackingBranches[branchName] = copyHistory(history)
	}
	if containsArgument(arguments, pruneFlagConstant) {
		for branchName := range repository.TrackingBranches {
			if _, exists := repository.RemoteBranches[branchName]; !exists {
				delete(repository.TrackingBranches, branchName)
			}
		}
	}
	return success("")
}

func (repository *FakeRepository) runPull(arguments []string) execshell.ExecutionResult {
	branchName := arguments[len(arguments)-1]
	remoteHistory := repository.RemoteBranches[branchName]
	repository.TrackingBranches[branchName] = copyHistory(remoteHistory)

	localHistory := repository.LocalBranches[repository.CurrentBranch]
	if !isPrefix(localHistory, remoteHistory) {
		return failure(exitCodeFatalConstant, nonFastForwardMessageConstant)
	}
	repository.LocalBranches[repository.CurrentBranch] = copyHistory(remoteHistory)
	return success("")
}

func (repository *FakeRepository) runCommit() execshell.ExecutionResult {
	if !repository.StagedChanges {
		return failure(exitCodeFailureConstant, nothingToCommitMessageConstant)
	}
	repository.commitSequence++
	commit := FakeCommit{
		Identifier: fmt.Sprintf(commitIdentifierTemplateConstant, repository.commitSequence),
		Patch:      fmt.Sprintf(commitPatchTemplateConstant, repository.commitSequence),
	}
	repository.LocalBranches[repository.CurrentBranch] = append(repository.LocalBranches[repository.CurrentBranch], commit)
	repository.StagedChanges = false
	return success("")
}

func (repository *FakeRepository) runPush(arguments []string) execshell.ExecutionResult {
	switch {
	case len(arguments) == 3 && arguments[0] == "-u":
		branchName := arguments[2]
		if !isPrefix(repository.RemoteBranches[branchName], repository.LocalBranches[branchName]) {
			return failure(exitCodeFailureConstant, pushRejectedMessageConstant)
		}
		repository.publish(branchName)
		repository.Upstreams[branchName] = true
		return success("")
	case len(arguments) == 3 && arguments[1] == "--delete":
		branchName := arguments[2]
		if _, exists := repository.RemoteBranches[branchName]; !exists {
			return failure(exitCodeFailureConstant, fmt.Sprintf(remoteRefMissingTemplateConstant, branchName))
		}
		delete(repository.RemoteBranches, branchName)
		delete(repository.TrackingBranches, branchName)
		return success("")
	}

	branchName := repository.CurrentBranch
	if !repository.Upstreams[branchName] {
		return failure(exitCodeFatalConstant, fmt.Sprintf(noUpstreamTemplateConstant, branchName))
	}
	if containsArgument(arguments, "--force-with-lease") {
		if !sameHistory(repository.RemoteBranches[branchName], repository.TrackingBranches[branchName]) {
			return failure(exitCodeFailureConstant, staleInfoMessageConstant)
		}
		repository.publish(branchName)
		return success("")
	}
	if !isPrefix(repository.RemoteBranches[branchName], repository.LocalBranches[branchName]) {
		return failure(exitCodeFailureConstant, pushRejectedMessageConstant)
	}
	repository.publish(branchName)
	return success("")
}

func (repository *FakeRepository) runRebase(arguments []string) execshell.ExecutionResult {
	switch arguments[0] {
	case "--continue":
		if repository.Operation != gitclient.OperationRebase {
			return failure(exitCodeFatalConstant, noRebaseMessageConstant)
		}
		if repository.RebaseConflicts > 0 {
			repository.RebaseConflicts--
			return failure(exitCodeFailureConstant, rebaseConflictMessageConstant)
		}
		repository.Operation = gitclient.OperationNone
		repository.rebaseOnto(repository.pendingRebaseOnto)
		return success("")
	case "--abort":
		if repository.Operation != gitclient.OperationRebase {
			return failure(exitCodeFatalConstant, noRebaseMessageConstant)
		}
		repository.Operation = gitclient.OperationNone
		return success("")
	}

	ontoReference := arguments[0]
	if _, resolved := repository.resolve(ontoReference); !resolved {
		return failure(exitCodeFatalConstant, fmt.Sprintf(invalidReferenceTemplateConstant, ontoReference))
	}
	if repository.RebaseConflicts > 0 {
		repository.RebaseConflicts--
		repository.Operation = gitclient.OperationRebase
		repository.pendingRebaseOnto = ontoReference
		return failure(exitCodeFailureConstant, rebaseConflictMessageConstant)
	}
	repository.rebaseOnto(ontoReference)
	return success("")
}

func (repository *FakeRepository) rebaseOnto(ontoReference string) {
	baseHistory, _ := repository.resolve(ontoReference)
	currentHistory := repository.LocalBranches[repository.CurrentBranch]
	if isPrefix(baseHistory, currentHistory) {
		return
	}

	baseIdentifiers := identifierSet(baseHistory)
	basePatches := patchSet(baseHistory)
	rebased := copyHistory(baseHistory)
	for _, commit := range currentHistory {
		if baseIdentifiers[commit.Identifier] || basePatches[commit.Patch] {
			continue
		}
		rebased = append(rebased, FakeCommit{Identifier: fmt.Sprintf(rewrittenIdentifierTemplate, commit.Identifier), Patch: commit.Patch})
	}
	repository.LocalBranches[repository.CurrentBranch] = rebased
}

func (repository *FakeRepository) runDeleteBranch(branchName string) execshell.ExecutionResult {
	history, exists := repository.LocalBranches[branchName]
	if !exists {
		return failure(exitCodeFailureConstant, fmt.Sprintf(branchNotFoundTemplateConstant, branchName))
	}
	if branchName == repository.CurrentBranch {
		return failure(exitCodeFailureConstant, fmt.Sprintf(deleteCurrentTemplateConstant, branchName))
	}
	merged := identifierSet(repository.LocalBranches[repository.CurrentBranch])
	for _, commit := range history {
		if !merged[commit.Identifier] {
			return failure(exitCodeFailureConstant, fmt.Sprintf(notFullyMergedTemplateConstant, branchName))
		}
	}
	delete(repository.LocalBranches, branchName)
	delete(repository.Upstreams, branchName)
	return success("")
}

func (repository *FakeRepository) publish(branchName string) {
	repository.RemoteBranches[branchName] = copyHistory(repository.LocalBranches[branchName])
	repository.TrackingBranches[branchName] = copyHistory(repository.LocalBranches[branchName])
}

// IsRepositoryRoot implements gitclient.Client.
func (repository *FakeRepository) IsRepositoryRoot(executionContext context.Context) (bool, error) {
	return repository.RepositoryRoot, nil
}

// RemoteURL implements gitclient.Client.
func (repository *FakeRepository) RemoteURL(executionContext context.Context, remoteName string) (string, bool, error) {
	remoteURL, exists := repository.Remotes[remoteName]
	return remoteURL, exists, nil
}

// InProgressOperation implements gitclient.Client.
func (repository *FakeRepository) InProgressOperation(executionContext context.Context) (gitclient.Operation, error) {
	return repository.Operation, nil
}

// UnstagedDiffEmpty implements gitclient.Client.
func (repository *FakeRepository) UnstagedDiffEmpty(executionContext context.Context) (bool, error) {
	return !repository.UnstagedChanges, nil
}

// StagedDiffEmpty implements gitclient.Client.
func (repository *FakeRepository) StagedDiffEmpty(executionContext context.Context) (bool, error) {
	return !repository.StagedChanges, nil
}

// ReferencesDiffEmpty implements gitclient.Client by comparing the applied patches of both references.
func (repository *FakeRepository) ReferencesDiffEmpty(executionContext context.Context, fromReference string, toReference string) (bool, error) {
	fromHistory, fromResolved := repository.resolve(fromReference)
	if !fromResolved {
		return false, fmt.Errorf(unknownReferenceTemplateConstant, fromReference)
	}
	toHistory, toResolved := repository.resolve(toReference)
	if !toResolved {
		return false, fmt.Errorf(unknownReferenceTemplateConstant, toReference)
	}
	fromPatches := patchSet(fromHistory)
	toPatches := patchSet(toHistory)
	if len(fromPatches) != len(toPatches) {
		return false, nil
	}
	for patch := range fromPatches {
		if !toPatches[patch] {
			return false, nil
		}
	}
	return true, nil
}

// LeftRightCount implements gitclient.Client.
func (repository *FakeRepository) LeftRightCount(executionContext context.Context, leftReference string, rightReference string) (string, error) {
	leftHistory, leftResolved := repository.resolve(leftReference)
	if !leftResolved {
		return "", fmt.Errorf(unknownReferenceTemplateConstant, leftReference)
	}
	rightHistory, rightResolved := repository.resolve(rightReference)
	if !rightResolved {
		return "", fmt.Errorf(unknownReferenceTemplateConstant, rightReference)
	}
	return fmt.Sprintf(leftRightTemplateConstant, countMissing(leftHistory, rightHistory), countMissing(rightHistory, leftHistory)), nil
}

// Cherry implements gitclient.Client.
func (repository *FakeRepository) Cherry(executionContext context.Context, upstreamReference string, headReference string) (string, error) {
	upstreamHistory, upstreamResolved := repository.resolve(upstreamReference)
	if !upstreamResolved {
		return "", fmt.Errorf(unknownReferenceTemplateConstant, upstreamReference)
	}
	headHistory, headResolved := repository.resolve(headReference)
	if !headResolved {
		return "", fmt.Errorf(unknownReferenceTemplateConstant, headReference)
	}

	upstreamIdentifiers := identifierSet(upstreamHistory)
	upstreamPatches := patchSet(upstreamHistory)
	var builder strings.Builder
	for _, commit := range headHistory {
		if upstreamIdentifiers[commit.Identifier] {
			continue
		}
		marker := cherryUnappliedMarkerConstant
		if upstreamPatches[commit.Patch] {
			marker = cherryAppliedMarkerConstant
		}
		builder.WriteString(fmt.Sprintf(cherryLineTemplateConstant, marker, commit.Identifier))
	}
	return builder.String(), nil
}

// CheckBranchName implements gitclient.Client with a subset of the reference-name grammar.
func (repository *FakeRepository) CheckBranchName(executionContext context.Context, branchName string) (bool, string, error) {
	invalid := len(branchName) == 0 ||
		strings.ContainsAny(branchName, " ~^:?*[\\\t") ||
		strings.Contains(branchName, "..") ||
		strings.Contains(branchName, "@{") ||
		strings.Contains(branchName, "//") ||
		strings.HasPrefix(branchName, "/") ||
		strings.HasPrefix(branchName, "-") ||
		strings.HasSuffix(branchName, "/") ||
		strings.HasSuffix(branchName, ".") ||
		strings.HasSuffix(branchName, ".lock")
	if invalid {
		return false, fmt.Sprintf(invalidBranchNameTemplateConstant, branchName), nil
	}
	return true, "", nil
}

// ReferenceExists implements gitclient.Client.
func (repository *FakeRepository) ReferenceExists(executionContext context.Context, reference string) (bool, error) {
	_, resolved := repository.resolve(reference)
	return resolved, nil
}

// IsAncestor implements gitclient.Client.
func (repository *FakeRepository) IsAncestor(executionContext context.Context, ancestorReference string, descendantReference string) (bool, error) {
	ancestorHistory, ancestorResolved := repository.resolve(ancestorReference)
	if !ancestorResolved {
		return false, fmt.Errorf(unknownReferenceTemplateConstant, ancestorReference)
	}
	descendantHistory, descendantResolved := repository.resolve(descendantReference)
	if !descendantResolved {
		return false, fmt.Errorf(unknownReferenceTemplateConstant, descendantReference)
	}
	return countMissing(ancestorHistory, descendantHistory) == 0, nil
}

// HasUpstream implements gitclient.Client.
func (repository *FakeRepository) HasUpstream(executionContext context.Context) (bool, error) {
	return repository.Upstreams[repository.CurrentBranch], nil
}

func (repository *FakeRepository) resolve(reference string) ([]FakeCommit, bool) {
	if strings.HasPrefix(reference, localReferencePrefixConstant) {
		history, exists := repository.LocalBranches[strings.TrimPrefix(reference, localReferencePrefixConstant)]
		return history, exists
	}
	remotePrefix := repository.remoteName + referencePathSeparatorConstant
	if strings.HasPrefix(reference, remoteReferencePrefixConstant+remotePrefix) {
		history, exists := repository.TrackingBranches[strings.TrimPrefix(reference, remoteReferencePrefixConstant+remotePrefix)]
		return history, exists
	}
	if strings.HasPrefix(reference, remotePrefix) {
		history, exists := repository.TrackingBranches[strings.TrimPrefix(reference, remotePrefix)]
		return history, exists
	}
	history, exists := repository.LocalBranches[reference]
	return history, exists
}

func success(standardOutput string) execshell.ExecutionResult {
	return execshell.ExecutionResult{StandardOutput: standardOutput}
}

func failure(exitCode int, standardError string) execshell.ExecutionResult {
	return execshell.ExecutionResult{StandardError: standardError, ExitCode: exitCode}
}

func copyHistory(history []FakeCommit) []FakeCommit {
	return append([]FakeCommit{}, history...)
}

func identifierSet(history []FakeCommit) map[string]bool {
	identifiers := make(map[string]bool, len(history))
	for _, commit := range history {
		identifiers[commit.Identifier] = true
	}
	return identifiers
}

func patchSet(history []FakeCommit) map[string]bool {
	patches := make(map[string]bool, len(history))
	for _, commit := range history {
		patches[commit.Patch] = true
	}
	return patches
}

// countMissing counts commits of source that are absent from target.
func countMissing(source []FakeCommit, target []FakeCommit) int {
	present := identifierSet(target)
	missing := 0
	for _, commit := range source {
		if !present[commit.Identifier] {
			missing++
		}
	}
	return missing
}

func isPrefix(prefix []FakeCommit, history []FakeCommit) bool {
	if len(prefix) > len(history) {
		return false
	}
	for index := range prefix {
		if prefix[index].Identifier != history[index].Identifier {
			return false
		}
	}
	return true
}

func sameHistory(first []FakeCommit, second []FakeCommit) bool {
	return len(first) == len(second) && isPrefix(first, second)
}

func containsArgument(arguments []string, expected string) bool {
	for _, argument := range arguments {
		if argument == expected {
			return true
		}
	}
	return false
}
