package gitclient

import (
	"strconv"
	"strings"
)

const (
	gitExecutableNameConstant        = "git"
	commandTextSeparatorConstant     = " "
	shellSensitiveCharactersConstant = " \t\n\"'$`\\"
)

// Command is a git invocation proposed to the user before it runs.
type Command struct {
	Arguments []string
}

// NewCommand constructs a Command from git arguments.
func NewCommand(arguments ...string) Command {
	return Command{Arguments: append([]string{}, arguments...)}
}

// String renders the literal command line, quoting arguments that need it.
func (command Command) String() string {
	parts := make([]string, 0, len(command.Arguments)+1)
	parts = append(parts, gitExecutableNameConstant)
	for _, argument := range command.Arguments {
		if len(argument) == 0 || strings.ContainsAny(argument, shellSensitiveCharactersConstant) {
			parts = append(parts, strconv.Quote(argument))
			continue
		}
		parts = append(parts, argument)
	}
	return strings.Join(parts, commandTextSeparatorConstant)
}

// SwitchBranch switches the working copy to an existing branch.
func SwitchBranch(branchName string) Command {
	return NewCommand("switch", branchName)
}

// CreateBranch creates branchName from startPoint and switches to it.
func CreateBranch(branchName string, startPoint string) Command {
	return NewCommand("switch", "-c", branchName, startPoint)
}

// Fetch downloads objects and refs from a remote.
func Fetch(remoteName string) Command {
	return NewCommand("fetch", remoteName)
}

// FetchPrune fetches and removes remote-tracking refs that no longer exist upstream.
func FetchPrune(remoteName string) Command {
	return NewCommand("fetch", remoteName, "--prune")
}

// PullFastForward integrates a remote branch only when no merge commit is needed.
func PullFastForward(remoteName string, branchName string) Command {
	return NewCommand("pull", "--ff-only", remoteName, branchName)
}

// AddAll stages every change including untracked files.
func AddAll() Command {
	return NewCommand("add", "-A")
}

// Status shows the working tree status.
func Status() Command {
	return NewCommand("status")
}

// Commit records the staged changes.
func Commit(message string) Command {
	return NewCommand("commit", "-m", message)
}

// PushSetUpstream pushes a branch and records its upstream.
func PushSetUpstream(remoteName string, branchName string) Command {
	return NewCommand("push", "-u", remoteName, branchName)
}

// Push pushes the current branch to its configured upstream.
func Push() Command {
	return NewCommand("push")
}

// PushForceWithLease rewrites the upstream branch only if it still matches the last fetched state.
func PushForceWithLease() Command {
	return NewCommand("push", "--force-with-lease")
}

// Rebase replays the current branch onto the given reference.
func Rebase(ontoReference string) Command {
	return NewCommand("rebase", ontoReference)
}

// RebaseContinue resumes a rebase stopped on conflicts.
func RebaseContinue() Command {
	return NewCommand("rebase", "--continue")
}

// RebaseAbort abandons an in-progress rebase.
func RebaseAbort() Command {
	return NewCommand("rebase", "--abort")
}

// MergeAbort abandons an in-progress merge.
func MergeAbort() Command {
	return NewCommand("merge", "--abort")
}

// StashAll stashes tracked and untracked changes.
func StashAll() Command {
	return NewCommand("stash", "push", "--include-untracked")
}

// ResetHard discards all local modifications of tracked files.
func ResetHard() Command {
	return NewCommand("reset", "--hard", "HEAD")
}

// DeleteLocalBranch deletes a fully merged local branch.
func DeleteLocalBranch(branchName string) Command {
	return NewCommand("branch", "-d", branchName)
}

// DeleteRemoteBranch deletes a branch on the remote.
func DeleteRemoteBranch(remoteName string, branchName string) Command {
	return NewCommand("push", remoteName, "--delete", branchName)
}
