package workflow

import (
	"context"

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

// Operation executes a single stage of the cycle.
type Operation interface {
	Stage() Stage
	Execute(executionContext context.Context, environment *Environment, state *State) (StageResult, error)
}

// FileReader reads repository files such as CNAME.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// Options configures branch and remote names and defaults used by the stages.
type Options struct {
	MainBranch           string
	RemoteName           string
	DefaultCommitMessage string
	RepositoryRoot       string
}

// Environment exposes shared collaborators to every stage.
type Environment struct {
	Client          gitclient.Client
	Gate            *gate.Gate
	Preflight       *preflight.Checker
	BranchRequester *branchname.Requester
	Verifier        *verify.Verifier
	LinkDeriver     gitrepo.LinkDeriver
	Prompter        prompt.Prompter
	Console         *ui.Console
	FileReader      FileReader
	Logger          *zap.Logger
	Options         Options
}
