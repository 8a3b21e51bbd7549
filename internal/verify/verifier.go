package verify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/branchflow/internal/gate"
	"github.com/temirov/branchflow/internal/gitclient"
	"github.com/temirov/branchflow/internal/ui"
)

// Check names, in evaluation order.
const (
	CheckMainAlignment    = "main alignment"
	CheckCleanTree        = "clean tree"
	CheckNoContentDiff    = "no content diff"
	CheckBranchIntegrated = "branch integration"
)

const (
	defaultMainBranchConstant         = "main"
	defaultRemoteNameConstant         = "origin"
	verificationSectionTitleConstant  = "Final verification"
	alignedDetailTemplateConstant     = "%s and %s point at the same history"
	misalignedDetailTemplateConstant  = "%s and %s diverge (left/right: %s)"
	cleanTreeDetailConstant           = "no staged or unstaged changes"
	dirtyTreeDetailConstant           = "uncommitted changes remain"
	noContentDiffDetailTemplate       = "%s and %s have identical content"
	contentDiffDetailTemplateConstant = "%s and %s differ in content"
	remoteBranchGoneDetailTemplate    = "%s no longer exists on the remote; treated as merged"
	ancestorDetailTemplateConstant    = "%s is contained in %s"
	patchesPresentDetailTemplate      = "every patch of %s is present in %s"
	patchesMissingDetailTemplate      = "%d commit(s) of %s are not in %s"
	queryFailedDetailTemplateConstant = "unable to evaluate: %v"
	logMessageCheckEvaluatedConstant  = "verification check evaluated"
	logFieldCheckConstant             = "check"
	logFieldPassedConstant            = "passed"
	logFieldDetailConstant            = "detail"
)

var (
	// ErrClientNotConfigured indicates that no git client was supplied.
	ErrClientNotConfigured = errors.New("verify: git client not configured")
	// ErrGateNotConfigured indicates that no command gate was supplied.
	ErrGateNotConfigured = errors.New("verify: command gate not configured")
	// ErrConsoleNotConfigured indicates that no console was supplied.
	ErrConsoleNotConfigured = errors.New("verify: console not configured")
)

// Outcome is the result of one verification check.
type Outcome struct {
	Name   string
	Passed bool
	Detail string
}

// Report collects the outcomes of a verification pass.
type Report struct {
	Outcomes []Outcome
}

// Passed reports whether every evaluated check passed.
func (report Report) Passed() bool {
	for _, outcome := range report.Outcomes {
		if !outcome.Passed {
			return false
		}
	}
	return len(report.Outcomes) > 0
}

// Failure returns the first failed outcome, if any.
func (report Report) Failure() (Outcome, bool) {
	for _, outcome := range report.Outcomes {
		if !outcome.Passed {
			return outcome, true
		}
	}
	return Outcome{}, false
}

// Dependencies enumerates collaborators required by the verifier.
type Dependencies struct {
	Client  gitclient.Client
	Gate    *gate.Gate
	Console *ui.Console
	Logger  *zap.Logger
}

// Options configures the verifier.
type Options struct {
	MainBranch string
	RemoteName string
}

// Verifier runs the post-cycle checks.
type Verifier struct {
	client  gitclient.Client
	gate    *gate.Gate
	console *ui.Console
	logger  *zap.Logger
	options Options
}

// NewVerifier validates dependencies and constructs a Verifier.
func NewVerifier(dependencies Dependencies, options Options) (*Verifier, error) {
	if dependencies.Client == nil {
		return nil, ErrClientNotConfigured
	}
	if dependencies.Gate == nil {
		return nil, ErrGateNotConfigured
	}
	if dependencies.Console == nil {
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
	return &Verifier{
		client:  dependencies.Client,
		gate:    dependencies.Gate,
		console: dependencies.Console,
		logger:  logger,
		options: options,
	}, nil
}

// Verify offers a pruning fetch, then evaluates the checks in order and stops at the first failure.
// The branch integration check runs only when branchName is known.
// Failing checks are reported in the Report; only a failure to launch git is returned as an error.
func (verifier *Verifier) Verify(executionContext context.Context, branchName string) (Report, error) {
	verifier.console.Section(verificationSectionTitleConstant)
	if _, fetchError := verifier.gate.Execute(executionContext, gitclient.FetchPrune(verifier.options.RemoteName), true); fetchError != nil {
		return Report{}, fetchError
	}

	checks := []func(context.Context) Outcome{
		verifier.checkMainAlignment,
		verifier.checkCleanTree,
		verifier.checkNoContentDiff,
	}
	if len(strings.TrimSpace(branchName)) > 0 {
		checks = append(checks, func(checkContext context.Context) Outcome {
			return verifier.checkBranchIntegrated(checkContext, branchName)
		})
	}

	report := Report{}
	for _, check := range checks {
		outcome := check(executionContext)
		report.Outcomes = append(report.Outcomes, outcome)
		verifier.console.Check(outcome.Name, outcome.Passed, outcome.Detail)
		verifier.logger.Info(logMessageCheckEvaluatedConstant,
			zap.String(logFieldCheckConstant, outcome.Name),
			zap.Bool(logFieldPassedConstant, outcome.Passed),
			zap.String(logFieldDetailConstant, outcome.Detail))
		if !outcome.Passed {
			break
		}
	}
	return report, nil
}

func (verifier *Verifier) checkMainAlignment(executionContext context.Context) Outcome {
	mainBranch := verifier.options.MainBranch
	remoteMain := verifier.remoteMain()
	output, queryError := verifier.client.LeftRightCount(executionContext, mainBranch, remoteMain)
	if queryError != nil {
		return queryFailed(CheckMainAlignment, queryError)
	}
	if !MainAligned(output) {
		return Outcome{Name: CheckMainAlignment, Detail: fmt.Sprintf(misalignedDetailTemplateConstant, mainBranch, remoteMain, strings.TrimSpace(output))}
	}
	return Outcome{Name: CheckMainAlignment, Passed: true, Detail: fmt.Sprintf(alignedDetailTemplateConstant, mainBranch, remoteMain)}
}

func (verifier *Verifier) checkCleanTree(executionContext context.Context) Outcome {
	clean, queryError := gitclient.WorkingTreeClean(executionContext, verifier.client)
	if queryError != nil {
		return queryFailed(CheckCleanTree, queryError)
	}
	if !clean {
		return Outcome{Name: CheckCleanTree, Detail: dirtyTreeDetailConstant}
	}
	return Outcome{Name: CheckCleanTree, Passed: true, Detail: cleanTreeDetailConstant}
}

func (verifier *Verifier) checkNoContentDiff(executionContext context.Context) Outcome {
	mainBranch := verifier.options.MainBranch
	remoteMain := verifier.remoteMain()
	identical, queryError := verifier.client.ReferencesDiffEmpty(executionContext, remoteMain, mainBranch)
	if queryError != nil {
		return queryFailed(CheckNoContentDiff, queryError)
	}
	if !identical {
		return Outcome{Name: CheckNoContentDiff, Detail: fmt.Sprintf(contentDiffDetailTemplateConstant, remoteMain, mainBranch)}
	}
	return Outcome{Name: CheckNoContentDiff, Passed: true, Detail: fmt.Sprintf(noContentDiffDetailTemplate, remoteMain, mainBranch)}
}

// checkBranchIntegrated accepts a deleted remote branch, an ancestor of remote main,
// or a branch whose every patch already exists in remote main.
func (verifier *Verifier) checkBranchIntegrated(executionContext context.Context, branchName string) Outcome {
	remoteMain := verifier.remoteMain()
	remoteBranch := gitclient.RemoteTrackingName(verifier.options.RemoteName, branchName)

	exists, existsError := verifier.client.ReferenceExists(executionContext, gitclient.RemoteBranchReference(verifier.options.RemoteName, branchName))
	if existsError != nil {
		return queryFailed(CheckBranchIntegrated, existsError)
	}
	if !exists {
		return Outcome{Name: CheckBranchIntegrated, Passed: true, Detail: fmt.Sprintf(remoteBranchGoneDetailTemplate, remoteBranch)}
	}

	ancestor, ancestorError := verifier.client.IsAncestor(executionContext, remoteBranch, remoteMain)
	if ancestorError != nil {
		return queryFailed(CheckBranchIntegrated, ancestorError)
	}
	if ancestor {
		return Outcome{Name: CheckBranchIntegrated, Passed: true, Detail: fmt.Sprintf(ancestorDetailTemplateConstant, remoteBranch, remoteMain)}
	}

	cherryOutput, cherryError := verifier.client.Cherry(executionContext, remoteMain, remoteBranch)
	if cherryError != nil {
		return queryFailed(CheckBranchIntegrated, cherryError)
	}
	unapplied := CountUnapplied(cherryOutput)
	if unapplied > 0 {
		return Outcome{Name: CheckBranchIntegrated, Detail: fmt.Sprintf(patchesMissingDetailTemplate, unapplied, remoteBranch, remoteMain)}
	}
	return Outcome{Name: CheckBranchIntegrated, Passed: true, Detail: fmt.Sprintf(patchesPresentDetailTemplate, remoteBranch, remoteMain)}
}

func (verifier *Verifier) remoteMain() string {
	return gitclient.RemoteTrackingName(verifier.options.RemoteName, verifier.options.MainBranch)
}

func queryFailed(name string, queryError error) Outcome {
	return Outcome{Name: name, Detail: fmt.Sprintf(queryFailedDetailTemplateConstant, queryError)}
}
