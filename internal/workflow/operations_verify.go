package workflow

import (
	"context"
	"errors"
	"fmt"
)

const verificationFailedTemplateConstant = "%w: %s (%s)"

// ErrVerificationFailed indicates that a final verification check failed.
var ErrVerificationFailed = errors.New("final verification failed")

// FinalVerificationOperation runs the verifier once, after cleanup. A failure changes
// the exit status only; completed stages are not rolled back.
type FinalVerificationOperation struct{}

// Stage identifies the operation.
func (operation *FinalVerificationOperation) Stage() Stage {
	return StageFinalVerification
}

// Execute runs the checks and records the report in the state.
func (operation *FinalVerificationOperation) Execute(executionContext context.Context, environment *Environment, state *State) (StageResult, error) {
	report, verifyError := environment.Verifier.Verify(executionContext, state.BranchName)
	if verifyError != nil {
		return StageResultContinue, verifyError
	}
	state.Verification = report
	if failure, failed := report.Failure(); failed {
		return StageResultContinue, fmt.Errorf(verificationFailedTemplateConstant, ErrVerificationFailed, failure.Name, failure.Detail)
	}
	return StageResultContinue, nil
}
