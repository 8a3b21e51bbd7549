package preflight

import (
	"errors"
	"fmt"
)

const fatalPreconditionTemplateConstant = "%s (remediation: %s)"

// FatalPreconditionError reports a violated precondition that ends the run.
type FatalPreconditionError struct {
	Reason      string
	Remediation string
}

// Error describes the violated precondition and its remediation.
func (preconditionError FatalPreconditionError) Error() string {
	return fmt.Sprintf(fatalPreconditionTemplateConstant, preconditionError.Reason, preconditionError.Remediation)
}

// AsFatalPrecondition extracts a FatalPreconditionError from an error chain.
func AsFatalPrecondition(err error) (FatalPreconditionError, bool) {
	var preconditionError FatalPreconditionError
	if errors.As(err, &preconditionError) {
		return preconditionError, true
	}
	return FatalPreconditionError{}, false
}
