package workflow

import (
	"github.com/temirov/branchflow/internal/verify"
)

// State is the mutable context of a single run. It is owned by the Machine
// and threaded through every stage.
type State struct {
	BranchName      string
	RemoteURL       string
	OnWorkingBranch bool
	CompletedStages []Stage
	Verification    verify.Report
}

// MarkCompleted records a finished stage.
func (state *State) MarkCompleted(stage Stage) {
	state.CompletedStages = append(state.CompletedStages, stage)
}

// Completed reports whether the stage finished during this run.
func (state *State) Completed(stage Stage) bool {
	for _, completed := range state.CompletedStages {
		if completed == stage {
			return true
		}
	}
	return false
}
