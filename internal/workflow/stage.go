package workflow

// Stage identifies a step of the feature-branch cycle.
type Stage int

// Stages in execution order, followed by the two terminal states.
const (
	StageSyncMain Stage = iota
	StageObtainBranch
	StageDevelop
	StageCommitAndPush
	StageRebaseBeforeReview
	StageAwaitExternalMerge
	StageResyncMain
	StageCleanup
	StageFinalVerification
	StageDone
	StagePaused
)

var stageNames = map[Stage]string{
	StageSyncMain:           "sync-main",
	StageObtainBranch:       "obtain-branch",
	StageDevelop:            "develop",
	StageCommitAndPush:      "commit-and-push",
	StageRebaseBeforeReview: "rebase-before-review",
	StageAwaitExternalMerge: "await-external-merge",
	StageResyncMain:         "resync-main",
	StageCleanup:            "cleanup",
	StageFinalVerification:  "final-verification",
	StageDone:               "done",
	StagePaused:             "paused",
}

// String returns the stage name used in logs and summaries.
func (stage Stage) String() string {
	if name, known := stageNames[stage]; known {
		return name
	}
	return "unknown"
}

// Terminal reports whether no further stage follows.
func (stage Stage) Terminal() bool {
	return stage == StageDone || stage == StagePaused
}

// StageResult is the outcome a stage reports to the state machine.
type StageResult int

const (
	// StageResultContinue advances to the next stage.
	StageResultContinue StageResult = iota
	// StageResultPause ends the run successfully so it can be resumed later.
	StageResultPause
)

// Transition returns the stage that follows current given its result.
func Transition(current Stage, result StageResult) Stage {
	if current.Terminal() {
		return current
	}
	if result == StageResultPause {
		return StagePaused
	}
	return current + 1
}
