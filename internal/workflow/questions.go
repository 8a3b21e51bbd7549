package workflow

// Question keys asked by the stages.
const (
	QuestionKeyBranchMode      = "branch.mode"
	QuestionKeyBranchName      = "branch.name"
	QuestionKeyDevelopmentDone = "develop.done"
	QuestionKeyCommitMessage   = "commit.message"
	QuestionKeyRebaseStart     = "rebase.start"
	QuestionKeyMergeConfirmed  = "merge.confirmed"
)

// Branch modes offered by the obtain-branch stage.
const (
	BranchModeCreate = "create"
	BranchModeResume = "resume"
)
