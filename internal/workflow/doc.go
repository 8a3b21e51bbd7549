// Package workflow drives one feature-branch cycle as an explicit state machine.
//
// Each stage is an Operation executed against a shared Environment and the
// run's State. Transitions are computed by Transition from the current stage
// and the stage result, so a declined checkpoint pauses the run without error.
package workflow
