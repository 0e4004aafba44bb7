// Package vault defines the directory layout and stage model for the
// task workflow. Directory presence is the engine's only state store, so
// stage names are a protocol shared with reviewers and external tooling.
package vault

import (
	"errors"
	"fmt"
)

// Stage identifies a workflow directory a task can occupy.
type Stage string

const (
	// StageIntake is the immutable drop folder. The engine never mutates it.
	StageIntake Stage = "Intake"
	// StageWorkQueue holds tasks awaiting classification and routing.
	StageWorkQueue Stage = "WorkQueue"
	// StageApprovalHold holds tasks awaiting human sign-off.
	StageApprovalHold Stage = "ApprovalHold"
	// StageApproved holds tasks a human signed off on.
	StageApproved Stage = "Approved"
	// StageRejected holds tasks a human declined.
	StageRejected Stage = "Rejected"
	// StageCompleted is the terminal success stage.
	StageCompleted Stage = "Completed"
	// StagePlans holds generated plan documents, one per processed task.
	StagePlans Stage = "Plans"
	// StageLogs holds the engine log and the task catalog.
	StageLogs Stage = "Logs"
)

// ErrInvalidTransition is returned when a stage transition is not in the
// allowed set.
var ErrInvalidTransition = errors.New("invalid stage transition")

// transitions is the allowed task transition set. A task file only ever
// moves out of WorkQueue (router) or ApprovalHold (human decision).
var transitions = map[Stage][]Stage{
	StageWorkQueue:    {StageApprovalHold, StageCompleted},
	StageApprovalHold: {StageApproved, StageRejected},
}

// ValidateTransition reports whether a task may move from one stage to
// another. Anything not explicitly allowed is rejected, including moves out
// of terminal stages.
func ValidateTransition(from, to Stage) error {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
