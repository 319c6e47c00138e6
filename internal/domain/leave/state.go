package leave

import "fmt"

var transitions = map[ApplicationStatus][]ApplicationStatus{
	StatusPending:             {StatusApproved, StatusRejected, StatusOverriddenByCorrection},
	StatusApproved:            {StatusCancellationPending, StatusOverriddenByCorrection},
	StatusCancellationPending: {StatusCancelled, StatusApproved, StatusOverriddenByCorrection},
}

func CanTransition(from, to ApplicationStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition returns ErrInvalidTransition when from -> to is not an edge of the state machine.
func Transition(from, to ApplicationStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
