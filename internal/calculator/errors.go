package calculator

import "errors"

var (
	// ErrIncompleteInput is returned by Finalize when the bill cannot be
	// settled yet (no total, missing shares, unassigned items).
	ErrIncompleteInput = errors.New("incomplete bill input")

	// ErrLastAssignee is returned when unassigning the only participant left
	// on an item. The item is left unchanged.
	ErrLastAssignee = errors.New("an item must keep at least one assignee")

	// ErrAlreadyFinalized is returned by every mutator once the engine has
	// been finalized.
	ErrAlreadyFinalized = errors.New("bill already finalized")

	// ErrUnknownItem is returned for an item ID that is not on the bill.
	ErrUnknownItem = errors.New("unknown item")

	// ErrUnknownParticipant is returned when assigning someone who is not a
	// participant.
	ErrUnknownParticipant = errors.New("unknown participant")
)

// IncompleteInputError explains why Finalize refused the bill.
// It matches ErrIncompleteInput with errors.Is.
type IncompleteInputError struct {
	Reason string
}

func (e *IncompleteInputError) Error() string {
	return ErrIncompleteInput.Error() + ": " + e.Reason
}

func (e *IncompleteInputError) Is(target error) bool {
	return target == ErrIncompleteInput
}

func incomplete(reason string) error {
	return &IncompleteInputError{Reason: reason}
}
