package appointment

import "fmt"

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// transitions lists the allowed moves out of each status. Completed and
// cancelled are terminal.
var transitions = map[Status][]Status{
	StatusScheduled: {StatusCompleted, StatusCancelled},
}

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// ParseStatus converts a client-supplied value.
func ParseStatus(v string) (Status, error) {
	s := Status(v)
	if !s.Valid() {
		return "", fmt.Errorf("unknown appointment status %q", v)
	}
	return s, nil
}

// TransitionError reports a status change outside the transition table.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot change appointment status from %s to %s", e.From, e.To)
}

// CheckTransition returns a *TransitionError unless from may move to to.
// Staying in the same status is not a transition and always passes.
func CheckTransition(from, to Status) error {
	if from == to {
		return nil
	}
	if from.Terminal() {
		return &TransitionError{From: from, To: to}
	}
	for _, next := range transitions[from] {
		if next == to {
			return nil
		}
	}
	return &TransitionError{From: from, To: to}
}
