package domain

// Status tracks a submission through manual verification.
type Status string

const (
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusRejected:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusRejected
}

var allowedTransitions = map[Status][]Status{
	StatusPending: {StatusPaid, StatusRejected},
}

// Transition validates a status change. Decided submissions never move
// again.
func Transition(from, to Status) error {
	if !from.Valid() || !to.Valid() {
		return ErrInvalidStatus
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return nil
		}
	}
	if from.Terminal() {
		return ErrAlreadyDecided
	}
	return ErrInvalidTransition
}
