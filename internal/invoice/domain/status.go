package domain

// Status is the invoice lifecycle state.
type Status string

const (
	StatusDraft   Status = "draft"
	StatusSent    Status = "sent"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
	StatusVoid    Status = "void"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid, StatusOverdue, StatusVoid:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusVoid
}

var allowedTransitions = map[Status][]Status{
	StatusDraft:   {StatusSent, StatusVoid},
	StatusSent:    {StatusPaid, StatusOverdue, StatusVoid},
	StatusOverdue: {StatusPaid, StatusVoid},
}

// Transition validates a status change. Any move not listed in the
// lifecycle table fails with ErrInvalidTransition.
func Transition(from, to Status) error {
	if !from.Valid() || !to.Valid() {
		return ErrInvalidStatus
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return nil
		}
	}
	return ErrInvalidTransition
}
