package domain

import (
	"errors"
	"testing"
)

func TestTransitionFromPending(t *testing.T) {
	if err := Transition(StatusPending, StatusPaid); err != nil {
		t.Fatalf("pending -> paid: %v", err)
	}
	if err := Transition(StatusPending, StatusRejected); err != nil {
		t.Fatalf("pending -> rejected: %v", err)
	}
}

func TestTransitionDecidedIsFinal(t *testing.T) {
	decided := []Status{StatusPaid, StatusRejected}
	targets := []Status{StatusPending, StatusPaid, StatusRejected}
	for _, from := range decided {
		for _, to := range targets {
			if err := Transition(from, to); !errors.Is(err, ErrAlreadyDecided) {
				t.Fatalf("%s -> %s: expected already decided, got %v", from, to, err)
			}
		}
	}
}

func TestTransitionUnknownStatus(t *testing.T) {
	if err := Transition(Status("bogus"), StatusPaid); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected invalid status, got %v", err)
	}
}

func TestTransitionPendingToPending(t *testing.T) {
	if err := Transition(StatusPending, StatusPending); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}
