package domain

import (
	"errors"
	"testing"
)

func TestTransitionAllowed(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusDraft, StatusSent},
		{StatusDraft, StatusVoid},
		{StatusSent, StatusPaid},
		{StatusSent, StatusOverdue},
		{StatusSent, StatusVoid},
		{StatusOverdue, StatusPaid},
		{StatusOverdue, StatusVoid},
	}
	for _, tc := range allowed {
		if err := Transition(tc.from, tc.to); err != nil {
			t.Fatalf("%s -> %s: expected allow, got %v", tc.from, tc.to, err)
		}
	}
}

func TestTransitionRejected(t *testing.T) {
	rejected := []struct{ from, to Status }{
		{StatusDraft, StatusPaid},
		{StatusDraft, StatusOverdue},
		{StatusSent, StatusDraft},
		{StatusPaid, StatusVoid},
		{StatusVoid, StatusDraft},
		{StatusOverdue, StatusSent},
	}
	for _, tc := range rejected {
		if err := Transition(tc.from, tc.to); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("%s -> %s: expected invalid transition, got %v", tc.from, tc.to, err)
		}
	}
}

func TestTransitionUnknownStatus(t *testing.T) {
	if err := Transition(Status("bogus"), StatusSent); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected invalid status, got %v", err)
	}
	if err := Transition(StatusDraft, Status("")); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected invalid status, got %v", err)
	}
}

func TestTerminal(t *testing.T) {
	if !StatusPaid.Terminal() || !StatusVoid.Terminal() {
		t.Fatal("paid and void are terminal")
	}
	if StatusDraft.Terminal() || StatusSent.Terminal() || StatusOverdue.Terminal() {
		t.Fatal("draft, sent and overdue are not terminal")
	}
}
