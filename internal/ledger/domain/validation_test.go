package domain

import (
	"errors"
	"testing"
)

func TestValidateBalanced(t *testing.T) {
	lines := []LedgerEntryLine{
		{AccountID: 1, Direction: LedgerEntryDirectionDebit, Amount: 44000},
		{AccountID: 2, Direction: LedgerEntryDirectionCredit, Amount: 40000},
		{AccountID: 3, Direction: LedgerEntryDirectionCredit, Amount: 4000},
	}
	if err := ValidateBalanced(lines); err != nil {
		t.Fatalf("expected balanced entry, got %v", err)
	}
}

func TestValidateBalancedRejectsUnbalanced(t *testing.T) {
	lines := []LedgerEntryLine{
		{AccountID: 1, Direction: LedgerEntryDirectionDebit, Amount: 100},
		{AccountID: 2, Direction: LedgerEntryDirectionCredit, Amount: 99},
	}
	if err := ValidateBalanced(lines); !errors.Is(err, ErrUnbalancedEntry) {
		t.Fatalf("expected unbalanced entry, got %v", err)
	}
}

func TestValidateBalancedRejectsSingleLine(t *testing.T) {
	lines := []LedgerEntryLine{
		{AccountID: 1, Direction: LedgerEntryDirectionDebit, Amount: 100},
	}
	if err := ValidateBalanced(lines); !errors.Is(err, ErrInvalidEntryLines) {
		t.Fatalf("expected invalid lines, got %v", err)
	}
}

func TestValidateBalancedRejectsNegativeAmount(t *testing.T) {
	lines := []LedgerEntryLine{
		{AccountID: 1, Direction: LedgerEntryDirectionDebit, Amount: -1},
		{AccountID: 2, Direction: LedgerEntryDirectionCredit, Amount: -1},
	}
	if err := ValidateBalanced(lines); !errors.Is(err, ErrInvalidLineAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
}

func TestValidateBalancedRejectsUnknownDirection(t *testing.T) {
	lines := []LedgerEntryLine{
		{AccountID: 1, Direction: LedgerEntryDirection("sideways"), Amount: 100},
		{AccountID: 2, Direction: LedgerEntryDirectionCredit, Amount: 100},
	}
	if err := ValidateBalanced(lines); !errors.Is(err, ErrInvalidLineDirection) {
		t.Fatalf("expected invalid direction, got %v", err)
	}
}
