package pagination

import (
	"errors"
	"testing"
)

func TestTokenRoundTrip(t *testing.T) {
	token := EncodeToken(1234567890123)
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	id, err := DecodeToken(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if id != 1234567890123 {
		t.Fatalf("expected 1234567890123, got %d", id)
	}
}

func TestDecodeEmptyToken(t *testing.T) {
	id, err := DecodeToken("")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if id != 0 {
		t.Fatalf("expected 0, got %d", id)
	}
}

func TestDecodeGarbageToken(t *testing.T) {
	if _, err := DecodeToken("!!not-base64!!"); !errors.Is(err, ErrInvalidPageToken) {
		t.Fatalf("expected ErrInvalidPageToken, got %v", err)
	}
}

func TestLimitBounds(t *testing.T) {
	if got := Limit(0); got != DefaultPageSize {
		t.Fatalf("expected default, got %d", got)
	}
	if got := Limit(10_000); got != MaxPageSize {
		t.Fatalf("expected max, got %d", got)
	}
	if got := Limit(40); got != 40 {
		t.Fatalf("expected 40, got %d", got)
	}
}
