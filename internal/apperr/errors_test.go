package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodedErrorMessage(t *testing.T) {
	err := New(CodeNetwork, "fetch failed", errors.New("dial tcp: refused"))
	if got, want := err.Error(), "NETWORK: fetch failed: dial tcp: refused"; got != want {
		t.Fatalf("Error() = %q; want %q", got, want)
	}

	err = InvalidAmount("amount must be positive")
	if got, want := err.Error(), "INVALID_AMOUNT: amount must be positive"; got != want {
		t.Fatalf("Error() = %q; want %q", got, want)
	}
}

func TestCodeOfUnwrapsWrappedErrors(t *testing.T) {
	err := fmt.Errorf("swap: %w", NotConnected())
	if got, want := CodeOf(err), CodeNotConnected; got != want {
		t.Fatalf("CodeOf() = %q; want %q", got, want)
	}
	if !Is(err, CodeNotConnected) {
		t.Fatalf("Is(%v, %q) = false; want true", err, CodeNotConnected)
	}
	if Is(nil, CodeNotConnected) {
		t.Fatalf("Is(nil) = true; want false")
	}
	if got := CodeOf(errors.New("plain")); got != "" {
		t.Fatalf("CodeOf(plain) = %q; want empty", got)
	}
}

func TestUnwrapReturnsCause(t *testing.T) {
	cause := errors.New("boom")
	err := New(CodeWalletProvider, "request accounts", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is(err, cause) = false; want true")
	}
}
