package apperr

import (
	"errors"
	"fmt"
)

const (
	CodeValidation        = "VALIDATION"
	CodeInvalidAmount     = "INVALID_AMOUNT"
	CodeNotConnected      = "NOT_CONNECTED"
	CodeWalletProvider    = "WALLET_PROVIDER"
	CodeMarketUnavailable = "MARKET_UNAVAILABLE"
	CodeSessionChanged    = "SESSION_CHANGED"
	CodeNotFound          = "NOT_FOUND"
	CodeNetwork           = "NETWORK"
)

// CodedError is a typed error used for stable API mapping.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *CodedError) Unwrap() error { return e.Cause }

// New builds a CodedError.
func New(code, msg string, cause error) error {
	return &CodedError{Code: code, Message: msg, Cause: cause}
}

// Validation reports a malformed request field.
func Validation(msg string) error { return New(CodeValidation, msg, nil) }

// InvalidAmount reports an amount that is not positive or exceeds the balance.
func InvalidAmount(msg string) error { return New(CodeInvalidAmount, msg, nil) }

// NotConnected reports an operation that needs a connected wallet.
func NotConnected() error {
	return New(CodeNotConnected, "wallet is not connected", nil)
}

// SessionChanged reports a delayed operation whose wallet session ended
// before it completed.
func SessionChanged() error {
	return New(CodeSessionChanged, "wallet session changed before completion", nil)
}

// CodeOf returns the code of err, or "" when err carries none.
func CodeOf(err error) string {
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	return err != nil && CodeOf(err) == code
}
