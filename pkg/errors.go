package blink

import (
	"errors"
	"fmt"

	"github.com/blinkmojo/blink/pkg/bls"
	"github.com/blinkmojo/blink/pkg/clvm"
	"github.com/blinkmojo/blink/pkg/puzzles"
)

type ErrorCode string

const (
	DecodeError     ErrorCode = "decode-error"
	PrivacyViolated ErrorCode = "privacy-violation"
	CurryError      ErrorCode = "curry-error"
	SigningError    ErrorCode = "signing-error"
	CostExceeded    ErrorCode = "cost-exceeded"
	EvalError       ErrorCode = "eval-error"
	PuzzleLoadError ErrorCode = "puzzle-load-error"
	InvalidMix      ErrorCode = "invalid-mix"
	AlreadyBuilt    ErrorCode = "already-built"
	BadRequest      ErrorCode = "bad-request"
	NotFound        ErrorCode = "not-found"
	NotAvailable    ErrorCode = "not-available"
	AlreadyExists   ErrorCode = "already-exists"
	UnknownError    ErrorCode = "unknown-error"
)

type ErrorInfo struct {
	Code    ErrorCode // machine-readable ErrorCode enumeration
	Message string    // human-readable debug message
	Err     error     // underlying error, if any
}

func (e *ErrorInfo) Error() string {
	return e.Message
}

func (e *ErrorInfo) Unwrap() error {
	return e.Err
}

func NewErr(code ErrorCode, format string, args ...any) error {
	return &ErrorInfo{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapErr attaches a code to err, keeping it reachable through errors.As.
func WrapErr(code ErrorCode, err error, format string, args ...any) error {
	return &ErrorInfo{Code: code, Message: fmt.Sprintf(format, args...) + ": " + err.Error(), Err: err}
}

// PrivacyViolation is returned when the value decoy would not mask the
// private payment: decoy_value_amount must be >= needs_privacy_value.
type PrivacyViolation struct {
	DecoyValueAmount  uint64
	NeedsPrivacyValue uint64
}

func (e *PrivacyViolation) Error() string {
	return fmt.Sprintf("privacy violation: decoy_value (%d) must be >= needs_privacy (%d); raise decoy_value_amount to at least %d",
		e.DecoyValueAmount, e.NeedsPrivacyValue, e.NeedsPrivacyValue)
}

func IsNotFoundError(err error) bool {
	return IsError(err, NotFound)
}

func IsAlreadyExistsError(err error) bool {
	return IsError(err, AlreadyExists)
}

func IsError(err error, ofType ErrorCode) bool {
	return CodeOf(err) == ofType
}

// CodeOf classifies err, including the typed errors of the clvm, bls and
// puzzles packages.
func CodeOf(err error) ErrorCode {
	var info *ErrorInfo
	if errors.As(err, &info) {
		return info.Code
	}
	var pv *PrivacyViolation
	var de *puzzles.DecodeError
	var ce *puzzles.CurryError
	var pe *clvm.ParseError
	var ee *clvm.EvalError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &pv):
		return PrivacyViolated
	case errors.As(err, &de), errors.As(err, &pe):
		return DecodeError
	case errors.As(err, &ce):
		return CurryError
	case errors.Is(err, clvm.ErrCostExceeded):
		return CostExceeded
	case errors.As(err, &ee):
		return EvalError
	case errors.Is(err, bls.ErrInvalidSignature), errors.Is(err, bls.ErrInvalidPublicKey),
		errors.Is(err, bls.ErrInvalidSecretKey), errors.Is(err, bls.ErrKeyZeroed):
		return SigningError
	}
	return UnknownError
}
