// Package domainerrors defines coded errors returned at service boundaries.
// Stores and infrastructure return pkg/platform/sentinel errors; services
// translate those into coded errors so transports can map codes to status
// codes without string matching.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

const (
	// CodeInvalidInput marks caller-contract violations: nil contexts,
	// empty required arguments, malformed identifiers.
	CodeInvalidInput Code = "invalid_input"
	// CodeNotFound marks lookups for records that do not exist within the
	// caller's tenant. Cross-tenant records report this same code.
	CodeNotFound Code = "not_found"
	// CodeConflict marks unique-constraint style collisions that were not
	// recovered by retry.
	CodeConflict Code = "conflict"
	// CodeRateLimited marks admission-control rejections. Retryable after
	// the window resets; distinct from all other codes so callers can back off.
	CodeRateLimited Code = "rate_limited"
	// CodeEntropyFailure marks key-generation self-test or randomness
	// validation failures. Indicates an environment defect, not a logic bug.
	CodeEntropyFailure Code = "entropy_failure"
	// CodeExhaustedRetries marks a bounded-retry loop that ran out of
	// attempts without succeeding.
	CodeExhaustedRetries Code = "exhausted_retries"
	// CodeTenantMismatch marks an explicit cross-tenant reference, e.g. an
	// issuance request naming a DID owned by another tenant.
	CodeTenantMismatch Code = "tenant_mismatch"
	// CodeMethodNotSupported marks a DID whose method has no registered codec.
	CodeMethodNotSupported Code = "method_not_supported"
	// CodeInvalidState marks operations against records in the wrong
	// lifecycle state (signing with a deactivated DID).
	CodeInvalidState Code = "invalid_state"
	// CodeUnauthorized marks failed authentication of presented material.
	CodeUnauthorized Code = "unauthorized"
	// CodeInternal marks unexpected infrastructure failures.
	CodeInternal Code = "internal"
)

// Error is a coded domain error. Compare with errors.As plus Code, or use
// HasCode for one-liners.
type Error struct {
	Code    Code
	Message string
	cause   error
}

// New creates a coded error with no underlying cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error, preserving the
// chain for errors.Is/errors.As.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// CodeOf extracts the code from err, or CodeInternal when err carries none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	return errors.As(err, &de) && de.Code == code
}
