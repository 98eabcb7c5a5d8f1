package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorResponse is the consistent JSON structure for all API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// ErrorKind classifies failures so callers can turn them into status messages.
type ErrorKind string

const (
	KindValidation          ErrorKind = "VALIDATION"
	KindConnection          ErrorKind = "CONNECTION"
	KindChainSwitch         ErrorKind = "CHAIN_SWITCH"
	KindSimulation          ErrorKind = "SIMULATION"
	KindSubmission          ErrorKind = "SUBMISSION"
	KindConfirmationTimeout ErrorKind = "CONFIRMATION_TIMEOUT"
	KindQuery               ErrorKind = "QUERY"
	KindBusy                ErrorKind = "BUSY"
)

// Error is the error type shared by the session, chain and payroll layers.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil && !strings.Contains(e.Message, e.Cause.Error()) {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error.
func NewError(kind ErrorKind, message string, cause error) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Cause:   cause,
	}
}

// KindOf returns the kind of the first Error in err's chain, or "" if none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// UserMessage returns the short message meant for display.
// Simulation errors surface the revert reason as their message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Message != "" {
			return e.Message
		}
		if e.Cause != nil {
			return e.Cause.Error()
		}
	}
	return err.Error()
}
