package apperr

import (
	"errors"
	"fmt"
)

// Kind identifies which side of the bridge an error came from
type Kind string

const (
	KindValidation        Kind = "validation_error"
	KindBridgeUnavailable Kind = "bridge_unavailable"
	KindProtocol          Kind = "protocol_error"
)

// JSON-RPC 2.0 error codes used for protocol-level faults
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeOutOfSequence  = -32002
)

// Error is the single error representation returned to protocol clients.
// Message is always safe to show; Err keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	RPCCode int
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Code returns the stable machine-readable code of the error
func (e *Error) Code() string {
	return string(e.Kind)
}

// IsToolLevel reports whether the error belongs in a tool result rather than a JSON-RPC error
func (e *Error) IsToolLevel() bool {
	return e.Kind == KindValidation || e.Kind == KindBridgeUnavailable
}

// Validation creates a ValidationError
func Validation(format string, args ...interface{}) *Error {
	return &Error{
		Kind:    KindValidation,
		RPCCode: CodeInvalidParams,
		Message: fmt.Sprintf(format, args...),
	}
}

// Protocol creates a ProtocolError carrying a JSON-RPC code
func Protocol(code int, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    KindProtocol,
		RPCCode: code,
		Message: fmt.Sprintf(format, args...),
	}
}

// UnknownTool creates the ValidationError for an unregistered tool name
func UnknownTool(name string) *Error {
	return Validation("unknown tool %q", name)
}

// OutOfSequence creates the ProtocolError for a request that arrived in the wrong session state
func OutOfSequence(method, state string) *Error {
	return Protocol(CodeOutOfSequence, "method %q is not allowed while session is %s", method, state)
}

// DeliveryFailure is implemented by bridge errors that carry a classified reason
type DeliveryFailure interface {
	error
	FailureReason() string
	Endpoint() string
}

// BridgeUnavailable wraps a delivery failure without leaking the raw transport error text
func BridgeUnavailable(err error) *Error {
	var failure DeliveryFailure
	if errors.As(err, &failure) {
		return &Error{
			Kind:    KindBridgeUnavailable,
			RPCCode: CodeInternalError,
			Message: fmt.Sprintf("sandtimer service unavailable at %s: %s", failure.Endpoint(), failure.FailureReason()),
			Err:     err,
		}
	}
	return &Error{
		Kind:    KindBridgeUnavailable,
		RPCCode: CodeInternalError,
		Message: "sandtimer service unavailable",
		Err:     err,
	}
}

// Map converts any error into an *Error. Errors that are already mapped pass through,
// delivery failures become BridgeUnavailable and everything else is an internal protocol error.
func Map(err error) *Error {
	if err == nil {
		return nil
	}

	var mapped *Error
	if errors.As(err, &mapped) {
		return mapped
	}

	var failure DeliveryFailure
	if errors.As(err, &failure) {
		return BridgeUnavailable(err)
	}

	return &Error{
		Kind:    KindProtocol,
		RPCCode: CodeInternalError,
		Message: "internal error",
		Err:     err,
	}
}
