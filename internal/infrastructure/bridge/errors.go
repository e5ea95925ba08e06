package bridge

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
)

// Op is the socket operation that failed
type Op string

const (
	OpDial  Op = "dial"
	OpWrite Op = "write"
)

// Failure reasons reported upward
const (
	ReasonRefused    = "connection refused"
	ReasonTimeout    = "connection timed out"
	ReasonReset      = "connection reset"
	ReasonResolution = "host resolution failed"
	ReasonCanceled   = "request canceled"
	ReasonDial       = "connection failed"
	ReasonWrite      = "write failed"
)

// DeliveryError is returned when a command could not be delivered
type DeliveryError struct {
	Op     Op
	Addr   string
	Reason string
	Err    error
}

func newDeliveryError(op Op, addr string, err error) *DeliveryError {
	return &DeliveryError{
		Op:     op,
		Addr:   addr,
		Reason: classify(op, err),
		Err:    err,
	}
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("bridge %s %s: %s: %v", e.Op, e.Addr, e.Reason, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// FailureReason returns the classified reason
func (e *DeliveryError) FailureReason() string {
	return e.Reason
}

// Endpoint returns the address the command was meant for
func (e *DeliveryError) Endpoint() string {
	return e.Addr
}

func classify(op Op, err error) string {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return ReasonTimeout
		}
		return ReasonResolution
	}

	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return ReasonRefused
	case errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.EPIPE), errors.Is(err, syscall.ECONNABORTED):
		return ReasonReset
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, os.ErrDeadlineExceeded):
		return ReasonTimeout
	case errors.Is(err, context.Canceled):
		return ReasonCanceled
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ReasonTimeout
	}

	if op == OpWrite {
		return ReasonWrite
	}
	return ReasonDial
}
