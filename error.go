package grpcall

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// ErrNotServiceError reports that a value handed to FromError does not have
// the shape of a gRPC service-call error.
var ErrNotServiceError = errors.New("not a service error")

// StatusCode is the status enumeration produced by the wrapped library,
// re-exported so callers can switch on outcomes without importing grpc/codes.
type StatusCode = codes.Code

const (
	OK                 StatusCode = codes.OK
	Canceled           StatusCode = codes.Canceled
	Unknown            StatusCode = codes.Unknown
	InvalidArgument    StatusCode = codes.InvalidArgument
	DeadlineExceeded   StatusCode = codes.DeadlineExceeded
	NotFound           StatusCode = codes.NotFound
	AlreadyExists      StatusCode = codes.AlreadyExists
	PermissionDenied   StatusCode = codes.PermissionDenied
	ResourceExhausted  StatusCode = codes.ResourceExhausted
	FailedPrecondition StatusCode = codes.FailedPrecondition
	Aborted            StatusCode = codes.Aborted
	OutOfRange         StatusCode = codes.OutOfRange
	Unimplemented      StatusCode = codes.Unimplemented
	Internal           StatusCode = codes.Internal
	Unavailable        StatusCode = codes.Unavailable
	DataLoss           StatusCode = codes.DataLoss
	Unauthenticated    StatusCode = codes.Unauthenticated
)

// statusError is the shape grpc-go gives failed calls on the client side.
type statusError interface {
	error
	GRPCStatus() *status.Status
}

// trailerCarrier is implemented by call errors that carry response trailers.
type trailerCarrier interface {
	Trailers() metadata.MD
}

// Error represents a failed remote call. It carries the same message, code,
// details, and metadata as the underlying gRPC status error, but with a
// stable local type so callers can branch with errors.As and a code switch
// instead of structural checks. The original error remains reachable through
// Unwrap, preserving the cause chain.
type Error struct {
	// Code is the status code of the failed call.
	Code StatusCode

	// Details is the human-readable status message sent by the server.
	Details string

	// Metadata holds the response trailers, when the source error exposed
	// them. Never nil.
	Metadata metadata.MD

	st    *status.Status
	cause error
}

var _ statusError = (*Error)(nil)

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error: code = %s desc = %s", e.Code, e.Details)
}

// Unwrap returns the original call error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error, so errors.Is can test for the error kind without
// comparing field values.
func (e *Error) Is(target error) bool {
	_, ok := target.(*Error)
	return ok
}

// GRPCStatus returns the underlying status. An *Error therefore still
// satisfies the wrapped library's own extraction helpers.
func (e *Error) GRPCStatus() *status.Status {
	return e.st
}

// ErrorInfo returns the errdetails.ErrorInfo attached to the status, or nil
// when the server sent none.
func (e *Error) ErrorInfo() *errdetails.ErrorInfo {
	for _, d := range e.st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			return info
		}
	}
	return nil
}

// retryDelay extracts the server-suggested pacing from an attached
// errdetails.RetryInfo, if any.
func (e *Error) retryDelay() (time.Duration, bool) {
	for _, d := range e.st.Details() {
		if ri, ok := d.(*errdetails.RetryInfo); ok && ri.GetRetryDelay() != nil {
			return ri.GetRetryDelay().AsDuration(), true
		}
	}
	return 0, false
}

// IsServiceError reports whether err has the shape of a gRPC service-call
// error: it carries a non-nil status whose code is a recognized member of
// the status enumeration. Plain errors, nil, and lookalikes with
// out-of-range codes all return false.
func IsServiceError(err error) bool {
	if err == nil {
		return false
	}
	var se statusError
	if !errors.As(err, &se) {
		return false
	}
	st := se.GRPCStatus()
	if st == nil {
		return false
	}
	return validCode(st.Code())
}

// FromError re-types err as an *Error carrying the same code, details, and
// metadata, with err preserved as the cause. It fails with a wrapped
// ErrNotServiceError when err does not pass IsServiceError.
func FromError(err error) (*Error, error) {
	if !IsServiceError(err) {
		return nil, fmt.Errorf("cannot adapt %T: %w", err, ErrNotServiceError)
	}

	var se statusError
	errors.As(err, &se)
	st := se.GRPCStatus()

	md := metadata.MD{}
	var tc trailerCarrier
	if errors.As(err, &tc) {
		if t := tc.Trailers(); t != nil {
			md = t
		}
	}

	return &Error{
		Code:     st.Code(),
		Details:  st.Message(),
		Metadata: md,
		st:       st,
		cause:    err,
	}, nil
}

// Code returns the status code of err when it structurally looks like a
// service error (re-typed or raw). The second return is false when no
// recognized code is present. Code never panics.
func Code(err error) (StatusCode, bool) {
	if err == nil {
		return 0, false
	}
	var se statusError
	if !errors.As(err, &se) {
		return 0, false
	}
	st := se.GRPCStatus()
	if st == nil || !validCode(st.Code()) {
		return 0, false
	}
	return st.Code(), true
}

func validCode(c codes.Code) bool {
	return c <= codes.Unauthenticated
}
