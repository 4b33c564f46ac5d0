package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure so handlers can map it to a response without
// inspecting the underlying cause.
type Kind string

const (
	// KindInvalidInput covers unparseable URLs and bad request parameters.
	// User-correctable; no retry.
	KindInvalidInput Kind = "invalid_input"

	// KindNotFound covers lookups for jobs or artifacts that do not exist.
	KindNotFound Kind = "not_found"

	// KindUpstreamUnavailable covers terminal upstream outcomes: captions
	// disabled or missing, generation returned no candidate.
	KindUpstreamUnavailable Kind = "upstream_unavailable"

	// KindTransportFailure covers network or service errors contacting any
	// external call, including timeouts.
	KindTransportFailure Kind = "transport_failure"

	// KindConfiguration covers missing required credentials. Fatal at
	// startup, never per-request.
	KindConfiguration Kind = "configuration"

	KindInternal Kind = "internal"
)

type AppError struct {
	Code    int    `json:"-"`
	Kind    Kind   `json:"-"`
	Message string `json:"error"`
	Op      string `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func InvalidInput(op string, err error, message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Kind:    KindInvalidInput,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

func NotFound(op string, err error, message string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Kind:    KindNotFound,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

func UpstreamUnavailable(op string, err error, message string) *AppError {
	return &AppError{
		Code:    http.StatusBadGateway,
		Kind:    KindUpstreamUnavailable,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

func TransportFailure(op string, err error, message string) *AppError {
	return &AppError{
		Code:    http.StatusBadGateway,
		Kind:    KindTransportFailure,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

func Configuration(op string, err error, message string) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Kind:    KindConfiguration,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

func Internal(op string, err error, message string) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Kind:    KindInternal,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

// KindOf returns the Kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

func IsInvalidInput(err error) bool {
	return KindOf(err) == KindInvalidInput
}

// As unwraps err to an *AppError if possible.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	ok := stderrors.As(err, &appErr)
	return appErr, ok
}
