// Package errors provides the error type returned by every EC2 and S3 manager
// operation. A single *Error kind wraps each remote failure with the operation
// name and the resource it targeted, and classifies it against a small set of
// sentinels usable with errors.Is.
package errors

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/aws/smithy-go"
)

// Error represents a failed remote API call with context about the operation.
// It wraps the underlying AWS SDK error and, when the failure could be
// classified, one of the sentinel kinds below.
type Error struct {
	// Op is the operation that failed (e.g. "ec2.start", "s3.upload")
	Op string

	// Resource names the instance, bucket or object the operation targeted
	Resource string

	// Code is the AWS API error code, empty when the failure was not an API error
	Code string

	// Kind is the classification sentinel, nil when unclassified
	Kind error

	// Err is the underlying error from the AWS SDK or other source
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Resource != "" {
		b.WriteString(" ")
		b.WriteString(e.Resource)
	}
	b.WriteString(": ")
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	} else if e.Kind != nil {
		b.WriteString(e.Kind.Error())
	}
	return b.String()
}

// Unwrap exposes both the classification sentinel and the underlying error.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// WithResource adds resource context to an existing error.
func (e *Error) WithResource(resource string) *Error {
	e.Resource = resource
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	if e.Err == nil {
		e.Err = errors.New(message)
		return e
	}
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
// If err is itself one of the sentinels it becomes the Kind.
func NewError(op string, err error) *Error {
	e := &Error{Op: op, Err: err}
	for _, kind := range kinds {
		if err == kind {
			e.Kind = kind
			e.Err = nil
			break
		}
	}
	return e
}

// Invalid returns an ErrInvalidInput error for a failed presence check.
func Invalid(op, resource, message string) *Error {
	return NewError(op, ErrInvalidInput).WithResource(resource).WithMessage(message)
}

// FromAWS wraps an AWS SDK error, extracting its API error code and classifying it.
// It returns nil when err is nil and returns err unchanged when it is already an *Error.
func FromAWS(op, resource string, err error) error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return err
	}

	e := &Error{Op: op, Resource: resource, Err: err}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		e.Code = apiErr.ErrorCode()
		e.Kind = classify(e.Code)
		return e
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		e.Kind = ErrTimeout
	case errors.Is(err, context.Canceled):
		e.Kind = ErrCanceled
	case isCredentialsError(err):
		e.Kind = ErrNoCredentials
	}
	return e
}

// FromLocal wraps a local filesystem error, classifying missing, existing and
// permission-denied paths. It returns nil when err is nil.
func FromLocal(op, path string, err error) error {
	if err == nil {
		return nil
	}
	e := &Error{Op: op, Resource: path, Err: err}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		e.Kind = ErrNotFound
	case errors.Is(err, fs.ErrExist):
		e.Kind = ErrAlreadyExists
	case errors.Is(err, fs.ErrPermission):
		e.Kind = ErrAccessDenied
	}
	return e
}

// Code returns the AWS API error code carried by err, or "" if there is none.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Code != "" {
		return e.Code
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// Sentinel errors classifying remote failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrNotFound indicates that the instance, bucket, object or entity does not exist
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists indicates a naming conflict with an existing resource
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrAccessDenied indicates an authentication or authorization failure
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidState indicates the resource cannot make the requested transition
	ErrInvalidState = errors.New("invalid resource state")

	// ErrInvalidInput indicates a missing or malformed argument
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoCredentials indicates that no AWS credentials could be resolved
	ErrNoCredentials = errors.New("no aws credentials")

	// ErrTimeout indicates the operation exceeded its deadline
	ErrTimeout = errors.New("operation timeout")

	// ErrCanceled indicates the operation's context was canceled
	ErrCanceled = errors.New("operation canceled")
)

var kinds = []error{
	ErrNotFound,
	ErrAlreadyExists,
	ErrAccessDenied,
	ErrInvalidState,
	ErrInvalidInput,
	ErrNoCredentials,
	ErrTimeout,
	ErrCanceled,
}

// IsNotFound checks if an error indicates that a resource was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error indicates a naming conflict.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsAccessDenied checks if an error indicates access was denied.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

// IsRemote reports whether err carries an *Error.
func IsRemote(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

