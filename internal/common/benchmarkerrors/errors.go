// Package benchmarkerrors contains generic errors returned by the benchmark driver.
// The command entrypoint looks for the error types defined in this file and maps them
// to a process exit code via ExitCodeFromError.
//
// If multiple errors occur in some function (e.g., several configuration fields are invalid),
// that function should return an error of type multierror.Error from package
// github.com/hashicorp/go-multierror that encapsulates those individual errors.
package benchmarkerrors

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

const (
	ExitCodeOK              = 0
	ExitCodeFailure         = 1
	ExitCodeInvalidArgument = 2
	ExitCodeNotFound        = 3
	ExitCodeInterrupted     = 130
)

// ErrNotFound is a generic error to be returned whenever some resource isn't found.
// Type and Message are optional and are omitted from the error message if not provided.
type ErrNotFound struct {
	Type    string // Resource type, e.g., "node" or "job template"
	Value   string // Resource name, e.g., "gpu-node-1"
	Message string // An optional message to include in the error message
}

func (err *ErrNotFound) Error() (s string) {
	if err.Type != "" {
		s = fmt.Sprintf("resource %q of type %q does not exist", err.Value, err.Type)
	} else {
		s = fmt.Sprintf("resource %q does not exist", err.Value)
	}
	if err.Message != "" {
		return s + fmt.Sprintf("; %s", err.Message)
	} else {
		return s
	}
}

// ErrInvalidArgument is a generic error to be returned on invalid argument.
// Message is optional and is omitted from the error message if not provided.
type ErrInvalidArgument struct {
	Name    string      // Name of the field referred to, e.g., "targetRuns"
	Value   interface{} // The invalid value that was provided
	Message string      // An optional message to include with the error message, e.g., explaining why the value is invalid
}

func (err *ErrInvalidArgument) Error() string {
	if err.Message == "" {
		return fmt.Sprintf("value %q is invalid for field %q", fmt.Sprint(err.Value), err.Name)
	} else {
		return fmt.Sprintf("value %q is invalid for field %q; %s", fmt.Sprint(err.Value), err.Name, err.Message)
	}
}

// ExitCodeFromError maps error types to process exit codes.
// Uses errors.As to look through the chain of errors, as opposed to just considering the topmost error in the chain.
func ExitCodeFromError(err error) int {
	if err == nil {
		return ExitCodeOK
	}

	// A multierror is classified by its first member, which is the first problem that was found.
	var merr *multierror.Error
	if errors.As(err, &merr) && len(merr.Errors) > 0 {
		return ExitCodeFromError(merr.Errors[0])
	}

	var eInvalidArgument *ErrInvalidArgument
	var eNotFound *ErrNotFound
	switch {
	case errors.As(err, &eInvalidArgument):
		return ExitCodeInvalidArgument
	case errors.As(err, &eNotFound):
		return ExitCodeNotFound
	case errors.Is(err, context.Canceled):
		return ExitCodeInterrupted
	default:
		return ExitCodeFailure
	}
}
