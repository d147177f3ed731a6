package llm

import (
	"errors"
)

// TransientError marks a failure that may clear up on retry, such as rate
// limiting or an upstream hiccup.
type TransientError struct {
	err error
}

func (e *TransientError) Error() string {
	return e.err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.err
}

// NewTransientError wraps an error as retryable.
func NewTransientError(err error) error {
	return &TransientError{err: err}
}

// FatalError marks a failure that retrying cannot fix, such as a rejected
// request or bad credentials.
type FatalError struct {
	err error
}

func (e *FatalError) Error() string {
	return e.err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.err
}

// NewFatalError wraps an error as non-retryable.
func NewFatalError(err error) error {
	return &FatalError{err: err}
}

// IsTransient reports whether the error is worth retrying.
func IsTransient(err error) bool {
	var transient *TransientError
	return errors.As(err, &transient)
}

// IsFatal reports whether retrying is pointless.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}
