package coingro

import "fmt"

// TemporaryError wraps errors that are expected to resolve on retry, such as
// network failures against a bot that is still starting up. The worker loop
// treats these as retryable instead of stopping the controller.
type TemporaryError struct {
	err error
}

// NewTemporaryError wraps err as retryable.
func NewTemporaryError(err error) *TemporaryError {
	return &TemporaryError{err: err}
}

func (e *TemporaryError) Error() string {
	return fmt.Sprintf("temporary error: %v", e.err)
}

func (e *TemporaryError) Unwrap() error {
	return e.err
}

// Temporary reports that the error is retryable.
func (e *TemporaryError) Temporary() bool {
	return true
}
