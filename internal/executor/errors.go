package executor

import "errors"

// PermanentError marks a failure that retrying cannot fix: validation
// failures, missing referenced assets, rejected prompts. The retry loop
// aborts immediately when a generator returns one.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }

func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err so the pipeline will not retry it.
func Permanent(err error) error {
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err is marked non-retryable.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}
