package search

import "fmt"

// BackendError wraps any failure of the search backend. Its message is
// meant to be shown to the user.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

func backendError(op string, err error) error {
	return &BackendError{Op: op, Err: err}
}
