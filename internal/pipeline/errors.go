package pipeline

import "fmt"

// IOError is an unrecoverable failure to read the source or write the output.
// It is the only error class that aborts a run.
type IOError struct {
	Op   string // "read" or "write"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
