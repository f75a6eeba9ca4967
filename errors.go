package compileoutput

import (
	"errors"
	"fmt"

	"github.com/alnah/mdbook-compile-output/internal/book"
)

// Sentinel errors for step execution.
var (
	ErrSpawn           = errors.New("failed to start step command")
	ErrStepTimeout     = errors.New("step command timed out")
	ErrStepInterrupted = errors.New("step command interrupted")
	ErrCaptureOutput   = errors.New("failed to capture step output")
)

// Sentinel errors for input that is not an mdBook request or book.
var (
	ErrInvalidRequest = book.ErrInvalidRequest
	ErrInvalidBook    = book.ErrInvalidBook
)

// StepError describes a step whose command could not produce a result.
// Err wraps one of the sentinel errors above.
type StepError struct {
	Step    string
	Dir     string
	Command string
	Err     error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q (%s in %s): %v", e.Step, e.Command, e.Dir, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
