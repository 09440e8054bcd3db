package compress

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrInputTooLarge     = errors.New("input too large")
	ErrCompressionFailed = errors.New("compression failed")
)

// CompressionError is returned when every preset of the ladder failed.
// It matches ErrCompressionFailed and unwraps to the last encoder error.
type CompressionError struct {
	FileName string
	Attempts int
	Err      error
}

func (e *CompressionError) Error() string {
	return fmt.Sprintf("failed to compress %q after %d attempts: %v", e.FileName, e.Attempts, e.Err)
}

func (e *CompressionError) Unwrap() []error {
	return []error{ErrCompressionFailed, e.Err}
}
