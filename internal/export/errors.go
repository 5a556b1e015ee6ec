package export

import (
	"errors"
	"fmt"
)

// ErrToolchainMissing is returned when pdflatex is not installed.
var ErrToolchainMissing = errors.New("pdflatex not found in PATH")

// CompilationError represents a LaTeX compilation failure.
type CompilationError struct {
	Message   string
	LogOutput string
	Cause     error
}

func (e *CompilationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("LaTeX compilation error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("LaTeX compilation error: %s", e.Message)
}

func (e *CompilationError) Unwrap() error {
	return e.Cause
}

// ArchiveError represents a failed upload to object storage.
type ArchiveError struct {
	Key   string
	Cause error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("archive error for %s: %v", e.Key, e.Cause)
}

func (e *ArchiveError) Unwrap() error {
	return e.Cause
}
