package decktab

import (
	"errors"
	"fmt"
)

// ErrDeckNotFound indicates the deck root directory does not exist.
var ErrDeckNotFound = errors.New("deck root not found")

// ErrDeckNotDir indicates the deck root path is not a directory.
var ErrDeckNotDir = errors.New("deck root must be a directory")

// ErrIndexNotFound indicates no tables index artifact exists for a deck.
// Run extract first.
var ErrIndexNotFound = errors.New("tables index not found (run extract first)")

// ErrDifferencesFound signals that a diff found changes. It is not a
// failure; commands map it to a non-zero exit status so the diff can gate
// automation.
var ErrDifferencesFound = errors.New("differences found")

// ErrValidationFailed indicates one or more tables failed validation.
var ErrValidationFailed = errors.New("validation failed")

// ErrFormatIncomplete indicates some tables could not be re-canonicalized.
var ErrFormatIncomplete = errors.New("some tables could not be formatted")

// ErrNotGitRepo indicates the commit-diff root is not a git repository.
var ErrNotGitRepo = errors.New("not a git repository")

// ExtractionError represents a failure local to one unit of extraction work.
// Such errors are logged and skipped; they never abort the whole run.
type ExtractionError struct {
	Workbook string
	Sheet    string
	Stage    string // "open", "scan", "parse", "write"
	Err      error
}

func (e *ExtractionError) Error() string {
	if e.Sheet == "" {
		return fmt.Sprintf("extraction error in %s (%s): %v", e.Workbook, e.Stage, e.Err)
	}
	return fmt.Sprintf("extraction error in %s sheet %q (%s): %v", e.Workbook, e.Sheet, e.Stage, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// NewExtractionError creates a new ExtractionError.
func NewExtractionError(workbook, sheet, stage string, err error) *ExtractionError {
	return &ExtractionError{Workbook: workbook, Sheet: sheet, Stage: stage, Err: err}
}
