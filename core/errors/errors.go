// Package errors provides standardized error types and helpers for the converter.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrUnknownBook indicates a verse reference named a book code that is not in the canon table
	ErrUnknownBook = errors.New("unknown book")
	// ErrSortOrder indicates a row's canonical sort key regressed below its predecessor
	ErrSortOrder = errors.New("sort key out of order")
	// ErrChapterRegression indicates a chapter number decreased within a book
	ErrChapterRegression = errors.New("chapter regression")
	// ErrBadMarkup indicates embedded markup that could not be tokenized
	ErrBadMarkup = errors.New("bad markup")
	// ErrBadReference indicates reference text that could not be normalized
	ErrBadReference = errors.New("bad reference")
	// ErrEmptyDataset indicates the dataset produced no usable rows at all
	ErrEmptyDataset = errors.New("empty dataset")
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
)

// RowError represents a data-integrity problem with a single dataset row.
// Rows failing this way are skipped; the run continues.
type RowError struct {
	Line    int    // 1-based line number in the dataset
	VerseID string // verse reference text of the row, if any
	Reason  string // human-readable explanation
	Err     error  // underlying sentinel, if any
}

func (e *RowError) Error() string {
	if e.VerseID != "" {
		return fmt.Sprintf("row %d (%s): %s", e.Line, e.VerseID, e.Reason)
	}
	return fmt.Sprintf("row %d: %s", e.Line, e.Reason)
}

func (e *RowError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// BookError represents a failure that abandons one book's assembly.
// Other books are unaffected.
type BookError struct {
	Book   string // book code
	Reason string // human-readable explanation
	Err    error  // underlying sentinel, if any
}

func (e *BookError) Error() string {
	return fmt.Sprintf("book %s: %s", e.Book, e.Reason)
}

func (e *BookError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// MarkupError represents an inline markup token that could not be translated.
// The offending token degrades to literal text; it never aborts a run.
type MarkupError struct {
	Token   string // the token or class name that failed
	Context string // surrounding text, possibly truncated
	Err     error
}

func (e *MarkupError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("markup token %q in %q", e.Token, e.Context)
	}
	return fmt.Sprintf("markup token %q", e.Token)
}

func (e *MarkupError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrBadMarkup
}

// ReferenceError represents cross-reference text that could not be normalized.
// Such references are excluded from the index.
type ReferenceError struct {
	Text string // the reference text as found
	File string // source document, if known
	Err  error
}

func (e *ReferenceError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("unparseable reference %q in %s", e.Text, e.File)
	}
	return fmt.Sprintf("unparseable reference %q", e.Text)
}

func (e *ReferenceError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrBadReference
}

// Is reports whether any error in err's chain matches target.
// Re-exported so callers don't need to import both this package and the standard library errors.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
