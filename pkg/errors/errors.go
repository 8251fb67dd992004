// Package errors provides the error types used across the gb2260 pipeline.
// The taxonomy follows the run semantics: source failures are fatal, parse
// failures are recoverable per record, match conflicts are collected rather
// than raised, and write failures are fatal.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is reports whether any error in err's tree matches target.
var Is = errors.Is

// As finds the first error in err's tree that matches target.
var As = errors.As

// Common sentinel errors.
var (
	// ErrNotFound indicates that a requested record was not found.
	ErrNotFound = errors.New("not found")

	// ErrSourceUnavailable indicates that a source could not be fetched or
	// read from cache.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrInvalidInput indicates that provided input was invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAmbiguous indicates that a lookup or match produced more than one
	// equally valid result.
	ErrAmbiguous = errors.New("ambiguous")

	// ErrEmptyDataset indicates that a parsed record set came out empty,
	// which turns per-record parse errors into a fatal condition.
	ErrEmptyDataset = errors.New("empty dataset")
)

// SourceError represents a failure to obtain a source document.
type SourceError struct {
	Source  string
	Version string
	Err     error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	if e.Version != "" {
		return fmt.Sprintf("source %s (version %s) unavailable: %v", e.Source, e.Version, e.Err)
	}
	return fmt.Sprintf("source %s unavailable: %v", e.Source, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *SourceError) Unwrap() error { return e.Err }

// Is implements errors.Is support.
func (e *SourceError) Is(target error) bool { return target == ErrSourceUnavailable }

// NewSourceError creates a new SourceError.
func NewSourceError(source, version string, err error) *SourceError {
	return &SourceError{Source: source, Version: version, Err: err}
}

// ParseError represents a row or node that lacks a required field. The
// offending record is skipped and logged; the error itself is only fatal
// when it leaves a record set empty.
type ParseError struct {
	Source  string
	File    string
	Line    int
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("parse error in %s at %s:%d: %s", e.Source, e.File, e.Line, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Source, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Source, e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *ParseError) Unwrap() error { return e.Err }

// NewParseError creates a new ParseError.
func NewParseError(source, file string, line int, message string) *ParseError {
	return &ParseError{Source: source, File: file, Line: line, Message: message}
}

// ConflictError represents an ambiguous or contradictory match that the
// pipeline refuses to resolve by guessing. Conflicts are collected into the
// audit report instead of aborting the run.
type ConflictError struct {
	Code   int
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("conflict on %06d field %s: %s", e.Code, e.Field, e.Reason)
	}
	return fmt.Sprintf("conflict on %06d: %s", e.Code, e.Reason)
}

// Is implements errors.Is support.
func (e *ConflictError) Is(target error) bool { return target == ErrAmbiguous }

// NewConflictError creates a new ConflictError.
func NewConflictError(code int, field, reason string) *ConflictError {
	return &ConflictError{Code: code, Field: field, Reason: reason}
}

// ValidationError represents a record that violates a dataset invariant.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s (%v): %s", e.Field, e.Value, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support.
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// IOError represents a failure while reading or writing a dataset file.
// Write failures are fatal and must never leave a truncated file under the
// final name.
type IOError struct {
	Operation string // "read", "write", "create", "rename"
	Path      string
	Err       error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Operation, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *IOError) Unwrap() error { return e.Err }

// NewIOError creates a new IOError.
func NewIOError(operation, path string, err error) *IOError {
	return &IOError{Operation: operation, Path: path, Err: err}
}

// Helper wrapping functions for common patterns.

// WrapIO wraps an error as an IOError, or returns nil for a nil error.
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapSource wraps an error as a SourceError, or returns nil for a nil error.
func WrapSource(source, version string, err error) error {
	if err == nil {
		return nil
	}
	return NewSourceError(source, version, err)
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsSourceUnavailable checks if an error indicates a missing source.
func IsSourceUnavailable(err error) bool { return errors.Is(err, ErrSourceUnavailable) }

// IsAmbiguous checks if an error indicates an ambiguous match or lookup.
func IsAmbiguous(err error) bool { return errors.Is(err, ErrAmbiguous) }
