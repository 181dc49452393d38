// Package errors defines the typed errors used across the radar engine.
package errors

import (
	"fmt"
	"time"
)

// ErrorType categorizes engine errors.
type ErrorType string

const (
	// File errors
	ErrorTypeIO           ErrorType = "io"
	ErrorTypeFileNotFound ErrorType = "file_not_found"
	ErrorTypePermission   ErrorType = "permission"

	// Analysis errors
	ErrorTypeParse  ErrorType = "parse"
	ErrorTypeBudget ErrorType = "budget"

	// Input errors
	ErrorTypeSymptom ErrorType = "symptom"
	ErrorTypeConfig  ErrorType = "config"

	// Internal errors
	ErrorTypeInternal ErrorType = "internal"
)

// ScanError represents an error during indexing or detection.
// Recoverable errors are logged and the offending file is skipped;
// the scan itself continues.
type ScanError struct {
	Type        ErrorType
	FilePath    string
	Operation   string
	Underlying  error
	Timestamp   time.Time
	Recoverable bool
}

// NewScanError creates a scan error with context.
func NewScanError(op string, err error) *ScanError {
	return &ScanError{
		Type:       ErrorTypeIO,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// WithFile adds file information to the error.
func (e *ScanError) WithFile(path string) *ScanError {
	e.FilePath = path
	return e
}

// WithType overrides the error category.
func (e *ScanError) WithType(t ErrorType) *ScanError {
	e.Type = t
	return e
}

// WithRecoverable marks the error as recoverable.
func (e *ScanError) WithRecoverable(recoverable bool) *ScanError {
	e.Recoverable = recoverable
	return e
}

// Error implements the error interface.
func (e *ScanError) Error() string {
	if e.FilePath != "" {
		return fmt.Sprintf("%s %s failed for %s: %v", e.Type, e.Operation, e.FilePath, e.Underlying)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Type, e.Operation, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *ScanError) Unwrap() error {
	return e.Underlying
}

// IsRecoverable checks if the scan can continue past this error.
func (e *ScanError) IsRecoverable() bool {
	return e.Recoverable
}

// ParseError represents a syntax-level failure in one source file.
// Parsing is best-effort: a ParseError never aborts a project scan.
type ParseError struct {
	Type       ErrorType
	FilePath   string
	Line       int
	Column     int
	Underlying error
	Timestamp  time.Time
}

// NewParseError creates a new parse error.
func NewParseError(path string, line, column int, err error) *ParseError {
	return &ParseError{
		Type:       ErrorTypeParse,
		FilePath:   path,
		Line:       line,
		Column:     column,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s:%d:%d: %v", e.FilePath, e.Line, e.Column, e.Underlying)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Underlying
}

// BudgetError records a tripped resource budget during log analysis.
// It is informational: the analyzer returns a truncated but valid
// result alongside it, never an empty one.
type BudgetError struct {
	Type      ErrorType
	FilePath  string
	Budget    string
	Limit     string
	Timestamp time.Time
}

// NewBudgetError creates a budget error for the named budget.
func NewBudgetError(path, budget, limit string) *BudgetError {
	return &BudgetError{
		Type:      ErrorTypeBudget,
		FilePath:  path,
		Budget:    budget,
		Limit:     limit,
		Timestamp: time.Now(),
	}
}

// Error implements the error interface.
func (e *BudgetError) Error() string {
	return fmt.Sprintf("%s budget exceeded for %s (limit %s)", e.Budget, e.FilePath, e.Limit)
}

// SymptomError rejects an unrecognized symptom label, carrying the
// closest known label when one is similar enough to suggest.
type SymptomError struct {
	Symptom    string
	Suggestion string
	Known      []string
	Timestamp  time.Time
}

// NewSymptomError creates a symptom rejection error.
func NewSymptomError(symptom, suggestion string, known []string) *SymptomError {
	return &SymptomError{
		Symptom:    symptom,
		Suggestion: suggestion,
		Known:      known,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface.
func (e *SymptomError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown symptom %q (did you mean %q?)", e.Symptom, e.Suggestion)
	}
	return fmt.Sprintf("unknown symptom %q (known: %v)", e.Symptom, e.Known)
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error.
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// MultiError collects the recoverable errors accumulated during a scan.
type MultiError struct {
	Errors []error
}

// NewMultiError creates a multi-error, dropping nil entries.
func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// Error implements the error interface.
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all errors.
func (e *MultiError) Unwrap() []error {
	return e.Errors
}
