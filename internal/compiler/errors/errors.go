// Package errors provides structured error handling for the bean compiler.
// It defines error codes, categories, and formatting for both human-readable
// terminal output and machine-parseable JSON for build tooling.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a unique error code in the bean compiler
type ErrorCode string

// ErrorCategory represents the category of compiler error
type ErrorCategory string

const (
	// CategoryUsage represents protocol violations by the caller (USE100-199)
	CategoryUsage ErrorCategory = "usage"
	// CategoryValidation represents invariant violations found while sealing (VAL500-599)
	CategoryValidation ErrorCategory = "validation"
	// CategoryCodeGen represents artifact emission errors (GEN600-699)
	CategoryCodeGen ErrorCategory = "codegen"
)

// ErrorSeverity indicates the severity level of an error
type ErrorSeverity string

const (
	// SeverityError indicates an error that prevents compilation
	SeverityError ErrorSeverity = "error"
	// SeverityWarning indicates a warning that suggests potential issues
	SeverityWarning ErrorSeverity = "warning"
	// SeverityInfo indicates informational messages
	SeverityInfo ErrorSeverity = "info"
)

// CompilerError represents a structured compiler error
type CompilerError struct {
	// Code is the unique error code (e.g., "USE101", "VAL520")
	Code ErrorCode `json:"code"`
	// Type is a machine-readable error type identifier
	Type string `json:"type"`
	// Category is the error category
	Category ErrorCategory `json:"category"`
	// Severity is the error severity level
	Severity ErrorSeverity `json:"severity"`
	// Message is the primary error message
	Message string `json:"message"`
	// Bean is the declared type whose descriptor was being built
	Bean string `json:"bean,omitempty"`
	// Subject names the offending declaration, e.g. "com.acme.Foo#setName"
	Subject string `json:"subject,omitempty"`
	// File is the facts file the declaration came from (optional)
	File string `json:"file,omitempty"`
	// Expected describes what was expected (optional)
	Expected string `json:"expected,omitempty"`
	// Actual describes what was actually found (optional)
	Actual string `json:"actual,omitempty"`
	// Suggestion provides a hint for fixing the error (optional)
	Suggestion string `json:"suggestion,omitempty"`
	// Documentation is a URL to detailed error documentation
	Documentation string `json:"documentation,omitempty"`
}

// Error implements the error interface
func (e *CompilerError) Error() string {
	return FormatCompact(e)
}

// Format returns a human-readable error message for terminal output
func (e *CompilerError) Format() string {
	return FormatError(e)
}

// ToJSON returns the error as a JSON string
func (e *CompilerError) ToJSON() (string, error) {
	bytes, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// WithBean sets the bean type the error belongs to
func (e *CompilerError) WithBean(bean string) *CompilerError {
	e.Bean = bean
	return e
}

// WithFile sets the source file name for the error
func (e *CompilerError) WithFile(file string) *CompilerError {
	e.File = file
	return e
}

// WithExpected sets the expected value for the error
func (e *CompilerError) WithExpected(expected string) *CompilerError {
	e.Expected = expected
	return e
}

// WithActual sets the actual value for the error
func (e *CompilerError) WithActual(actual string) *CompilerError {
	e.Actual = actual
	return e
}

// WithSuggestion sets a suggestion for fixing the error
func (e *CompilerError) WithSuggestion(suggestion string) *CompilerError {
	e.Suggestion = suggestion
	return e
}

// ErrorList is a collection of compiler errors
type ErrorList []*CompilerError

// Error implements the error interface
func (el ErrorList) Error() string {
	if len(el) == 0 {
		return "no errors"
	}
	if len(el) == 1 {
		return el[0].Error()
	}
	return FormatErrorList(el)
}

// HasErrors returns true if the list contains any errors (excludes warnings/info)
func (el ErrorList) HasErrors() bool {
	for _, err := range el {
		if err.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ToJSON returns all errors as a JSON array
func (el ErrorList) ToJSON() (string, error) {
	bytes, err := json.MarshalIndent(el, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// ErrorCount returns the number of errors by severity
func (el ErrorList) ErrorCount() (errors, warnings, info int) {
	for _, err := range el {
		switch err.Severity {
		case SeverityError:
			errors++
		case SeverityWarning:
			warnings++
		case SeverityInfo:
			info++
		}
	}
	return
}

// WithFile stamps every error in the list with the given file
func (el ErrorList) WithFile(file string) ErrorList {
	for _, err := range el {
		err.File = file
	}
	return el
}

// IsUsage reports whether err is, or wraps, a usage error
func IsUsage(err error) bool {
	return hasCategory(err, CategoryUsage)
}

// IsValidation reports whether err is, or wraps, a validation failure
func IsValidation(err error) bool {
	return hasCategory(err, CategoryValidation)
}

// CodeOf returns the code of the first compiler error found in err
func CodeOf(err error) ErrorCode {
	var ce *CompilerError
	if stderrors.As(err, &ce) {
		return ce.Code
	}
	var el ErrorList
	if stderrors.As(err, &el) && len(el) > 0 {
		return el[0].Code
	}
	return ""
}

// Codes returns every code carried by err, in order
func Codes(err error) []ErrorCode {
	var el ErrorList
	if stderrors.As(err, &el) {
		codes := make([]ErrorCode, len(el))
		for i, e := range el {
			codes[i] = e.Code
		}
		return codes
	}
	if code := CodeOf(err); code != "" {
		return []ErrorCode{code}
	}
	return nil
}

func hasCategory(err error, category ErrorCategory) bool {
	var ce *CompilerError
	if stderrors.As(err, &ce) {
		return ce.Category == category
	}
	var el ErrorList
	if stderrors.As(err, &el) {
		for _, e := range el {
			if e.Category == category {
				return true
			}
		}
	}
	return false
}

// documentationURL returns the documentation URL for an error code
func documentationURL(code ErrorCode) string {
	return fmt.Sprintf("https://docs.conduit-lang.org/beanc/errors/%s", code)
}

// newError creates a new CompilerError with the given parameters
func newError(
	code ErrorCode,
	typ string,
	category ErrorCategory,
	severity ErrorSeverity,
	message string,
	subject string,
) *CompilerError {
	return &CompilerError{
		Code:          code,
		Type:          typ,
		Category:      category,
		Severity:      severity,
		Message:       message,
		Subject:       subject,
		Documentation: documentationURL(code),
	}
}
