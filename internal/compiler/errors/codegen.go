package errors

import "fmt"

// Code generation error codes (GEN600-699)
const (
	// ErrEmitFailed indicates the artifact document could not be produced
	ErrEmitFailed ErrorCode = "GEN600"
	// ErrInvalidFacts indicates a facts document that cannot be replayed
	ErrInvalidFacts ErrorCode = "GEN601"
)

// NewEmitFailed creates a GEN600 error
func NewEmitFailed(subject, reason string) *CompilerError {
	return newError(
		ErrEmitFailed,
		"emit_failed",
		CategoryCodeGen,
		SeverityError,
		fmt.Sprintf("Artifact emission failed: %s", reason),
		subject,
	).WithSuggestion("This is likely a compiler bug - please report it")
}

// NewInvalidFacts creates a GEN601 error
func NewInvalidFacts(subject, reason string) *CompilerError {
	return newError(
		ErrInvalidFacts,
		"invalid_facts",
		CategoryCodeGen,
		SeverityError,
		fmt.Sprintf("Invalid analyzer facts: %s", reason),
		subject,
	).WithSuggestion("Check the facts document produced by the analyzer")
}
