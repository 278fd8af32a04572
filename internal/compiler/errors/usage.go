package errors

import "fmt"

// Usage error codes (USE100-199)
const (
	// ErrBuilderSealed indicates a call on a builder that was already sealed
	ErrBuilderSealed ErrorCode = "USE100"
	// ErrDuplicateConstructor indicates a second primary constructor
	ErrDuplicateConstructor ErrorCode = "USE101"
	// ErrDuplicateProxiedConstructor indicates a second proxied parent constructor
	ErrDuplicateProxiedConstructor ErrorCode = "USE102"
	// ErrMismatchedArguments indicates parallel argument maps with different keys
	ErrMismatchedArguments ErrorCode = "USE103"
	// ErrDuplicateParameter indicates a parameter name used twice in one signature
	ErrDuplicateParameter ErrorCode = "USE104"
	// ErrConfigBuilderOpen indicates a configuration builder opened while another is open
	ErrConfigBuilderOpen ErrorCode = "USE105"
	// ErrConfigBuilderNotOpen indicates a builder method or end without an open builder
	ErrConfigBuilderNotOpen ErrorCode = "USE106"
	// ErrSpecKindMismatch indicates an injection spec that does not fit its kind
	ErrSpecKindMismatch ErrorCode = "USE107"
	// ErrDuplicateSuperType indicates a second supertype declaration
	ErrDuplicateSuperType ErrorCode = "USE108"
	// ErrDuplicateExecutable indicates the same executable method added twice
	ErrDuplicateExecutable ErrorCode = "USE109"
	// ErrInvalidOptions indicates builder options that cannot describe a bean
	ErrInvalidOptions ErrorCode = "USE110"
	// ErrUnknownInjectionKind indicates an injection kind outside the known set
	ErrUnknownInjectionKind ErrorCode = "USE111"
)

// NewBuilderSealed creates a USE100 error
func NewBuilderSealed(subject string) *CompilerError {
	return newError(
		ErrBuilderSealed,
		"builder_sealed",
		CategoryUsage,
		SeverityError,
		fmt.Sprintf("%s called after the descriptor was sealed", subject),
		subject,
	).WithSuggestion("Create a new builder for each declared type; a sealed builder is spent")
}

// NewDuplicateConstructor creates a USE101 error
func NewDuplicateConstructor(subject string) *CompilerError {
	return newError(
		ErrDuplicateConstructor,
		"duplicate_constructor",
		CategoryUsage,
		SeverityError,
		"A primary constructor has already been recorded",
		subject,
	).WithSuggestion("Record the injection constructor exactly once; use the proxied constructor for a proxy's parent")
}

// NewDuplicateProxiedConstructor creates a USE102 error
func NewDuplicateProxiedConstructor(subject string) *CompilerError {
	return newError(
		ErrDuplicateProxiedConstructor,
		"duplicate_proxied_constructor",
		CategoryUsage,
		SeverityError,
		"A proxied parent constructor has already been recorded",
		subject,
	)
}

// NewMismatchedArguments creates a USE103 error
func NewMismatchedArguments(subject, what string, expected, actual []string) *CompilerError {
	return newError(
		ErrMismatchedArguments,
		"mismatched_arguments",
		CategoryUsage,
		SeverityError,
		fmt.Sprintf("%s keys do not match argument type keys", what),
		subject,
	).WithExpected(fmt.Sprintf("%v", expected)).
		WithActual(fmt.Sprintf("%v", actual)).
		WithSuggestion("Supply qualifier and generic maps with the same keys, in the same order, as the argument types")
}

// NewDuplicateParameter creates a USE104 error
func NewDuplicateParameter(subject, name string) *CompilerError {
	return newError(
		ErrDuplicateParameter,
		"duplicate_parameter",
		CategoryUsage,
		SeverityError,
		fmt.Sprintf("Parameter '%s' is declared more than once", name),
		subject,
	)
}

// NewConfigBuilderOpen creates a USE105 error
func NewConfigBuilderOpen(subject, open string) *CompilerError {
	return newError(
		ErrConfigBuilderOpen,
		"config_builder_open",
		CategoryUsage,
		SeverityError,
		fmt.Sprintf("Configuration builder '%s' is still open", open),
		subject,
	).WithSuggestion("Close the current configuration builder before opening another")
}

// NewConfigBuilderNotOpen creates a USE106 error
func NewConfigBuilderNotOpen(subject string) *CompilerError {
	return newError(
		ErrConfigBuilderNotOpen,
		"config_builder_not_open",
		CategoryUsage,
		SeverityError,
		"No configuration builder is open",
		subject,
	).WithSuggestion("Begin a configuration builder on a field or method first")
}

// NewSpecKindMismatch creates a USE107 error
func NewSpecKindMismatch(subject, kind, spec string) *CompilerError {
	return newError(
		ErrSpecKindMismatch,
		"spec_kind_mismatch",
		CategoryUsage,
		SeverityError,
		fmt.Sprintf("Injection kind '%s' cannot be described by a %s", kind, spec),
		subject,
	)
}

// NewDuplicateSuperType creates a USE108 error
func NewDuplicateSuperType(subject, existing string) *CompilerError {
	return newError(
		ErrDuplicateSuperType,
		"duplicate_super_type",
		CategoryUsage,
		SeverityError,
		fmt.Sprintf("Supertype already declared as %s", existing),
		subject,
	)
}

// NewDuplicateExecutable creates a USE109 error
func NewDuplicateExecutable(subject string) *CompilerError {
	return newError(
		ErrDuplicateExecutable,
		"duplicate_executable",
		CategoryUsage,
		SeverityError,
		"Executable method has already been recorded",
		subject,
	)
}

// NewInvalidOptions creates a USE110 error
func NewInvalidOptions(reason string) *CompilerError {
	return newError(
		ErrInvalidOptions,
		"invalid_options",
		CategoryUsage,
		SeverityError,
		fmt.Sprintf("Invalid builder options: %s", reason),
		"",
	)
}

// NewUnknownInjectionKind creates a USE111 error
func NewUnknownInjectionKind(subject string, kind int) *CompilerError {
	return newError(
		ErrUnknownInjectionKind,
		"unknown_injection_kind",
		CategoryUsage,
		SeverityError,
		fmt.Sprintf("Unknown injection kind %d", kind),
		subject,
	)
}
