package errors

import "fmt"

// Validation error codes (VAL500-599)
const (
	// ErrUnclosedConfigBuilder indicates a configuration builder left open at seal time
	ErrUnclosedConfigBuilder ErrorCode = "VAL520"
	// ErrProxiedWithoutPrimary indicates a proxied parent constructor with no primary one
	ErrProxiedWithoutPrimary ErrorCode = "VAL521"
	// ErrQualifierWithoutType indicates a qualifier attached to a declaration with no type
	ErrQualifierWithoutType ErrorCode = "VAL522"
	// ErrMissingName indicates a declaration without a target name
	ErrMissingName ErrorCode = "VAL523"
	// ErrMissingDeclaringType indicates a declaration without a declaring type
	ErrMissingDeclaringType ErrorCode = "VAL524"
	// ErrMissingType indicates a field, setter or parameter without a type
	ErrMissingType ErrorCode = "VAL525"
	// ErrMissingBuilderMethod indicates a configuration builder call without a method name
	ErrMissingBuilderMethod ErrorCode = "VAL526"
	// ErrUnknownBuilderTarget indicates a configuration builder bound to neither a field nor a method
	ErrUnknownBuilderTarget ErrorCode = "VAL527"
)

// NewUnclosedConfigBuilder creates a VAL520 error
func NewUnclosedConfigBuilder(subject string) *CompilerError {
	return newError(
		ErrUnclosedConfigBuilder,
		"unclosed_config_builder",
		CategoryValidation,
		SeverityError,
		"Configuration builder was opened but never closed",
		subject,
	).WithSuggestion("End every configuration builder before sealing the descriptor")
}

// NewProxiedWithoutPrimary creates a VAL521 error
func NewProxiedWithoutPrimary(subject string) *CompilerError {
	return newError(
		ErrProxiedWithoutPrimary,
		"proxied_without_primary",
		CategoryValidation,
		SeverityError,
		"A proxied parent constructor was recorded without a primary constructor",
		subject,
	).WithSuggestion("The proxied parent constructor is recorded in addition to the primary constructor, never instead of it")
}

// NewQualifierWithoutType creates a VAL522 error
func NewQualifierWithoutType(subject, qualifier string) *CompilerError {
	return newError(
		ErrQualifierWithoutType,
		"qualifier_without_type",
		CategoryValidation,
		SeverityError,
		fmt.Sprintf("Qualifier '%s' has no corresponding argument type", qualifier),
		subject,
	)
}

// NewMissingName creates a VAL523 error
func NewMissingName(subject, what string) *CompilerError {
	return newError(
		ErrMissingName,
		"missing_name",
		CategoryValidation,
		SeverityError,
		fmt.Sprintf("%s has no name", what),
		subject,
	)
}

// NewMissingDeclaringType creates a VAL524 error
func NewMissingDeclaringType(subject string) *CompilerError {
	return newError(
		ErrMissingDeclaringType,
		"missing_declaring_type",
		CategoryValidation,
		SeverityError,
		"Declaration has no declaring type",
		subject,
	)
}

// NewMissingType creates a VAL525 error
func NewMissingType(subject, what string) *CompilerError {
	return newError(
		ErrMissingType,
		"missing_type",
		CategoryValidation,
		SeverityError,
		fmt.Sprintf("%s has no type", what),
		subject,
	)
}

// NewMissingBuilderMethod creates a VAL526 error
func NewMissingBuilderMethod(subject string) *CompilerError {
	return newError(
		ErrMissingBuilderMethod,
		"missing_builder_method",
		CategoryValidation,
		SeverityError,
		"Configuration builder call has no method name",
		subject,
	)
}

// NewUnknownBuilderTarget creates a VAL527 error
func NewUnknownBuilderTarget(subject string) *CompilerError {
	return newError(
		ErrUnknownBuilderTarget,
		"unknown_builder_target",
		CategoryValidation,
		SeverityError,
		"Configuration builder target is neither a field nor a method",
		subject,
	).WithSuggestion("Bind the builder with a field or method target")
}
