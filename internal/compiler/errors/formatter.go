package errors

import (
	"fmt"
	"strings"
)

// FormatError returns a human-readable error message for terminal output
func FormatError(e *CompilerError) string {
	var b strings.Builder

	// Severity icon
	icon := severityIcon(e.Severity)

	// Error header
	source := e.File
	if source == "" {
		source = "<facts>"
	}

	fmt.Fprintf(&b, "%s %s [%s] in %s\n", icon, categoryDisplayName(e.Category), e.Code, source)

	// Where in the bean
	if e.Bean != "" {
		fmt.Fprintf(&b, "Bean: %s\n", e.Bean)
	}
	if e.Subject != "" {
		fmt.Fprintf(&b, "Declaration: %s\n", e.Subject)
	}
	fmt.Fprintf(&b, "  %s\n", e.Message)

	// Expected vs Actual (if provided)
	if e.Expected != "" || e.Actual != "" {
		b.WriteString("\n")
		if e.Expected != "" {
			fmt.Fprintf(&b, "  Expected: %s\n", e.Expected)
		}
		if e.Actual != "" {
			fmt.Fprintf(&b, "  Actual:   %s\n", e.Actual)
		}
	}

	// Suggestion (if provided)
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n💡 %s\n", e.Suggestion)
	}

	// Documentation link
	if e.Documentation != "" {
		fmt.Fprintf(&b, "\nLearn more: %s\n", e.Documentation)
	}

	return b.String()
}

// FormatErrorList returns a formatted string of all errors
func FormatErrorList(errors ErrorList) string {
	if len(errors) == 0 {
		return "no errors"
	}

	var b strings.Builder

	// Summary header
	errCount, warnCount, infoCount := errors.ErrorCount()
	fmt.Fprintf(&b, "Compilation failed with %d error(s), %d warning(s), %d info\n\n",
		errCount, warnCount, infoCount)

	// Format each error
	for i, err := range errors {
		if i > 0 {
			b.WriteString("\n" + strings.Repeat("-", 80) + "\n\n")
		}
		b.WriteString(err.Format())
	}

	return b.String()
}

// FormatCompact returns a compact one-line error format
func FormatCompact(e *CompilerError) string {
	var where string
	switch {
	case e.Bean != "" && e.Subject != "":
		where = e.Bean + " " + e.Subject
	case e.Bean != "":
		where = e.Bean
	case e.Subject != "":
		where = e.Subject
	default:
		where = "<bean>"
	}
	if e.File != "" {
		where = e.File + ": " + where
	}
	return fmt.Sprintf("%s: %s: %s [%s]", where, e.Severity, e.Message, e.Code)
}

// severityIcon returns the emoji/icon for a severity level
func severityIcon(severity ErrorSeverity) string {
	switch severity {
	case SeverityError:
		return "❌"
	case SeverityWarning:
		return "⚠️ "
	case SeverityInfo:
		return "ℹ️ "
	default:
		return "❓"
	}
}

// categoryDisplayName returns a human-readable category name
func categoryDisplayName(category ErrorCategory) string {
	switch category {
	case CategoryUsage:
		return "Usage Error"
	case CategoryValidation:
		return "Validation Error"
	case CategoryCodeGen:
		return "Code Generation Error"
	default:
		return "Compiler Error"
	}
}
