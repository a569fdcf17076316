package twbmig

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	result, err := extractor.Extract(ctx, path)
//	if errors.Is(err, twbmig.ErrWorkbookParse) {
//	    // Handle a corrupt or non-Tableau file
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInputNotFound indicates the workbook or directory does not exist.
	ErrInputNotFound = errors.New("input not found")

	// ErrWorkbookParse indicates the workbook XML could not be parsed.
	ErrWorkbookParse = errors.New("workbook parse failed")

	// ErrUnsupportedInput indicates the file is neither a .twb nor a .twbx.
	ErrUnsupportedInput = errors.New("unsupported input")

	// ErrApprovalDenied indicates the user declined removing previous output.
	ErrApprovalDenied = errors.New("approval denied")
)

// usageErrorPatterns are fragments of cobra/pflag error messages caused by misuse of the command line.
var usageErrorPatterns = []string{
	"unknown flag",
	"unknown shorthand flag",
	"unknown command",
	"accepts ",
	"requires at least",
	"required flag",
	"invalid argument",
	"missing required argument",
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrWorkbookParse), errors.Is(err, ErrUnsupportedInput):
		return ExitWorkbookError
	case errors.Is(err, ErrInputNotFound):
		return ExitInputNotFound
	case errors.Is(err, ErrApprovalDenied):
		return ExitApprovalDenied
	}

	errStr := err.Error()
	for _, pattern := range usageErrorPatterns {
		if strings.Contains(errStr, pattern) {
			return ExitUsageError
		}
	}

	return ExitGeneralError
}
