package twbmig

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess        = 0  // Extraction completed successfully
	ExitGeneralError   = 1  // Unknown or unclassified error
	ExitUsageError     = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic          = 3  // Internal panic (unexpected crash)
	ExitConfigError    = 10 // Invalid configuration
	ExitApprovalDenied = 12 // User declined removing previous output
	ExitWorkbookError  = 15 // Workbook could not be read or parsed
	ExitInputNotFound  = 16 // Input file or directory does not exist
)

const (
	// DefaultOutputDir is where artifacts are written when nothing else is configured.
	DefaultOutputDir = "output"

	// ParametersDatasource is the name Tableau gives the pseudo-datasource holding parameters.
	ParametersDatasource = "Parameters"

	// MaxWorkbookSize caps the size of a .twb document read from disk or from a .twbx archive.
	MaxWorkbookSize = 256 * 1024 * 1024

	// MaxFormulaPreviewLength is the number of formula characters shown in console summaries.
	MaxFormulaPreviewLength = 60

	// DefaultForceApprovalCountdown is how long --force waits before removing previous output.
	DefaultForceApprovalCountdown = 3 * time.Second
)

// Format names accepted by the renderers.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatText = "txt"
)

// DefaultFormats are rendered when no formats are configured.
var DefaultFormats = []string{FormatJSON, FormatCSV, FormatText}

// IsKnownFormat reports whether name is a supported artifact format.
func IsKnownFormat(name string) bool {
	switch name {
	case FormatJSON, FormatCSV, FormatXLSX, FormatText:
		return true
	}
	return false
}
