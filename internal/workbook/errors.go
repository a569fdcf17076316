package workbook

import (
	"encoding/xml"
	"errors"
	"fmt"

	"github.com/vvka-141/twbmig/pkg/twbmig"
)

// ErrNotWorkbook is returned for empty documents and documents whose root is not <workbook>.
var ErrNotWorkbook = fmt.Errorf("not a Tableau workbook: %w", twbmig.ErrUnsupportedInput)

// WorkbookError is a parse failure with location and an actionable hint.
type WorkbookError struct {
	Source  string // Path or archive entry of the .twb
	Line    int    // Line number (0 if unknown)
	Element string // Element being decoded, if known
	Message string // Primary error message
	Hint    string // Actionable suggestion for fixing
}

// Error implements the error interface.
func (e *WorkbookError) Error() string {
	location := e.Source
	if e.Line > 0 {
		location = fmt.Sprintf("%s (line %d)", e.Source, e.Line)
	}

	msg := fmt.Sprintf("workbook error in %s: %s", location, e.Message)
	if e.Element != "" {
		msg = fmt.Sprintf("workbook error in %s [element: %s]: %s", location, e.Element, e.Message)
	}
	if e.Hint != "" {
		msg += "\n\nHint: " + e.Hint
	}
	return msg
}

// wrapXMLError converts encoding/xml failures to a WorkbookError.
func wrapXMLError(err error, source string) error {
	var syntaxErr *xml.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &WorkbookError{
			Source:  source,
			Line:    syntaxErr.Line,
			Message: syntaxErr.Msg,
			Hint: "The .twb file is not well-formed XML. If it was edited by hand, check that\n" +
				"all tags are closed and attribute values are quoted. Otherwise re-save the\n" +
				"workbook from Tableau Desktop.",
		}
	}

	var unmarshalErr xml.UnmarshalError
	if errors.As(err, &unmarshalErr) {
		return &WorkbookError{
			Source:  source,
			Message: string(unmarshalErr),
			Hint:    "The document root must be <workbook>. Pass a .twb file or a packaged .twbx archive.",
		}
	}

	return &WorkbookError{
		Source:  source,
		Message: err.Error(),
	}
}
