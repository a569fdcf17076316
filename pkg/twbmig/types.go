package twbmig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ExtractionConfig contains everything needed to extract one workbook and render its artifacts.
type ExtractionConfig struct {
	// InputPath is the .twb or .twbx file to read
	InputPath string

	// OutputDir is the directory artifacts are written under
	OutputDir string

	// Formats lists the artifact formats to render (json, csv, xlsx, txt)
	Formats []string

	// IncludeUnused keeps fields no worksheet uses in the rendered field mappings
	IncludeUnused bool

	// Verbose enables detailed logging
	Verbose bool
}

// Validate checks if the ExtractionConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *ExtractionConfig) Validate() error {
	var errs []error

	if strings.TrimSpace(c.InputPath) == "" {
		errs = append(errs, fmt.Errorf("InputPath is required: %w", ErrInvalidConfig))
	}

	if strings.TrimSpace(c.OutputDir) == "" {
		errs = append(errs, fmt.Errorf("OutputDir is required: %w", ErrInvalidConfig))
	}

	for _, f := range c.Formats {
		if !IsKnownFormat(f) {
			errs = append(errs, fmt.Errorf("unknown format %q (expected json, csv, xlsx or txt): %w", f, ErrInvalidConfig))
		}
	}

	return errors.Join(errs...)
}

// Clock abstracts the current time so extraction timestamps are testable.
type Clock interface {
	Now() time.Time
}

// SystemClock returns the wall-clock time in UTC.
type SystemClock struct{}

// Now returns time.Now in UTC.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant.
type FixedClock time.Time

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time { return time.Time(c) }
