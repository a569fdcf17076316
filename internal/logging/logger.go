package logging

import (
	"fmt"
	"strings"

	"github.com/vvka-141/twbmig/pkg/twbmig"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New returns the logger for the given output format.
// An empty format selects the console logger.
func New(format string, verbose bool) (twbmig.Logger, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatConsole:
		return NewConsoleLogger(verbose), nil
	case FormatJSON:
		return NewZapLogger(verbose), nil
	default:
		return nil, fmt.Errorf("%w: unknown log format %q (expected %s or %s)",
			twbmig.ErrInvalidConfig, format, FormatConsole, FormatJSON)
	}
}
