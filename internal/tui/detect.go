package tui

import (
	"os"
	"strconv"

	"golang.org/x/term"
)

// Mode represents the interaction mode for twbmig.
type Mode int

const (
	// ModeNonInteractive is used for CI/CD pipelines, scripts, and piped input.
	ModeNonInteractive Mode = iota
	// ModeInteractive is used when a human is at the terminal.
	ModeInteractive
)

// EnvNonInteractive disables prompts, the datasource picker and typed
// confirmations when set to a true value ("1", "true").
const EnvNonInteractive = "TWBMIG_NON_INTERACTIVE"

// DetectMode determines whether twbmig may prompt.
//
// Returns ModeNonInteractive if:
//   - TWBMIG_NON_INTERACTIVE is true
//   - CI is set (common CI/CD convention)
//   - NO_COLOR is set (accessibility/automation indicator)
//   - stdin or stdout is not a terminal
//
// Returns ModeInteractive otherwise.
func DetectMode() Mode {
	return detectMode(os.Getenv, func() bool {
		return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
	})
}

func detectMode(getenv func(string) string, attached func() bool) Mode {
	if off, err := strconv.ParseBool(getenv(EnvNonInteractive)); err == nil && off {
		return ModeNonInteractive
	}
	if getenv("CI") != "" || getenv("NO_COLOR") != "" {
		return ModeNonInteractive
	}
	if !attached() {
		return ModeNonInteractive
	}
	return ModeInteractive
}

// IsInteractive is a convenience function that returns true if running in interactive mode.
func IsInteractive() bool {
	return DetectMode() == ModeInteractive
}
