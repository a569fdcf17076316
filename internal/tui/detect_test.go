package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectMode_Combinations(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		attached bool
		want     Mode
	}{
		{"terminal without overrides", nil, true, ModeInteractive},
		{"no terminal", nil, false, ModeNonInteractive},
		{"opt-out with 1", map[string]string{EnvNonInteractive: "1"}, true, ModeNonInteractive},
		{"opt-out with true", map[string]string{EnvNonInteractive: "true"}, true, ModeNonInteractive},
		{"explicit opt-in still honors CI", map[string]string{EnvNonInteractive: "0", "CI": "true"}, true, ModeNonInteractive},
		{"explicit opt-in on a terminal", map[string]string{EnvNonInteractive: "0"}, true, ModeInteractive},
		{"unparsable value ignored", map[string]string{EnvNonInteractive: "yes please"}, true, ModeInteractive},
		{"CI runner", map[string]string{"CI": "1"}, true, ModeNonInteractive},
		{"NO_COLOR", map[string]string{"NO_COLOR": "1"}, true, ModeNonInteractive},
		{"CI and opt-out without terminal", map[string]string{"CI": "1", EnvNonInteractive: "1"}, false, ModeNonInteractive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			getenv := func(k string) string { return tt.env[k] }
			assert.Equal(t, tt.want, detectMode(getenv, func() bool { return tt.attached }))
		})
	}
}

func TestDetectMode_TerminalCheckSkippedWhenDisabled(t *testing.T) {
	called := false
	getenv := func(k string) string {
		if k == EnvNonInteractive {
			return "1"
		}
		return ""
	}

	detectMode(getenv, func() bool { called = true; return true })

	assert.False(t, called)
}

func TestIsInteractive_FalseUnderGoTest(t *testing.T) {
	t.Setenv(EnvNonInteractive, "")
	t.Setenv("CI", "")
	t.Setenv("NO_COLOR", "")

	assert.False(t, IsInteractive(), "go test does not attach a terminal")
}
