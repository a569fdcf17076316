package twbmig_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vvka-141/twbmig/pkg/twbmig"
)

func TestExtractionConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		config    twbmig.ExtractionConfig
		wantError bool
	}{
		{
			name: "valid config",
			config: twbmig.ExtractionConfig{
				InputPath: "./Superstore.twbx",
				OutputDir: "output",
				Formats:   []string{"json", "csv"},
			},
		},
		{
			name: "no formats is valid",
			config: twbmig.ExtractionConfig{
				InputPath: "book.twb",
				OutputDir: "out",
			},
		},
		{
			name:      "missing input path",
			config:    twbmig.ExtractionConfig{OutputDir: "out"},
			wantError: true,
		},
		{
			name:      "missing output dir",
			config:    twbmig.ExtractionConfig{InputPath: "book.twb"},
			wantError: true,
		},
		{
			name: "unknown format",
			config: twbmig.ExtractionConfig{
				InputPath: "book.twb",
				OutputDir: "out",
				Formats:   []string{"json", "pdf"},
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantError {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				if !errors.Is(err, twbmig.ErrInvalidConfig) {
					t.Errorf("Expected ErrInvalidConfig, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestFixedClock(t *testing.T) {
	instant := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := twbmig.FixedClock(instant)
	if !clock.Now().Equal(instant) {
		t.Errorf("Expected %v, got %v", instant, clock.Now())
	}
}
