package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vvka-141/twbmig/pkg/twbmig"
)

var (
	_ twbmig.Logger = (*ConsoleLogger)(nil)
	_ twbmig.Logger = (*ZapLogger)(nil)
	_ twbmig.Logger = (*NullLogger)(nil)
)

func TestConsoleLogger_Verbose(t *testing.T) {
	var enabled, disabled bytes.Buffer

	NewConsoleLoggerTo(&enabled, true).Verbose("merged %d field(s)", 3)
	NewConsoleLoggerTo(&disabled, false).Verbose("merged %d field(s)", 3)

	if got, want := enabled.String(), "[VERBOSE] merged 3 field(s)\n"; got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
	if disabled.Len() != 0 {
		t.Errorf("Expected no output, got %q", disabled.String())
	}
}

func TestConsoleLogger_InfoAndError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLoggerTo(&buf, false)

	logger.Info("wrote %s", "field_mapping.csv")
	logger.Error("cannot open workbook")
	logger.Info("100%% done")

	want := "wrote field_mapping.csv\n[ERROR] cannot open workbook\n100%% done\n"
	assert.Equal(t, want, buf.String(), "format without args is written verbatim")
}

func TestConsoleLogger_ConcurrentSafety(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLoggerTo(&buf, true)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			logger.Info("message %d", id)
			logger.Verbose("verbose %d", id)
			logger.Error("error %d", id)
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 30)
	for i, line := range lines {
		if !strings.Contains(line, "message") && !strings.Contains(line, "verbose") && !strings.Contains(line, "error") {
			t.Errorf("Line %d appears corrupted: %q", i, line)
		}
	}
}

func TestZapLogger_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZapLoggerTo(&buf, false)

	logger.Verbose("hidden")
	logger.Info("resolved %d fields", 12)
	require.NoError(t, logger.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1, "debug entries are dropped unless verbose")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "resolved 12 fields", entry["msg"])
	assert.Equal(t, "twbmig", entry["component"])
	assert.Contains(t, entry, "ts")
}

func TestZapLogger_Levels(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := NewZapLoggerFromCore(core)

	logger.Verbose("detail %s", "x")
	logger.Info("progress")
	logger.Error("failed: %v", errors.New("boom"))

	entries := logs.AllUntimed()
	require.Len(t, entries, 3)
	assert.Equal(t, zap.DebugLevel, entries[0].Level)
	assert.Equal(t, "detail x", entries[0].Message)
	assert.Equal(t, zap.InfoLevel, entries[1].Level)
	assert.Equal(t, zap.ErrorLevel, entries[2].Level)
	assert.Equal(t, "failed: boom", entries[2].Message)
}

func TestNew(t *testing.T) {
	tests := []struct {
		format  string
		want    string
		wantErr bool
	}{
		{"", "*logging.ConsoleLogger", false},
		{"console", "*logging.ConsoleLogger", false},
		{"JSON", "*logging.ZapLogger", false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			logger, err := New(tt.format, false)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, twbmig.ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, fmt.Sprintf("%T", logger))
		})
	}
}

func TestNullLogger_ConcurrentSafety(t *testing.T) {
	logger := NewNullLogger()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			logger.Info("message %d", id)
			logger.Verbose("verbose %d", id)
			logger.Error("error %d", id)
		}(i)
	}
	wg.Wait()
}

func BenchmarkConsoleLogger_VerboseDisabled(b *testing.B) {
	logger := NewConsoleLoggerTo(&bytes.Buffer{}, false)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Verbose("benchmark message %d", i)
	}
}

func ExampleNullLogger() {
	logger := NewNullLogger()
	logger.Info("This message is discarded")
	fmt.Println("Done")
	// Output:
	// Done
}
