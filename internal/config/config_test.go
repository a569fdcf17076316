package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/twbmig/pkg/twbmig"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func TestLoad_AllFields(t *testing.T) {
	dir := t.TempDir()
	content := `output_dir: migration
formats: [json, xlsx]
include_unused: false
log_format: json
skip_datasources:
  - Sample - Superstore
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "migration", cfg.OutputDir)
	assert.Equal(t, []string{"json", "xlsx"}, cfg.Formats)
	require.NotNil(t, cfg.IncludeUnused)
	assert.False(t, *cfg.IncludeUnused)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.Skips("federated.123", "sample - superstore"))
	assert.False(t, cfg.Skips("Orders"))
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load(t.TempDir())
	assert.True(t, errors.Is(err, ErrConfigNotFound), "expected ErrConfigNotFound, got: %v", err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("{{invalid"), 0644))

	cfg, err := Load(dir)
	assert.ErrorIs(t, err, twbmig.ErrInvalidConfig)
	assert.Nil(t, cfg)
}

func TestLoad_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(""), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, ProjectConfig{}, *cfg)
}

func TestWithDefaults(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		var cfg *ProjectConfig
		got := cfg.WithDefaults()
		assert.Equal(t, twbmig.DefaultOutputDir, got.OutputDir)
		assert.Equal(t, twbmig.DefaultFormats, got.Formats)
		assert.True(t, *got.IncludeUnused)
		assert.Equal(t, "console", got.LogFormat)
	})

	t.Run("partial config keeps set values", func(t *testing.T) {
		off := false
		cfg := &ProjectConfig{Formats: []string{"xlsx"}, IncludeUnused: &off}
		got := cfg.WithDefaults()
		assert.Equal(t, twbmig.DefaultOutputDir, got.OutputDir)
		assert.Equal(t, []string{"xlsx"}, got.Formats)
		assert.False(t, *got.IncludeUnused)

		got.Formats[0] = "json"
		assert.Equal(t, "xlsx", cfg.Formats[0], "defaults must not alias the source")
	})
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(lookupFrom(map[string]string{
		EnvOutputDir:     " out/pbi ",
		EnvFormats:       "CSV, txt,,",
		EnvLogFormat:     "json",
		EnvIncludeUnused: "false",
	}))
	require.NoError(t, err)

	assert.Equal(t, "out/pbi", cfg.OutputDir)
	assert.Equal(t, []string{"csv", "txt"}, cfg.Formats)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.False(t, *cfg.IncludeUnused)
}

func TestApplyEnv_BlankValuesIgnored(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(lookupFrom(map[string]string{EnvOutputDir: "  "})))
	assert.Equal(t, twbmig.DefaultOutputDir, cfg.OutputDir)
}

func TestApplyEnv_InvalidBool(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(lookupFrom(map[string]string{EnvIncludeUnused: "sometimes"}))
	assert.ErrorIs(t, err, twbmig.ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ProjectConfig
		wantErr bool
	}{
		{"defaults", *Default(), false},
		{"unknown format", ProjectConfig{Formats: []string{"pdf"}}, true},
		{"unknown log format", ProjectConfig{LogFormat: "xml"}, true},
		{"empty", ProjectConfig{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, twbmig.ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMarshal_RoundTripsThroughLoad(t *testing.T) {
	dir := t.TempDir()
	data, err := Default().Marshal()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), data, 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"json", "csv"}, SplitList(" JSON ,csv "))
	assert.Nil(t, SplitList(" , "))
}
