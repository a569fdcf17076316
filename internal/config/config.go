package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/twbmig/pkg/twbmig"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// ProjectConfig is the content of twbmig.yaml.
type ProjectConfig struct {
	OutputDir       string   `yaml:"output_dir,omitempty"`
	Formats         []string `yaml:"formats,omitempty"`
	IncludeUnused   *bool    `yaml:"include_unused,omitempty"`
	LogFormat       string   `yaml:"log_format,omitempty"`
	SkipDatasources []string `yaml:"skip_datasources,omitempty"`
}

const ConfigFileName = "twbmig.yaml"

// Environment variables that override file values.
const (
	EnvOutputDir     = "TWBMIG_OUTPUT_DIR"
	EnvFormats       = "TWBMIG_FORMATS"
	EnvLogFormat     = "TWBMIG_LOG_FORMAT"
	EnvIncludeUnused = "TWBMIG_INCLUDE_UNUSED"
)

func Load(sourcePath string) (*ProjectConfig, error) {
	configPath := filepath.Join(sourcePath, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %v: %w", configPath, err, twbmig.ErrInvalidConfig)
	}
	return &cfg, nil
}

// Default returns the configuration used when no file or environment sets a value.
func Default() *ProjectConfig {
	includeUnused := true
	return &ProjectConfig{
		OutputDir:     twbmig.DefaultOutputDir,
		Formats:       append([]string(nil), twbmig.DefaultFormats...),
		IncludeUnused: &includeUnused,
		LogFormat:     "console",
	}
}

// WithDefaults returns a copy of c with every unset key taken from Default.
// A nil receiver yields Default().
func (c *ProjectConfig) WithDefaults() *ProjectConfig {
	out := Default()
	if c == nil {
		return out
	}
	if c.OutputDir != "" {
		out.OutputDir = c.OutputDir
	}
	if len(c.Formats) > 0 {
		out.Formats = append([]string(nil), c.Formats...)
	}
	if c.IncludeUnused != nil {
		v := *c.IncludeUnused
		out.IncludeUnused = &v
	}
	if c.LogFormat != "" {
		out.LogFormat = c.LogFormat
	}
	out.SkipDatasources = append([]string(nil), c.SkipDatasources...)
	return out
}

// ApplyEnv overrides values from the environment, read through lookup
// (os.LookupEnv in production).
func (c *ProjectConfig) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvOutputDir); ok && strings.TrimSpace(v) != "" {
		c.OutputDir = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvFormats); ok && strings.TrimSpace(v) != "" {
		c.Formats = SplitList(v)
	}
	if v, ok := lookup(EnvLogFormat); ok && strings.TrimSpace(v) != "" {
		c.LogFormat = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvIncludeUnused); ok && strings.TrimSpace(v) != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s=%q is not a boolean: %w", EnvIncludeUnused, v, twbmig.ErrInvalidConfig)
		}
		c.IncludeUnused = &b
	}
	return nil
}

// Validate rejects unknown formats and log formats.
func (c *ProjectConfig) Validate() error {
	var errs []error
	for _, f := range c.Formats {
		if !twbmig.IsKnownFormat(f) {
			errs = append(errs, fmt.Errorf("unknown format %q in %s: %w", f, ConfigFileName, twbmig.ErrInvalidConfig))
		}
	}
	switch c.LogFormat {
	case "", "console", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log_format %q (expected console or json): %w", c.LogFormat, twbmig.ErrInvalidConfig))
	}
	return errors.Join(errs...)
}

// Skips reports whether the named datasource is listed in skip_datasources.
// Both internal names and captions are accepted.
func (c *ProjectConfig) Skips(names ...string) bool {
	for _, skip := range c.SkipDatasources {
		for _, n := range names {
			if n != "" && strings.EqualFold(skip, n) {
				return true
			}
		}
	}
	return false
}

// Marshal renders c as twbmig.yaml content.
func (c *ProjectConfig) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// SplitList splits a comma-separated list, trimming blanks and lowercasing entries.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
