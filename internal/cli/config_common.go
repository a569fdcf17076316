package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/vvka-141/twbmig/internal/config"
)

// loadProjectConfig loads .env and twbmig.yaml from dir and returns the
// effective configuration: defaults, then the file, then TWBMIG_* variables.
// A missing twbmig.yaml is not an error.
func loadProjectConfig(dir string) (*config.ProjectConfig, error) {
	_ = godotenv.Load()

	projectCfg, err := config.Load(dir)
	if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmt.Errorf("failed to load %s: %w", config.ConfigFileName, err)
	}

	cfg := projectCfg.WithDefaults()
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// workingDir is where twbmig.yaml and .env are looked up.
func workingDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
