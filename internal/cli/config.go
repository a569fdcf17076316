package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vvka-141/twbmig/internal/config"
	"github.com/vvka-141/twbmig/internal/files/filesystem"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create twbmig.yaml",
	Long: `Configuration commands.

twbmig reads twbmig.yaml from the working directory. TWBMIG_OUTPUT_DIR,
TWBMIG_FORMATS, TWBMIG_LOG_FORMAT and TWBMIG_INCLUDE_UNUSED (also read from
.env) override the file; command flags override both.

Available commands:
  show  Print the effective configuration
  init  Write a twbmig.yaml with the default values`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Write a twbmig.yaml with the default values",
	Long: `Write a twbmig.yaml with the default values.

An existing file is left untouched unless --force is given.

Examples:
  # In the current directory
  twbmig config init

  # In a project directory
  twbmig config init ./migration`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeDirectories,
	RunE:              runConfigInit,
}

var configInitForce bool

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)

	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing twbmig.yaml")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadProjectConfig(workingDir())
	if err != nil {
		return err
	}
	data, err := cfg.Marshal()
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	targetDir := "."
	if len(args) > 0 {
		targetDir = args[0]
	}
	return writeDefaultConfig(cmd, filesystem.NewOSFileSystem(), targetDir, configInitForce)
}

func writeDefaultConfig(cmd *cobra.Command, fsProvider filesystem.FileSystemProvider, targetDir string, force bool) error {
	configPath := filepath.Join(targetDir, config.ConfigFileName)
	if _, err := fsProvider.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", configPath, err)
	}

	data, err := config.Default().Marshal()
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	if err := fsProvider.MkdirAll(targetDir); err != nil {
		return fmt.Errorf("failed to create %s: %w", targetDir, err)
	}
	if err := fsProvider.WriteFile(configPath, data); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Configuration saved to %s\n", configPath)
	return nil
}
