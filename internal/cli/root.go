package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vvka-141/twbmig/internal/logging"
	"github.com/vvka-141/twbmig/pkg/twbmig"
)

var rootCmd = &cobra.Command{
	Use:   "twbmig",
	Short: "Tableau workbook to Power BI migration assistant",
	Long: `twbmig reads Tableau workbooks (.twb and .twbx), resolves every field to a
single canonical identity per datasource, and writes the artifacts a Power BI
rebuild needs: field mappings, dashboard usage, setup guides and an Excel
field inventory.

Nothing is uploaded and no Tableau installation is required.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  12 - Removal of previous output was declined
  15 - Workbook could not be read or parsed
  16 - Input file or directory not found`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo(os.Stdout)
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: console or json (default from twbmig.yaml, else console)")
	_ = rootCmd.RegisterFlagCompletionFunc("log-format", completeLogFormats)
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}

// newLogger builds the logger for a command. --log-format wins over the
// configured log_format.
func newLogger(cmd *cobra.Command, cfgFormat string) (twbmig.Logger, error) {
	format := cfgFormat
	if cmd.Flags().Changed("log-format") {
		format, _ = cmd.Flags().GetString("log-format")
	}
	return logging.New(format, getVerboseFlag(cmd))
}
