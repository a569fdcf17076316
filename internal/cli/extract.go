package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vvka-141/twbmig/internal/config"
	"github.com/vvka-141/twbmig/internal/extract"
	"github.com/vvka-141/twbmig/internal/files/filesystem"
	"github.com/vvka-141/twbmig/internal/render"
	"github.com/vvka-141/twbmig/internal/tui"
	"github.com/vvka-141/twbmig/internal/ui"
	"github.com/vvka-141/twbmig/pkg/twbmig"
)

var extractCmd = &cobra.Command{
	Use:   "extract <workbook>",
	Short: "Extract a workbook and write Power BI migration artifacts",
	Long: `Extract reads a .twb or .twbx workbook, resolves the fields of every
datasource and writes the selected artifacts under <output>/<workbook name>/:

  json  workbook.json             full extraction result
  csv   field_mapping.csv         one row per field (per datasource when several)
        dashboard_usage.csv       one row per worksheet and dashboard
  xlsx  field_inventory.xlsx      summary sheet plus one sheet per datasource
  txt   <datasource>_setup_guide.txt

Defaults come from twbmig.yaml in the working directory and TWBMIG_*
environment variables; flags override both.

Examples:
  # Extract with the configured formats
  twbmig extract "./Sales Overview.twbx"

  # Only the Excel inventory, used fields only
  twbmig extract ./sales.twb --format xlsx --include-unused=false

  # Machine-readable summary
  twbmig extract ./sales.twb --json

  # Replace the previous run's artifacts without prompting
  twbmig extract ./sales.twb --clean --force`,
	Args:              RequireWorkbookPath,
	ValidArgsFunction: completeWorkbookFiles,
	RunE:              runExtract,
}

// extractFlagValues holds all flag values for the extract command.
type extractFlagValues struct {
	output        string
	formats       string
	includeUnused bool
	json          bool
	clean         bool
	force         bool
}

var extractFlags extractFlagValues

func init() {
	rootCmd.AddCommand(extractCmd)
	bindExtractFlags(extractCmd)
}

func bindExtractFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&extractFlags.output, "output", "o", twbmig.DefaultOutputDir, "Directory the artifacts are written under")
	cmd.Flags().StringVarP(&extractFlags.formats, "format", "f", "json,csv,txt", "Comma-separated artifact formats: json, csv, xlsx, txt")
	cmd.Flags().BoolVar(&extractFlags.includeUnused, "include-unused", true, "Include fields no worksheet uses in the field mappings")
	cmd.Flags().BoolVar(&extractFlags.json, "json", false, "Print the extraction summary as JSON")
	cmd.Flags().BoolVar(&extractFlags.clean, "clean", false, "Remove the workbook's previous output directory first (asks for confirmation)")
	cmd.Flags().BoolVar(&extractFlags.force, "force", false, "With --clean, skip the confirmation prompt (countdown instead)")

	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
	_ = cmd.RegisterFlagCompletionFunc("output", completeDirectories)
}

// buildExtractionConfig merges flags over the effective project configuration.
func buildExtractionConfig(cmd *cobra.Command, inputPath string, cfg *config.ProjectConfig) (*twbmig.ExtractionConfig, error) {
	ec := &twbmig.ExtractionConfig{
		InputPath:     inputPath,
		OutputDir:     cfg.OutputDir,
		Formats:       cfg.Formats,
		IncludeUnused: cfg.IncludeUnused == nil || *cfg.IncludeUnused,
		Verbose:       getVerboseFlag(cmd),
	}
	if cmd.Flags().Changed("output") {
		ec.OutputDir = extractFlags.output
	}
	if cmd.Flags().Changed("format") {
		ec.Formats = config.SplitList(extractFlags.formats)
	}
	if cmd.Flags().Changed("include-unused") {
		ec.IncludeUnused = extractFlags.includeUnused
	}
	if err := ec.Validate(); err != nil {
		return nil, err
	}
	return ec, nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	if extractFlags.force && !extractFlags.clean {
		return errors.New("invalid argument combination: --force requires --clean")
	}

	cfg, err := loadProjectConfig(workingDir())
	if err != nil {
		return err
	}
	ec, err := buildExtractionConfig(cmd, args[0], cfg)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, cfg.LogFormat)
	if err != nil {
		return err
	}

	logger.Verbose("Input: %s", ec.InputPath)
	logger.Verbose("Output directory: %s", ec.OutputDir)
	logger.Verbose("Formats: %v", ec.Formats)

	fsProvider := filesystem.NewOSFileSystem()
	extractor := extract.New(
		extract.WithFileSystem(fsProvider),
		extract.WithLogger(logger),
		extract.WithSkip(cfg.Skips),
	)
	result, err := extractor.Extract(commandContext(cmd), ec.InputPath)
	if err != nil {
		return err
	}

	if extractFlags.clean {
		approver, err := selectApprover(extractFlags.force, tui.IsInteractive(), ec.Verbose)
		if err != nil {
			return err
		}
		dir := render.WorkbookDir(ec.OutputDir, result)
		if err := cleanPreviousOutput(commandContext(cmd), fsProvider, dir, approver); err != nil {
			return err
		}
	}

	paths, err := render.NewWriter(fsProvider, logger).Write(result, render.Options{
		OutputDir:     ec.OutputDir,
		Formats:       ec.Formats,
		IncludeUnused: ec.IncludeUnused,
	})
	if err != nil {
		return err
	}

	if extractFlags.json {
		return printExtractJSON(cmd.OutOrStdout(), result, paths)
	}
	printExtractSummary(cmd.OutOrStdout(), result, paths)
	return nil
}

func printExtractJSON(w io.Writer, result *extract.Result, paths []string) error {
	out := struct {
		Workbook string          `json:"workbook"`
		Source   string          `json:"source_path"`
		Checksum string          `json:"checksum"`
		Summary  extract.Summary `json:"summary"`
		Skipped  []string        `json:"skipped_datasources,omitempty"`
		Files    []string        `json:"files"`
	}{
		Workbook: result.Workbook,
		Source:   result.SourcePath,
		Checksum: result.Checksum,
		Summary:  result.Summary(),
		Skipped:  result.Skipped,
		Files:    paths,
	}
	return printJSON(w, out)
}

func printExtractSummary(w io.Writer, result *extract.Result, paths []string) {
	s := result.Summary()
	fmt.Fprintln(w, tui.TitleStyle.Render(result.Workbook))
	fmt.Fprint(w, tui.KeyValues([][2]string{
		{"Source", result.SourcePath},
		{"Version", result.TableauVersion},
		{"Worksheets", strconv.Itoa(s.Worksheets)},
		{"Dashboards", strconv.Itoa(s.Dashboards)},
		{"Parameters", strconv.Itoa(s.Parameters)},
		{"Custom SQL", strconv.Itoa(s.CustomSQL)},
	}))
	fmt.Fprintln(w)

	rows := make([][]string, 0, len(result.Datasources))
	muted := make(map[int]bool)
	for i, d := range result.Datasources {
		rows = append(rows, []string{
			d.DisplayName(),
			strconv.Itoa(d.Stats.Total),
			strconv.Itoa(d.Stats.Used),
			strconv.Itoa(d.Stats.Calculated),
			strconv.Itoa(d.Stats.Parameters),
			strconv.Itoa(len(d.Diagnostics)),
		})
		if d.Parameters || d.Stats.Used == 0 {
			muted[i] = true
		}
	}
	fmt.Fprintln(w, tui.Table([]string{"Datasource", "Fields", "Used", "Calculated", "Parameters", "Diagnostics"}, rows, muted))

	for _, name := range result.Skipped {
		fmt.Fprintln(w, tui.WarningStyle.Render(tui.SymbolWarning+" skipped "+name))
	}
	for _, q := range result.CustomSQL {
		if q.Duplicate() {
			fmt.Fprintln(w, tui.WarningStyle.Render(fmt.Sprintf("%s custom SQL %q in %s is shared with %v", tui.SymbolWarning, q.Name, q.Datasource, q.SharedWith)))
		}
	}

	fmt.Fprintln(w)
	for _, p := range paths {
		fmt.Fprintln(w, tui.SuccessStyle.Render(tui.SymbolCheck)+" "+p)
	}
}

// selectApprover picks how removal of previous output is confirmed.
func selectApprover(force, interactive, verbose bool) (twbmig.Approver, error) {
	switch {
	case force:
		return ui.NewForcedApprover(verbose), nil
	case interactive:
		return ui.NewInteractiveApprover(verbose), nil
	default:
		return nil, fmt.Errorf("--clean needs --force when not running in a terminal: %w", twbmig.ErrApprovalDenied)
	}
}

// cleanPreviousOutput removes dir after approval. A missing dir needs no approval.
func cleanPreviousOutput(ctx context.Context, fsProvider filesystem.FileSystemProvider, dir string, approver twbmig.Approver) error {
	if _, err := fsProvider.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", dir, err)
	}

	approved, err := approver.RequestApproval(ctx, dir)
	if err != nil {
		return fmt.Errorf("approval failed: %w", err)
	}
	if !approved {
		return fmt.Errorf("removing %s: %w", dir, twbmig.ErrApprovalDenied)
	}
	if err := fsProvider.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove %s: %w", dir, err)
	}
	return nil
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
