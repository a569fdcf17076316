package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vvka-141/twbmig/internal/checksum"
	"github.com/vvka-141/twbmig/internal/extract"
	"github.com/vvka-141/twbmig/internal/files/filesystem"
	"github.com/vvka-141/twbmig/internal/files/scanner"
	"github.com/vvka-141/twbmig/internal/render"
	"github.com/vvka-141/twbmig/internal/tui"
	"github.com/vvka-141/twbmig/pkg/twbmig"
)

var scanCmd = &cobra.Command{
	Use:   "scan <directory>",
	Short: "List the Tableau workbooks under a directory",
	Long: `Scan walks a directory for .twb and .twbx files, skipping hidden and
temporary ("~") entries, and lists each workbook with its size and checksum.

With --extract every workbook found is extracted with the configured
formats. A workbook that fails does not stop the others; the command exits
with an error when any failed.

Examples:
  # List workbooks
  twbmig scan ./workbooks

  # Extract all of them
  twbmig scan ./workbooks --extract --output ./migration`,
	Args:              RequireDirectory,
	ValidArgsFunction: completeDirectories,
	RunE:              runScan,
}

type scanFlagValues struct {
	json    bool
	extract bool
	output  string
}

var scanFlags scanFlagValues

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().BoolVar(&scanFlags.json, "json", false, "Output the scan result as JSON")
	scanCmd.Flags().BoolVar(&scanFlags.extract, "extract", false, "Extract every workbook found")
	scanCmd.Flags().StringVarP(&scanFlags.output, "output", "o", twbmig.DefaultOutputDir, "Directory extracted artifacts are written under")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadProjectConfig(workingDir())
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, cfg.LogFormat)
	if err != nil {
		return err
	}

	fsProvider := filesystem.NewOSFileSystem()
	ctx := commandContext(cmd)

	logger.Verbose("Scanning %s", args[0])
	result, err := scanner.NewScannerWithFS(checksum.New(), fsProvider).ScanDirectory(ctx, args[0])
	if err != nil {
		return err
	}

	if !scanFlags.extract {
		if scanFlags.json {
			return printJSON(cmd.OutOrStdout(), result)
		}
		printScanTable(cmd.OutOrStdout(), result)
		return nil
	}

	outputDir := cfg.OutputDir
	if cmd.Flags().Changed("output") {
		outputDir = scanFlags.output
	}

	paths := make([]string, len(result.Workbooks))
	for i, wb := range result.Workbooks {
		paths[i] = wb.AbsPath
	}

	extractor := extract.New(
		extract.WithFileSystem(fsProvider),
		extract.WithLogger(logger),
		extract.WithSkip(cfg.Skips),
	)
	results, failures, err := extractor.ExtractAll(ctx, paths)
	if err != nil {
		return err
	}

	writer := render.NewWriter(fsProvider, logger)
	opts := render.Options{
		OutputDir:     outputDir,
		Formats:       cfg.Formats,
		IncludeUnused: cfg.IncludeUnused == nil || *cfg.IncludeUnused,
	}
	written := make(map[string][]string, len(results))
	for _, r := range results {
		files, err := writer.Write(r, opts)
		if err != nil {
			failures[r.SourcePath] = err
			continue
		}
		written[r.SourcePath] = files
	}

	if scanFlags.json {
		if err := printJSON(cmd.OutOrStdout(), scanReport(written, failures)); err != nil {
			return err
		}
	} else {
		printBatchSummary(cmd.OutOrStdout(), written, failures)
	}

	if len(failures) > 0 {
		errs := make([]error, 0, len(failures))
		for _, p := range sortedKeys(failures) {
			errs = append(errs, failures[p])
		}
		return fmt.Errorf("%d of %d workbook(s) failed: %w", len(failures), len(paths), errors.Join(errs...))
	}
	return nil
}

type batchReport struct {
	Written map[string][]string `json:"written"`
	Failed  map[string]string   `json:"failed,omitempty"`
}

func scanReport(written map[string][]string, failures map[string]error) batchReport {
	report := batchReport{Written: written}
	if len(failures) > 0 {
		report.Failed = make(map[string]string, len(failures))
		for p, err := range failures {
			report.Failed[p] = err.Error()
		}
	}
	return report
}

func printScanTable(w io.Writer, result twbmig.ScanResult) {
	if len(result.Workbooks) == 0 {
		fmt.Fprintf(w, "No workbooks found under %s\n", result.Root)
		return
	}
	rows := make([][]string, 0, len(result.Workbooks))
	for _, wb := range result.Workbooks {
		kind := "twb"
		if wb.Packaged {
			kind = "twbx"
		}
		rows = append(rows, []string{
			wb.Path,
			kind,
			strconv.FormatInt(wb.SizeBytes, 10),
			wb.ModifiedAt.Format("2006-01-02 15:04"),
			tui.Truncate(wb.Checksum, 15),
		})
	}
	fmt.Fprintln(w, tui.Table([]string{"Workbook", "Kind", "Bytes", "Modified", "SHA-256"}, rows, nil))
	fmt.Fprintf(w, "%d workbook(s) under %s\n", len(result.Workbooks), result.Root)
}

func printBatchSummary(w io.Writer, written map[string][]string, failures map[string]error) {
	for _, p := range sortedKeys(written) {
		fmt.Fprintf(w, "%s %s (%d files)\n", tui.SuccessStyle.Render(tui.SymbolCheck), p, len(written[p]))
	}
	for _, p := range sortedKeys(failures) {
		fmt.Fprintf(w, "%s %v\n", tui.ErrorStyle.Render(tui.SymbolCross), failures[p])
	}
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
