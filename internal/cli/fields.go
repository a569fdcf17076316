package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vvka-141/twbmig/internal/extract"
	"github.com/vvka-141/twbmig/internal/fields"
	"github.com/vvka-141/twbmig/internal/files/filesystem"
	"github.com/vvka-141/twbmig/internal/tui"
	"github.com/vvka-141/twbmig/pkg/twbmig"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields <workbook>",
	Short: "Show the resolved fields of a workbook",
	Long: `Fields prints the canonical field registry of each datasource: one entry
per logical field with its kind, datatype, source table and column, usage
and calculation formula (internal calculation IDs replaced by captions).

In an interactive terminal, a workbook with several datasources prompts for
one unless --datasource is given.

Examples:
  # All datasources
  twbmig fields ./sales.twb

  # One datasource, used fields only
  twbmig fields ./sales.twb --datasource "Orders (sales)" --used-only

  # Registry as JSON
  twbmig fields ./sales.twb --json`,
	Args:              RequireWorkbookPath,
	ValidArgsFunction: completeWorkbookFiles,
	RunE:              runFields,
}

type fieldsFlagValues struct {
	datasource string
	usedOnly   bool
	json       bool
}

var fieldsFlags fieldsFlagValues

func init() {
	rootCmd.AddCommand(fieldsCmd)

	fieldsCmd.Flags().StringVarP(&fieldsFlags.datasource, "datasource", "d", "", "Datasource name or caption to show")
	fieldsCmd.Flags().BoolVar(&fieldsFlags.usedOnly, "used-only", false, "Only show fields used by a worksheet")
	fieldsCmd.Flags().BoolVar(&fieldsFlags.json, "json", false, "Output the registry as JSON")
}

func runFields(cmd *cobra.Command, args []string) error {
	cfg, err := loadProjectConfig(workingDir())
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, cfg.LogFormat)
	if err != nil {
		return err
	}

	extractor := extract.New(
		extract.WithFileSystem(filesystem.NewOSFileSystem()),
		extract.WithLogger(logger),
		extract.WithSkip(cfg.Skips),
	)
	result, err := extractor.Extract(commandContext(cmd), args[0])
	if err != nil {
		return err
	}

	selected, err := selectDatasources(result, fieldsFlags.datasource, !fieldsFlags.json && tui.IsInteractive())
	if err != nil {
		return err
	}

	if fieldsFlags.json {
		return printFieldsJSON(cmd.OutOrStdout(), selected, fieldsFlags.usedOnly)
	}
	for _, d := range selected {
		printFieldsTable(cmd.OutOrStdout(), d, fieldsFlags.usedOnly)
	}
	return nil
}

// selectDatasources picks the datasources to show: the named one, a prompted
// one when interactive, or all of them.
func selectDatasources(result *extract.Result, name string, interactive bool) ([]*extract.Datasource, error) {
	if name != "" {
		d, ok := result.Datasource(name)
		if !ok {
			return nil, fmt.Errorf("datasource %q not found in %s: %w", name, result.Workbook, twbmig.ErrInvalidConfig)
		}
		return []*extract.Datasource{d}, nil
	}

	if !interactive || len(result.Datasources) < 2 {
		return result.Datasources, nil
	}

	options := make([]tui.Option, 0, len(result.Datasources))
	for _, d := range result.Datasources {
		options = append(options, tui.Option{
			Label:       d.DisplayName(),
			Description: fmt.Sprintf("%d fields, %d used", d.Stats.Total, d.Stats.Used),
			Value:       d.Name,
		})
	}
	choice, err := tui.Pick("Select a datasource", options)
	if err != nil {
		return nil, err
	}
	d, _ := result.Datasource(choice)
	return []*extract.Datasource{d}, nil
}

func filterFields(d *extract.Datasource, usedOnly bool) []*fields.ResolvedField {
	if d.Fields == nil {
		return nil
	}
	var out []*fields.ResolvedField
	for _, f := range d.Fields.Fields() {
		if usedOnly && !f.UsedInWorkbook {
			continue
		}
		out = append(out, f)
	}
	return out
}

func printFieldsJSON(w io.Writer, selected []*extract.Datasource, usedOnly bool) error {
	out := make(map[string][]*fields.ResolvedField, len(selected))
	for _, d := range selected {
		out[d.DisplayName()] = filterFields(d, usedOnly)
	}
	return printJSON(w, out)
}

func printFieldsTable(w io.Writer, d *extract.Datasource, usedOnly bool) {
	list := filterFields(d, usedOnly)
	fmt.Fprintf(w, "%s %s\n", tui.TitleStyle.Render(d.DisplayName()), tui.SubtitleStyle.Render(fmt.Sprintf("(%d fields)", len(list))))
	if len(list) == 0 {
		fmt.Fprintln(w)
		return
	}

	rows := make([][]string, 0, len(list))
	muted := make(map[int]bool)
	for i, f := range list {
		source := ""
		if f.TableName != nil || f.RemoteName != nil {
			source = strings.Trim(derefString(f.TableName)+"."+derefString(f.RemoteName), ".")
		}
		used := ""
		if f.UsedInWorkbook {
			used = tui.SymbolCheck
		} else {
			muted[i] = true
		}
		rows = append(rows, []string{
			f.CanonicalName,
			f.Kind.String(),
			f.Datatype,
			source,
			used,
			tui.Truncate(f.CalculationFormula, twbmig.MaxFormulaPreviewLength),
		})
	}
	fmt.Fprintln(w, tui.Table([]string{"Field", "Kind", "Type", "Source", "Used", "Formula"}, rows, muted))

	for _, diag := range d.Diagnostics {
		fmt.Fprintln(w, tui.WarningStyle.Render(fmt.Sprintf("%s %s %s: %s", tui.SymbolWarning, diag.Kind, diag.Field, diag.Message)))
	}
	fmt.Fprintln(w)
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
