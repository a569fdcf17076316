package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/vvka-141/twbmig/internal/logging"
	"github.com/vvka-141/twbmig/pkg/twbmig"
)

var artifactFormats = []string{twbmig.FormatJSON, twbmig.FormatCSV, twbmig.FormatXLSX, twbmig.FormatText}

// completeWorkbookFiles limits file completion to Tableau workbooks.
func completeWorkbookFiles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"twb", "twbx"}, cobra.ShellCompDirectiveFilterFileExt
}

// completeDirectories provides shell completion for directory paths.
func completeDirectories(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveFilterDirs
}

// completeFormats completes the last entry of a comma-separated --format value.
func completeFormats(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	prefix := ""
	last := toComplete
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		prefix, last = toComplete[:i+1], toComplete[i+1:]
	}

	var matches []string
	for _, f := range artifactFormats {
		if strings.HasPrefix(f, last) && !strings.Contains(","+prefix, ","+f+",") {
			matches = append(matches, prefix+f)
		}
	}
	return matches, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

func completeLogFormats(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var matches []string
	for _, f := range []string{logging.FormatConsole, logging.FormatJSON} {
		if strings.HasPrefix(f, toComplete) {
			matches = append(matches, f)
		}
	}
	return matches, cobra.ShellCompDirectiveNoFileComp
}
