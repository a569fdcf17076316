package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Table renders rows under headers with a rounded border.
// Rows whose index is in muted are drawn in the muted color.
func Table(headers []string, rows [][]string, muted map[int]bool) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorSecondary)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return HeaderStyle
			case muted[row]:
				return MutedCellStyle
			default:
				return CellStyle
			}
		})
	return t.String()
}

// KeyValues renders aligned "label value" lines.
func KeyValues(pairs [][2]string) string {
	var b strings.Builder
	for _, p := range pairs {
		b.WriteString(LabelStyle.Render(p[0]))
		b.WriteString(p[1])
		b.WriteString("\n")
	}
	return b.String()
}

// Truncate shortens s to at most n runes, ending with "..." when cut.
func Truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if n <= 3 || len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
