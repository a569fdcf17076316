package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func send(p Picker, msgs ...tea.Msg) (Picker, tea.Cmd) {
	var cmd tea.Cmd
	var m tea.Model = p
	for _, msg := range msgs {
		m, cmd = m.Update(msg)
	}
	return m.(Picker), cmd
}

var (
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyJ     = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")}
)

func testOptions() []Option {
	return []Option{
		{Label: "Orders (sales)", Value: "federated.0abc", Description: "7 fields"},
		{Label: "Targets", Value: "federated.1def"},
		{Label: "Returns", Value: "federated.2ghi"},
	}
}

func TestPicker_SelectAfterNavigation(t *testing.T) {
	p, cmd := send(NewPicker("Choose", testOptions()), keyDown, keyJ, keyUp, keyEnter)
	assert.NotNil(t, cmd)
	assert.Equal(t, "federated.1def", p.Value())
	assert.False(t, p.Cancelled())
}

func TestPicker_CursorStaysInBounds(t *testing.T) {
	p, _ := send(NewPicker("Choose", testOptions()), keyUp, keyDown, keyDown, keyDown, keyDown, keyEnter)
	assert.Equal(t, "federated.2ghi", p.Value())
}

func TestPicker_Cancel(t *testing.T) {
	p, cmd := send(NewPicker("Choose", testOptions()), keyDown, keyEsc)
	assert.NotNil(t, cmd)
	assert.True(t, p.Cancelled())
	assert.Empty(t, p.Value())
}

func TestPicker_EmptyOptions(t *testing.T) {
	p, _ := send(NewPicker("Choose", nil), keyEnter)
	assert.Empty(t, p.Value())
}

func TestPicker_IgnoresOtherMessages(t *testing.T) {
	p, cmd := send(NewPicker("Choose", testOptions()), tea.WindowSizeMsg{Width: 80, Height: 20})
	assert.Nil(t, cmd)
	assert.Empty(t, p.Value())
}

func TestPicker_View(t *testing.T) {
	view := NewPicker("Choose a datasource", testOptions()).View()
	assert.Contains(t, view, "Choose a datasource")
	assert.Contains(t, view, SymbolSelected+" Orders (sales)")
	assert.Contains(t, view, SymbolUnselected+" Targets")
	assert.Contains(t, view, "7 fields")
	assert.Contains(t, view, "enter select")
}

func TestTable(t *testing.T) {
	out := Table([]string{"Field", "Kind"}, [][]string{{"Sales", "Regular"}, {"Margin", "Calculated"}}, map[int]bool{1: true})
	for _, want := range []string{"Field", "Kind", "Sales", "Regular", "Margin", "Calculated"} {
		assert.Contains(t, out, want)
	}
	assert.GreaterOrEqual(t, strings.Count(out, "\n"), 4)
}

func TestKeyValues(t *testing.T) {
	out := KeyValues([][2]string{{"Workbook", "Sales"}, {"Fields", "12"}})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Workbook")
	assert.True(t, strings.HasSuffix(lines[1], "12"))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"IF [Sales] > 0\n  THEN 1 END", 100, "IF [Sales] > 0 THEN 1 END"},
		{"abcdefghij", 8, "abcde..."},
		{"ñandú ñandú", 6, "ñan..."},
		{"abc", 2, "abc"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Truncate(tt.in, tt.n), tt.in)
	}
}
