package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrCancelled is returned when the user quits a prompt without choosing.
var ErrCancelled = errors.New("selection cancelled")

// Option is a selectable entry.
type Option struct {
	Label       string
	Description string
	Value       string
}

// Picker is a single-choice list prompt.
type Picker struct {
	title     string
	options   []Option
	cursor    int
	selected  int
	keyMap    KeyMap
	submitted bool
	cancelled bool
}

// NewPicker creates a picker over options.
func NewPicker(title string, options []Option) Picker {
	return Picker{
		title:    title,
		options:  options,
		selected: -1,
		keyMap:   DefaultKeyMap(),
	}
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch {
	case key.Matches(keyMsg, p.keyMap.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(keyMsg, p.keyMap.Down):
		if p.cursor < len(p.options)-1 {
			p.cursor++
		}
	case key.Matches(keyMsg, p.keyMap.Select):
		if len(p.options) > 0 {
			p.selected = p.cursor
			p.submitted = true
		}
		return p, tea.Quit
	case key.Matches(keyMsg, p.keyMap.Quit):
		p.cancelled = true
		return p, tea.Quit
	}
	return p, nil
}

// View implements tea.Model.
func (p Picker) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(p.title))
	b.WriteString("\n\n")

	for i, opt := range p.options {
		cursor, style, symbol := "  ", UnselectedStyle, SymbolUnselected
		if i == p.cursor {
			cursor, style, symbol = "", SelectedStyle, SymbolSelected
		}
		b.WriteString(cursor)
		b.WriteString(style.Render(symbol + " " + opt.Label))
		b.WriteString("\n")
		if opt.Description != "" {
			b.WriteString(DescriptionStyle.Render(opt.Description))
			b.WriteString("\n")
		}
	}

	b.WriteString(HelpStyle.Render(p.keyMap.HelpText()))
	return b.String()
}

// Value returns the chosen option's value, or "" if none was chosen.
func (p Picker) Value() string {
	if p.submitted && p.selected >= 0 && p.selected < len(p.options) {
		return p.options[p.selected].Value
	}
	return ""
}

// Cancelled reports whether the user quit without choosing.
func (p Picker) Cancelled() bool {
	return p.cancelled
}

// Pick runs a picker on the terminal and returns the chosen value.
func Pick(title string, options []Option) (string, error) {
	final, err := tea.NewProgram(NewPicker(title, options)).Run()
	if err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}
	p, ok := final.(Picker)
	if !ok || p.Cancelled() || p.Value() == "" {
		return "", ErrCancelled
	}
	return p.Value(), nil
}
