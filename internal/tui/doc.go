// Package tui holds the terminal presentation of twbmig: interaction mode
// detection, lipgloss styles and tables for summaries, and a bubbletea
// picker used when a command needs the user to choose a datasource.
package tui
