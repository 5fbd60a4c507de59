package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/rxtech-lab/argo-signal/internal/pipeline"
)

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for help text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	// ErrorStyle for error messages.
	ErrorStyle = lipgloss.NewStyle().Bold(true)
)

// SignalStyle colors a signal label with its badge color.
func SignalStyle(row pipeline.WatchlistRow) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(row.Color())).Bold(row.Signal.IsActionable() && row.Available)
}

// FormatChange formats a percent change with a direction marker.
func FormatChange(pct float64) string {
	s := fmt.Sprintf("%+.2f%%", pct)

	switch {
	case pct > 0:
		return s + " ▲"
	case pct < 0:
		return s + " ▼"
	default:
		return s
	}
}
