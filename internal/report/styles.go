package report

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// styles holds the palette bound to one output writer.
type styles struct {
	dim     lipgloss.Style // Gray - labels, metadata
	value   lipgloss.Style // White - values
	title   lipgloss.Style // White bold - headers
	tool    lipgloss.Style // Blue - check names
	success lipgloss.Style // Green
	failure lipgloss.Style // Red
	warn    lipgloss.Style // Yellow
	divider string
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		dim: r.NewStyle().
			Foreground(lipgloss.Color("8")),
		value: r.NewStyle().
			Foreground(lipgloss.Color("15")),
		title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")),
		tool: r.NewStyle().
			Foreground(lipgloss.Color("12")),
		success: r.NewStyle().
			Foreground(lipgloss.Color("10")),
		failure: r.NewStyle().
			Foreground(lipgloss.Color("9")),
		warn: r.NewStyle().
			Foreground(lipgloss.Color("11")),
		divider: r.NewStyle().
			Foreground(lipgloss.Color("8")).
			Render(strings.Repeat("━", 60)),
	}
}
