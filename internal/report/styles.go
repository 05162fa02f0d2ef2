package report

import "github.com/charmbracelet/lipgloss"

type styles struct {
	Title    lipgloss.Style
	Subtle   lipgloss.Style
	Header   lipgloss.Style
	Cell     lipgloss.Style
	Border   lipgloss.Style
	Positive lipgloss.Style
	Negative lipgloss.Style
	Warning  lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		Title: r.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true).
			Padding(0, 1),

		Subtle: r.NewStyle().
			Foreground(lipgloss.Color("#626262")),

		Header: r.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true).
			Padding(0, 1),

		Cell: r.NewStyle().
			Padding(0, 1),

		Border: r.NewStyle().
			Foreground(lipgloss.Color("#626262")),

		Positive: r.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")),

		Negative: r.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")),

		Warning: r.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")).
			Bold(true),
	}
}
