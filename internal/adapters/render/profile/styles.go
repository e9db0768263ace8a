package profile

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title   lipgloss.Style
	name    lipgloss.Style
	role    lipgloss.Style
	detail  lipgloss.Style
	key     lipgloss.Style
	warning lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true),
		name:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		role:    lipgloss.NewStyle().Foreground(lipgloss.Color("141")),
		detail:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		key:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		warning: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
	}
}
