package render

import (
	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	null     lipgloss.Style
	boolean  lipgloss.Style
	number   lipgloss.Style
	text     lipgloss.Style
	list     lipgloss.Style
	object   lipgloss.Style
	resource lipgloss.Style
	err      lipgloss.Style
	title    lipgloss.Style
	dim      lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		null:     r.NewStyle().Foreground(lipgloss.Color("240")),
		boolean:  r.NewStyle().Foreground(lipgloss.Color("220")),
		number:   r.NewStyle().Foreground(lipgloss.Color("81")),
		text:     r.NewStyle().Foreground(lipgloss.Color("42")),
		list:     r.NewStyle().Foreground(lipgloss.Color("170")),
		object:   r.NewStyle().Foreground(lipgloss.Color("39")),
		resource: r.NewStyle().Foreground(lipgloss.Color("203")),
		err:      r.NewStyle().Foreground(lipgloss.Color("196")),
		title:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("160")),
		dim:      r.NewStyle().Foreground(lipgloss.Color("240")),
	}
}
