package tui

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Help     lipgloss.Style
	Card     lipgloss.Style

	Label        lipgloss.Style
	FocusedLabel lipgloss.Style
	FieldError   lipgloss.Style
	Success      lipgloss.Style
	Failure      lipgloss.Style
	Button       lipgloss.Style
	ButtonActive lipgloss.Style
	ButtonMuted  lipgloss.Style
}

func DefaultTheme() Theme {
	return Theme{
		Title:    lipgloss.NewStyle().Bold(true),
		Subtitle: lipgloss.NewStyle().Faint(true),
		Help:     lipgloss.NewStyle().Faint(true),
		Card: lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")),

		Label:        lipgloss.NewStyle().Faint(true),
		FocusedLabel: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		FieldError:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		Success:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		Failure:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		Button: lipgloss.NewStyle().
			Padding(0, 2).
			BorderStyle(lipgloss.NormalBorder()),
		ButtonActive: lipgloss.NewStyle().
			Padding(0, 2).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("63")).
			Bold(true),
		ButtonMuted: lipgloss.NewStyle().
			Padding(0, 2).
			BorderStyle(lipgloss.NormalBorder()).
			Faint(true),
	}
}
