package tui

import "github.com/charmbracelet/lipgloss"

//nolint:gochecknoglobals // Стили не меняются во время работы
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA"))
	focusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")) // Пурпурный
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241")) // Серый
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F25D94"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	labelStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	badgeStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)
	pastBadgeStyle = badgeStyle.Background(lipgloss.Color("240"))
)
