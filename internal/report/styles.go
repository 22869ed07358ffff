package report

import "github.com/charmbracelet/lipgloss"

var (
	Primary   = lipgloss.Color("#FF6B35")
	Secondary = lipgloss.Color("#1E88E5")
	Success   = lipgloss.Color("#4CAF50")
	Warning   = lipgloss.Color("#FFB74D")
	Text      = lipgloss.Color("#E0E0E0")
	Muted     = lipgloss.Color("#90A4AE")
)

var (
	HeaderStyle = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true).
		Padding(0, 1)

	PanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Secondary).
		Foreground(Text).
		Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().
		Foreground(Muted).
		Width(14)

	ValueStyle = lipgloss.NewStyle().
		Bold(true)

	SuccessStyle = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	WarningStyle = lipgloss.NewStyle().
		Foreground(Warning).
		Bold(true)
)
