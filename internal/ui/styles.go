package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"dirdirector/internal/session"
)

// Colors
var (
	Primary    = lipgloss.Color("#7C3AED") // Purple
	Secondary  = lipgloss.Color("#06B6D4") // Cyan
	Success    = lipgloss.Color("#10B981") // Green
	Warning    = lipgloss.Color("#F59E0B") // Amber
	Error      = lipgloss.Color("#EF4444") // Red
	Muted      = lipgloss.Color("#6B7280") // Gray
	Foreground = lipgloss.Color("#F9FAFB") // Light
	Border     = lipgloss.Color("#374151") // Border gray
	Selected   = lipgloss.Color("#4F46E5") // Indigo
	Star       = lipgloss.Color("#FACC15") // Yellow
)

// Styles
var (
	AppStyle = lipgloss.NewStyle().
			Padding(0, 1)

	HeaderStyle = lipgloss.NewStyle().
			Padding(0, 1).
			MarginBottom(1)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Foreground)

	// Panels
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 1)

	PanelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Secondary).
			Padding(0, 1)

	ActivePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(Primary).
				Padding(0, 1)

	// List items
	ItemStyle = lipgloss.NewStyle().
			Padding(0, 1)

	SelectedItemStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(Selected).
				Foreground(Foreground)

	CursorStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	ActionStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Italic(true)

	FavoriteStyle = lipgloss.NewStyle().
			Foreground(Star)

	// Group header
	GroupStyle = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true).
			Padding(0, 1)

	IconPathStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	// Title segments
	QueueHeadStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#32CD32")). // Lime
			Bold(true)

	HintStyle = lipgloss.NewStyle().
			Foreground(Warning)

	// Toggles
	ToggleOnStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	ToggleOffStyle = lipgloss.NewStyle().
			Foreground(Muted)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Padding(0, 1).
			MarginTop(1)

	// Help bar
	HelpBarStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Padding(0, 1)

	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(Muted)

	MutedStyle = lipgloss.NewStyle().
			Foreground(Muted)

	DividerStyle = lipgloss.NewStyle().
			Foreground(Border)

	// Notification/Toast styles
	SuccessNotifyStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#10B981")).
				Background(lipgloss.Color("#064E3B")).
				Padding(0, 1).
				Bold(true)

	ErrorNotifyStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FCA5A5")).
				Background(lipgloss.Color("#7F1D1D")).
				Padding(0, 1).
				Bold(true)

	WarningNotifyStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FCD34D")).
				Background(lipgloss.Color("#78350F")).
				Padding(0, 1).
				Bold(true)

	InfoNotifyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#93C5FD")).
			Background(lipgloss.Color("#1E3A5F")).
			Padding(0, 1).
			Bold(true)

	// Path prompt
	DialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2).
			Width(70)
)

// RenderTitle styles each segment of the session title
func RenderTitle(title session.Title) string {
	var b strings.Builder
	for _, seg := range title {
		switch seg.Style {
		case session.StyleMuted:
			b.WriteString(MutedStyle.Render(seg.Text))
		case session.StyleHint:
			b.WriteString(HintStyle.Render(seg.Text))
		case session.StyleQueueHead:
			b.WriteString(QueueHeadStyle.Render(seg.Text))
		default:
			b.WriteString(TitleStyle.Render(seg.Text))
		}
	}
	return b.String()
}

// RenderToggle renders a labelled on/off switch
func RenderToggle(label string, on bool) string {
	if on {
		return ToggleOnStyle.Render("● " + label)
	}
	return ToggleOffStyle.Render("○ " + label)
}

// RenderHelpItem renders a help key-description pair
func RenderHelpItem(key, desc string) string {
	return HelpKeyStyle.Render(key) + " " + HelpDescStyle.Render(desc)
}

// RenderNotification renders a styled notification message
func RenderNotification(msgType string, message string) string {
	var icon string
	var style lipgloss.Style

	switch msgType {
	case "success":
		icon = "✓"
		style = SuccessNotifyStyle
	case "error":
		icon = "✗"
		style = ErrorNotifyStyle
	case "warning":
		icon = "⚠"
		style = WarningNotifyStyle
	case "info":
		icon = "ℹ"
		style = InfoNotifyStyle
	default:
		icon = "•"
		style = MutedStyle
	}

	return style.Render(icon + " " + message)
}
