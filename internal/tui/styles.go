package tui

import "github.com/charmbracelet/lipgloss"

// Colors used in the issue browser.
var (
	ColorPrimary = lipgloss.Color("#7C3AED") // Purple
	ColorSuccess = lipgloss.Color("#10B981") // Green
	ColorWarning = lipgloss.Color("#F59E0B") // Amber
	ColorError   = lipgloss.Color("#EF4444") // Red
	ColorMuted   = lipgloss.Color("#9CA3AF") // Light gray
)

// Styles holds the styles for the issue browser.
type Styles struct {
	App        lipgloss.Style
	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	Selected   lipgloss.Style
	Normal     lipgloss.Style
	IssueID    lipgloss.Style
	StatusOpen lipgloss.Style
	StatusDone lipgloss.Style
	StatusMisc lipgloss.Style
	Label      lipgloss.Style
	Comment    lipgloss.Style
	Loading    lipgloss.Style
	Help       lipgloss.Style
	Error      lipgloss.Style
}

// DefaultStyles returns the default styles.
func DefaultStyles() Styles {
	return Styles{
		App: lipgloss.NewStyle().
			Padding(1, 2),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary),
		Subtitle: lipgloss.NewStyle().
			Foreground(ColorMuted),
		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(ColorPrimary),
		Normal: lipgloss.NewStyle(),
		IssueID: lipgloss.NewStyle().
			Bold(true),
		StatusOpen: lipgloss.NewStyle().
			Foreground(ColorSuccess),
		StatusDone: lipgloss.NewStyle().
			Foreground(ColorMuted),
		StatusMisc: lipgloss.NewStyle().
			Foreground(ColorWarning),
		Label: lipgloss.NewStyle().
			Foreground(ColorMuted).
			Width(12),
		Comment: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(ColorMuted).
			PaddingLeft(1),
		Loading: lipgloss.NewStyle().
			Foreground(ColorWarning).
			Italic(true),
		Help: lipgloss.NewStyle().
			Foreground(ColorMuted),
		Error: lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true),
	}
}

// Status returns the style for an issue status.
func (s Styles) Status(status string) lipgloss.Style {
	switch status {
	case "open":
		return s.StatusOpen
	case "closed":
		return s.StatusDone
	default:
		return s.StatusMisc
	}
}
