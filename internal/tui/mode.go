// Package tui provides the interactive issue browser.
package tui

// Mode represents the current UI mode.
type Mode int

const (
	ModeList   Mode = iota // Paged issue list
	ModeDetail             // Single issue with comments
	ModeHelp               // Key binding overview
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeList:
		return "list"
	case ModeDetail:
		return "detail"
	case ModeHelp:
		return "help"
	default:
		return "unknown"
	}
}
