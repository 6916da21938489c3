package ui

import "github.com/charmbracelet/lipgloss"

// Theme colors used throughout the UI
const (
	ColorAccent    = "86"  // Cyan/green - titles, highlights
	ColorHighlight = "205" // Magenta - selection, borders
	ColorDanger    = "196" // Red - errors
	ColorMuted     = "241" // Gray - hints
	ColorText      = "252" // Light gray - normal text
	ColorDim       = "243" // Darker gray
	ColorWarning   = "208" // Orange
	ColorSuccess   = "42"  // Green - success notices
)

// Function tag colors.
const (
	TagBlue    = "33"
	TagGreen   = "34"
	TagOrange  = "208"
	TagPurple  = "135"
	TagDefault = ColorText
)

// Styles contains shared style definitions used across views and modals.
var Styles = struct {
	Title        lipgloss.Style // Bold accent - view titles
	TitleWarning lipgloss.Style // Bold danger
	Header       lipgloss.Style // App header bar

	MenuItem       lipgloss.Style
	MenuItemActive lipgloss.Style

	Card lipgloss.Style // Dashboard card

	Selected lipgloss.Style
	Muted    lipgloss.Style
	Normal   lipgloss.Style
	Hint     lipgloss.Style
	Empty    lipgloss.Style // Empty state (muted, italic)
	Label    lipgloss.Style // Form labels
	Invalid  lipgloss.Style // Inline validation marker
	Value    lipgloss.Style // Emphasized numbers

	NoticeInfo    lipgloss.Style
	NoticeSuccess lipgloss.Style
	NoticeError   lipgloss.Style

	TableHeader lipgloss.Style
	TableCell   lipgloss.Style
	TableBorder lipgloss.Style
}{
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorAccent)),
	TitleWarning: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorDanger)),
	Header: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorAccent)).
		MarginRight(2),
	MenuItem: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorMuted)).
		Padding(0, 1),
	MenuItemActive: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHighlight)).
		Bold(true).
		Underline(true).
		Padding(0, 1),
	Card: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorDim)).
		Padding(0, 1),
	Selected: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHighlight)).
		Bold(true),
	Muted: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorMuted)),
	Normal: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorText)),
	Hint: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorMuted)),
	Empty: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorMuted)).
		Italic(true),
	Label: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorText)).
		Bold(true),
	Invalid: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorDanger)),
	Value: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorAccent)).
		Bold(true),
	NoticeInfo: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorAccent)),
	NoticeSuccess: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorSuccess)),
	NoticeError: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorDanger)).
		Bold(true),
	TableHeader: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorAccent)).
		Bold(true).
		Padding(0, 1),
	TableCell: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorText)).
		Padding(0, 1),
	TableBorder: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorDim)),
}
