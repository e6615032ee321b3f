package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// --- Color Palette ---
var (
	ColorPrimary   = lipgloss.Color("#7D56F4") // Indigo/Purple
	ColorSecondary = lipgloss.Color("#04B575") // Green
	ColorError     = lipgloss.Color("#FF5F87") // Pink/Red
	ColorWarning   = lipgloss.Color("#FFAF00") // Gold
	ColorText      = lipgloss.Color("#FAFAFA") // White-ish
	ColorSubtle    = lipgloss.Color("#767676") // Gray
	ColorBorder    = lipgloss.Color("#3C3C3C") // Dark Gray border
)

var (
	Title = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(ColorSubtle)

	Text   = lipgloss.NewStyle().Foreground(ColorText)
	Subtle = lipgloss.NewStyle().Foreground(ColorSubtle)

	Value  = lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true)
	Active = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)

	Error   = lipgloss.NewStyle().Foreground(ColorError)
	Warn    = lipgloss.NewStyle().Foreground(ColorWarning)
	Success = lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true)

	KeyKey  = lipgloss.NewStyle().Foreground(ColorText).Bold(true)
	KeyDesc = lipgloss.NewStyle().Foreground(ColorSubtle)

	Box = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1).
		Margin(0, 1)
)

func RenderKey(key, desc string) string {
	return lipgloss.JoinHorizontal(lipgloss.Center,
		KeyKey.Render("<"+key+">"),
		" ",
		KeyDesc.Render(desc),
	)
}

// Rate picks a style for a success percentage: green at 95 and above, gold
// from 80, red below.
func Rate(pct float64) lipgloss.Style {
	switch {
	case pct >= 95:
		return Success
	case pct >= 80:
		return Warn
	default:
		return Error
	}
}
