package banner

import (
	"github.com/charmbracelet/lipgloss"

	"voiceq/internal/tui/styles"
)

func GetString() string {
	renderer := lipgloss.DefaultRenderer()

	style := renderer.NewStyle().
		Foreground(styles.ColorPrimary).
		Bold(true)

	ascii := `
 _    __      _           ____ 
| |  / /___  (_)_______  / __ \
| | / / __ \/ / ___/ _ \/ / / /
| |/ / /_/ / / /__/  __/ /_/ / 
|___/\____/_/\___/\___/\___\_\ `

	tagline := renderer.NewStyle().Foreground(styles.ColorSubtle).
		Render("  command-test harness for voice assistants")

	return "\n" + style.Render(ascii) + "\n" + tagline + "\n"
}
