package formatter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kloir-z/gantt/internal/domain"
)

// Palette, after gruvbox dark.
var (
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorDim    = lipgloss.Color("#928374")
	ColorHeader = lipgloss.Color("#fe8019")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
)

var (
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleBold   = StyleFg.Bold(true)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
)

// Bar styles by role. Tasks and events with their own color override
// StylePlanned and StyleEvent through RowColor.
var (
	StylePlanned = StyleBlue
	StyleActual  = StyleGreen
	StyleSection = lipgloss.NewStyle().Foreground(ColorHeader)
	StyleEvent   = StylePurple
	StyleOffDay  = StyleDim
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// RowColor returns the bar style for a row's stored color. Anything that
// is not a hex color falls back to fallback.
func RowColor(color string, fallback lipgloss.Style) lipgloss.Style {
	color = strings.TrimSpace(color)
	if hexColor.MatchString(color) {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	}
	return fallback
}

// KindBadge returns a short colored tag for a row kind.
func KindBadge(kind domain.RowKind) string {
	switch kind {
	case domain.KindChart:
		return StylePlanned.Render("task")
	case domain.KindSeparator:
		return StyleSection.Render("section")
	case domain.KindEvent:
		return StyleEvent.Render("event")
	default:
		return StyleDim.Render(string(kind))
	}
}

// Header renders text upper-cased over a dim rule of the same width.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}
