package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderProgress draws pct (a fraction, clamped to 0..1) as a bar of
// width cells followed by the percentage: "[████░░░░]  50%". Tasks under a
// third done are red and those under two thirds yellow.
func RenderProgress(pct float64, width int) string {
	pct = min(max(pct, 0), 1)
	width = max(width, 2)
	filled := int(pct * float64(width))

	var style lipgloss.Style
	switch {
	case pct < 0.33:
		style = StyleRed
	case pct < 0.66:
		style = StyleYellow
	default:
		style = StyleGreen
	}
	bar := style.Render(strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled))
	return fmt.Sprintf("[%s] %3.0f%%", bar, pct*100)
}

// ParseProgress reads a task's free-text progress as a fraction. Whole
// numbers and "%"-suffixed values are percentages; a decimal of at most 1
// without "%" is already a fraction. ok is false for non-numeric text.
func ParseProgress(text string) (pct float64, ok bool) {
	text = strings.TrimSpace(text)
	percent := strings.HasSuffix(text, "%")
	text = strings.TrimSpace(strings.TrimSuffix(text, "%"))
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	if percent || !strings.Contains(text, ".") || v > 1 {
		v /= 100
	}
	return v, true
}
