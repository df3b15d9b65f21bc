package ui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// truncate shortens s to fit width terminal cells, adding an ellipsis
// when cut. Width is measured in display cells, not bytes, so wide
// characters count double.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// pad right-pads s with spaces to exactly width cells, truncating first
// if needed.
func pad(s string, width int) string {
	s = truncate(s, width)
	gap := width - runewidth.StringWidth(s)
	if gap > 0 {
		s += strings.Repeat(" ", gap)
	}
	return s
}

// centerInScreen centers content in the terminal.
func centerInScreen(content string, screenWidth, screenHeight int) string {
	lines := strings.Split(content, "\n")
	contentHeight := len(lines)
	contentWidth := 0
	for _, line := range lines {
		if w := runewidth.StringWidth(line); w > contentWidth {
			contentWidth = w
		}
	}

	verticalPad := (screenHeight - contentHeight) / 2
	if verticalPad < 0 {
		verticalPad = 0
	}
	horizontalPad := (screenWidth - contentWidth) / 2
	if horizontalPad < 0 {
		horizontalPad = 0
	}

	var result strings.Builder
	for i := 0; i < verticalPad; i++ {
		result.WriteString("\n")
	}
	padding := strings.Repeat(" ", horizontalPad)
	for _, line := range lines {
		result.WriteString(padding + line + "\n")
	}
	return result.String()
}
