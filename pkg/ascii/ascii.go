// Package ascii renders boxed panels and aligned tables for terminal output.
// Widths are display widths, so emoji and CJK text keep borders aligned.
package ascii

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Box builds a box containing the provided lines and returns it as a string.
// Lines are left-aligned with single-space padding on each side.
func Box(lines []string) string {
	return TitledBox("", lines)
}

// TitledBox is Box with a title set into the top border. A title wider than
// the content widens the box.
func TitledBox(title string, lines []string) string {
	if len(lines) == 0 && title == "" {
		return ""
	}

	trimmed := make([]string, len(lines))
	maxWidth := 0
	for i, line := range lines {
		trimmed[i] = strings.TrimRight(line, " ")
		if w := StringWidth(trimmed[i]); w > maxWidth {
			maxWidth = w
		}
	}
	label := ""
	if title != "" {
		label = " " + title + " "
		if w := StringWidth(label); w > maxWidth+2 {
			maxWidth = w - 2
		}
	}

	innerWidth := maxWidth + 2
	top := label + strings.Repeat("─", innerWidth-StringWidth(label))

	var sb strings.Builder
	sb.WriteString("┌" + top + "┐\n")
	for _, line := range trimmed {
		fill := maxWidth - StringWidth(line)
		sb.WriteString("│ " + line + strings.Repeat(" ", fill) + " │\n")
	}
	sb.WriteString("└" + strings.Repeat("─", innerWidth) + "┘\n")
	return sb.String()
}

// Table writes rows with every column but the last padded to its widest
// cell, separated by two spaces.
func Table(w io.Writer, rows [][]string) {
	widths := map[int]int{}
	for _, row := range rows {
		for i, cell := range row {
			if cw := StringWidth(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}
	for _, row := range rows {
		var b strings.Builder
		for i, cell := range row {
			if i == len(row)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(runewidth.FillRight(cell, widths[i]))
			b.WriteString("  ")
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}
}

// TruncateForBox truncates a string so that its display width fits within the
// provided width. An ellipsis ("...") is appended when truncation occurs and
// there is space for it.
func TruncateForBox(value string, width int) string {
	if width <= 0 {
		return ""
	}
	if StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}

// StringWidth returns the display width of s.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}
