// Package util provides small text helpers for terminal output.
package util

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

const ellipsis = "..."

// TruncateANSI truncates s to maxWidth visual columns, adding "..." if
// truncated. Escape sequences are preserved, so styled text stays intact.
func TruncateANSI(s string, maxWidth int) string {
	if maxWidth <= len(ellipsis) {
		return ellipsis
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	return ansi.Truncate(s, maxWidth, ellipsis)
}

// TruncatePath shortens a plain path to maxWidth columns by dropping leading
// characters, so the file name stays visible: "/very/long/dir/db.html"
// becomes ".../dir/db.html".
func TruncatePath(p string, maxWidth int) string {
	if maxWidth <= len(ellipsis) {
		return ellipsis
	}
	if runewidth.StringWidth(p) <= maxWidth {
		return p
	}

	budget := maxWidth - len(ellipsis)
	runes := []rune(p)
	start := len(runes)
	width := 0
	for start > 0 {
		w := runewidth.RuneWidth(runes[start-1])
		if width+w > budget {
			break
		}
		width += w
		start--
	}
	return ellipsis + string(runes[start:])
}
