// Package textutil provides unicode-aware text helpers for table cells and cards.
package textutil

import (
	"github.com/mattn/go-runewidth"
)

// Ellipsis marks truncated text.
const Ellipsis = "…"

// Width returns the number of terminal columns s occupies.
func Width(s string) int {
	return runewidth.StringWidth(s)
}

// Truncate shortens s to at most maxWidth columns, ending in Ellipsis when cut.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if Width(s) <= maxWidth {
		return s
	}
	if maxWidth <= Width(Ellipsis) {
		return Ellipsis
	}
	return runewidth.Truncate(s, maxWidth, Ellipsis)
}

// PadRight pads s with spaces to width columns, truncating when longer.
func PadRight(s string, width int) string {
	if Width(s) > width {
		return Truncate(s, width)
	}
	return runewidth.FillRight(s, width)
}

// OrDash returns s, or "-" when s is empty. Keeps blank table cells visible.
func OrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
