// Package draw renders to ANSI terminals: a chunked cursor-addressed writer,
// 24-bit colour helpers, gradients and a glyph canvas.
package draw

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Hyperlink wraps label in an OSC 8 hyperlink to url. Terminals without
// OSC 8 support print the label only.
func Hyperlink(url, label string) string {
	return fmt.Sprintf("\033]8;;%s\033\\%s\033]8;;\033\\", url, label)
}

// TextWidth returns the number of terminal columns s occupies.
func TextWidth(s string) int {
	return runewidth.StringWidth(s)
}

// CenterCol returns the 1-based column at which text of the given width is
// centred within a row of rowWidth columns.
func CenterCol(rowWidth, textWidth int) int {
	col := (rowWidth-textWidth)/2 + 1
	if col < 1 {
		return 1
	}
	return col
}

// Truncate shortens s to at most width columns, appending an ellipsis
// when anything was cut.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

// Wrap breaks s into lines of at most width columns on word boundaries.
// Words longer than width are hard-cut.
func Wrap(s string, width int) []string {
	if width <= 0 {
		return nil
	}
	var lines []string
	var line strings.Builder
	lineWidth := 0
	for _, word := range strings.Fields(s) {
		w := runewidth.StringWidth(word)
		for w > width {
			if lineWidth > 0 {
				lines = append(lines, line.String())
				line.Reset()
				lineWidth = 0
			}
			head := runewidth.Truncate(word, width, "")
			if head == "" {
				head = string([]rune(word)[:1])
			}
			lines = append(lines, head)
			word = word[len(head):]
			w = runewidth.StringWidth(word)
		}
		if w == 0 {
			continue
		}
		switch {
		case lineWidth == 0:
			line.WriteString(word)
			lineWidth = w
		case lineWidth+1+w <= width:
			line.WriteByte(' ')
			line.WriteString(word)
			lineWidth += 1 + w
		default:
			lines = append(lines, line.String())
			line.Reset()
			line.WriteString(word)
			lineWidth = w
		}
	}
	if lineWidth > 0 {
		lines = append(lines, line.String())
	}
	return lines
}
