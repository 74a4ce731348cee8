package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// wrapText breaks text on spaces so no line is wider than width cells.
// Words wider than a line are split between runes.
func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}
	var (
		lines     []string
		line      strings.Builder
		lineWidth int
	)
	flush := func() {
		lines = append(lines, line.String())
		line.Reset()
		lineWidth = 0
	}
	for _, word := range strings.Fields(text) {
		for _, chunk := range splitWide(word, width) {
			w := runewidth.StringWidth(chunk)
			if lineWidth > 0 && lineWidth+1+w > width {
				flush()
			}
			if lineWidth > 0 {
				line.WriteByte(' ')
				lineWidth++
			}
			line.WriteString(chunk)
			lineWidth += w
		}
	}
	if lineWidth > 0 || len(lines) == 0 {
		flush()
	}
	return lines
}

func splitWide(word string, width int) []string {
	if runewidth.StringWidth(word) <= width {
		return []string{word}
	}
	var (
		out   []string
		chunk strings.Builder
		cur   int
	)
	for _, r := range word {
		rw := runewidth.RuneWidth(r)
		if cur+rw > width && cur > 0 {
			out = append(out, chunk.String())
			chunk.Reset()
			cur = 0
		}
		chunk.WriteRune(r)
		cur += rw
	}
	if cur > 0 {
		out = append(out, chunk.String())
	}
	return out
}
