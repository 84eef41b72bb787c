package tui

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
)

// fitLine pads or cuts s to exactly w cells.
func fitLine(s string, w int) string {
	if w <= 0 {
		return ""
	}
	sw := xansi.StringWidth(s)
	switch {
	case sw == w:
		return s
	case sw < w:
		return s + strings.Repeat(" ", w-sw)
	default:
		return xansi.Cut(s, 0, w) + "\x1b[0m"
	}
}

// truncate shortens s to w cells with an ellipsis.
func truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	if xansi.StringWidth(s) <= w {
		return s
	}
	return xansi.Truncate(s, w, "…")
}

// fitBlock makes s exactly h lines of w cells.
func fitBlock(s string, w, h int) []string {
	if h <= 0 {
		return nil
	}
	lines := strings.Split(s, "\n")
	if len(lines) > h {
		lines = lines[:h]
	}
	out := make([]string, h)
	for i := range out {
		if i < len(lines) {
			out[i] = fitLine(lines[i], w)
		} else {
			out[i] = strings.Repeat(" ", max(w, 0))
		}
	}
	return out
}

// blankCanvas is h lines of w spaces.
func blankCanvas(w, h int) []string {
	return fitBlock("", w, h)
}

// overlay draws box over canvas with its top-left cell at (x, y). Parts of
// the box outside the canvas are clipped. Every canvas line must already be
// exactly width cells wide.
func overlay(canvas, box []string, x, y, width int) {
	if x >= width {
		return
	}
	for i, line := range box {
		row := y + i
		if row < 0 || row >= len(canvas) {
			continue
		}
		bw := xansi.StringWidth(line)
		if x+bw > width {
			line = xansi.Cut(line, 0, width-x)
			bw = width - x
		}
		left := xansi.Cut(canvas[row], 0, x)
		right := xansi.Cut(canvas[row], x+bw, width)
		canvas[row] = left + "\x1b[0m" + line + "\x1b[0m" + right
	}
}
