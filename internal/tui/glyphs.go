package tui

import (
	"os"
	"strings"
	"sync/atomic"
)

// glyphSet is the set of characters used for frames and markers. Some
// terminal fonts render box drawing poorly; PROBEL_TUI_GLYPHS=ascii swaps in
// plain characters. Every glyph is one cell wide so panel hit testing holds.
type glyphSet struct {
	name string

	topLeft, topRight       string
	bottomLeft, bottomRight string
	horizontal, vertical    string

	minimize, restore string
	maximize, unmax   string
	close             string

	bullet, arrow, prompt string
}

var (
	unicodeGlyphs = &glyphSet{
		name:    "unicode",
		topLeft: "╭", topRight: "╮", bottomLeft: "╰", bottomRight: "╯",
		horizontal: "─", vertical: "│",
		minimize: "_", restore: "‾", maximize: "□", unmax: "▣", close: "×",
		bullet: "•", arrow: "→", prompt: "›",
	}
	asciiGlyphs = &glyphSet{
		name:    "ascii",
		topLeft: "+", topRight: "+", bottomLeft: "+", bottomRight: "+",
		horizontal: "-", vertical: "|",
		minimize: "_", restore: "^", maximize: "o", unmax: "O", close: "x",
		bullet: "*", arrow: ">", prompt: ">",
	}
)

var currentGlyphs atomic.Pointer[glyphSet]

func init() { currentGlyphs.Store(unicodeGlyphs) }

func glyphs() *glyphSet { return currentGlyphs.Load() }

func setGlyphs(g *glyphSet) { currentGlyphs.Store(g) }

// applyGlyphPreference reads PROBEL_TUI_GLYPHS. Unknown values keep the
// current set.
func applyGlyphPreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("PROBEL_TUI_GLYPHS"))) {
	case "", "unicode", "utf8":
		setGlyphs(unicodeGlyphs)
	case "ascii":
		setGlyphs(asciiGlyphs)
	}
}

// button renders a title bar button such as "[x]".
func (g *glyphSet) button(s string) string { return "[" + s + "]" }
