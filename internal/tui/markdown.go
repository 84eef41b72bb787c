package tui

import (
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

var (
	mdMu sync.Mutex
	// Renderers are cached per style and wrap width. A fixed style avoids
	// the terminal queries WithAutoStyle makes.
	mdRenderers = map[string]*glamour.TermRenderer{}
	// mdStyle is "dark", "light" or "" to follow the terminal background.
	mdStyle string
)

func setMarkdownStyle(s string) {
	mdMu.Lock()
	mdStyle = strings.ToLower(strings.TrimSpace(s))
	mdMu.Unlock()
}

func markdownStyleName() string {
	switch mdStyle {
	case "light", "dark", "notty", "ascii":
		return mdStyle
	}
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}

// renderMarkdown renders md for a terminal of the given width with no
// document margin. On any renderer error the source is returned as is.
func renderMarkdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	width = max(width, 10)

	mdMu.Lock()
	style := markdownStyleName()
	key := style + ":" + strconv.Itoa(width)
	r := mdRenderers[key]
	mdMu.Unlock()

	if r == nil {
		cfg := styles.DarkStyleConfig
		switch style {
		case "light":
			cfg = styles.LightStyleConfig
		case "notty":
			cfg = styles.NoTTYStyleConfig
		case "ascii":
			cfg = styles.ASCIIStyleConfig
		}
		zero := uint(0)
		cfg.Document.Margin = &zero
		rr, err := glamour.NewTermRenderer(glamour.WithStyles(cfg), glamour.WithWordWrap(width))
		if err != nil {
			return md
		}
		mdMu.Lock()
		if existing := mdRenderers[key]; existing != nil {
			r = existing
		} else {
			mdRenderers[key] = rr
			r = rr
		}
		mdMu.Unlock()
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}
