package format

import (
	"bytes"
	"html/template"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"probel/internal/model"
)

// Raw HTML in notes is escaped: html.WithUnsafe is not set.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM, emoji.Emoji),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// MarkdownHTML converts note content to an HTML fragment.
func MarkdownHTML(src string) template.HTML {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	var b bytes.Buffer
	if err := markdown.Convert([]byte(src), &b); err != nil {
		return template.HTML("<pre>" + template.HTMLEscapeString(src) + "</pre>")
	}
	return template.HTML(b.String())
}

var noteTmpl = template.Must(template.New("note").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<article>
<h1>{{.Title}}</h1>
{{- if .Tags}}
<p class="tags">{{range $i, $t := .Tags}}{{if $i}}, {{end}}{{$t}}{{end}}</p>
{{- end}}
<p class="updated">Last updated {{.Updated}}</p>
{{.Body}}
</article>
</body>
</html>
`))

// WriteNoteHTML writes a note as a standalone HTML page.
func WriteNoteHTML(w io.Writer, n model.Note) error {
	title := n.Title
	if strings.TrimSpace(title) == "" {
		title = model.UntitledTitle
	}
	updated := ""
	if !n.LastUpdated.IsZero() {
		updated = n.LastUpdated.UTC().Format("2006-01-02 15:04 UTC")
	}
	return noteTmpl.Execute(w, struct {
		Title   string
		Tags    []string
		Updated string
		Body    template.HTML
	}{title, n.Tags, updated, MarkdownHTML(n.Content)})
}
