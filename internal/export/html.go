package export

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/theirongolddev/dupont/internal/cli"
	"github.com/theirongolddev/dupont/internal/model"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// Markdown renders both tables as GFM markdown with display formatting.
func Markdown(r Report) string {
	var b strings.Builder
	writeMarkdownTable(&b, r.DuPont)
	b.WriteString("\n")
	writeMarkdownTable(&b, r.Operating)
	return b.String()
}

func writeMarkdownTable(b *strings.Builder, t model.Table) {
	title := t.Title
	if t.Period != "" {
		title += " (" + t.Period + ")"
	}
	fmt.Fprintf(b, "## %s\n\n", escapeCell(title))

	b.WriteString("| |")
	for _, c := range t.Columns {
		fmt.Fprintf(b, " %s |", escapeCell(c))
	}
	b.WriteString("\n|---|")
	for range t.Columns {
		b.WriteString("---:|")
	}
	b.WriteString("\n")

	for i, label := range t.Rows {
		fmt.Fprintf(b, "| %s |", escapeCell(label))
		for _, v := range t.Values[i] {
			fmt.Fprintf(b, " %s |", formatCell(t, i, v))
		}
		b.WriteString("\n")
	}
}

func formatCell(t model.Table, i int, v float64) string {
	switch rowKind(t, i) {
	case kindDollars:
		return cli.FormatDollars(v)
	case kindRate:
		return cli.FormatRate(v)
	}
	return cli.FormatMultiple(v)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// WriteHTML renders the markdown tables to a standalone HTML page.
func WriteHTML(w io.Writer, r Report) error {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(Markdown(r)), &body); err != nil {
		return fmt.Errorf("rendering html: %w", err)
	}

	title := html.EscapeString(r.DuPont.Title)
	_, err := fmt.Fprintf(w, htmlPage, title, body.String())
	return err
}

const htmlPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; }
table { border-collapse: collapse; margin-bottom: 2rem; }
th, td { border: 1px solid #ccc; padding: 0.3rem 0.8rem; }
td { text-align: right; }
td:first-child { text-align: left; }
</style>
</head>
<body>
%s</body>
</html>
`
