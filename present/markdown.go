// CLAUDE:SUMMARY Markdown presenters — page/slide headings, Word style promotion, real HTML conversion.
package present

import (
	"context"
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"

	"github.com/hazyhaar/annexe/attach"
	"github.com/hazyhaar/annexe/extract"
	"github.com/hazyhaar/annexe/load"
)

func markdownPDF(_ context.Context, a *attach.Attachment) (*attach.Attachment, error) {
	doc := a.Payload.(*load.PDFDoc)
	var sb strings.Builder
	for _, page := range doc.Pages() {
		fmt.Fprintf(&sb, "## Page %d\n\n", page)
		if text := doc.PageText(page); text != "" {
			sb.WriteString(text)
			sb.WriteString("\n\n")
		}
	}
	a.AppendText(sb.String())
	return a, nil
}

// markdownWord promotes Heading-N styles to markdown headings one level
// deeper than the style (the document title keeps level 1 for itself),
// clamped at six.
func markdownWord(_ context.Context, a *attach.Attachment) (*attach.Attachment, error) {
	doc := a.Payload.(*load.WordDoc)
	var sb strings.Builder
	for _, p := range doc.Paragraphs {
		if level := p.HeadingLevel(); level > 0 {
			depth := level + 1
			if depth > 6 {
				depth = 6
			}
			sb.WriteString(strings.Repeat("#", depth) + " " + p.Text + "\n\n")
			continue
		}
		sb.WriteString(p.Text + "\n\n")
	}
	a.AppendText(sb.String())
	return a, nil
}

func markdownDeck(_ context.Context, a *attach.Attachment) (*attach.Attachment, error) {
	deck := a.Payload.(*load.Deck)
	var sb strings.Builder
	for _, n := range deck.SlideNumbers() {
		slide := deck.Slide(n)
		if slide == nil {
			continue
		}
		fmt.Fprintf(&sb, "## Slide %d\n\n", n)
		for _, t := range slide.Texts {
			sb.WriteString(t)
			sb.WriteString("\n\n")
		}
	}
	a.AppendText(sb.String())
	return a, nil
}

func markdownWorkbook(_ context.Context, a *attach.Attachment) (*attach.Attachment, error) {
	wb := a.Payload.(*load.Workbook)
	var sb strings.Builder
	for _, n := range wb.SheetNumbers() {
		sheet := wb.Sheet(n)
		if sheet == nil {
			continue
		}
		rows, cols := sheet.Dimensions()
		fmt.Fprintf(&sb, "## Sheet %d: %s\n\n%d rows × %d columns\n\n", n, sheet.Name, rows, cols)
		sb.WriteString(markdownGrid(sheet.Rows, previewRows, previewCols))
		sb.WriteByte('\n')
	}
	a.AppendText(sb.String())
	return a, nil
}

func markdownTable(_ context.Context, a *attach.Attachment) (*attach.Attachment, error) {
	t := a.Payload.(*load.Table)
	grid := append([][]string{t.Headers}, t.Rows...)
	a.AppendText(markdownGrid(grid, len(grid), len(t.Headers)) + "\n")
	return a, nil
}

// markdownGrid renders up to maxRows×maxCols cells as a markdown table,
// treating the first row as the header.
func markdownGrid(rows [][]string, maxRows, maxCols int) string {
	if len(rows) == 0 {
		return ""
	}
	if maxRows < len(rows) {
		rows = rows[:maxRows]
	}
	clip := func(row []string) []string {
		if len(row) > maxCols {
			row = row[:maxCols]
		}
		out := make([]string, len(row))
		for i, c := range row {
			out[i] = strings.ReplaceAll(c, "|", "\\|")
		}
		return out
	}
	var sb strings.Builder
	header := clip(rows[0])
	sb.WriteString("| " + strings.Join(header, " | ") + " |\n")
	sb.WriteString("|" + strings.Repeat(" --- |", len(header)) + "\n")
	for _, row := range rows[1:] {
		sb.WriteString("| " + strings.Join(clip(row), " | ") + " |\n")
	}
	return sb.String()
}

// mdConverter is the shared HTML→markdown converter.
var mdConverter = htmltomarkdown.NewConverter(
	htmltomarkdown.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(),
	),
)

// markdownHTML prefers the real conversion and falls back to structural
// extraction when it fails.
func markdownHTML(_ context.Context, a *attach.Attachment) (*attach.Attachment, error) {
	tree := a.Payload.(*load.HTMLTree)
	if title := extract.Title(tree.Root); title != "" {
		a.Record("page_title", title)
	}
	md, err := mdConverter.ConvertString(extract.Render(tree.Root))
	if err != nil || strings.TrimSpace(md) == "" {
		md = extract.Markdown(tree.Root)
	}
	a.AppendText(strings.TrimSpace(md) + "\n")
	return a, nil
}
