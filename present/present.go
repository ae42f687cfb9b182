// CLAUDE:SUMMARY Presenter registration and the plain-text presenter for every payload family.
// Package present implements the presenter verbs. Presenters only append to
// an attachment's text and image buffers; failures are recorded in metadata
// by the dispatch layer and never abort a pipeline.
package present

import (
	"context"
	"fmt"
	"strings"

	"github.com/hazyhaar/annexe/attach"
	"github.com/hazyhaar/annexe/extract"
	"github.com/hazyhaar/annexe/load"
	"github.com/hazyhaar/annexe/verb"
)

func init() {
	verb.RegisterPresenter("text", verb.CategoryText, []verb.TypedCase{
		{Kind: "PDFDoc", Fn: textPDF},
		{Kind: "WordDoc", Fn: textWord},
		{Kind: "Deck", Fn: textDeck},
		{Kind: "Workbook", Fn: textWorkbook},
		{Kind: "Table", Fn: textTable},
		{Kind: "TextBlob", Fn: textBlob},
		{Kind: "HTMLTree", Fn: textHTML},
	}, nil)

	verb.RegisterPresenter("markdown", verb.CategoryText, []verb.TypedCase{
		{Kind: "PDFDoc", Fn: markdownPDF},
		{Kind: "WordDoc", Fn: markdownWord},
		{Kind: "Deck", Fn: markdownDeck},
		{Kind: "Workbook", Fn: markdownWorkbook},
		{Kind: "Table", Fn: markdownTable},
		{Kind: "TextBlob", Fn: textBlob},
		{Kind: "HTMLTree", Fn: markdownHTML},
	}, nil)

	verb.RegisterPresenter("xml", verb.CategoryText, []verb.TypedCase{
		{Kind: "WordDoc", Fn: xmlWord},
		{Kind: "Deck", Fn: xmlDeck},
		{Kind: "HTMLTree", Fn: xmlHTML},
	}, nil)

	verb.RegisterPresenter("csv", verb.CategoryText, []verb.TypedCase{
		{Kind: "Table", Fn: csvTable},
	}, nil)

	verb.RegisterPresenter("head", verb.CategoryText, []verb.TypedCase{
		{Kind: "Table", Fn: headTable},
	}, nil)

	verb.RegisterPresenter("images", verb.CategoryImage, []verb.TypedCase{
		{Kind: "ImageData", Fn: imagesRaster},
		{Kind: "PDFDoc", Fn: imagesPDF},
		{Kind: "WordDoc", Fn: imagesOffice},
		{Kind: "Deck", Fn: imagesOffice},
		{Kind: "Workbook", Fn: imagesOffice},
	}, nil)

	verb.RegisterPresenter("screenshot", verb.CategoryImage, []verb.TypedCase{
		{Kind: "HTMLTree", Fn: screenshotHTML},
	}, nil)

	verb.RegisterPresenter("ocr", verb.CategoryText, []verb.TypedCase{
		{Kind: "PDFDoc", Fn: ocrPDF},
	}, nil)

	verb.RegisterPresenter("metadata", verb.CategoryText, []verb.TypedCase{
		{Kind: "DirStructure", Fn: metadataDir},
	}, metadataAny)

	verb.RegisterPresenter("structure", verb.CategoryText, []verb.TypedCase{
		{Kind: "DirStructure", Fn: structureDir},
	}, nil)

	verb.RegisterPresenter("files", verb.CategoryText, []verb.TypedCase{
		{Kind: "DirStructure", Fn: filesDir},
	}, nil)
}

func textPDF(_ context.Context, a *attach.Attachment) (*attach.Attachment, error) {
	doc := a.Payload.(*load.PDFDoc)
	var sb strings.Builder
	for _, page := range doc.Pages() {
		text := doc.PageText(page)
		if text == "" {
			continue
		}
		fmt.Fprintf(&sb, "[Page %d]\n%s\n\n", page, text)
	}
	a.AppendText(sb.String())
	return a, nil
}

func textWord(_ context.Context, a *attach.Attachment) (*attach.Attachment, error) {
	doc := a.Payload.(*load.WordDoc)
	var parts []string
	for _, p := range doc.Paragraphs {
		parts = append(parts, p.Text)
	}
	a.AppendText(strings.Join(parts, "\n\n") + "\n")
	return a, nil
}

func textDeck(_ context.Context, a *attach.Attachment) (*attach.Attachment, error) {
	deck := a.Payload.(*load.Deck)
	var sb strings.Builder
	for _, n := range deck.SlideNumbers() {
		slide := deck.Slide(n)
		if slide == nil {
			continue
		}
		fmt.Fprintf(&sb, "[Slide %d]\n", n)
		for _, t := range slide.Texts {
			sb.WriteString(t)
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
	}
	a.AppendText(sb.String())
	return a, nil
}

const previewRows, previewCols = 5, 5

func textWorkbook(_ context.Context, a *attach.Attachment) (*attach.Attachment, error) {
	wb := a.Payload.(*load.Workbook)
	var sb strings.Builder
	for _, n := range wb.SheetNumbers() {
		sheet := wb.Sheet(n)
		if sheet == nil {
			continue
		}
		rows, cols := sheet.Dimensions()
		fmt.Fprintf(&sb, "Sheet %d: %s (%d rows × %d columns)\n", n, sheet.Name, rows, cols)
		for i, row := range sheet.Rows {
			if i >= previewRows {
				sb.WriteString("…\n")
				break
			}
			end := len(row)
			if end > previewCols {
				end = previewCols
			}
			sb.WriteString(strings.Join(row[:end], "\t"))
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
	}
	a.AppendText(sb.String())
	return a, nil
}

func textTable(_ context.Context, a *attach.Attachment) (*attach.Attachment, error) {
	t := a.Payload.(*load.Table)
	var sb strings.Builder
	sb.WriteString(strings.Join(t.Headers, "\t"))
	sb.WriteByte('\n')
	for _, row := range t.Rows {
		sb.WriteString(strings.Join(row, "\t"))
		sb.WriteByte('\n')
	}
	a.AppendText(sb.String())
	return a, nil
}

func textBlob(_ context.Context, a *attach.Attachment) (*attach.Attachment, error) {
	blob := a.Payload.(*load.TextBlob)
	a.AppendText(blob.Content)
	if !strings.HasSuffix(blob.Content, "\n") {
		a.AppendText("\n")
	}
	return a, nil
}

func textHTML(_ context.Context, a *attach.Attachment) (*attach.Attachment, error) {
	tree := a.Payload.(*load.HTMLTree)
	if title := extract.Title(tree.Root); title != "" {
		a.Record("page_title", title)
	}
	a.AppendText(extract.Text(tree.Root) + "\n")
	return a, nil
}
