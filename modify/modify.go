// CLAUDE:SUMMARY Modifier verbs — pages selection, row limit, CSS/column select.
// Package modify implements the modifier verbs: they reshape the payload or
// narrow it according to DSL commands, producing no text or images
// themselves.
package modify

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/hazyhaar/annexe/attach"
	"github.com/hazyhaar/annexe/extract"
	"github.com/hazyhaar/annexe/load"
	"github.com/hazyhaar/annexe/verb"
)

func init() {
	verb.RegisterModifier("pages", []verb.TypedCase{
		{Kind: "PDFDoc", Fn: pagesPDF},
		{Kind: "Deck", Fn: pagesDeck},
		{Kind: "Workbook", Fn: pagesWorkbook},
	}, nil)

	verb.RegisterModifier("limit", []verb.TypedCase{
		{Kind: "Table", Fn: limitTable},
	}, nil)

	verb.RegisterModifier("select", []verb.TypedCase{
		{Kind: "HTMLTree", Fn: selectCSS},
		{Kind: "Table", Fn: selectColumns},
	}, nil)

	verb.RegisterModifier("crop", []verb.TypedCase{
		{Kind: "ImageData", Fn: cropImage},
	}, nil)

	verb.RegisterModifier("rotate", []verb.TypedCase{
		{Kind: "ImageData", Fn: rotateImage},
	}, nil)

	verb.RegisterModifier("resize", []verb.TypedCase{
		{Kind: "ImageData", Fn: resizeImage},
	}, nil)
}

func pagesPDF(_ context.Context, a *attach.Attachment) (*attach.Attachment, error) {
	spec := a.Commands.Get("pages")
	if spec == "" {
		return a, nil
	}
	doc := a.Payload.(*load.PDFDoc)
	pages, err := ParsePageSpec(spec, doc.PageCount)
	if err != nil {
		return nil, err
	}
	doc.Selected = pages
	a.Record("selected_pages", pages)
	return a, nil
}

func pagesDeck(_ context.Context, a *attach.Attachment) (*attach.Attachment, error) {
	spec := a.Commands.Get("pages")
	if spec == "" {
		return a, nil
	}
	deck := a.Payload.(*load.Deck)
	slides, err := ParsePageSpec(spec, len(deck.Slides))
	if err != nil {
		return nil, err
	}
	deck.Selected = slides
	a.Record("selected_slides", slides)
	return a, nil
}

func pagesWorkbook(_ context.Context, a *attach.Attachment) (*attach.Attachment, error) {
	spec := a.Commands.Get("pages")
	if spec == "" {
		return a, nil
	}
	wb := a.Payload.(*load.Workbook)
	sheets, err := ParsePageSpec(spec, len(wb.Sheets))
	if err != nil {
		return nil, err
	}
	wb.Selected = sheets
	a.Record("selected_sheets", sheets)
	return a, nil
}

func limitTable(_ context.Context, a *attach.Attachment) (*attach.Attachment, error) {
	n := a.Commands.Int("limit", 0)
	if n <= 0 {
		return a, nil
	}
	t := a.Payload.(*load.Table)
	if len(t.Rows) > n {
		t.Rows = t.Rows[:n]
		a.Record("rows_limited", n)
	}
	return a, nil
}

// selectCSS replaces the parsed tree with the matched elements, wrapped in a
// container when several match.
func selectCSS(_ context.Context, a *attach.Attachment) (*attach.Attachment, error) {
	selector := a.Commands.Get("select")
	if selector == "" {
		return a, nil
	}
	tree := a.Payload.(*load.HTMLTree)
	matches := extract.Select(tree.Root, selector)
	a.Record("selector", selector)
	a.Record("selected_count", len(matches))
	if len(matches) == 0 {
		a.Record("selection_applied", false)
		return a, nil
	}
	tree.Root = extract.Wrap(matches)
	a.Record("selection_applied", true)
	return a, nil
}

// selectColumns narrows a table to the named columns (comma-separated,
// case-insensitive header match).
func selectColumns(_ context.Context, a *attach.Attachment) (*attach.Attachment, error) {
	spec := a.Commands.Get("select")
	if spec == "" {
		return a, nil
	}
	t := a.Payload.(*load.Table)
	wanted := lo.Map(strings.Split(spec, ","), func(s string, _ int) string {
		return strings.ToLower(strings.TrimSpace(s))
	})
	var indices []int
	for i, h := range t.Headers {
		if lo.Contains(wanted, strings.ToLower(strings.TrimSpace(h))) {
			indices = append(indices, i)
		}
	}
	if len(indices) == 0 {
		return nil, attach.InvalidValue("select", spec, "no matching columns")
	}
	pick := func(row []string) []string {
		out := make([]string, 0, len(indices))
		for _, i := range indices {
			if i < len(row) {
				out = append(out, row[i])
			} else {
				out = append(out, "")
			}
		}
		return out
	}
	t.Headers = pick(t.Headers)
	t.Rows = lo.Map(t.Rows, func(row []string, _ int) []string { return pick(row) })
	a.Record("selected_columns", len(indices))
	return a, nil
}

// ParsePageSpec expands "1,3-5,-1" into 1-based indices against total.
// -1 means the last page; a 0-page document yields an empty selection.
func ParsePageSpec(spec string, total int) ([]int, error) {
	var pages []int
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if part == "-1" {
			if total > 0 {
				pages = append(pages, total)
			}
			continue
		}
		if i := strings.IndexByte(part, '-'); i > 0 {
			var from, to int
			if _, err := fmt.Sscanf(part, "%d-%d", &from, &to); err != nil {
				return nil, attach.InvalidValue("pages", spec, "bad range "+part)
			}
			if from < 1 || to < from {
				return nil, attach.InvalidValue("pages", spec, "bad range "+part)
			}
			for p := from; p <= to; p++ {
				if p <= total {
					pages = append(pages, p)
				}
			}
			continue
		}
		var p int
		if _, err := fmt.Sscanf(part, "%d", &p); err != nil || p < 1 {
			return nil, attach.InvalidValue("pages", spec, "bad page "+part)
		}
		if p <= total {
			pages = append(pages, p)
		}
	}
	return pages, nil
}
