// CLAUDE:SUMMARY OCR presenter — scanned-document detection drives tesseract over rasterized pages.
package present

import (
	"context"
	"fmt"
	"strings"

	"github.com/hazyhaar/annexe/attach"
	"github.com/hazyhaar/annexe/load"
	"github.com/hazyhaar/annexe/ocr"
	"github.com/hazyhaar/annexe/render"
)

// autoOCRPageCap bounds how many pages auto mode will OCR; explicit
// ocr:true lifts the cap.
const autoOCRPageCap = 10

func ocrPDF(ctx context.Context, a *attach.Attachment) (*attach.Attachment, error) {
	doc := a.Payload.(*load.PDFDoc)
	policy := strings.ToLower(a.Commands.GetOr("ocr", "auto"))

	report := ocr.Assess(doc.PageTexts)
	a.Record("is_likely_scanned", report.IsLikelyScanned)
	a.Record("pages_with_text", report.PagesWithText)
	a.Record("total_pages", report.TotalPages)
	a.Record("avg_text_per_page", report.AvgTextPerPage)
	a.Record("text_extraction_quality", report.Quality)
	a.Record("printable_ratio", report.PrintableRatio)
	a.Record("wordlike_ratio", report.WordlikeRatio)

	switch policy {
	case "false":
		return a, nil
	case "auto":
		if !report.IsLikelyScanned {
			return a, nil
		}
	case "true":
		// always run
	default:
		return a, nil
	}

	pages := doc.Pages()
	if policy == "auto" && len(pages) > autoOCRPageCap {
		pages = pages[:autoOCRPageCap]
	}

	rendered, err := render.PDFPages(ctx, doc.Path, pages, pdfRenderScale)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	processed, succeeded := 0, 0
	for _, page := range pages {
		data, ok := rendered[page]
		if !ok {
			continue
		}
		processed++
		text, err := ocr.ImageToText(ctx, data, a.Commands.Get("lang"))
		if err != nil {
			continue
		}
		if text != "" {
			succeeded++
			fmt.Fprintf(&sb, "[OCR Page %d]\n%s\n\n", page, text)
		}
	}

	a.Record("ocr_performed", processed > 0)
	a.Record("ocr_pages_processed", processed)
	a.Record("ocr_pages_successful", succeeded)
	if sb.Len() > 0 {
		a.AppendText(sb.String())
	}
	return a, nil
}
