// CLAUDE:SUMMARY Image presenters — PNG encoding with alpha flattening, PDF rasterization, office-to-PDF bridge, screenshots.
package present

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	// Decoders for rasterizer output.
	_ "image/jpeg"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"golang.org/x/image/draw"

	"github.com/hazyhaar/annexe/attach"
	"github.com/hazyhaar/annexe/browser"
	"github.com/hazyhaar/annexe/load"
	"github.com/hazyhaar/annexe/modify"
	"github.com/hazyhaar/annexe/render"
)

// EncodePNG flattens any alpha onto white and returns standard base64 PNG.
func EncodePNG(img image.Image) (string, error) {
	b := img.Bounds()
	flat := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(flat, flat.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), img, b.Min, draw.Over)

	var buf bytes.Buffer
	if err := png.Encode(&buf, flat); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func imagesRaster(_ context.Context, a *attach.Attachment) (*attach.Attachment, error) {
	data := a.Payload.(*load.ImageData)
	b64, err := EncodePNG(data.Img)
	if err != nil {
		return nil, err
	}
	a.AppendImage(b64)
	return a, nil
}

// pdfRenderScale is the rasterization scale for document pages.
const pdfRenderScale = 2.0

func imagesPDF(ctx context.Context, a *attach.Attachment) (*attach.Attachment, error) {
	doc := a.Payload.(*load.PDFDoc)
	return renderPDFPages(ctx, a, doc.Path, doc.Pages(), doc.PageCount)
}

// renderPDFPages rasterizes pages, applies any resize spec, and appends the
// results.
func renderPDFPages(ctx context.Context, a *attach.Attachment, pdfPath string, pages []int, totalPages int) (*attach.Attachment, error) {
	rendered, err := render.PDFPages(ctx, pdfPath, pages, pdfRenderScale)
	if err != nil {
		return nil, err
	}
	spec := a.Commands.ResizeSpec()
	count := 0
	for _, page := range pages {
		data, ok := rendered[page]
		if !ok {
			continue
		}
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			continue
		}
		if spec != "" {
			if resized, err := modify.Resize(img, spec); err == nil {
				img = resized
			}
		}
		b64, err := EncodePNG(img)
		if err != nil {
			continue
		}
		a.AppendImage(b64)
		count++
	}
	a.Record("pdf_pages_rendered", count)
	a.Record("pdf_total_pages", totalPages)
	return a, nil
}

// imagesOffice converts an office document to PDF and renders its pages.
// The intermediate PDF is owned by the attachment and cleaned up with it.
func imagesOffice(ctx context.Context, a *attach.Attachment) (*attach.Attachment, error) {
	var srcPath string
	switch doc := a.Payload.(type) {
	case *load.WordDoc:
		srcPath = doc.Path
	case *load.Deck:
		srcPath = doc.Path
	case *load.Workbook:
		srcPath = doc.Path
	default:
		return a, nil
	}

	outDir, err := os.MkdirTemp("", "annexe_office_")
	if err != nil {
		return nil, fmt.Errorf("office images: temp dir: %w", err)
	}
	a.OnClose(func() error { return os.RemoveAll(outDir) })

	pdfPath, err := render.OfficeToPDF(ctx, srcPath, outDir)
	if err != nil {
		return nil, err
	}
	a.AddTempFile(pdfPath)

	pageCount, err := api.PageCountFile(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("office images: page count: %w", err)
	}
	pages := make([]int, pageCount)
	for i := range pages {
		pages[i] = i + 1
	}
	return renderPDFPages(ctx, a, pdfPath, pages, pageCount)
}

// screenshotHTML captures the source URL in a headless browser. Local HTML
// trees without a URL cannot be screenshotted and pass through.
func screenshotHTML(ctx context.Context, a *attach.Attachment) (*attach.Attachment, error) {
	tree := a.Payload.(*load.HTMLTree)
	if tree.URL == "" {
		return a, nil
	}

	width, height := 1280, 720
	if v := a.Commands.Get("viewport"); v != "" {
		_, _ = fmt.Sscanf(v, "%dx%d", &width, &height)
	}
	opts := browser.Options{
		URL:      tree.URL,
		Width:    width,
		Height:   height,
		WaitMS:   a.Commands.Int("wait", 200),
		FullPage: a.Commands.Bool("fullpage", true),
		Selector: a.Commands.Get("select"),
	}

	data, err := browser.Default.Screenshot(ctx, opts)
	if err != nil {
		// Degrade to text-only; the dispatch layer records screenshot_error.
		return nil, err
	}
	a.AppendImage(base64.StdEncoding.EncodeToString(data))
	a.Record("screenshot_captured", true)
	a.Record("screenshot_url", tree.URL)
	a.Record("screenshot_viewport", fmt.Sprintf("%dx%d", width, height))
	a.Record("screenshot_fullpage", opts.FullPage)
	a.Record("screenshot_wait_time", opts.WaitMS)
	if opts.Selector != "" {
		a.Record("highlighted_selector", opts.Selector)
		if count, ok := a.Metadata["selected_count"]; ok {
			a.Record("highlighted_elements", count)
		}
	}
	return a, nil
}
