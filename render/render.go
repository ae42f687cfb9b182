// CLAUDE:SUMMARY Shell collaborators — soffice office-to-PDF conversion and pdftoppm page rasterization.
// Package render shells out to LibreOffice and Poppler for the two
// operations that have no pure-Go implementation: converting office
// documents to PDF and rasterizing PDF pages to PNG.
//
// Both tools are optional. When a binary is missing the caller gets a
// readable error to record in metadata; the pipeline continues text-only.
package render

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// OfficeTimeout bounds a LibreOffice conversion.
const OfficeTimeout = 60 * time.Second

// OfficeToPDF converts a docx/pptx/xlsx file to PDF in outDir and returns
// the PDF path.
func OfficeToPDF(ctx context.Context, inputPath, outDir string) (string, error) {
	soffice, err := exec.LookPath("soffice")
	if err != nil {
		return "", fmt.Errorf("render: soffice not found (install LibreOffice for document images)")
	}

	ctx, cancel := context.WithTimeout(ctx, OfficeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, soffice,
		"--headless", "--convert-to", "pdf",
		"--outdir", outDir, inputPath)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("render: soffice timed out after %s", OfficeTimeout)
		}
		return "", fmt.Errorf("render: soffice convert: %w: %s", err, strings.TrimSpace(string(out)))
	}

	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	pdfPath := filepath.Join(outDir, base+".pdf")
	if _, err := os.Stat(pdfPath); err != nil {
		return "", fmt.Errorf("render: soffice produced no output for %s", inputPath)
	}
	return pdfPath, nil
}

// PDFPages rasterizes the given 1-based pages of a PDF to PNG bytes at the
// given scale (1.0 ≈ 72 dpi). Pages are rendered one pdftoppm call per page
// so a bad page cannot sink the whole document.
func PDFPages(ctx context.Context, pdfPath string, pages []int, scale float64) (map[int][]byte, error) {
	pdftoppm, err := exec.LookPath("pdftoppm")
	if err != nil {
		return nil, fmt.Errorf("render: pdftoppm not found (install poppler-utils for PDF images)")
	}
	if scale <= 0 {
		scale = 2.0
	}
	dpi := int(72 * scale)

	tmpDir, err := os.MkdirTemp("", "annexe_raster_")
	if err != nil {
		return nil, fmt.Errorf("render: temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	out := make(map[int][]byte, len(pages))
	for _, page := range pages {
		prefix := filepath.Join(tmpDir, "page")
		cmd := exec.CommandContext(ctx, pdftoppm,
			"-png",
			"-r", strconv.Itoa(dpi),
			"-f", strconv.Itoa(page),
			"-l", strconv.Itoa(page),
			pdfPath, prefix)
		if msg, err := cmd.CombinedOutput(); err != nil {
			return nil, fmt.Errorf("render: pdftoppm page %d: %w: %s", page, err, strings.TrimSpace(string(msg)))
		}
		// pdftoppm names output page-<n>.png with zero padding that depends
		// on the document size; glob rather than guess.
		matches, _ := filepath.Glob(prefix + "*.png")
		if len(matches) == 0 {
			continue
		}
		sort.Strings(matches)
		data, err := os.ReadFile(matches[0])
		if err != nil {
			return nil, fmt.Errorf("render: read raster output: %w", err)
		}
		out[page] = data
		for _, m := range matches {
			_ = os.Remove(m)
		}
	}
	return out, nil
}
