// CLAUDE:SUMMARY Loader registration — one loader per input family, registered in universal-chain order.
// Package load implements the loader verbs: each decodes one family of
// inputs into a payload on the attachment. Loaders are tolerant by
// construction — a loader whose matcher declines, or that finds the payload
// already claimed, passes the attachment through untouched, so the full
// registration order doubles as the universal fallback chain:
//
//	repo/dir → pdf → docx → pptx → xlsx → csv → image → html → url → text → archive
package load

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/hazyhaar/annexe/attach"
	"github.com/hazyhaar/annexe/verb"
)

func init() {
	verb.RegisterLoader("repo", matchDir, loadRepo)
	verb.RegisterLoader("pdf", matchSuffix(".pdf"), loadPDF)
	verb.RegisterLoader("docx", matchSuffix(".docx"), loadDocx)
	verb.RegisterLoader("pptx", matchSuffix(".pptx"), loadPptx)
	verb.RegisterLoader("xlsx", matchSuffix(".xlsx"), loadXlsx)
	verb.RegisterLoader("csv", matchSuffix(".csv", ".tsv"), loadCSV)
	verb.RegisterLoader("image", matchSuffix(imageExts...), loadImage)
	verb.RegisterLoader("html", matchSuffix(".html", ".htm"), loadHTMLFile)
	verb.RegisterLoader("url", matchURL, loadURL)
	verb.RegisterLoader("text", matchTextFile, loadText)
	verb.RegisterLoader("archive", matchSuffix(".zip"), loadArchive)
}

var imageExts = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".tif", ".tiff", ".heic", ".heif"}

// binaryDocExts lists URL suffixes handled by download-and-delegate rather
// than webpage parsing.
var binaryDocExts = []string{".pdf", ".docx", ".pptx", ".xlsx", ".zip", ".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".tif", ".tiff"}

func matchSuffix(exts ...string) verb.Matcher {
	return func(a *attach.Attachment) bool {
		if isURL(a.Path) {
			return false
		}
		lower := strings.ToLower(a.Path)
		for _, ext := range exts {
			if strings.HasSuffix(lower, ext) {
				return true
			}
		}
		return false
	}
}

func matchDir(a *attach.Attachment) bool {
	if isURL(a.Path) {
		return false
	}
	info, err := os.Stat(a.Path)
	return err == nil && info.IsDir()
}

func matchURL(a *attach.Attachment) bool {
	return isURL(a.Path)
}

func isURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// matchTextFile accepts any existing regular file whose first kilobyte
// contains no NUL byte. It sits near the end of the chain so typed loaders
// get first refusal.
func matchTextFile(a *attach.Attachment) bool {
	if isURL(a.Path) {
		return false
	}
	info, err := os.Stat(a.Path)
	if err != nil || info.IsDir() {
		return false
	}
	f, err := os.Open(a.Path)
	if err != nil {
		return false
	}
	defer f.Close()
	buf := make([]byte, 1024)
	n, _ := f.Read(buf)
	for _, b := range buf[:n] {
		if b == 0 {
			return false
		}
	}
	return true
}

// hasBinaryDocSuffix reports whether a URL path names a known binary
// document format, and returns its extension.
func hasBinaryDocSuffix(rawURL string) (string, bool) {
	path := rawURL
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, known := range binaryDocExts {
		if ext == known {
			return ext, true
		}
	}
	return "", false
}
