// CLAUDE:SUMMARY Per-format processor recipes registered for discovery, plus Run, the top-level entry.
// Package proc wires the format pipelines out of the registered verbs and
// registers them for processor discovery. Importing proc pulls in every
// feature package, so a blank import of proc is enough to arm the runtime.
package proc

import (
	"context"
	"os"
	"strings"

	"github.com/hazyhaar/annexe/attach"
	"github.com/hazyhaar/annexe/verb"

	// Verb registration side effects.
	_ "github.com/hazyhaar/annexe/adapt"
	_ "github.com/hazyhaar/annexe/load"
	_ "github.com/hazyhaar/annexe/modify"
	_ "github.com/hazyhaar/annexe/present"
	_ "github.com/hazyhaar/annexe/refine"
	_ "github.com/hazyhaar/annexe/split"
)

func init() {
	registerProcessors()
}

func registerProcessors() {
	verb.RegisterPrimary(matchExt(".pdf"), pdfPipe(), "PDF: per-page text, rendered pages, OCR when scanned")
	verb.RegisterPrimary(matchExt(".docx"), docxPipe(), "Word: styled paragraphs, office-rendered page images")
	verb.RegisterPrimary(matchExt(".pptx"), pptxPipe(), "PowerPoint: per-slide text and images")
	verb.RegisterPrimary(matchExt(".xlsx"), xlsxPipe(), "Excel: per-sheet previews")
	verb.RegisterPrimary(matchExt(".csv", ".tsv"), tablePipe(), "Tabular: previews and column selection")
	verb.RegisterPrimary(matchExt(".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".tif", ".tiff", ".heic", ".heif"), imagePipe(), "Image: crop/rotate/resize, PNG output")
	verb.RegisterPrimary(matchExt(".zip"), archivePipe(), "Archive: expand image members")
	verb.RegisterPrimary(matchExt(".html", ".htm"), htmlPipe(), "Local HTML: text and markdown")
	verb.RegisterPrimary(matchURLInput, webpagePipe(), "URL: webpage or downloaded document")
	verb.RegisterPrimary(matchDirInput, repoPipe(), "Directory or repository: structure, metadata, files")

	verb.RegisterNamed("webpage", matchURLInput, webpagePipe(), "Explicit webpage processing")
	verb.RegisterNamed("ocr", matchExt(".pdf"), ocrPipe(), "Force OCR on a PDF")
}

func matchExt(exts ...string) func(*attach.Attachment) bool {
	return func(a *attach.Attachment) bool {
		lower := strings.ToLower(a.Path)
		for _, ext := range exts {
			if strings.HasSuffix(lower, ext) {
				return true
			}
		}
		return false
	}
}

func matchURLInput(a *attach.Attachment) bool {
	return strings.HasPrefix(a.Path, "http://") || strings.HasPrefix(a.Path, "https://")
}

func matchDirInput(a *attach.Attachment) bool {
	info, err := os.Stat(a.Path)
	return err == nil && info.IsDir()
}

func pdfPipe() *verb.Pipeline {
	return verb.NewPipeline(
		verb.Load("pdf"),
		verb.Modify("pages"),
		verb.Present("markdown").
			Also(verb.Present("text")).
			Also(verb.Present("images")).
			Also(verb.Present("ocr")),
		whenCommand("tile", verb.Refine("tile_images")),
		verb.Refine("resize_images"),
		verb.Refine("add_headers"),
	)
}

func ocrPipe() *verb.Pipeline {
	return verb.NewPipeline(
		verb.Load("pdf"),
		verb.Modify("pages"),
		verb.Present("ocr").With("true"),
		verb.Refine("add_headers"),
	)
}

func docxPipe() *verb.Pipeline {
	return verb.NewPipeline(
		verb.Load("docx"),
		verb.Present("markdown").
			Also(verb.Present("text")).
			Also(whenFormat("xml", verb.Present("xml"))).
			Also(verb.Present("images")),
		verb.Refine("resize_images"),
		verb.Refine("add_headers"),
	)
}

func pptxPipe() *verb.Pipeline {
	return verb.NewPipeline(
		verb.Load("pptx"),
		verb.Modify("pages"),
		verb.Present("markdown").
			Also(verb.Present("text")).
			Also(whenFormat("xml", verb.Present("xml"))).
			Also(verb.Present("images")),
		verb.Refine("resize_images"),
		verb.Refine("add_headers"),
	)
}

func xlsxPipe() *verb.Pipeline {
	return verb.NewPipeline(
		verb.Load("xlsx"),
		verb.Modify("pages"),
		verb.Present("markdown").
			Also(verb.Present("text")).
			Also(verb.Present("images")),
		verb.Refine("resize_images"),
		verb.Refine("add_headers"),
	)
}

func tablePipe() *verb.Pipeline {
	return verb.NewPipeline(
		verb.Load("csv"),
		verb.Modify("limit"),
		verb.Modify("select"),
		verb.Present("markdown").
			Also(verb.Present("text")).
			Also(whenFormat("structured", verb.Present("csv"))),
		verb.Refine("add_headers"),
	)
}

func imagePipe() *verb.Pipeline {
	return verb.NewPipeline(
		verb.Load("image"),
		verb.Modify("crop"),
		verb.Modify("rotate"),
		verb.Modify("resize"),
		verb.Present("images"),
	)
}

func archivePipe() *verb.Pipeline {
	return verb.NewPipeline(
		verb.Load("archive"),
		verb.Modify("resize"),
		verb.Present("images"),
	)
}

func htmlPipe() *verb.Pipeline {
	return verb.NewPipeline(
		verb.Load("html"),
		verb.Modify("select"),
		verb.Present("markdown").
			Also(verb.Present("text")),
		verb.Refine("add_headers"),
	)
}

func webpagePipe() *verb.Pipeline {
	return verb.NewPipeline(
		verb.Load("url"),
		verb.Modify("select"),
		verb.Present("markdown").
			Also(verb.Present("text")).
			Also(verb.Present("screenshot")).
			Also(verb.Present("images")),
		verb.Refine("resize_images"),
		verb.Refine("add_headers"),
	)
}

func repoPipe() *verb.Pipeline {
	return verb.NewPipeline(
		verb.Load("repo"),
		modeStep{},
	)
}

// Run resolves an input through processor discovery, falling back to the
// universal pipeline when no primary matches or the chosen one fails.
func Run(ctx context.Context, input string) (any, error) {
	a := attach.New(input)
	if p := verb.FindPrimary(a); p != nil {
		out, err := p.Pipe.Run(ctx, a)
		if err == nil {
			return out, nil
		}
		// The specialized pipeline failed; give the tolerant chain a turn
		// on a fresh attachment.
		_ = a.Close()
	}
	return Universal().Run(ctx, attach.New(input))
}

// RunNamed invokes a named processor explicitly.
func RunNamed(ctx context.Context, name, input string) (any, error) {
	p, ok := verb.NamedProcessor(name)
	if !ok {
		return nil, &attach.InvalidValueError{Key: "processor", Value: name, Reason: "not registered"}
	}
	return p.Pipe.Run(ctx, attach.New(input))
}
