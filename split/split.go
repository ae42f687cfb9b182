// CLAUDE:SUMMARY Split verbs — chunk one attachment into a Set by paragraph, sentence, token, page, or row.
// Package split implements the chunking verbs. Each produces a Set from a
// single attachment; chunks inherit the parent's commands so downstream
// verbs keep honoring the original DSL.
package split

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/hazyhaar/annexe/attach"
	"github.com/hazyhaar/annexe/load"
	"github.com/hazyhaar/annexe/verb"
)

func init() {
	verb.RegisterRefiner("split_paragraphs", byText("paragraphs", splitParagraphs))
	verb.RegisterRefiner("split_sentences", byText("sentences", splitSentences))
	verb.RegisterRefiner("split_lines", byText("lines", splitLines))
	verb.RegisterRefiner("split_characters", splitCharacters)
	verb.RegisterRefiner("split_tokens", splitTokens)
	verb.RegisterRefiner("split_custom", splitCustom)
	verb.RegisterRefiner("split_pages", splitPages)
	verb.RegisterRefiner("split_rows", splitRows)
}

// chunked builds the output set, stamping chunk provenance metadata.
func chunked(parent *attach.Attachment, by string, pieces []string) *attach.Set {
	set := attach.NewSet()
	for i, piece := range pieces {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		c := attach.New(parent.Path)
		c.Commands = parent.Commands.Clone()
		c.Text = piece
		c.Record("chunked_by", by)
		c.Record("chunk_index", i)
		set.Append(c)
	}
	for _, c := range set.Items {
		c.Record("total_chunks", set.Len())
	}
	return set
}

func byText(name string, split func(string) []string) verb.RefinerFunc {
	return func(_ context.Context, in any) (any, error) {
		a, ok := in.(*attach.Attachment)
		if !ok {
			return in, nil
		}
		return chunked(a, name, split(a.Text)), nil
	}
}

func splitParagraphs(text string) []string {
	return regexp.MustCompile(`\n\s*\n`).Split(text, -1)
}

var sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]+[\s)]*|[^.!?]+$`)

func splitSentences(text string) []string {
	return sentenceRe.FindAllString(text, -1)
}

func splitLines(text string) []string {
	return strings.Split(text, "\n")
}

// splitCharacters cuts the text into fixed-size rune windows; the size
// comes from the split_characters command (default 1000).
func splitCharacters(_ context.Context, in any) (any, error) {
	a, ok := in.(*attach.Attachment)
	if !ok {
		return in, nil
	}
	size := a.Commands.Int("split_characters", 1000)
	if size < 1 {
		return nil, attach.InvalidValue("split_characters", a.Commands.Get("split_characters"), "size must be positive")
	}
	runes := []rune(a.Text)
	var pieces []string
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		pieces = append(pieces, string(runes[start:end]))
	}
	return chunked(a, "characters", pieces), nil
}

// splitCustom splits on a caller-provided separator.
func splitCustom(_ context.Context, in any) (any, error) {
	a, ok := in.(*attach.Attachment)
	if !ok {
		return in, nil
	}
	sep := a.Commands.Get("split_custom")
	if sep == "" {
		return nil, attach.InvalidValue("split_custom", "", "separator required")
	}
	return chunked(a, "custom", strings.Split(a.Text, sep)), nil
}

// splitPages expands a paged payload into one attachment per page or slide.
func splitPages(_ context.Context, in any) (any, error) {
	a, ok := in.(*attach.Attachment)
	if !ok {
		return in, nil
	}
	switch doc := a.Payload.(type) {
	case *load.PDFDoc:
		var pieces []string
		for _, page := range doc.Pages() {
			pieces = append(pieces, fmt.Sprintf("[Page %d]\n%s", page, doc.PageText(page)))
		}
		return chunked(a, "pages", pieces), nil
	case *load.Deck:
		var pieces []string
		for _, n := range doc.SlideNumbers() {
			if slide := doc.Slide(n); slide != nil {
				pieces = append(pieces, fmt.Sprintf("[Slide %d]\n%s", n, strings.Join(slide.Texts, "\n")))
			}
		}
		return chunked(a, "pages", pieces), nil
	default:
		return chunked(a, "pages", splitParagraphs(a.Text)), nil
	}
}

// splitRows expands a tabular payload into one attachment per row, each
// carrying the header for context.
func splitRows(_ context.Context, in any) (any, error) {
	a, ok := in.(*attach.Attachment)
	if !ok {
		return in, nil
	}
	t, ok := a.Payload.(*load.Table)
	if !ok {
		return chunked(a, "rows", splitLines(a.Text)), nil
	}
	header := strings.Join(t.Headers, "\t")
	var pieces []string
	for _, row := range t.Rows {
		pieces = append(pieces, header+"\n"+strings.Join(row, "\t"))
	}
	return chunked(a, "rows", pieces), nil
}
