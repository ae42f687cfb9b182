// CLAUDE:SUMMARY DOCX loader — word/document.xml StAX walk with paragraph style capture.
package load

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/hazyhaar/annexe/attach"
)

// Paragraph is one paragraph of a Word document with its style name.
type Paragraph struct {
	Style string // e.g. "Heading1", "Normal"
	Text  string
}

// WordDoc is the payload for DOCX inputs. XMLParts keeps the raw archive
// members the xml presenter pretty-prints.
type WordDoc struct {
	Path       string
	Paragraphs []Paragraph
	XMLParts   map[string]string // member name → raw XML
}

// headingNames maps a normalized (lowercased, space-stripped) style name
// prefix to the heading family it belongs to; the trailing digit, if any,
// selects the level within that family.
var headingNames = []string{"heading", "titre", "uberschrift"}

// HeadingLevel extracts the level from a paragraph style name: "Heading 1"
// or "Heading1" → 1 … "Heading6" → 6, "Title" → 1, "Subtitle" → 2. Zero
// means body text. Word styles vary in spacing and accenting across
// locales, so the name is folded before matching.
func (p Paragraph) HeadingLevel() int {
	name := foldStyleName(p.Style)
	switch name {
	case "title":
		return 1
	case "subtitle":
		return 2
	}
	for _, family := range headingNames {
		if !strings.HasPrefix(name, family) {
			continue
		}
		digits := strings.TrimPrefix(name, family)
		if n, ok := singleDigit(digits); ok && n >= 1 && n <= 6 {
			return n
		}
	}
	return 0
}

// foldStyleName lowercases a style name, drops interior spaces, and maps
// the accented variants this corpus of Word templates actually uses (ü) to
// their unaccented equivalent, so "Heading 1", "heading1", and
// "Überschrift1" all normalize the same way.
func foldStyleName(style string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(style) {
		switch r {
		case ' ':
			continue
		case 'ü':
			b.WriteByte('u')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// singleDigit reports whether s is exactly one ASCII digit and returns it.
func singleDigit(s string) (int, bool) {
	if len(s) != 1 || s[0] < '0' || s[0] > '9' {
		return 0, false
	}
	return int(s[0] - '0'), true
}

// docxXMLMembers are the archive members kept for the xml presenter.
var docxXMLMembers = map[string]string{
	"word/document.xml":  "document",
	"word/styles.xml":    "styles",
	"docProps/core.xml":  "core-properties",
}

func loadDocx(_ context.Context, a *attach.Attachment) (any, error) {
	r, err := zip.OpenReader(a.Path)
	if err != nil {
		return nil, fmt.Errorf("load docx %s: %w", a.Path, err)
	}
	defer r.Close()

	doc := &WordDoc{Path: a.Path, XMLParts: make(map[string]string)}
	var docFile *zip.File
	for _, f := range r.File {
		if label, keep := docxXMLMembers[f.Name]; keep {
			if raw, err := readZipMember(f); err == nil {
				doc.XMLParts[label] = raw
			}
		}
		if f.Name == "word/document.xml" {
			docFile = f
		}
	}
	if docFile == nil {
		return nil, fmt.Errorf("load docx %s: word/document.xml not found", a.Path)
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, fmt.Errorf("load docx %s: open document.xml: %w", a.Path, err)
	}
	defer rc.Close()

	doc.Paragraphs, err = walkDocxParagraphs(rc)
	if err != nil {
		return nil, fmt.Errorf("load docx %s: %w", a.Path, err)
	}

	a.SetPayload(doc)
	a.Record("paragraphs", len(doc.Paragraphs))
	return a, nil
}

// walkDocxParagraphs streams through WordprocessingML, collecting paragraph
// text and the pStyle value in force when each paragraph closes.
func walkDocxParagraphs(r io.Reader) ([]Paragraph, error) {
	decoder := xml.NewDecoder(r)
	var paragraphs []Paragraph
	var current strings.Builder
	var style string
	inParagraph := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Local == "p":
				inParagraph = true
				current.Reset()
				style = ""
			case t.Name.Local == "pStyle" && inParagraph:
				for _, attr := range t.Attr {
					if attr.Name.Local == "val" {
						style = attr.Value
					}
				}
			case t.Name.Local == "tab" && inParagraph:
				current.WriteByte('\t')
			case t.Name.Local == "br" && inParagraph:
				current.WriteByte('\n')
			}
		case xml.CharData:
			if inParagraph {
				current.Write(t)
			}
		case xml.EndElement:
			if t.Name.Local == "p" && inParagraph {
				inParagraph = false
				text := strings.TrimSpace(current.String())
				if text == "" {
					continue
				}
				paragraphs = append(paragraphs, Paragraph{Style: style, Text: text})
			}
		}
	}
	return paragraphs, nil
}

func readZipMember(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
