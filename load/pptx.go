// CLAUDE:SUMMARY PPTX loader — per-slide shape text from ppt/slides/slideN.xml.
package load

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/hazyhaar/annexe/attach"
)

// Slide is one slide of a deck: its 1-based number, the text of each shape,
// and the raw slide XML.
type Slide struct {
	Number int
	Texts  []string
	XML    string
}

// Deck is the payload for PPTX inputs. Selected holds the 1-based slides
// chosen by the pages command; nil means all.
type Deck struct {
	Path            string
	Slides          []Slide
	PresentationXML string
	Selected        []int
}

// SlideNumbers returns the effective 1-based slide selection.
func (d *Deck) SlideNumbers() []int {
	if d.Selected != nil {
		return d.Selected
	}
	all := make([]int, len(d.Slides))
	for i := range all {
		all[i] = i + 1
	}
	return all
}

// Slide returns the slide with the given 1-based number, or nil.
func (d *Deck) Slide(number int) *Slide {
	if number < 1 || number > len(d.Slides) {
		return nil
	}
	return &d.Slides[number-1]
}

var slideMemberRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

func loadPptx(_ context.Context, a *attach.Attachment) (any, error) {
	r, err := zip.OpenReader(a.Path)
	if err != nil {
		return nil, fmt.Errorf("load pptx %s: %w", a.Path, err)
	}
	defer r.Close()

	deck := &Deck{Path: a.Path}
	slidesByNumber := map[int]Slide{}
	for _, f := range r.File {
		if f.Name == "ppt/presentation.xml" {
			if raw, err := readZipMember(f); err == nil {
				deck.PresentationXML = raw
			}
			continue
		}
		m := slideMemberRe.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		num, _ := strconv.Atoi(m[1])
		raw, err := readZipMember(f)
		if err != nil {
			continue
		}
		slidesByNumber[num] = Slide{
			Number: num,
			Texts:  slideShapeTexts(raw),
			XML:    raw,
		}
	}
	if len(slidesByNumber) == 0 {
		return nil, fmt.Errorf("load pptx %s: no slides found", a.Path)
	}

	numbers := make([]int, 0, len(slidesByNumber))
	for n := range slidesByNumber {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	for _, n := range numbers {
		deck.Slides = append(deck.Slides, slidesByNumber[n])
	}

	a.SetPayload(deck)
	a.Record("slides", len(deck.Slides))
	return a, nil
}

// slideShapeTexts pulls the <a:t> runs out of DrawingML, one entry per
// paragraph so shape boundaries survive.
func slideShapeTexts(raw string) []string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var texts []string
	var current strings.Builder
	inRun := false

	flush := func() {
		if t := strings.TrimSpace(current.String()); t != "" {
			texts = append(texts, t)
		}
		current.Reset()
	}

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inRun = true
			}
		case xml.CharData:
			if inRun {
				current.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inRun = false
			case "p":
				flush()
			}
		}
	}
	flush()
	return texts
}
