// CLAUDE:SUMMARY Structural XML presenters — raw office members and prettified HTML, line-limited.
package present

import (
	"context"
	"fmt"
	"strings"

	"github.com/hazyhaar/annexe/attach"
	"github.com/hazyhaar/annexe/extract"
	"github.com/hazyhaar/annexe/load"
)

// xmlLineLimit caps how much raw XML a single member contributes.
const xmlLineLimit = 200

func limitLines(s string, max int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= max {
		return s
	}
	return strings.Join(lines[:max], "\n") + fmt.Sprintf("\n… (%d more lines)\n", len(lines)-max)
}

func xmlWord(_ context.Context, a *attach.Attachment) (*attach.Attachment, error) {
	doc := a.Payload.(*load.WordDoc)
	var sb strings.Builder
	for _, label := range []string{"document", "styles", "core-properties"} {
		raw, ok := doc.XMLParts[label]
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "## %s\n\n```xml\n%s\n```\n\n", label, limitLines(raw, xmlLineLimit))
	}
	a.AppendText(sb.String())
	return a, nil
}

func xmlDeck(_ context.Context, a *attach.Attachment) (*attach.Attachment, error) {
	deck := a.Payload.(*load.Deck)
	var sb strings.Builder
	if deck.PresentationXML != "" {
		fmt.Fprintf(&sb, "## presentation.xml\n\n```xml\n%s\n```\n\n", limitLines(deck.PresentationXML, xmlLineLimit))
	}
	for _, n := range deck.SlideNumbers() {
		slide := deck.Slide(n)
		if slide == nil {
			continue
		}
		fmt.Fprintf(&sb, "## slide%d.xml\n\n```xml\n%s\n```\n\n", n, limitLines(slide.XML, xmlLineLimit))
	}
	a.AppendText(sb.String())
	return a, nil
}

func xmlHTML(_ context.Context, a *attach.Attachment) (*attach.Attachment, error) {
	tree := a.Payload.(*load.HTMLTree)
	a.AppendText("```html\n" + limitLines(extract.Prettify(tree.Root), xmlLineLimit*2) + "\n```\n")
	return a, nil
}
