// CLAUDE:SUMMARY CSS selector engine over x/net/html trees — subset grammar, descendant combinator.
// Package extract implements CSS selection and text extraction over parsed
// HTML trees. It backs the select command and the webpage presenters.
package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// Select returns all nodes matching a CSS selector. Supported grammar:
//   - tag: "article", "div"
//   - .class: ".content" (chainable: ".a.b")
//   - #id: "#main-content"
//   - tag.class, tag#id, in any order
//   - tag[attr], tag[attr=val]
//   - descendant combinator: "article p"
//   - selector groups: "h1, h2"
func Select(doc *html.Node, selector string) []*html.Node {
	var matches []*html.Node
	for _, group := range strings.Split(selector, ",") {
		matches = append(matches, selectOne(doc, strings.TrimSpace(group))...)
	}
	return matches
}

func selectOne(doc *html.Node, selector string) []*html.Node {
	parts := strings.Fields(selector)
	if len(parts) == 0 {
		return nil
	}
	matches := matchSimple(doc, parts[0])
	for _, part := range parts[1:] {
		var next []*html.Node
		for _, parent := range matches {
			next = append(next, matchSimple(parent, part)...)
		}
		matches = next
	}
	return matches
}

// nodeTest is one compiled clause of a simple selector: tag name, a single
// class, an id, or an attribute check. A selector matches a node when every
// clause passes.
type nodeTest func(*html.Node) bool

// compileSimple reads a selector segment ("div.card#x[data-y=1]") left to
// right, splitting on the special characters, and returns one predicate per
// clause. Unlike a fixed tag/id/class/attr struct, clauses accumulate in
// whatever order they appear and repeat freely (".a.b" requires both).
func compileSimple(sel string) []nodeTest {
	var tests []nodeTest
	i := 0
	for i < len(sel) {
		switch sel[i] {
		case '.':
			j := scanUntilSpecial(sel, i+1)
			class := sel[i+1 : j]
			tests = append(tests, classTest(class))
			i = j
		case '#':
			j := scanUntilSpecial(sel, i+1)
			id := sel[i+1 : j]
			tests = append(tests, attrEqualsTest("id", id))
			i = j
		case '[':
			j := strings.IndexByte(sel[i:], ']')
			if j < 0 {
				i = len(sel)
				break
			}
			tests = append(tests, attrClauseTest(sel[i+1:i+j]))
			i += j + 1
		default:
			j := scanUntilSpecial(sel, i)
			if tag := sel[i:j]; tag != "" {
				tests = append(tests, tagTest(tag))
			}
			i = j
		}
	}
	return tests
}

// scanUntilSpecial returns the index of the next '.', '#', or '[' at or
// after start, or len(sel) if none remain.
func scanUntilSpecial(sel string, start int) int {
	for k := start; k < len(sel); k++ {
		switch sel[k] {
		case '.', '#', '[':
			return k
		}
	}
	return len(sel)
}

func tagTest(tag string) nodeTest {
	return func(n *html.Node) bool { return n.Data == tag }
}

func classTest(class string) nodeTest {
	return func(n *html.Node) bool {
		for _, c := range strings.Fields(getAttr(n, "class")) {
			if c == class {
				return true
			}
		}
		return false
	}
}

func attrEqualsTest(key, val string) nodeTest {
	return func(n *html.Node) bool { return getAttr(n, key) == val }
}

// attrClauseTest compiles one "attr" or "attr=val" bracket body.
func attrClauseTest(clause string) nodeTest {
	if eq := strings.IndexByte(clause, '='); eq >= 0 {
		key := clause[:eq]
		val := strings.Trim(clause[eq+1:], `"'`)
		return attrEqualsTest(key, val)
	}
	key := clause
	return func(n *html.Node) bool { return hasAttr(n, key) }
}

// matchSimple finds all element nodes under root satisfying every clause of
// a single (non-descendant) selector part.
func matchSimple(root *html.Node, sel string) []*html.Node {
	tests := compileSimple(sel)
	var results []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && passesAll(n, tests) {
			results = append(results, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return results
}

func passesAll(n *html.Node, tests []nodeTest) bool {
	for _, t := range tests {
		if !t(n) {
			return false
		}
	}
	return true
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return true
		}
	}
	return false
}
