// CLAUDE:SUMMARY Tree utilities — visible-text collection, rendering, prettify, structural markdown fallback.
package extract

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Title returns the <title> text, or "".
func Title(n *html.Node) string {
	if n.Type == html.ElementNode && n.DataAtom == atom.Title {
		if n.FirstChild != nil {
			return strings.TrimSpace(n.FirstChild.Data)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := Title(c); t != "" {
			return t
		}
	}
	return ""
}

// Text extracts all visible text from a node subtree, skipping script and
// style content, joining fragments with single spaces.
func Text(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			t := strings.TrimSpace(n.Data)
			if t != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(t)
			}
		}
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript:
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// Render serializes a node subtree back to HTML.
func Render(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// Prettify renders a tree with two-space indentation, one tag per line.
func Prettify(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node, int)
	walk = func(n *html.Node, depth int) {
		indent := strings.Repeat("  ", depth)
		switch n.Type {
		case html.TextNode:
			t := strings.TrimSpace(n.Data)
			if t != "" {
				sb.WriteString(indent + t + "\n")
			}
		case html.ElementNode:
			sb.WriteString(indent + "<" + n.Data)
			for _, a := range n.Attr {
				fmt.Fprintf(&sb, " %s=%q", a.Key, a.Val)
			}
			sb.WriteString(">\n")
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c, depth+1)
			}
			sb.WriteString(indent + "</" + n.Data + ">\n")
		default:
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c, depth)
			}
		}
	}
	walk(n, 0)
	return sb.String()
}

// Wrap groups nodes under a new container div so a multi-element selection
// behaves like a single tree.
func Wrap(nodes []*html.Node) *html.Node {
	if len(nodes) == 1 {
		detach(nodes[0])
		return nodes[0]
	}
	container := &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	}
	for _, n := range nodes {
		detach(n)
		container.AppendChild(n)
	}
	return container
}

func detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// Markdown produces a structural markdown rendition of a tree: headings,
// paragraphs, lists, blockquotes, and links. It is the fallback when a real
// HTML-to-markdown conversion is unavailable or fails.
func Markdown(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript:
				return
			case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
				level := int(n.Data[1] - '0')
				if t := Text(n); t != "" {
					sb.WriteString(strings.Repeat("#", level) + " " + t + "\n\n")
				}
				return
			case atom.P:
				if t := Text(n); t != "" {
					sb.WriteString(t + "\n\n")
				}
				return
			case atom.Li:
				if t := Text(n); t != "" {
					sb.WriteString("- " + t + "\n")
				}
				return
			case atom.Blockquote:
				if t := Text(n); t != "" {
					sb.WriteString("> " + t + "\n\n")
				}
				return
			case atom.A:
				t := Text(n)
				href := getAttr(n, "href")
				if t != "" && href != "" {
					fmt.Fprintf(&sb, "[%s](%s) ", t, href)
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}
