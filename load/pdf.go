// CLAUDE:SUMMARY PDF loader on pdfcpu — page-aware text extraction and image-stream detection.
package load

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/hazyhaar/annexe/attach"
)

// PDFDoc is the payload for PDF inputs: page count, per-page extracted text,
// and an image-stream flag; the decoded pdfcpu context is not kept. Selected holds the 1-based pages chosen by
// the pages command; nil means every page.
type PDFDoc struct {
	Path      string
	PageCount int
	PageTexts []string // index 0 = page 1
	HasImages bool
	Selected  []int
	Title     string
}

// Pages returns the effective 1-based page selection.
func (d *PDFDoc) Pages() []int {
	if d.Selected != nil {
		return d.Selected
	}
	all := make([]int, d.PageCount)
	for i := range all {
		all[i] = i + 1
	}
	return all
}

// PageText returns the extracted text of a 1-based page, or "".
func (d *PDFDoc) PageText(page int) string {
	if page < 1 || page > len(d.PageTexts) {
		return ""
	}
	return d.PageTexts[page-1]
}

func loadPDF(_ context.Context, a *attach.Attachment) (any, error) {
	f, err := os.Open(a.Path)
	if err != nil {
		return nil, fmt.Errorf("load pdf %s: %w", a.Path, err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return nil, fmt.Errorf("load pdf %s: %w", a.Path, err)
	}

	doc := &PDFDoc{
		Path:      a.Path,
		PageCount: ctx.PageCount,
		PageTexts: make([]string, ctx.PageCount),
		HasImages: pdfHasImageStreams(ctx),
	}
	for page := 1; page <= ctx.PageCount; page++ {
		text := pdfPageText(ctx, page)
		doc.PageTexts[page-1] = text
		if doc.Title == "" {
			for _, line := range strings.Split(text, "\n") {
				if line = strings.TrimSpace(line); line != "" {
					doc.Title = line
					break
				}
			}
		}
	}

	a.SetPayload(doc)
	a.Record("pdf_total_pages", doc.PageCount)
	return a, nil
}

// pdfPageText extracts text operators from one page's content stream.
func pdfPageText(ctx *model.Context, page int) string {
	r, err := pdfcpu.ExtractPageContent(ctx, page)
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return pdfStreamText(data)
}

// pdfHasImageStreams checks whether the document carries image XObjects.
func pdfHasImageStreams(ctx *model.Context) bool {
	if ctx.Optimize != nil {
		for page := 1; page <= ctx.PageCount; page++ {
			if len(pdfcpu.ImageObjNrs(ctx, page)) > 0 {
				return true
			}
		}
	}
	for _, entry := range ctx.Table {
		if entry == nil || entry.Free || entry.Compressed {
			continue
		}
		sd, ok := entry.Object.(types.StreamDict)
		if !ok {
			continue
		}
		if subtype, found := sd.Find("Subtype"); found {
			if name, isName := subtype.(types.Name); isName && name == "Image" {
				return true
			}
		}
	}
	return false
}

// pdfScanner is a forward cursor over a content stream's raw bytes. Unlike a
// line-oriented pass, it tracks literal-string nesting and hex strings
// directly, so a parenthesis or operator split across a content-stream line
// break is not lost.
type pdfScanner struct {
	data []byte
	pos  int
}

// pdfToken is one lexical unit out of a content stream: a decoded string
// operand (kind 's') or a bare word — an operator name or a discarded
// numeric/array operand (kind 'w').
type pdfToken struct {
	kind byte
	text string
}

func (s *pdfScanner) next() (pdfToken, bool) {
	for s.pos < len(s.data) && isPDFSpace(s.data[s.pos]) {
		s.pos++
	}
	if s.pos >= len(s.data) {
		return pdfToken{}, false
	}
	switch c := s.data[s.pos]; {
	case c == '(':
		return pdfToken{kind: 's', text: s.readLiteral()}, true
	case c == '<' && s.peek(1) == '<':
		s.pos += 2
		return pdfToken{kind: 'w', text: "<<"}, true
	case c == '<':
		return pdfToken{kind: 's', text: s.readHex()}, true
	case c == '>' && s.peek(1) == '>':
		s.pos += 2
		return pdfToken{kind: 'w', text: ">>"}, true
	case c == '[' || c == ']' || c == '{' || c == '}':
		s.pos++
		return pdfToken{kind: 'w', text: string(c)}, true
	case c == '/':
		return pdfToken{kind: 'w', text: s.readRun(true)}, true
	default:
		return pdfToken{kind: 'w', text: s.readRun(false)}, true
	}
}

func (s *pdfScanner) peek(offset int) byte {
	if s.pos+offset >= len(s.data) {
		return 0
	}
	return s.data[s.pos+offset]
}

// readLiteral consumes a balanced "(...)" literal, honoring nested
// parentheses and backslash escapes, and decodes PDF string escapes inline.
func (s *pdfScanner) readLiteral() string {
	s.pos++ // opening '('
	depth := 1
	var out strings.Builder
	for s.pos < len(s.data) && depth > 0 {
		c := s.data[s.pos]
		switch c {
		case '\\':
			s.pos++
			if s.pos < len(s.data) {
				out.WriteString(pdfUnescapeOne(&s.pos, s.data))
			}
		case '(':
			depth++
			out.WriteByte(c)
			s.pos++
		case ')':
			depth--
			s.pos++
			if depth > 0 {
				out.WriteByte(c)
			}
		default:
			out.WriteByte(c)
			s.pos++
		}
	}
	return out.String()
}

// readHex consumes a "<...>" hex string and packs nibble pairs into bytes,
// ignoring whitespace inside the angle brackets as the spec permits.
func (s *pdfScanner) readHex() string {
	s.pos++ // opening '<'
	var out strings.Builder
	var hi byte
	haveHi := false
	for s.pos < len(s.data) && s.data[s.pos] != '>' {
		if v, ok := hexDigit(s.data[s.pos]); ok {
			if haveHi {
				out.WriteByte(hi<<4 | v)
				haveHi = false
			} else {
				hi, haveHi = v, true
			}
		}
		s.pos++
	}
	if haveHi {
		out.WriteByte(hi << 4)
	}
	if s.pos < len(s.data) {
		s.pos++ // closing '>'
	}
	return out.String()
}

// readRun consumes a maximal run of non-delimiter bytes: an operator name,
// a numeric operand, or (when nameLeadSlash is set) a /Name, whose leading
// slash is dropped.
func (s *pdfScanner) readRun(nameLeadSlash bool) string {
	if nameLeadSlash {
		s.pos++ // leading '/'
	}
	start := s.pos
	for s.pos < len(s.data) && !isPDFDelim(s.data[s.pos]) {
		s.pos++
	}
	if s.pos == start {
		s.pos++
		return string(s.data[start])
	}
	return string(s.data[start:s.pos])
}

func isPDFSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	}
	return false
}

func isPDFDelim(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return isPDFSpace(c)
}

func hexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// pdfUnescapeOne decodes a single backslash escape at data[*pos], advancing
// pos past it. pos points at the byte following the backslash on entry.
func pdfUnescapeOne(pos *int, data []byte) string {
	c := data[*pos]
	switch c {
	case 'n':
		*pos++
		return "\n"
	case 'r':
		*pos++
		return "\r"
	case 't':
		*pos++
		return "\t"
	case '\\', '(', ')':
		*pos++
		return string(c)
	case '\n':
		*pos++
		return "" // line continuation
	}
	if c < '0' || c > '7' {
		*pos++
		return string(c)
	}
	val := int(c - '0')
	*pos++
	for d := 0; d < 2 && *pos < len(data) && data[*pos] >= '0' && data[*pos] <= '7'; d++ {
		val = val*8 + int(data[*pos]-'0')
		*pos++
	}
	return string(byte(val))
}

// pdfShowOperators are the content-stream operators that emit or space text.
var pdfShowOperators = map[string]bool{
	"Tj": true, "TJ": true, "'": true, "\"": true,
}

// pdfStreamText walks a content stream token by token, collecting string
// operands and flushing them on the operator that consumes them. Operands
// between operators (array brackets, kerning numbers, dict pairs) are
// ignored rather than assumed to fall on their own line.
func pdfStreamText(data []byte) string {
	sc := &pdfScanner{data: data}
	var out strings.Builder
	var pending []string
	for {
		tok, ok := sc.next()
		if !ok {
			break
		}
		if tok.kind == 's' {
			pending = append(pending, tok.text)
			continue
		}
		switch {
		case pdfShowOperators[tok.text]:
			if (tok.text == "'" || tok.text == "\"") && out.Len() > 0 {
				out.WriteByte('\n')
			}
			for _, p := range pending {
				out.WriteString(p)
			}
			pending = pending[:0]
		case tok.text == "Td" || tok.text == "TD":
			if out.Len() > 0 {
				out.WriteByte(' ')
			}
			pending = pending[:0]
		case tok.text == "T*":
			out.WriteByte('\n')
			pending = pending[:0]
		}
	}
	return pdfSquash(out.String())
}

// pdfSquash collapses whitespace runs and drops unprintable runes.
func pdfSquash(text string) string {
	var sb strings.Builder
	space := false
	for _, r := range text {
		switch {
		case r == '\n':
			sb.WriteRune('\n')
			space = true
		case unicode.IsSpace(r):
			if !space && sb.Len() > 0 {
				sb.WriteByte(' ')
				space = true
			}
		case unicode.IsPrint(r):
			sb.WriteRune(r)
			space = false
		}
	}
	return strings.TrimSpace(sb.String())
}
