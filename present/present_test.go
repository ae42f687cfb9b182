package present

import (
	"context"
	"encoding/base64"
	"image"
	"strings"
	"testing"

	"github.com/hazyhaar/annexe/attach"
	"github.com/hazyhaar/annexe/load"
)

func TestMarkdownWord_PromotesHeadings(t *testing.T) {
	// WHAT: Heading2 becomes ### (style level + 1), body stays plain.
	// WHY: The document title keeps # for the path header.
	a := attach.New("d.docx")
	a.SetPayload(&load.WordDoc{Paragraphs: []load.Paragraph{
		{Style: "Heading2", Text: "Methods"},
		{Style: "Normal", Text: "We measured things."},
		{Style: "Heading6", Text: "Deep"},
	}})
	if _, err := markdownWord(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(a.Text, "### Methods") {
		t.Fatalf("text = %q", a.Text)
	}
	if !strings.Contains(a.Text, "We measured things.") {
		t.Fatalf("text = %q", a.Text)
	}
	// Heading6 + 1 clamps to 6.
	if !strings.Contains(a.Text, "###### Deep") || strings.Contains(a.Text, "####### ") {
		t.Fatalf("text = %q", a.Text)
	}
}

func TestMarkdownPDF_PageHeadings(t *testing.T) {
	// WHAT: Each selected page gets a "## Page N" heading.
	// WHY: Page structure must survive into the prompt.
	a := attach.New("d.pdf")
	a.SetPayload(&load.PDFDoc{
		PageCount: 3,
		PageTexts: []string{"one", "two", "three"},
		Selected:  []int{1, 3},
	})
	if _, err := markdownPDF(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(a.Text, "## Page 1") || !strings.Contains(a.Text, "## Page 3") {
		t.Fatalf("text = %q", a.Text)
	}
	if strings.Contains(a.Text, "## Page 2") {
		t.Fatal("unselected page leaked")
	}
}

func TestTextWorkbook_Preview(t *testing.T) {
	// WHAT: Sheets present dimensions plus a 5×5 preview.
	// WHY: Whole spreadsheets would swamp the prompt.
	rows := make([][]string, 8)
	for i := range rows {
		rows[i] = []string{"a", "b", "c", "d", "e", "f", "g"}
	}
	a := attach.New("w.xlsx")
	a.SetPayload(&load.Workbook{Sheets: []load.Sheet{{Name: "Data", Rows: rows}}})
	if _, err := textWorkbook(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(a.Text, "Sheet 1: Data (8 rows × 7 columns)") {
		t.Fatalf("text = %q", a.Text)
	}
	if strings.Count(a.Text, "\n") > 9 {
		t.Fatalf("preview too long:\n%s", a.Text)
	}
	if strings.Contains(a.Text, "f\tg") {
		t.Fatal("preview should clip to 5 columns")
	}
}

func TestMarkdownGrid_EscapesPipes(t *testing.T) {
	// WHAT: Cell pipes are escaped in markdown tables.
	// WHY: Unescaped pipes break table rendering.
	grid := markdownGrid([][]string{{"a|b"}, {"c"}}, 10, 5)
	if !strings.Contains(grid, `a\|b`) {
		t.Fatalf("grid = %q", grid)
	}
}

func TestEncodePNG_ValidBase64(t *testing.T) {
	// WHAT: EncodePNG yields decodable standard base64 with a PNG header.
	// WHY: Adapters forward these payloads verbatim.
	b64, err := EncodePNG(image.NewRGBA(image.Rect(0, 0, 4, 4)))
	if err != nil {
		t.Fatal(err)
	}
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) < 8 || raw[1] != 'P' || raw[2] != 'N' || raw[3] != 'G' {
		t.Fatalf("not a PNG: % x", raw[:8])
	}
}

func TestImagesRaster_Appends(t *testing.T) {
	// WHAT: The images presenter appends exactly one entry per call.
	// WHY: Cardinality is what tile and resize refiners rely on.
	a := attach.New("p.png")
	a.SetPayload(&load.ImageData{Img: image.NewRGBA(image.Rect(0, 0, 2, 2)), Format: "png"})
	if _, err := imagesRaster(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	if len(a.Images) != 1 {
		t.Fatalf("images = %d", len(a.Images))
	}
}

func TestLimitLines(t *testing.T) {
	// WHAT: Overlong XML is clipped with a remainder note.
	// WHY: Raw office XML is unbounded.
	long := strings.Repeat("line\n", 500)
	out := limitLines(long, 10)
	if strings.Count(out, "line") > 11 {
		t.Fatalf("not limited: %d lines", strings.Count(out, "line"))
	}
	if !strings.Contains(out, "more lines") {
		t.Fatal("missing remainder note")
	}
}

func TestStructureDir_Heading(t *testing.T) {
	// WHAT: The structure presenter opens with "# Directory Structure:".
	// WHY: Consumers pattern-match on that heading.
	a := attach.New(".")
	a.SetPayload(&load.DirStructure{
		Type: "directory",
		Path: "/tmp/x",
		Tree: &load.DirNode{Name: "x", Type: "directory", Children: []*load.DirNode{
			{Name: "main.go", Type: "file"},
		}},
	})
	if _, err := structureDir(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(a.Text, "# Directory Structure:") {
		t.Fatalf("text = %q", a.Text)
	}
	if !strings.Contains(a.Text, "main.go") {
		t.Fatalf("text = %q", a.Text)
	}
}

func TestFilesDir_MarksExpansion(t *testing.T) {
	// WHAT: files mode records the directory_map marker.
	// WHY: The facade expands marked attachments into per-file ones.
	a := attach.New(".")
	a.SetPayload(&load.DirStructure{Type: "directory", Path: "/tmp/x", Files: []string{"a.go", "b.go"}})
	if _, err := filesDir(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	if marked, _ := a.Metadata["directory_map"].(bool); !marked {
		t.Fatalf("metadata = %v", a.Metadata)
	}
	if a.Metadata["file_count"] != 2 {
		t.Fatalf("file_count = %v", a.Metadata["file_count"])
	}
}

func TestMetadataAny_YAMLBlock(t *testing.T) {
	// WHAT: The fallback metadata presenter appends a YAML block.
	// WHY: Diagnostics should be machine-parseable.
	a := attach.New("x")
	a.Record("status_code", 200)
	if _, err := metadataAny(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(a.Text, "```yaml") || !strings.Contains(a.Text, "status_code: 200") {
		t.Fatalf("text = %q", a.Text)
	}
}
