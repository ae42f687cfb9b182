package load

import (
	"archive/zip"
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/hazyhaar/annexe/attach"
)

// writeZip builds a zip fixture from member name → content.
func writeZip(t *testing.T, path string, members map[string][]byte) {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range members {
		f, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.Write(content); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}
}

func pngBytes(t *testing.T, size int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, size, size))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestLoadText(t *testing.T) {
	// WHAT: A plain file becomes a TextBlob with file_size metadata.
	// WHY: Text is the chain's broadest matcher.
	path := filepath.Join(t.TempDir(), "note.txt")
	if err := os.WriteFile(path, []byte("hello world"), 0o600); err != nil {
		t.Fatal(err)
	}
	a := attach.New(path)
	if _, err := loadText(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	blob := a.Payload.(*TextBlob)
	if blob.Content != "hello world" || a.Metadata["file_size"] != 11 {
		t.Fatalf("payload = %+v meta = %v", blob, a.Metadata)
	}
}

func TestMatchTextFile_RejectsBinary(t *testing.T) {
	// WHAT: A NUL byte in the first kilobyte declines the text loader.
	// WHY: Binary garbage must fall through to the error path.
	path := filepath.Join(t.TempDir(), "blob.bin")
	if err := os.WriteFile(path, []byte("ab\x00cd"), 0o600); err != nil {
		t.Fatal(err)
	}
	if matchTextFile(attach.New(path)) {
		t.Fatal("binary file should not match")
	}
}

func TestLoadCSV(t *testing.T) {
	// WHAT: First record becomes headers; the rest become rows.
	// WHY: The tabular payload drives select/limit/markdown.
	path := filepath.Join(t.TempDir(), "d.csv")
	if err := os.WriteFile(path, []byte("name,age\nada,36\nalan,41\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	a := attach.New(path)
	if _, err := loadCSV(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	tab := a.Payload.(*Table)
	if len(tab.Headers) != 2 || len(tab.Rows) != 2 || tab.Rows[1][0] != "alan" {
		t.Fatalf("table = %+v", tab)
	}
}

const docxDocument = `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
 <w:body>
  <w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Intro</w:t></w:r></w:p>
  <w:p><w:r><w:t>Some body text.</w:t></w:r></w:p>
  <w:p><w:r><w:t></w:t></w:r></w:p>
 </w:body>
</w:document>`

func TestLoadDocx(t *testing.T) {
	// WHAT: Paragraphs come back with style names; empty ones are dropped.
	// WHY: Style capture is what markdown promotion feeds on.
	path := filepath.Join(t.TempDir(), "d.docx")
	writeZip(t, path, map[string][]byte{
		"word/document.xml": []byte(docxDocument),
		"word/styles.xml":   []byte("<styles/>"),
	})
	a := attach.New(path)
	if _, err := loadDocx(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	doc := a.Payload.(*WordDoc)
	if len(doc.Paragraphs) != 2 {
		t.Fatalf("paragraphs = %+v", doc.Paragraphs)
	}
	if doc.Paragraphs[0].Style != "Heading1" || doc.Paragraphs[0].HeadingLevel() != 1 {
		t.Fatalf("first = %+v", doc.Paragraphs[0])
	}
	if doc.XMLParts["styles"] != "<styles/>" {
		t.Fatalf("xml parts = %v", doc.XMLParts)
	}
}

const slideXML = `<?xml version="1.0"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
 <p:txBody><a:p><a:r><a:t>Title </a:t></a:r><a:r><a:t>slide</a:t></a:r></a:p><a:p><a:r><a:t>Bullet</a:t></a:r></a:p></p:txBody>
</p:sld>`

func TestLoadPptx(t *testing.T) {
	// WHAT: Slides sort numerically and keep per-paragraph shape text.
	// WHY: slide10 must not sort before slide2.
	path := filepath.Join(t.TempDir(), "d.pptx")
	writeZip(t, path, map[string][]byte{
		"ppt/presentation.xml":   []byte("<p/>"),
		"ppt/slides/slide2.xml":  []byte(slideXML),
		"ppt/slides/slide10.xml": []byte(slideXML),
		"ppt/slides/slide1.xml":  []byte(slideXML),
	})
	a := attach.New(path)
	if _, err := loadPptx(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	deck := a.Payload.(*Deck)
	if len(deck.Slides) != 3 {
		t.Fatalf("slides = %d", len(deck.Slides))
	}
	if deck.Slides[2].Number != 10 {
		t.Fatalf("order = %v %v %v", deck.Slides[0].Number, deck.Slides[1].Number, deck.Slides[2].Number)
	}
	if len(deck.Slides[0].Texts) != 2 || deck.Slides[0].Texts[0] != "Title slide" {
		t.Fatalf("texts = %v", deck.Slides[0].Texts)
	}
}

const sharedStringsXML = `<?xml version="1.0"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><si><t>name</t></si><si><t>ada</t></si></sst>`

const sheetXML = `<?xml version="1.0"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
 <sheetData>
  <row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1"><v>42</v></c></row>
  <row r="2"><c r="A2" t="s"><v>1</v></c><c r="C2"><v>7</v></c></row>
 </sheetData>
</worksheet>`

func TestLoadXlsx(t *testing.T) {
	// WHAT: Shared strings resolve and sparse cells pad into a dense grid.
	// WHY: Cell references skip columns; previews need alignment.
	path := filepath.Join(t.TempDir(), "d.xlsx")
	writeZip(t, path, map[string][]byte{
		"xl/workbook.xml":          []byte(`<workbook xmlns="x"><sheets><sheet name="People" sheetId="1"/></sheets></workbook>`),
		"xl/sharedStrings.xml":     []byte(sharedStringsXML),
		"xl/worksheets/sheet1.xml": []byte(sheetXML),
	})
	a := attach.New(path)
	if _, err := loadXlsx(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	wb := a.Payload.(*Workbook)
	if len(wb.Sheets) != 1 || wb.Sheets[0].Name != "People" {
		t.Fatalf("sheets = %+v", wb.Sheets)
	}
	rows := wb.Sheets[0].Rows
	if rows[0][0] != "name" || rows[0][1] != "42" {
		t.Fatalf("row0 = %v", rows[0])
	}
	// C2 lands at index 2, with B2 padded empty.
	if rows[1][0] != "ada" || rows[1][1] != "" || rows[1][2] != "7" {
		t.Fatalf("row1 = %v", rows[1])
	}
}

func TestLoadArchive_ExpandsImages(t *testing.T) {
	// WHAT: A zip of images becomes a Set with inherited commands.
	// WHY: Archive expansion drives the vectorized pipelines.
	path := filepath.Join(t.TempDir(), "pics.zip")
	writeZip(t, path, map[string][]byte{
		"a.png":     pngBytes(t, 8),
		"b.png":     pngBytes(t, 8),
		"notes.txt": []byte("skip me"),
	})
	a := attach.New(path + "[resize_images:50%]")
	out, err := loadArchive(context.Background(), a)
	if err != nil {
		t.Fatal(err)
	}
	set := out.(*attach.Set)
	if set.Len() != 2 {
		t.Fatalf("len = %d", set.Len())
	}
	for _, item := range set.Items {
		if item.Commands["resize_images"] != "50%" {
			t.Fatalf("commands = %v", item.Commands)
		}
		if from, _ := item.Metadata["from_zip"].(bool); !from {
			t.Fatalf("metadata = %v", item.Metadata)
		}
		if _, ok := item.Payload.(*ImageData); !ok {
			t.Fatalf("payload = %T", item.Payload)
		}
	}
}

func TestLoadImage_HeicDegrades(t *testing.T) {
	// WHAT: HEIC inputs fail with a readable codec message.
	// WHY: There is no Go HEIC decoder; the error must say so.
	a := attach.New("photo.heic")
	if _, err := loadImage(context.Background(), a); err == nil {
		t.Fatal("expected heic error")
	}
}
