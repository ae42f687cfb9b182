package refine

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/hazyhaar/annexe/attach"
)

func b64Square(size int, c color.Color) string {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func decodeB64PNG(t *testing.T, entry string) image.Image {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(entry)
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	return img
}

func TestTruncate_RecordsOperation(t *testing.T) {
	// WHAT: Truncation cuts to the budget and records processing metadata.
	// WHY: Truncate is the one sanctioned non-monotonic refiner.
	a := attach.New("x[truncate:10]")
	a.AppendText(strings.Repeat("y", 100))
	out, err := truncateText(context.Background(), a)
	if err != nil {
		t.Fatal(err)
	}
	res := out.(*attach.Attachment)
	if !strings.HasPrefix(res.Text, strings.Repeat("y", 10)) || len(res.Text) > 30 {
		t.Fatalf("text = %q", res.Text)
	}
	proc, ok := res.Metadata["processing"].(map[string]any)
	if !ok || proc["operation"] != "truncate" {
		t.Fatalf("processing = %v", res.Metadata["processing"])
	}
}

func TestTruncate_NoopUnderBudget(t *testing.T) {
	// WHAT: Text under budget is untouched and unrecorded.
	// WHY: Idempotence for small outputs.
	a := attach.New("x[truncate:100]")
	a.AppendText("short")
	out, _ := truncateText(context.Background(), a)
	res := out.(*attach.Attachment)
	if res.Text != "short" || res.Metadata["processing"] != nil {
		t.Fatalf("text = %q meta = %v", res.Text, res.Metadata)
	}
}

func TestAddHeaders(t *testing.T) {
	// WHAT: A path heading is prepended once.
	// WHY: Folded collections need per-source navigation.
	a := attach.New("doc.txt")
	a.AppendText("body")
	out, _ := addHeaders(context.Background(), a)
	res := out.(*attach.Attachment)
	if !strings.HasPrefix(res.Text, "# doc.txt\n\nbody") {
		t.Fatalf("text = %q", res.Text)
	}
	// A second pass is a no-op.
	out, _ = addHeaders(context.Background(), res)
	if strings.Count(out.(*attach.Attachment).Text, "# doc.txt") != 1 {
		t.Fatal("header duplicated")
	}
}

func TestMergeText_Reduces(t *testing.T) {
	// WHAT: merge_text folds a set into one attachment.
	// WHY: It is one of the named reducers.
	a := attach.New("a")
	a.AppendText("one")
	b := attach.New("b")
	b.AppendText("two")
	out, err := mergeText(context.Background(), attach.NewSet(a, b))
	if err != nil {
		t.Fatal(err)
	}
	folded := out.(*attach.Attachment)
	if folded.Text != "one\n\ntwo" {
		t.Fatalf("text = %q", folded.Text)
	}
}

func TestTileImages_FourToGrid(t *testing.T) {
	// WHAT: Four images tile into a single 2×2 composite.
	// WHY: The default grid is the square ceiling of the count.
	set := attach.NewSet()
	for i := 0; i < 4; i++ {
		a := attach.New("p.png")
		a.AppendImage(b64Square(10, color.RGBA{R: uint8(50 * i), A: 255}))
		set.Append(a)
	}
	out, err := tileImages(context.Background(), set)
	if err != nil {
		t.Fatal(err)
	}
	res := out.(*attach.Attachment)
	if len(res.Images) != 1 {
		t.Fatalf("images = %d", len(res.Images))
	}
	if res.Metadata["operation"] != "tile_images" || res.Metadata["grid_size"] != "2x2" {
		t.Fatalf("metadata = %v", res.Metadata)
	}
	if res.Metadata["original_count"] != 4 {
		t.Fatalf("original_count = %v", res.Metadata["original_count"])
	}
	img := decodeB64PNG(t, res.Images[0])
	if b := img.Bounds(); b.Dx() != 20 || b.Dy() != 20 {
		t.Fatalf("composite bounds = %v", b)
	}
}

func TestTileImages_PartialGridKeepsBackground(t *testing.T) {
	// WHAT: Three images in an explicit 2x2 leave the last cell background.
	// WHY: Missing cells must not fail the tile.
	set := attach.NewSet()
	for i := 0; i < 3; i++ {
		a := attach.New("p.png[tile:2x2]")
		a.AppendImage(b64Square(10, color.RGBA{B: 255, A: 255}))
		set.Append(a)
	}
	out, err := tileImages(context.Background(), set)
	if err != nil {
		t.Fatal(err)
	}
	res := out.(*attach.Attachment)
	img := decodeB64PNG(t, res.Images[0])
	if b := img.Bounds(); b.Dx() != 20 || b.Dy() != 20 {
		t.Fatalf("bounds = %v", b)
	}
	// Bottom-right cell stays white.
	r, g, bl, _ := img.At(15, 15).RGBA()
	if r != 0xffff || g != 0xffff || bl != 0xffff {
		t.Fatalf("background cell = %v %v %v", r, g, bl)
	}
}

func TestResizeImages_Halves(t *testing.T) {
	// WHAT: resize_images:50% halves every entry in place.
	// WHY: Cardinality is preserved; only content changes.
	a := attach.New("p.png[resize_images:50%]")
	a.AppendImage(b64Square(20, color.Black))
	a.AppendImage(b64Square(40, color.Black))
	out, err := resizeImages(context.Background(), a)
	if err != nil {
		t.Fatal(err)
	}
	res := out.(*attach.Attachment)
	if len(res.Images) != 2 {
		t.Fatalf("images = %d", len(res.Images))
	}
	if b := decodeB64PNG(t, res.Images[0]).Bounds(); b.Dx() != 10 {
		t.Fatalf("first image = %v", b)
	}
	if b := decodeB64PNG(t, res.Images[1]).Bounds(); b.Dx() != 20 {
		t.Fatalf("second image = %v", b)
	}
}

func TestDecodeEntry_DataURLAndPlaceholder(t *testing.T) {
	// WHAT: Data-URL prefixes are stripped; placeholders are refused.
	// WHY: Both entry forms appear in image buffers.
	entry := "data:image/png;base64," + b64Square(4, color.White)
	if _, err := decodeEntry(entry); err != nil {
		t.Fatal(err)
	}
	if _, err := decodeEntry("whatever_placeholder"); err == nil {
		t.Fatal("placeholder should be refused")
	}
}
