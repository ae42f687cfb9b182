// CLAUDE:SUMMARY Image refiners — grid tiling into one composite, in-place base64 resizing.
package refine

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	// PNG decoding for re-encoded buffer entries.
	_ "image/png"

	"golang.org/x/image/draw"

	"github.com/hazyhaar/annexe/attach"
	"github.com/hazyhaar/annexe/modify"
	"github.com/hazyhaar/annexe/present"
)

// decodeEntry strips any data-URL prefix and decodes a base64 PNG entry.
func decodeEntry(entry string) (image.Image, error) {
	if strings.HasSuffix(entry, "_placeholder") {
		return nil, fmt.Errorf("placeholder entry")
	}
	if i := strings.Index(entry, "base64,"); i >= 0 {
		entry = entry[i+len("base64,"):]
	}
	raw, err := base64.StdEncoding.DecodeString(entry)
	if err != nil {
		return nil, fmt.Errorf("decode image entry: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image entry: %w", err)
	}
	return img, nil
}

// parseGrid reads a tile spec: "NxM", or a single "N" meaning a square
// N×N grid. Zero values mean "derive from the image count".
func parseGrid(spec string) (cols, rows int) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return 0, 0
	}
	if strings.ContainsRune(spec, 'x') {
		if _, err := fmt.Sscanf(spec, "%dx%d", &cols, &rows); err != nil {
			return 0, 0
		}
		return cols, rows
	}
	var n int
	if _, err := fmt.Sscanf(spec, "%d", &n); err != nil || n < 1 {
		return 0, 0
	}
	return n, n
}

// tileImages composes every image of the input into one grid image. Fed a
// set it reduces to a single folded attachment carrying the composite;
// missing cells keep the background.
func tileImages(_ context.Context, in any) (any, error) {
	var a *attach.Attachment
	switch t := in.(type) {
	case *attach.Attachment:
		a = t
	case *attach.Set:
		a = t.Fold()
	default:
		return in, nil
	}

	var imgs []image.Image
	for _, entry := range a.Images {
		img, err := decodeEntry(entry)
		if err != nil {
			continue
		}
		imgs = append(imgs, img)
	}
	if len(imgs) == 0 {
		return a, nil
	}

	cols, rows := parseGrid(a.Commands.Get("tile"))
	if cols == 0 || rows == 0 {
		cols = int(math.Ceil(math.Sqrt(float64(len(imgs)))))
		rows = int(math.Ceil(float64(len(imgs)) / float64(cols)))
	}

	// Cell size: the largest member bounds, so nothing is downscaled.
	var cellW, cellH int
	for _, img := range imgs {
		b := img.Bounds()
		if b.Dx() > cellW {
			cellW = b.Dx()
		}
		if b.Dy() > cellH {
			cellH = b.Dy()
		}
	}

	canvas := image.NewRGBA(image.Rect(0, 0, cellW*cols, cellH*rows))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	for i, img := range imgs {
		if i >= cols*rows {
			break
		}
		cellX := (i % cols) * cellW
		cellY := (i / cols) * cellH
		b := img.Bounds()
		offset := image.Pt(cellX+(cellW-b.Dx())/2, cellY+(cellH-b.Dy())/2)
		draw.Draw(canvas, image.Rectangle{Min: offset, Max: offset.Add(b.Size())}, img, b.Min, draw.Over)
	}

	b64, err := present.EncodePNG(canvas)
	if err != nil {
		return nil, err
	}
	original := len(a.Images)
	a.Images = []string{b64}
	a.Record("operation", "tile_images")
	a.Record("grid_size", fmt.Sprintf("%dx%d", cols, rows))
	a.Record("original_count", original)
	a.Record("tiled_dimensions", []int{cellW * cols, cellH * rows})
	return a, nil
}

// resizeImages rescales every image entry in place per the resize_images /
// resize command. Cardinality is preserved.
func resizeImages(_ context.Context, in any) (any, error) {
	a, ok := in.(*attach.Attachment)
	if !ok {
		return in, nil
	}
	spec := a.Commands.ResizeSpec()
	if spec == "" {
		return a, nil
	}
	resized := 0
	for i, entry := range a.Images {
		img, err := decodeEntry(entry)
		if err != nil {
			continue
		}
		out, err := modify.Resize(img, spec)
		if err != nil {
			return nil, err
		}
		b64, err := present.EncodePNG(out)
		if err != nil {
			continue
		}
		a.Images[i] = b64
		resized++
	}
	if resized > 0 {
		a.Record("images_resized", resized)
	}
	return a, nil
}
