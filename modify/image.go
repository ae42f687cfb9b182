// CLAUDE:SUMMARY Image modifiers — strict crop box, clockwise rotation with canvas expansion, proportional resize.
package modify

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"golang.org/x/image/draw"

	"github.com/hazyhaar/annexe/attach"
	"github.com/hazyhaar/annexe/load"
)

func cropImage(_ context.Context, a *attach.Attachment) (*attach.Attachment, error) {
	spec := a.Commands.Get("crop")
	if spec == "" {
		return a, nil
	}
	var x1, y1, x2, y2 int
	if _, err := fmt.Sscanf(spec, "%d,%d,%d,%d", &x1, &y1, &x2, &y2); err != nil {
		return nil, attach.InvalidValue("crop", spec, "want x1,y1,x2,y2")
	}
	if x2 <= x1 || y2 <= y1 {
		return nil, attach.InvalidValue("crop", spec, "box must have positive area")
	}

	data := a.Payload.(*load.ImageData)
	bounds := data.Img.Bounds()
	box := image.Rect(x1, y1, x2, y2).Intersect(bounds)
	if box.Empty() {
		return nil, attach.InvalidValue("crop", spec, "box outside image")
	}

	out := image.NewRGBA(image.Rect(0, 0, box.Dx(), box.Dy()))
	draw.Draw(out, out.Bounds(), data.Img, box.Min, draw.Src)
	data.Img = out
	a.Record("cropped_to", []int{box.Dx(), box.Dy()})
	return a, nil
}

func rotateImage(_ context.Context, a *attach.Attachment) (*attach.Attachment, error) {
	spec := a.Commands.Get("rotate")
	if spec == "" {
		return a, nil
	}
	var deg float64
	if _, err := fmt.Sscanf(spec, "%g", &deg); err != nil {
		return nil, attach.InvalidValue("rotate", spec, "want degrees")
	}
	data := a.Payload.(*load.ImageData)
	data.Img = Rotate(data.Img, deg)
	a.Record("rotated_degrees", deg)
	return a, nil
}

func resizeImage(_ context.Context, a *attach.Attachment) (*attach.Attachment, error) {
	spec := a.Commands.ResizeSpec()
	if spec == "" {
		return a, nil
	}
	data := a.Payload.(*load.ImageData)
	out, err := Resize(data.Img, spec)
	if err != nil {
		return nil, err
	}
	data.Img = out
	b := out.Bounds()
	a.Record("resized_to", []int{b.Dx(), b.Dy()})
	return a, nil
}

// Resize scales an image per a resize spec: "N%" keeps proportions, "WxH"
// forces dimensions, a bare "W" keeps the aspect ratio. Results clamp to
// 1×1 minimum.
func Resize(img image.Image, spec string) (image.Image, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	var newW, newH int

	spec = strings.TrimSpace(spec)
	switch {
	case strings.HasSuffix(spec, "%"):
		var pct float64
		if _, err := fmt.Sscanf(strings.TrimSuffix(spec, "%"), "%g", &pct); err != nil || pct < 0 {
			return nil, attach.InvalidValue("resize", spec, "bad percentage")
		}
		newW = int(float64(w) * pct / 100)
		newH = int(float64(h) * pct / 100)
	case strings.ContainsRune(spec, 'x'):
		if _, err := fmt.Sscanf(spec, "%dx%d", &newW, &newH); err != nil {
			return nil, attach.InvalidValue("resize", spec, "want WxH")
		}
	default:
		if _, err := fmt.Sscanf(spec, "%d", &newW); err != nil || newW < 0 {
			return nil, attach.InvalidValue("resize", spec, "want width")
		}
		newH = int(float64(newW) * float64(h) / float64(w))
	}

	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}
	out := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(out, out.Bounds(), img, b, draw.Over, nil)
	return out, nil
}

// Rotate turns an image clockwise by deg degrees, expanding the canvas to
// hold the rotated bounds. Sampling is bilinear; uncovered corners stay
// transparent.
func Rotate(img image.Image, deg float64) image.Image {
	rad := deg * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)

	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	// The epsilon absorbs float residue (cos 90° is ~6e-17, not 0) so quarter
	// turns swap the dimensions exactly instead of gaining a pixel.
	newW := int(math.Ceil(math.Abs(w*cos) + math.Abs(h*sin) - 1e-9))
	newH := int(math.Ceil(math.Abs(w*sin) + math.Abs(h*cos) - 1e-9))

	out := image.NewRGBA(image.Rect(0, 0, newW, newH))
	cx, cy := w/2, h/2
	ncx, ncy := float64(newW)/2, float64(newH)/2

	for y := 0; y < newH; y++ {
		for x := 0; x < newW; x++ {
			// Inverse-map the destination pixel into source space.
			dx, dy := float64(x)+0.5-ncx, float64(y)+0.5-ncy
			sx := dx*cos + dy*sin + cx
			sy := -dx*sin + dy*cos + cy
			if sx < 0 || sy < 0 || sx >= w || sy >= h {
				continue
			}
			out.Set(x, y, bilinear(img, sx+float64(b.Min.X), sy+float64(b.Min.Y)))
		}
	}
	return out
}

func bilinear(img image.Image, x, y float64) color.Color {
	b := img.Bounds()
	x0, y0 := int(math.Floor(x)), int(math.Floor(y))
	x1, y1 := x0+1, y0+1
	fx, fy := x-float64(x0), y-float64(y0)

	clampPt := func(px, py int) (int, int) {
		if px < b.Min.X {
			px = b.Min.X
		}
		if px >= b.Max.X {
			px = b.Max.X - 1
		}
		if py < b.Min.Y {
			py = b.Min.Y
		}
		if py >= b.Max.Y {
			py = b.Max.Y - 1
		}
		return px, py
	}

	mix := func(c0, c1 uint32, f float64) float64 {
		return float64(c0)*(1-f) + float64(c1)*f
	}

	px, py := clampPt(x0, y0)
	r00, g00, b00, a00 := img.At(px, py).RGBA()
	px, py = clampPt(x1, y0)
	r10, g10, b10, a10 := img.At(px, py).RGBA()
	px, py = clampPt(x0, y1)
	r01, g01, b01, a01 := img.At(px, py).RGBA()
	px, py = clampPt(x1, y1)
	r11, g11, b11, a11 := img.At(px, py).RGBA()

	blend := func(c00, c10, c01, c11 uint32) uint16 {
		top := mix(c00, c10, fx)
		bot := mix(c01, c11, fx)
		return uint16(top*(1-fy) + bot*fy)
	}

	return color.RGBA64{
		R: blend(r00, r10, r01, r11),
		G: blend(g00, g10, g01, g11),
		B: blend(b00, b10, b01, b11),
		A: blend(a00, a10, a01, a11),
	}
}
