// CLAUDE:SUMMARY Image loader — stdlib plus x/image codecs; HEIC degrades with a readable error.
package load

import (
	"context"
	"fmt"
	"image"
	"os"
	"strings"

	// Codec registration for image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/hazyhaar/annexe/attach"
)

// ImageData is the payload for raster image inputs.
type ImageData struct {
	Img    image.Image
	Format string // decoder name: png, jpeg, gif, webp, bmp, tiff
}

func loadImage(_ context.Context, a *attach.Attachment) (any, error) {
	lower := strings.ToLower(a.Path)
	if strings.HasSuffix(lower, ".heic") || strings.HasSuffix(lower, ".heif") {
		return nil, fmt.Errorf("load image %s: heic codec unavailable", a.Path)
	}

	f, err := os.Open(a.Path)
	if err != nil {
		return nil, fmt.Errorf("load image %s: %w", a.Path, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("load image %s: decode: %w", a.Path, err)
	}

	a.SetPayload(&ImageData{Img: img, Format: format})
	bounds := img.Bounds()
	a.Record("format", format)
	a.Record("size", []int{bounds.Dx(), bounds.Dy()})
	a.Record("mode", fmt.Sprintf("%T", img))
	return a, nil
}
