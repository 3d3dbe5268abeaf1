package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/akolanti/DocQueryAPI/internal/domain/queryModel"
	"github.com/fogleman/gg"
)

const (
	// ContentType of every image Annotate returns.
	ContentType = "image/png"

	boxMargin   = 3
	outlineSize = 3
)

// ErrUnsupportedImage is returned for inputs that are not raster images, PDFs
// in particular. Callers omit the image from the response.
var ErrUnsupportedImage = errors.New("unsupported image format")

// PixelBox is a highlight rectangle in pixel coordinates.
type PixelBox struct {
	Left, Top, Right, Bottom int
	Radius                   int
}

// HighlightBox converts a normalized box to pixels for an image of the given
// size, widened by the margin on every side.
func HighlightBox(box queryModel.BoundingBox, width, height int) PixelBox {
	w, h := float64(width), float64(height)
	p := PixelBox{
		Left:   int(box.Left*w) - boxMargin,
		Top:    int(box.Top*h) - boxMargin,
		Right:  int((box.Left+box.Width)*w) + boxMargin,
		Bottom: int((box.Top+box.Height)*h) + boxMargin,
	}
	p.Radius = max(min(p.Right-p.Left, p.Bottom-p.Top)/10, 0)
	return p
}

// Annotate draws a red rounded outline around the answer location and returns
// a new PNG. A nil box re-encodes the image unchanged.
func Annotate(imageBytes []byte, box *queryModel.BoundingBox) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, ErrUnsupportedImage
		}
		return nil, fmt.Errorf("decode image: %w", err)
	}

	out := img
	if box != nil {
		bounds := img.Bounds()
		p := HighlightBox(*box, bounds.Dx(), bounds.Dy())

		dc := gg.NewContextForImage(img)
		dc.SetRGB(1, 0, 0)
		dc.SetLineWidth(outlineSize)
		dc.DrawRoundedRectangle(float64(p.Left), float64(p.Top), float64(p.Right-p.Left), float64(p.Bottom-p.Top), float64(p.Radius))
		dc.Stroke()
		out = dc.Image()
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
