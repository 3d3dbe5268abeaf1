package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/akolanti/DocQueryAPI/internal/domain/queryModel"
)

func whitePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func TestHighlightBox(t *testing.T) {
	tests := []struct {
		name   string
		box    queryModel.BoundingBox
		w, h   int
		expect PixelBox
	}{
		{
			name:   "centered box",
			box:    queryModel.BoundingBox{Left: 0.25, Top: 0.25, Width: 0.5, Height: 0.25},
			w:      400,
			h:      400,
			expect: PixelBox{Left: 97, Top: 97, Right: 303, Bottom: 203, Radius: 10},
		},
		{
			name:   "tenth-of-page box on a 1000px page",
			box:    queryModel.BoundingBox{Left: 0.1, Top: 0.1, Width: 0.2, Height: 0.1},
			w:      1000,
			h:      1000,
			expect: PixelBox{Left: 97, Top: 97, Right: 303, Bottom: 203, Radius: 10},
		},
		{
			name:   "box at origin goes negative",
			box:    queryModel.BoundingBox{Left: 0, Top: 0, Width: 0.1, Height: 0.1},
			w:      100,
			h:      100,
			expect: PixelBox{Left: -3, Top: -3, Right: 13, Bottom: 13, Radius: 1},
		},
		{
			name:   "zero area box",
			box:    queryModel.BoundingBox{Left: 0.5, Top: 0.5},
			w:      10,
			h:      10,
			expect: PixelBox{Left: 2, Top: 2, Right: 8, Bottom: 8, Radius: 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HighlightBox(tt.box, tt.w, tt.h); got != tt.expect {
				t.Errorf("got %+v, want %+v", got, tt.expect)
			}
		})
	}
}

func TestAnnotate_DrawsOutlineAndKeepsSize(t *testing.T) {
	input := whitePNG(t, 200, 100)
	original := bytes.Clone(input)
	box := &queryModel.BoundingBox{Left: 0.25, Top: 0.25, Width: 0.5, Height: 0.5}

	out, err := Annotate(input, box)
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}
	if !bytes.Equal(input, original) {
		t.Error("input buffer was modified")
	}

	img, format, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output not decodable: %v", err)
	}
	if format != "png" {
		t.Errorf("format got %s, want png", format)
	}
	if img.Bounds().Dx() != 200 || img.Bounds().Dy() != 100 {
		t.Errorf("size changed to %v", img.Bounds())
	}

	// left edge of the box at x=47, middle row y=50
	r, g, b, _ := img.At(47, 50).RGBA()
	if r>>8 < 200 || g>>8 > 60 || b>>8 > 60 {
		t.Errorf("expected red outline pixel, got rgb(%d,%d,%d)", r>>8, g>>8, b>>8)
	}
	// centre of the box untouched
	r, g, b, _ = img.At(100, 50).RGBA()
	if r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
		t.Errorf("expected white interior, got rgb(%d,%d,%d)", r>>8, g>>8, b>>8)
	}
}

func TestAnnotate_NilGeometryReencodesAsPNG(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 20, 10))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, nil); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	out, err := Annotate(buf.Bytes(), nil)
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	if err != nil || format != "png" {
		t.Fatalf("expected png, got %s (%v)", format, err)
	}
	if cfg.Width != 20 || cfg.Height != 10 {
		t.Errorf("size got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestAnnotate_RejectsPDF(t *testing.T) {
	_, err := Annotate([]byte("%PDF-1.7\n..."), &queryModel.BoundingBox{Width: 0.1, Height: 0.1})
	if !errors.Is(err, ErrUnsupportedImage) {
		t.Errorf("expected ErrUnsupportedImage, got %v", err)
	}
}
