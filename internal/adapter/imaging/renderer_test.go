package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"memebot/internal/domain"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func newTestRenderer(t *testing.T, opts Options) *Renderer {
	t.Helper()
	fonts, err := NewFontSet("")
	if err != nil {
		t.Fatalf("NewFontSet: %v", err)
	}
	return NewRenderer(fonts, opts)
}

func decodeJPEG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a jpeg: %v", err)
	}
	return img
}

func darkPixels(img image.Image, r image.Rectangle) int {
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			if g.Y < 50 {
				n++
			}
		}
	}
	return n
}

func TestRenderWithoutCaptionsKeepsSize(t *testing.T) {
	r := newTestRenderer(t, Options{})
	src := encodePNG(t, solid(120, 80, red))

	out, err := r.Render(src, domain.DefaultFormatting())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	img := decodeJPEG(t, out)
	if b := img.Bounds(); b.Dx() != 120 || b.Dy() != 80 {
		t.Fatalf("expected 120x80, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestRenderDrawsOutlinedCaptionInBand(t *testing.T) {
	r := newTestRenderer(t, Options{})
	src := encodePNG(t, solid(300, 100, red))

	f := domain.DefaultFormatting()
	if err := f.SetTopText("HELLO"); err != nil {
		t.Fatal(err)
	}
	ratio := 1.0
	if err := f.AddWhitespace(domain.WhitespaceTop, &ratio); err != nil {
		t.Fatal(err)
	}

	out, err := r.Render(src, f)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	img := decodeJPEG(t, out)
	if b := img.Bounds(); b.Dx() != 300 || b.Dy() != 200 {
		t.Fatalf("expected 300x200, got %dx%d", b.Dx(), b.Dy())
	}
	if n := darkPixels(img, image.Rect(0, 0, 300, 100)); n == 0 {
		t.Fatalf("expected black outline pixels in the white band")
	}
}

func TestRenderWithoutOutlineLeavesBandLight(t *testing.T) {
	r := newTestRenderer(t, Options{})
	src := encodePNG(t, solid(300, 100, red))

	f := domain.DefaultFormatting()
	_ = f.SetTopText("HELLO")
	_ = f.SetOutlineColor(domain.OutlineNone)
	ratio := 1.0
	_ = f.AddWhitespace(domain.WhitespaceTop, &ratio)

	out, err := r.Render(src, f)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	img := decodeJPEG(t, out)
	if n := darkPixels(img, image.Rect(0, 0, 300, 100)); n != 0 {
		t.Fatalf("expected white text on white band to stay light, got %d dark pixels", n)
	}
}

func TestRenderScalesDownToMaxDimension(t *testing.T) {
	r := newTestRenderer(t, Options{MaxDimension: 100})
	src := encodePNG(t, solid(400, 200, red))

	out, err := r.Render(src, domain.DefaultFormatting())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if b := decodeJPEG(t, out).Bounds(); b.Dx() != 100 || b.Dy() != 50 {
		t.Fatalf("expected 100x50, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestRenderRejectsGarbage(t *testing.T) {
	r := newTestRenderer(t, Options{})
	_, err := r.Render([]byte("not an image"), domain.DefaultFormatting())
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestProbe(t *testing.T) {
	r := newTestRenderer(t, Options{})
	cfg, format, err := r.Probe(encodePNG(t, solid(30, 10, red)))
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if format != "png" || cfg.Width != 30 || cfg.Height != 10 {
		t.Fatalf("unexpected probe result %s %dx%d", format, cfg.Width, cfg.Height)
	}
	if _, _, err := r.Probe([]byte("nope")); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestFontSetBuiltins(t *testing.T) {
	fonts, err := NewFontSet("")
	if err != nil {
		t.Fatalf("NewFontSet: %v", err)
	}
	names := fonts.Names()
	if len(names) != 2 || names[0] != "arial" || names[1] != "impact" {
		t.Fatalf("unexpected font names %v", names)
	}
	face, err := fonts.Face("impact", 42)
	if err != nil {
		t.Fatalf("Face: %v", err)
	}
	face.Close()

	if _, err := fonts.Face("comic", 12); !errors.Is(err, ErrUnknownFont) {
		t.Fatalf("expected ErrUnknownFont, got %v", err)
	}
}

func TestFontSetSkipsBrokenOverride(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "impact.ttf"), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	fonts, err := NewFontSet(dir)
	if err != nil {
		t.Fatalf("NewFontSet: %v", err)
	}
	face, err := fonts.Face("impact", 20)
	if err != nil {
		t.Fatalf("expected builtin fallback, got %v", err)
	}
	face.Close()
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("Orange")
	if err != nil {
		t.Fatalf("ParseColor: %v", err)
	}
	if c != (color.RGBA{R: 255, G: 165, B: 0, A: 255}) {
		t.Fatalf("unexpected orange %v", c)
	}
	for _, name := range domain.Colors {
		if _, err := ParseColor(name); err != nil {
			t.Fatalf("allow-listed color %s not in palette: %v", name, err)
		}
	}
	if _, err := ParseColor("teal"); !errors.Is(err, ErrUnknownColor) {
		t.Fatalf("expected ErrUnknownColor, got %v", err)
	}

	c, err = ParseColor(" #1E90FF ")
	if err != nil {
		t.Fatalf("ParseColor hex: %v", err)
	}
	if c != (color.RGBA{R: 0x1e, G: 0x90, B: 0xff, A: 255}) {
		t.Fatalf("unexpected hex color %v", c)
	}
	if _, err := ParseColor("#12"); !errors.Is(err, ErrUnknownColor) {
		t.Fatalf("expected ErrUnknownColor for short hex, got %v", err)
	}
}
