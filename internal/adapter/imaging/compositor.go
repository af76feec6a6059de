package imaging

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"memebot/internal/domain"
)

// BandHeight is the height of one whitespace band for an image of height h.
func BandHeight(h int, ratio float64) int {
	return int(math.Round(ratio * float64(h)))
}

// Compose copies base onto a new canvas, adding white bands above and/or
// below it as mode requests.
func Compose(base image.Image, mode domain.WhitespaceMode, ratio float64) *image.RGBA {
	b := base.Bounds()
	w, h := b.Dx(), b.Dy()

	band := 0
	if mode != domain.WhitespaceNone {
		band = BandHeight(h, ratio)
	}

	height := h
	offset := 0
	switch mode {
	case domain.WhitespaceTop:
		height += band
		offset = band
	case domain.WhitespaceBottom:
		height += band
	case domain.WhitespaceBoth:
		height += 2 * band
		offset = band
	}

	canvas := image.NewRGBA(image.Rect(0, 0, w, height))
	if height != h {
		draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	}
	draw.Draw(canvas, image.Rect(0, offset, w, offset+h), base, b.Min, draw.Src)
	return canvas
}

// Fit scales img down so neither side exceeds maxDim. Smaller images and a
// non-positive maxDim leave img as is.
func Fit(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return img
	}

	scale := float64(maxDim) / float64(max(w, h))
	nw := max(1, int(math.Round(float64(w)*scale)))
	nh := max(1, int(math.Round(float64(h)*scale)))

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

type captionStyle struct {
	face    font.Face
	fill    color.Color
	outline color.Color
	stroke  int
	align   domain.Alignment
}

// drawCaption wraps text to the canvas width and draws it at the anchor.
func drawCaption(dst *image.RGBA, text string, anchor Anchor, st captionStyle) {
	if text == "" {
		return
	}

	width := dst.Bounds().Dx()
	height := dst.Bounds().Dy()
	inset := st.stroke + sidePadding
	m := faceMeasurer{face: st.face}

	metrics := st.face.Metrics()
	block := Block{
		Lines:      Wrap(text, width-2*inset, m),
		Anchor:     anchor,
		Align:      st.align,
		Inset:      inset,
		LineHeight: metrics.Height.Ceil(),
		Ascent:     metrics.Ascent.Ceil(),
	}

	for _, line := range Place(block, width, height, m) {
		if st.outline != nil && st.stroke > 0 {
			drawOutline(dst, st.face, line, st.outline, st.stroke)
		}
		drawString(dst, st.face, line.Text, line.X, line.Baseline, st.fill)
	}
}

// drawOutline stamps the text at every offset inside a disc of the stroke
// radius, which the fill pass then covers.
func drawOutline(dst *image.RGBA, face font.Face, line PlacedLine, col color.Color, stroke int) {
	r2 := stroke * stroke
	for dy := -stroke; dy <= stroke; dy++ {
		for dx := -stroke; dx <= stroke; dx++ {
			if dx == 0 && dy == 0 || dx*dx+dy*dy > r2 {
				continue
			}
			drawString(dst, face, line.Text, line.X+dx, line.Baseline+dy, col)
		}
	}
}

func drawString(dst *image.RGBA, face font.Face, s string, x, baseline int, col color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(s)
}
