package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"memebot/internal/domain"
)

var ErrDecode = errors.New("could not decode image")

type Options struct {
	JPEGQuality  int
	MaxDimension int
}

// Renderer turns an encoded source image plus formatting preferences into
// a captioned JPEG.
type Renderer struct {
	fonts *FontSet
	opts  Options
}

func NewRenderer(fonts *FontSet, opts Options) *Renderer {
	if opts.JPEGQuality <= 0 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = 90
	}
	return &Renderer{
		fonts: fonts,
		opts:  opts,
	}
}

func (r *Renderer) Render(src []byte, f domain.FormattingState) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	img = Fit(img, r.opts.MaxDimension)

	canvas := Compose(img, f.Whitespace, f.WhitespaceRatio)

	if f.TopText != "" || f.BottomText != "" {
		face, err := r.fonts.Face(f.Font, float64(f.FontSize))
		if err != nil {
			return nil, err
		}
		defer face.Close()

		fill, err := ParseColor(f.TextColor)
		if err != nil {
			return nil, err
		}
		st := captionStyle{
			face:  face,
			fill:  fill,
			align: f.Alignment,
		}
		if f.HasOutline() {
			outline, err := ParseColor(f.OutlineColor)
			if err != nil {
				return nil, err
			}
			st.outline = outline
			st.stroke = f.OutlineSize
		}

		drawCaption(canvas, f.TopText, AnchorTop, st)
		drawCaption(canvas, f.BottomText, AnchorBottom, st)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: r.opts.JPEGQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Probe reads only the image header and reports its size and format.
func (r *Renderer) Probe(data []byte) (image.Config, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Config{}, "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return cfg, format, nil
}
