package imaging

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var ErrUnknownColor = errors.New("unknown color")

var palette = map[string]string{
	"white":  "#ffffff",
	"black":  "#000000",
	"red":    "#ff0000",
	"green":  "#008000",
	"blue":   "#0000ff",
	"orange": "#ffa500",
	"purple": "#800080",
}

// ParseColor resolves a palette name or a #rrggbb value.
func ParseColor(name string) (color.RGBA, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	hex, ok := palette[name]
	if !ok {
		hex = name
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %s", ErrUnknownColor, name)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}
