package imaging

import (
	"strings"

	"golang.org/x/image/font"

	"memebot/internal/domain"
)

const (
	// BottomMargin is the gap between a bottom caption and the canvas edge.
	BottomMargin = 10
	sidePadding  = 4
)

type Anchor int

const (
	AnchorTop Anchor = iota
	AnchorBottom
)

type Measurer interface {
	Measure(s string) int
}

type MeasureFunc func(s string) int

func (f MeasureFunc) Measure(s string) int { return f(s) }

type faceMeasurer struct {
	face font.Face
}

func (m faceMeasurer) Measure(s string) int {
	return font.MeasureString(m.face, s).Ceil()
}

// Wrap breaks text into lines no wider than maxWidth using a greedy fill.
// Text that already fits is returned untouched as a single line. A word
// wider than maxWidth gets a line of its own and is not split.
func Wrap(text string, maxWidth int, m Measurer) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if m.Measure(text) <= maxWidth {
		return []string{text}
	}

	lines := make([]string, 0, 4)
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if m.Measure(candidate) <= maxWidth {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	return append(lines, current)
}

type PlacedLine struct {
	Text     string
	X        int
	Baseline int
}

type Block struct {
	Lines      []string
	Anchor     Anchor
	Align      domain.Alignment
	Inset      int
	LineHeight int
	Ascent     int
}

// Place positions wrapped lines on a canvas of the given size. Top blocks
// start at the inset; bottom blocks end BottomMargin above the bottom edge.
func Place(b Block, width, height int, m Measurer) []PlacedLine {
	if len(b.Lines) == 0 {
		return nil
	}

	top := b.Inset
	if b.Anchor == AnchorBottom {
		top = height - BottomMargin - len(b.Lines)*b.LineHeight
	}

	placed := make([]PlacedLine, 0, len(b.Lines))
	for i, line := range b.Lines {
		w := m.Measure(line)
		var x int
		switch b.Align {
		case domain.AlignLeft:
			x = b.Inset
		case domain.AlignRight:
			x = width - b.Inset - w
		default:
			x = (width - w) / 2
		}
		placed = append(placed, PlacedLine{
			Text:     line,
			X:        x,
			Baseline: top + i*b.LineHeight + b.Ascent,
		})
	}
	return placed
}
