package imaging

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"memebot/internal/domain"
)

var ErrUnknownFont = errors.New("unknown font")

// builtinFonts back the allow-listed names when no font directory provides
// the real typeface.
var builtinFonts = map[string][]byte{
	"impact": gobold.TTF,
	"arial":  goregular.TTF,
}

// FontSet keeps parsed fonts by name and is read-only once built. Faces are
// created per render because opentype faces carry a scratch buffer and must
// not be shared between goroutines.
type FontSet struct {
	fonts map[string]*opentype.Font
}

// NewFontSet parses the built-in fonts and then, when dir is set, replaces
// each allow-listed name with <dir>/<name>.ttf or .otf if present.
func NewFontSet(dir string) (*FontSet, error) {
	fs := &FontSet{fonts: make(map[string]*opentype.Font, len(domain.Fonts))}
	for _, name := range domain.Fonts {
		data, ok := builtinFonts[name]
		if !ok {
			data = goregular.TTF
		}
		f, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse builtin font %s: %w", name, err)
		}
		fs.fonts[name] = f
	}

	if dir == "" {
		return fs, nil
	}
	for _, name := range domain.Fonts {
		for _, ext := range []string{".ttf", ".otf"} {
			path := filepath.Join(dir, name+ext)
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			f, err := opentype.Parse(data)
			if err != nil {
				log.Printf("skipping font %s: %v", path, err)
				continue
			}
			fs.fonts[name] = f
			break
		}
	}
	return fs, nil
}

func (fs *FontSet) Face(name string, size float64) (font.Face, error) {
	f, ok := fs.fonts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFont, name)
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

func (fs *FontSet) Names() []string {
	names := make([]string, 0, len(fs.fonts))
	for name := range fs.fonts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
