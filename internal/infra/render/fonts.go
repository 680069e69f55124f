package render

import (
	"fmt"
	"os"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// fontSet holds parsed fonts. Faces are created per render because a
// truetype face caches glyphs and is not safe for concurrent use.
type fontSet struct {
	regular *truetype.Font
	bold    *truetype.Font
}

// loadFonts parses the bundled Go fonts, or the TTF at path for both weights.
func loadFonts(path string) (*fontSet, error) {
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read font %s: %w", path, err)
		}
		f, err := truetype.Parse(b)
		if err != nil {
			return nil, fmt.Errorf("parse font %s: %w", path, err)
		}
		return &fontSet{regular: f, bold: f}, nil
	}

	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse goregular: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse gobold: %w", err)
	}
	return &fontSet{regular: regular, bold: bold}, nil
}

func (fs *fontSet) face(bold bool, size float64) font.Face {
	f := fs.regular
	if bold {
		f = fs.bold
	}
	return truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
}
