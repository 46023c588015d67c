package barchart

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// fontSet resolves faces for one render. Faces are created on demand and
// all of them are released by Close.
type fontSet struct {
	regular *opentype.Font
	bold    *opentype.Font
	dpi     float64
	faces   map[faceKey]font.Face
}

type faceKey struct {
	size float64
	bold bool
}

// loadFonts parses path, or the embedded Go fonts when path is empty.
// A custom font is used for every weight.
func loadFonts(path string, dpi float64) (*fontSet, error) {
	fs := &fontSet{dpi: dpi, faces: make(map[faceKey]font.Face)}

	if path == "" {
		regular, err := opentype.Parse(goregular.TTF)
		if err != nil {
			return nil, fmt.Errorf("parse default font: %w", err)
		}
		bold, err := opentype.Parse(gobold.TTF)
		if err != nil {
			return nil, fmt.Errorf("parse default bold font: %w", err)
		}
		fs.regular, fs.bold = regular, bold
		return fs, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFontLoad, err)
	}
	f, err := parseFont(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFontLoad, path, err)
	}
	fs.regular, fs.bold = f, f
	return fs, nil
}

// parseFont accepts a single font or the first font of a collection (.ttc/.otc).
func parseFont(data []byte) (*opentype.Font, error) {
	f, err := opentype.Parse(data)
	if err == nil {
		return f, nil
	}
	coll, collErr := opentype.ParseCollection(data)
	if collErr != nil {
		return nil, err
	}
	if coll.NumFonts() == 0 {
		return nil, errors.New("empty font collection")
	}
	return coll.Font(0)
}

// face returns a face of size points, rasterized at the set's DPI.
func (fs *fontSet) face(size float64, bold bool) (font.Face, error) {
	key := faceKey{size: size, bold: bold}
	if f, ok := fs.faces[key]; ok {
		return f, nil
	}
	src := fs.regular
	if bold {
		src = fs.bold
	}
	f, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    size,
		DPI:     fs.dpi,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFontLoad, err)
	}
	fs.faces[key] = f
	return f, nil
}

func (fs *fontSet) Close() error {
	var first error
	for k, f := range fs.faces {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
		delete(fs.faces, k)
	}
	return first
}
