package barchart

import "errors"

// Error kinds returned by Render. Match with errors.Is.
var (
	// ErrMissingColumn - the label or value column is absent from the dataset.
	ErrMissingColumn = errors.New("missing column")
	// ErrConfiguration - empty dataset, tick positions/labels length mismatch,
	// non-numeric values or an invalid style.
	ErrConfiguration = errors.New("configuration error")
	// ErrFontLoad - the font file is unreadable or not a font.
	ErrFontLoad = errors.New("font load error")
	// ErrWrite - the image could not be written to the output path.
	ErrWrite = errors.New("write error")
)
