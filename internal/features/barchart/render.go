// Package barchart renders Economist-style horizontal bar charts to PNG files.
//
// A render selects the largest values of a dataset, draws them as horizontal bars under
// caller-chosen value ticks, adds the red rule and tag branding with title, subtitle and
// source text, and writes a tightly cropped 300 DPI PNG. Each call owns its own drawing
// surface and fonts; nothing is shared between calls except a per-path lock.
package barchart

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"io"
	"path/filepath"
	"sync"
	"time"

	"econchart/internal/dataset"
	"econchart/internal/infra/fs"
	logging "econchart/internal/infra/log"

	"github.com/fogleman/gg"
	"go.uber.org/zap"
)

// PlotRequest describes one chart.
type PlotRequest struct {
	LabelColumn   string
	ValueColumn   string
	Title         string
	Subtitle      string
	Source        string
	TickPositions []float64
	TickLabels    []string
	OutputPath    string
	// FontPath is an optional TrueType/OpenType file used for all text, e.g. for
	// scripts the default font lacks. Empty means the built-in Go fonts.
	FontPath string
}

// Result describes a written chart.
type Result struct {
	Path   string
	Bars   []Bar // ascending, last is the top bar
	Width  int
	Height int
}

// Opener shows a written chart to the user.
type Opener func(ctx context.Context, path string) error

type Option func(*Renderer)

// WithLogger overrides the logger, which defaults to the package file logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

// WithOpener makes Render open every successfully written chart.
// Failures to open are logged, never returned.
func WithOpener(o Opener) Option {
	return func(r *Renderer) { r.opener = o }
}

// Renderer draws charts with a fixed Style. It is safe for concurrent use;
// renders to the same output path are serialized.
type Renderer struct {
	style  Style
	logger *zap.Logger
	opener Opener

	mu    sync.Mutex
	paths map[string]*pathLock
}

type pathLock struct {
	mu   sync.Mutex
	refs int
}

func NewRenderer(style Style, opts ...Option) *Renderer {
	r := &Renderer{
		style: style,
		paths: make(map[string]*pathLock),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render draws ds with DefaultStyle.
func Render(ds dataset.Dataset, req PlotRequest) (*Result, error) {
	return NewRenderer(DefaultStyle()).Render(ds, req)
}

func (r *Renderer) log() *zap.Logger {
	if r.logger != nil {
		return r.logger
	}
	return logging.Named("barchart")
}

// Render validates req against ds, draws the chart and writes it to req.OutputPath.
// On error no file is created or replaced.
func (r *Renderer) Render(ds dataset.Dataset, req PlotRequest) (*Result, error) {
	start := time.Now()
	logger := r.log().With(zap.String("output", req.OutputPath))

	res, err := r.render(ds, req)
	if err != nil {
		logger.Error("Chart render failed", zap.Error(err))
		return nil, err
	}

	logger.Info("Chart rendered",
		zap.Int("bars", len(res.Bars)),
		zap.Int("width", res.Width),
		zap.Int("height", res.Height),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()))

	if r.opener != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := r.opener(ctx, res.Path); err != nil {
			logger.Warn("Failed to open chart", zap.Error(err))
		}
	}
	return res, nil
}

func (r *Renderer) render(ds dataset.Dataset, req PlotRequest) (*Result, error) {
	if err := r.style.Validate(); err != nil {
		return nil, err
	}
	pal, err := r.style.palette()
	if err != nil {
		return nil, err
	}
	if len(req.TickPositions) != len(req.TickLabels) {
		return nil, fmt.Errorf("%w: %d tick positions but %d tick labels",
			ErrConfiguration, len(req.TickPositions), len(req.TickLabels))
	}
	for _, t := range req.TickPositions {
		if !isFinite(t) {
			return nil, fmt.Errorf("%w: tick position %v is not finite", ErrConfiguration, t)
		}
	}
	if req.OutputPath == "" {
		return nil, fmt.Errorf("%w: output path is empty", ErrConfiguration)
	}

	bars, err := SelectTop(ds, req.LabelColumn, req.ValueColumn, r.style.TopN)
	if err != nil {
		return nil, err
	}

	fonts, err := loadFonts(req.FontPath, r.style.DPI)
	if err != nil {
		return nil, err
	}
	defer fonts.Close()

	l, err := buildLayout(bars, req, r.style, fonts)
	if err != nil {
		return nil, err
	}

	dc := draw(l, pal, r.style)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("%w: encode png: %v", ErrWrite, err)
	}
	data, err := withPhysicalDPI(buf.Bytes(), r.style.DPI)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWrite, err)
	}

	unlock := r.lockPath(req.OutputPath)
	defer unlock()

	err = fs.WriteFileAtomic(req.OutputPath, 0644, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWrite, err)
	}

	return &Result{Path: req.OutputPath, Bars: bars, Width: l.Width, Height: l.Height}, nil
}

// draw rasterizes l back to front: grid, bars, spine and ticks, labels, chrome.
func draw(l *layout, pal palette, st Style) *gg.Context {
	dc := gg.NewContext(l.Width, l.Height)
	dc.SetColor(pal.background)
	dc.Clear()
	dc.SetLineCapButt()

	dc.SetColor(withAlpha(pal.grid, st.GridAlpha))
	for _, g := range l.Grid {
		strokeLine(dc, g)
	}

	dc.SetColor(pal.bar)
	for _, b := range l.Bars {
		dc.DrawRectangle(b.Box.X0, b.Box.Y0, b.Box.Width(), b.Box.Height())
		dc.Fill()
	}

	dc.SetColor(pal.spine)
	strokeLine(dc, l.Spine)
	for _, t := range l.YTicks {
		strokeLine(dc, t)
	}

	drawText(dc, l.XLabels, pal.text)
	drawText(dc, l.YLabels, pal.text)

	dc.SetColor(pal.accent)
	strokeLine(dc, l.Rule)
	dc.DrawRectangle(l.Tag.X0, l.Tag.Y0, l.Tag.Width(), l.Tag.Height())
	dc.Fill()

	drawText(dc, l.Texts, pal.text)
	return dc
}

func strokeLine(dc *gg.Context, ln line) {
	dc.SetLineWidth(ln.Width)
	dc.DrawLine(ln.X0, ln.Y0, ln.X1, ln.Y1)
	dc.Stroke()
}

func drawText(dc *gg.Context, items []textItem, c color.Color) {
	for _, t := range items {
		dc.SetFontFace(t.Face)
		dc.SetColor(withAlpha(c, t.Alpha))
		dc.DrawString(t.Text, t.X, t.Y)
	}
}

// lockPath serializes writers of one output file. The returned func releases the lock.
func (r *Renderer) lockPath(path string) func() {
	key := path
	if abs, err := filepath.Abs(path); err == nil {
		key = abs
	}

	r.mu.Lock()
	pl, ok := r.paths[key]
	if !ok {
		pl = &pathLock{}
		r.paths[key] = pl
	}
	pl.refs++
	r.mu.Unlock()

	pl.mu.Lock()
	return func() {
		pl.mu.Unlock()
		r.mu.Lock()
		pl.refs--
		if pl.refs == 0 {
			delete(r.paths, key)
		}
		r.mu.Unlock()
	}
}
