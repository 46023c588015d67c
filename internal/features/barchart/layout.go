package barchart

import (
	"fmt"
	"math"

	"golang.org/x/image/font"
)

// rect is an axis-aligned box in canvas pixels, y growing downward.
type rect struct {
	X0, Y0, X1, Y1 float64
}

func (r rect) union(o rect) rect {
	return rect{
		X0: math.Min(r.X0, o.X0),
		Y0: math.Min(r.Y0, o.Y0),
		X1: math.Max(r.X1, o.X1),
		Y1: math.Max(r.Y1, o.Y1),
	}
}

func (r rect) shift(dx, dy float64) rect {
	return rect{X0: r.X0 + dx, Y0: r.Y0 + dy, X1: r.X1 + dx, Y1: r.Y1 + dy}
}

func (r rect) Width() float64  { return r.X1 - r.X0 }
func (r rect) Height() float64 { return r.Y1 - r.Y0 }

// textItem is a string drawn with its baseline starting at X, Y.
type textItem struct {
	Text   string
	X, Y   float64
	Face   font.Face
	Alpha  float64
	Bounds rect
}

// line is a stroked segment.
type line struct {
	X0, Y0, X1, Y1 float64
	Width          float64
}

// barGeom is a bar with its box.
type barGeom struct {
	Bar
	Box rect
}

// layout is the fully resolved geometry of one chart. Everything is in final canvas pixels.
type layout struct {
	Width, Height int
	Axes          rect
	XMin, XMax    float64
	Grid          []line
	Bars          []barGeom
	Spine         line
	YTicks        []line
	XLabels       []textItem
	YLabels       []textItem
	Rule          line
	Tag           rect
	Texts         []textItem // title, subtitle, source
}

// buildLayout places every element in figure pixels, then crops the canvas to the union of
// their extents plus padding. Figure pixels have the origin at the figure's top-left corner
// and chrome may land at negative coordinates; the crop shifts it back into view.
func buildLayout(bars []Bar, req PlotRequest, st Style, fonts *fontSet) (*layout, error) {
	px := st.DPI / 72 // pixels per point
	figW := st.WidthInches * st.DPI
	figH := st.HeightInches * st.DPI
	fig := func(fx, fy float64) (float64, float64) {
		return fx * figW, (1 - fy) * figH
	}

	l := &layout{}
	ax0, ay0 := fig(st.AxesLeft, st.AxesTop)
	ax1, ay1 := fig(st.AxesRight, st.AxesBottom)
	l.Axes = rect{X0: ax0, Y0: ay0, X1: ax1, Y1: ay1}

	var err error
	if l.XMin, l.XMax, err = valueRange(bars, req.TickPositions, st.XMargin); err != nil {
		return nil, err
	}
	dataX := func(v float64) float64 {
		return ax0 + (v-l.XMin)/(l.XMax-l.XMin)*(ax1-ax0)
	}
	// categories span [-0.5, n-0.5], category 0 at the bottom
	n := float64(len(bars))
	dataY := func(c float64) float64 {
		return ay1 - (c+0.5)/n*(ay1-ay0)
	}

	for _, t := range req.TickPositions {
		x := dataX(t)
		l.Grid = append(l.Grid, line{X0: x, Y0: ay0, X1: x, Y1: ay1, Width: st.GridWidth * px})
	}

	half := st.BarHeight / 2
	for i, b := range bars {
		x0, x1 := dataX(0), dataX(b.Value)
		if x1 < x0 {
			x0, x1 = x1, x0
		}
		c := float64(i)
		l.Bars = append(l.Bars, barGeom{
			Bar: b,
			Box: rect{X0: x0, Y0: dataY(c + half), X1: x1, Y1: dataY(c - half)},
		})
	}

	l.Spine = line{X0: ax0, Y0: ay0, X1: ax0, Y1: ay1, Width: st.SpineWidth * px}

	tickFace, err := fonts.face(st.TickLabelSize, false)
	if err != nil {
		return nil, err
	}
	tickAscent, tickDescent := verticalMetrics(tickFace)

	// x labels sit above the axes, their bottom edge tick length + pad away from it
	xLabelBottom := ay0 - (st.TickLength+st.XTickPad)*px
	for i, t := range req.TickPositions {
		s := req.TickLabels[i]
		w := measure(tickFace, s)
		x := dataX(t) - w/2
		baseline := xLabelBottom - tickDescent
		l.XLabels = append(l.XLabels, textItem{
			Text: s, X: x, Y: baseline, Face: tickFace, Alpha: 1,
			Bounds: rect{X0: x, Y0: baseline - tickAscent, X1: x + w, Y1: xLabelBottom},
		})
	}

	// y labels are left-aligned at a fixed distance from the axis, so long names run toward the bars
	yLabelX := ax0 - (st.YTickPad+st.TickLength)*px
	for i, b := range bars {
		cy := dataY(float64(i))
		l.YTicks = append(l.YTicks, line{X0: ax0 - st.TickLength*px, Y0: cy, X1: ax0, Y1: cy, Width: st.TickWidth * px})

		w := measure(tickFace, b.Label)
		baseline := cy + (tickAscent-tickDescent)/2
		l.YLabels = append(l.YLabels, textItem{
			Text: b.Label, X: yLabelX, Y: baseline, Face: tickFace, Alpha: 1,
			Bounds: rect{X0: yLabelX, Y0: baseline - tickAscent, X1: yLabelX + w, Y1: baseline + tickDescent},
		})
	}

	rx0, ry := fig(st.RuleX0, st.RuleY)
	rx1, _ := fig(st.RuleX1, st.RuleY)
	l.Rule = line{X0: rx0, Y0: ry, X1: rx1, Y1: ry, Width: st.RuleWidth * px}

	tx0, ty0 := fig(st.TagX, st.TagY)
	tx1, ty1 := fig(st.TagX+st.TagWidth, st.TagY+st.TagHeight)
	l.Tag = rect{X0: math.Min(tx0, tx1), Y0: math.Min(ty0, ty1), X1: math.Max(tx0, tx1), Y1: math.Max(ty0, ty1)}

	for _, block := range []struct {
		text  string
		style TextStyle
	}{
		{req.Title, st.Title},
		{req.Subtitle, st.Subtitle},
		{req.Source, st.Source},
	} {
		if block.text == "" {
			continue
		}
		face, err := fonts.face(block.style.Size, block.style.Bold)
		if err != nil {
			return nil, err
		}
		ascent, descent := verticalMetrics(face)
		x, y := fig(block.style.X, block.style.Y)
		w := measure(face, block.text)
		l.Texts = append(l.Texts, textItem{
			Text: block.text, X: x, Y: y, Face: face, Alpha: block.style.Alpha,
			Bounds: rect{X0: x, Y0: y - ascent, X1: x + w, Y1: y + descent},
		})
	}

	if err := l.crop(st.PadInches * st.DPI); err != nil {
		return nil, err
	}
	return l, nil
}

// maxCanvasSide bounds either canvas dimension in pixels.
const maxCanvasSide = 1 << 15

// crop shifts everything so the tight bounding box starts at pad and sizes the canvas to it.
func (l *layout) crop(pad float64) error {
	box := l.Axes
	for _, t := range l.allText() {
		box = box.union(t.Bounds)
	}
	box = box.union(l.Rule.bounds())
	box = box.union(l.Tag)

	w, h := math.Ceil(box.Width()+2*pad), math.Ceil(box.Height()+2*pad)
	if !(w >= 1 && w <= maxCanvasSide && h >= 1 && h <= maxCanvasSide) {
		return fmt.Errorf("%w: canvas of %vx%v pixels is out of range", ErrConfiguration, w, h)
	}
	dx, dy := pad-box.X0, pad-box.Y0
	l.Width, l.Height = int(w), int(h)

	l.Axes = l.Axes.shift(dx, dy)
	for i := range l.Grid {
		l.Grid[i] = l.Grid[i].shift(dx, dy)
	}
	for i := range l.Bars {
		l.Bars[i].Box = l.Bars[i].Box.shift(dx, dy)
	}
	l.Spine = l.Spine.shift(dx, dy)
	for i := range l.YTicks {
		l.YTicks[i] = l.YTicks[i].shift(dx, dy)
	}
	shiftText(l.XLabels, dx, dy)
	shiftText(l.YLabels, dx, dy)
	shiftText(l.Texts, dx, dy)
	l.Rule = l.Rule.shift(dx, dy)
	l.Tag = l.Tag.shift(dx, dy)
	return nil
}

func (l *layout) allText() []textItem {
	all := make([]textItem, 0, len(l.XLabels)+len(l.YLabels)+len(l.Texts))
	all = append(all, l.XLabels...)
	all = append(all, l.YLabels...)
	return append(all, l.Texts...)
}

func (ln line) shift(dx, dy float64) line {
	return line{X0: ln.X0 + dx, Y0: ln.Y0 + dy, X1: ln.X1 + dx, Y1: ln.Y1 + dy, Width: ln.Width}
}

func (ln line) bounds() rect {
	h := ln.Width / 2
	return rect{
		X0: math.Min(ln.X0, ln.X1), Y0: math.Min(ln.Y0, ln.Y1) - h,
		X1: math.Max(ln.X0, ln.X1), Y1: math.Max(ln.Y0, ln.Y1) + h,
	}
}

func shiftText(items []textItem, dx, dy float64) {
	for i := range items {
		items[i].X += dx
		items[i].Y += dy
		items[i].Bounds = items[i].Bounds.shift(dx, dy)
	}
}

// valueRange is the x view interval: the data span including zero, a margin on each side that
// holds data, widened to every tick position. A range too wide for float64 is an error.
func valueRange(bars []Bar, ticks []float64, margin float64) (float64, float64, error) {
	lo, hi := 0.0, 0.0
	for _, b := range bars {
		lo = math.Min(lo, b.Value)
		hi = math.Max(hi, b.Value)
	}
	span := hi - lo
	if lo < 0 {
		lo -= span * margin
	}
	if hi > 0 {
		hi += span * margin
	}
	for _, t := range ticks {
		lo = math.Min(lo, t)
		hi = math.Max(hi, t)
	}
	if hi == lo {
		hi = lo + 1
	}
	if !isFinite(lo) || !isFinite(hi) || !isFinite(hi-lo) {
		return 0, 0, fmt.Errorf("%w: value range [%v, %v] overflows", ErrConfiguration, lo, hi)
	}
	return lo, hi, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func measure(face font.Face, s string) float64 {
	return float64(font.MeasureString(face, s)) / 64
}

func verticalMetrics(face font.Face) (ascent, descent float64) {
	m := face.Metrics()
	return float64(m.Ascent) / 64, float64(m.Descent) / 64
}
