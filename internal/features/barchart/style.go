package barchart

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// TextStyle places one block of chrome text in figure coordinates.
// X/Y are the left end of the baseline, 0..1 spanning the figure, y upward.
type TextStyle struct {
	X     float64 `mapstructure:"x"`
	Y     float64 `mapstructure:"y"`
	Size  float64 `mapstructure:"size"` // points
	Alpha float64 `mapstructure:"alpha"`
	Bold  bool    `mapstructure:"bold"`
}

// Style holds every styling constant of the chart. Lengths are in points unless the
// field name says otherwise; positions named X/Y are figure coordinates.
type Style struct {
	WidthInches  float64 `mapstructure:"width_inches"`
	HeightInches float64 `mapstructure:"height_inches"`
	DPI          float64 `mapstructure:"dpi"`
	PadInches    float64 `mapstructure:"pad_inches"` // whitespace kept around the tight bounding box
	TopN         int     `mapstructure:"top_n"`
	Background   string  `mapstructure:"background"`
	TextColor    string  `mapstructure:"text_color"`

	// Axes box in figure coordinates.
	AxesLeft   float64 `mapstructure:"axes_left"`
	AxesBottom float64 `mapstructure:"axes_bottom"`
	AxesRight  float64 `mapstructure:"axes_right"`
	AxesTop    float64 `mapstructure:"axes_top"`

	BarColor  string  `mapstructure:"bar_color"`
	BarHeight float64 `mapstructure:"bar_height"` // category units, 1 = no gap
	XMargin   float64 `mapstructure:"x_margin"`   // fraction of the data span added past the bars

	GridColor string  `mapstructure:"grid_color"`
	GridAlpha float64 `mapstructure:"grid_alpha"`
	GridWidth float64 `mapstructure:"grid_width"`

	SpineColor string  `mapstructure:"spine_color"`
	SpineWidth float64 `mapstructure:"spine_width"`

	TickLength    float64 `mapstructure:"tick_length"`
	TickWidth     float64 `mapstructure:"tick_width"`
	TickLabelSize float64 `mapstructure:"tick_label_size"`
	XTickPad      float64 `mapstructure:"x_tick_pad"` // negative pulls labels toward the axis
	YTickPad      float64 `mapstructure:"y_tick_pad"`

	AccentColor string  `mapstructure:"accent_color"`
	RuleX0      float64 `mapstructure:"rule_x0"`
	RuleX1      float64 `mapstructure:"rule_x1"`
	RuleY       float64 `mapstructure:"rule_y"`
	RuleWidth   float64 `mapstructure:"rule_width"`
	TagX        float64 `mapstructure:"tag_x"`
	TagY        float64 `mapstructure:"tag_y"`
	TagWidth    float64 `mapstructure:"tag_width"`
	TagHeight   float64 `mapstructure:"tag_height"` // negative grows downward

	Title    TextStyle `mapstructure:"title"`
	Subtitle TextStyle `mapstructure:"subtitle"`
	Source   TextStyle `mapstructure:"source"`
}

// DefaultStyle is the Economist look: a 3x6 inch figure at 300 DPI, nine blue bars,
// a red rule and tag above the plot.
func DefaultStyle() Style {
	return Style{
		WidthInches:  3,
		HeightInches: 6,
		DPI:          300,
		PadInches:    0.1,
		TopN:         9,
		Background:   "#FFFFFF",
		TextColor:    "#000000",

		AxesLeft:   0.125,
		AxesBottom: 0.11,
		AxesRight:  0.9,
		AxesTop:    0.88,

		BarColor:  "#006BA2",
		BarHeight: 0.8,
		XMargin:   0.05,

		GridColor: "#758D99",
		GridAlpha: 0.6,
		GridWidth: 0.8,

		SpineColor: "#000000",
		SpineWidth: 1.1,

		TickLength:    3.5,
		TickWidth:     0.8,
		TickLabelSize: 11,
		XTickPad:      -1,
		YTickPad:      100,

		AccentColor: "#E3120B",
		RuleX0:      -0.35,
		RuleX1:      0.87,
		RuleY:       1.02,
		RuleWidth:   0.6,
		TagX:        -0.35,
		TagY:        1.02,
		TagWidth:    0.12,
		TagHeight:   -0.02,

		Title:    TextStyle{X: -0.35, Y: 0.96, Size: 13, Alpha: 0.8, Bold: true},
		Subtitle: TextStyle{X: -0.35, Y: 0.925, Size: 11, Alpha: 0.8},
		Source:   TextStyle{X: -0.35, Y: 0.08, Size: 9, Alpha: 0.7},
	}
}

// palette is the parsed color set of a Style.
type palette struct {
	background color.Color
	text       color.Color
	bar        color.Color
	grid       color.Color
	spine      color.Color
	accent     color.Color
}

// Validate reports the first invalid field.
func (s Style) Validate() error {
	_, err := s.palette()
	if err != nil {
		return err
	}
	switch {
	case s.WidthInches <= 0 || s.HeightInches <= 0:
		return fmt.Errorf("%w: figure size must be positive, got %gx%g", ErrConfiguration, s.WidthInches, s.HeightInches)
	case s.DPI <= 0:
		return fmt.Errorf("%w: dpi must be positive, got %g", ErrConfiguration, s.DPI)
	case s.TopN <= 0:
		return fmt.Errorf("%w: top_n must be positive, got %d", ErrConfiguration, s.TopN)
	case s.AxesLeft >= s.AxesRight || s.AxesBottom >= s.AxesTop:
		return fmt.Errorf("%w: empty axes box", ErrConfiguration)
	case s.BarHeight <= 0 || s.BarHeight > 1:
		return fmt.Errorf("%w: bar_height must be in (0, 1], got %g", ErrConfiguration, s.BarHeight)
	case s.PadInches < 0 || s.XMargin < 0:
		return fmt.Errorf("%w: padding and margins must not be negative", ErrConfiguration)
	}
	for name, ts := range map[string]TextStyle{"title": s.Title, "subtitle": s.Subtitle, "source": s.Source} {
		if ts.Size <= 0 {
			return fmt.Errorf("%w: %s size must be positive", ErrConfiguration, name)
		}
		if ts.Alpha < 0 || ts.Alpha > 1 {
			return fmt.Errorf("%w: %s alpha must be in [0, 1]", ErrConfiguration, name)
		}
	}
	if s.TickLabelSize <= 0 {
		return fmt.Errorf("%w: tick_label_size must be positive", ErrConfiguration)
	}
	if s.GridAlpha < 0 || s.GridAlpha > 1 {
		return fmt.Errorf("%w: grid_alpha must be in [0, 1]", ErrConfiguration)
	}
	return nil
}

func (s Style) palette() (palette, error) {
	var p palette
	fields := []struct {
		name string
		hex  string
		dst  *color.Color
	}{
		{"background", s.Background, &p.background},
		{"text_color", s.TextColor, &p.text},
		{"bar_color", s.BarColor, &p.bar},
		{"grid_color", s.GridColor, &p.grid},
		{"spine_color", s.SpineColor, &p.spine},
		{"accent_color", s.AccentColor, &p.accent},
	}
	for _, f := range fields {
		c, err := colorful.Hex(f.hex)
		if err != nil {
			return palette{}, fmt.Errorf("%w: %s %q: %v", ErrConfiguration, f.name, f.hex, err)
		}
		*f.dst = opaque(c)
	}
	return p, nil
}

func opaque(c colorful.Color) color.Color {
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}
}

// withAlpha keeps the hue of c and sets its opacity to a in [0, 1].
func withAlpha(c color.Color, a float64) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(a*255 + 0.5)
	return n
}
