package chart

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/dgallion1/pchreport/internal/table"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Palette is the bar color cycle.
var Palette = []color.RGBA{
	{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
}

// Options controls the rendered image size in pixels.
type Options struct {
	Width  int
	Height int
}

// ErrInvalidSize is returned for non-positive image dimensions.
var ErrInvalidSize = errors.New("chart size must be positive")

// headroom above the tallest bar, as a share of its height
const headroom = 1.15

// barPalette keeps the library defaults except for the series colors.
type barPalette struct {
	gochart.ColorPalette
}

func (barPalette) GetSeriesColor(index int) drawing.Color {
	c := Palette[index%len(Palette)]
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Render draws a bar chart with one bar per band and returns it as PNG.
// Each bar is labelled with its band and value; missing values are
// labelled "n/a" and drawn without a bar.
func Render(title string, bands []table.Band, values []float64, opts Options) ([]byte, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, opts.Width, opts.Height)
	}
	if len(bands) != len(values) {
		return nil, fmt.Errorf("render %s: %d bands but %d values", title, len(bands), len(values))
	}

	top := 0.0
	bars := make([]gochart.Value, 0, len(values))
	for i, v := range values {
		bar := gochart.Value{Label: bands[i].Name() + "\n" + ValueLabel(v)}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			bar.Style = gochart.Style{
				FillColor:   gochart.ColorTransparent,
				StrokeColor: gochart.ColorTransparent,
			}
		} else {
			bar.Value = v
			top = math.Max(top, v)
		}
		bars = append(bars, bar)
	}
	if len(bars) == 0 {
		// The library refuses an empty chart; draw the frame with a placeholder.
		bars = append(bars, gochart.Value{Label: "n/a", Style: gochart.Style{
			FillColor:   gochart.ColorTransparent,
			StrokeColor: gochart.ColorTransparent,
		}})
	}
	if top == 0 {
		top = 1
	}

	barWidth := max(1, opts.Width*3/(5*len(bars)))
	c := gochart.BarChart{
		Title:        title,
		Width:        opts.Width,
		Height:       opts.Height,
		ColorPalette: barPalette{gochart.DefaultColorPalette},
		BarWidth:     barWidth,
		BarSpacing:   max(1, barWidth/3),
		YAxis: gochart.YAxis{
			Range:          &gochart.ContinuousRange{Min: 0, Max: top * headroom},
			ValueFormatter: func(v interface{}) string { return fmt.Sprintf("%.3f", v) },
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := c.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", title, err)
	}
	return buf.Bytes(), nil
}

// ValueLabel formats an RMS value for display, "n/a" when it is missing.
func ValueLabel(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", v)
}
