// Package render draws a resolved chart with the axis domains and ticks the
// chart package computed, so the picture matches what the API reports.
package render

import (
	"bytes"

	"github.com/ansel1/merry/v2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/go-graphite/carbontrack/pkg/axis"
	"github.com/go-graphite/carbontrack/pkg/chart"
	"github.com/go-graphite/carbontrack/pkg/series"
)

var ErrNothingToDraw = merry.New("chart has no time domain")

const pxPerInch = 96

func px(v float64) vg.Length {
	return vg.Length(v) * vg.Inch / pxPerInch
}

// Marshal draws res in params.Format.
func Marshal(params PictureParams, res *chart.Result) ([]byte, error) {
	if res == nil || !res.Time.HasDomain {
		return nil, ErrNothingToDraw
	}

	p := plot.New()
	p.Title.Text = params.Title
	p.BackgroundColor = params.BgColor

	if params.Grid && !res.TimelineOnly {
		p.Add(plotter.NewGrid())
	}
	p.Add(newSamplesPlotter(res, params))

	tz := params.Location
	p.X.Min, p.X.Max = res.Time.Min(), res.Time.Max()
	if p.X.Max <= p.X.Min {
		p.X.Min -= axis.DayMs / 2
		p.X.Max += axis.DayMs / 2
	}
	p.X.Tick.Marker = marker(res.Time.Ticks, func(v float64) string {
		return axis.FormatTimeLabel(v, res.Time.Format, tz)
	})

	if res.TimelineOnly || !res.Value.HasDomain {
		p.Y.Min, p.Y.Max = -1, 1
		p.HideY()
	} else {
		p.Y.Min, p.Y.Max = res.Value.Min(), res.Value.Max()
		precision := res.Value.Precision
		p.Y.Tick.Marker = marker(res.Value.Ticks, func(v float64) string {
			return axis.FormatValueLabel(v, precision)
		})
	}

	format := params.Format
	if format == "" {
		format = FormatPNG
	}
	w, err := p.WriterTo(px(params.Width), px(params.Height), string(format))
	if err != nil {
		return nil, merry.Wrap(err)
	}

	var b bytes.Buffer
	if _, err := w.WriteTo(&b); err != nil {
		return nil, merry.Wrap(err)
	}
	return b.Bytes(), nil
}

func MarshalPNG(params PictureParams, res *chart.Result) ([]byte, error) {
	params.Format = FormatPNG
	return Marshal(params, res)
}

func MarshalSVG(params PictureParams, res *chart.Result) ([]byte, error) {
	params.Format = FormatSVG
	return Marshal(params, res)
}

// marker labels the resolved ticks. Without resolved ticks the plot's own
// tick positions are used with the same label formatter.
func marker(ticks []float64, label func(float64) string) plot.Ticker {
	if len(ticks) > 0 {
		res := make(plot.ConstantTicks, 0, len(ticks))
		for _, v := range ticks {
			res = append(res, plot.Tick{Value: v, Label: label(v)})
		}
		return res
	}
	return plot.TickerFunc(func(min, max float64) []plot.Tick {
		res := plot.DefaultTicks{}.Ticks(min, max)
		for i := range res {
			if !res[i].IsMinor() {
				res[i].Label = label(res[i].Value)
			}
		}
		return res
	})
}

// samplesPlotter draws the visible samples as a line broken at absent values,
// or as dots on a single row when no sample carries a value.
type samplesPlotter struct {
	samples  []series.Sample
	timeline bool
	line     draw.LineStyle
	glyph    draw.GlyphStyle
}

func newSamplesPlotter(res *chart.Result, params PictureParams) *samplesPlotter {
	line := plotter.DefaultLineStyle
	line.Color = params.LineColor
	line.Width = px(params.LineWidth)

	glyph := plotter.DefaultGlyphStyle
	glyph.Color = params.LineColor
	glyph.Shape = draw.CircleGlyph{}
	glyph.Radius = px(3)

	return &samplesPlotter{
		samples:  res.Visible,
		timeline: res.TimelineOnly,
		line:     line,
		glyph:    glyph,
	}
}

func (sp *samplesPlotter) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)

	if sp.timeline {
		for _, s := range sp.samples {
			c.DrawGlyph(sp.glyph, vg.Point{X: trX(float64(s.Timestamp)), Y: trY(0)})
		}
		return
	}

	var lines [][]vg.Point
	var current []vg.Point
	for _, s := range sp.samples {
		if !s.HasValue() {
			if len(current) > 0 {
				lines = append(lines, current)
				current = nil
			}
			continue
		}
		current = append(current, vg.Point{X: trX(float64(s.Timestamp)), Y: trY(s.Value)})
	}
	if len(current) > 0 {
		lines = append(lines, current)
	}

	// DrawGlyph skips points outside the canvas; lines are clipped to it so a
	// manual domain narrower than the data stays inside the plot area.
	for _, l := range lines {
		if len(l) == 1 {
			c.DrawGlyph(sp.glyph, l[0])
		}
	}
	c.StrokeLines(sp.line, c.ClipLinesXY(lines...)...)
}
