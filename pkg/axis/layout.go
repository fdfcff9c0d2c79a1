package axis

import (
	"math"
	"strconv"
)

const (
	// MinPreferredTicks and MaxPreferredTicks bound the tick count once the
	// available space allows at least MinPreferredTicks labels.
	MinPreferredTicks = 8
	MaxPreferredTicks = 10

	MinGutterPx = 40
	MaxGutterPx = 70

	// DefaultCharWidthPx is the average advance of a label glyph.
	DefaultCharWidthPx = 7
	gutterPaddingPx    = 10
)

// Metrics describes the measured chart container.
type Metrics struct {
	WidthPx      float64 `json:"widthPx" mapstructure:"width" yaml:"widthPx"`
	HeightPx     float64 `json:"heightPx" mapstructure:"height" yaml:"heightPx"`
	MarginTop    float64 `json:"marginTop" mapstructure:"marginTop" yaml:"marginTop"`
	MarginRight  float64 `json:"marginRight" mapstructure:"marginRight" yaml:"marginRight"`
	MarginBottom float64 `json:"marginBottom" mapstructure:"marginBottom" yaml:"marginBottom"`
	MarginLeft   float64 `json:"marginLeft" mapstructure:"marginLeft" yaml:"marginLeft"`
}

// PlotWidth is the horizontal space left for the time axis once margins and
// the value axis gutter are taken.
func (m Metrics) PlotWidth(gutterPx float64) float64 {
	return math.Max(0, m.WidthPx-m.MarginLeft-m.MarginRight-gutterPx)
}

// PlotHeight is the vertical space left for the value axis.
func (m Metrics) PlotHeight() float64 {
	return math.Max(0, m.HeightPx-m.MarginTop-m.MarginBottom)
}

// TargetTickCount converts available pixels into a tick count. Sparse space
// gets as many ticks as fit (at least 2); otherwise the count is clamped to
// [MinPreferredTicks, MaxPreferredTicks].
func TargetTickCount(availablePx, minPxPerTick float64) int {
	if !(minPxPerTick > 0) || math.IsInf(availablePx, 1) {
		return MaxPreferredTicks
	}
	possible := 0
	if availablePx > 0 {
		possible = int(math.Floor(availablePx / minPxPerTick))
	}
	if possible < 2 {
		possible = 2
	}
	if possible < MinPreferredTicks {
		return possible
	}
	if possible > MaxPreferredTicks {
		return MaxPreferredTicks
	}
	return possible
}

// GutterWidth estimates the value axis label column from the wider of the
// two domain bounds written with precision decimals.
func GutterWidth(min, max float64, precision int, charWidthPx float64) float64 {
	if charWidthPx <= 0 {
		charWidthPx = DefaultCharWidthPx
	}
	if precision < 0 {
		precision = 0
	}

	v := max
	if math.Abs(min) > math.Abs(max) {
		v = min
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return MinGutterPx
	}

	label := strconv.FormatFloat(v, 'f', precision, 64)
	w := float64(len(label))*charWidthPx + gutterPaddingPx

	return math.Min(MaxGutterPx, math.Max(MinGutterPx, w))
}
