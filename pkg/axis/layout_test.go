package axis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTargetTickCount(t *testing.T) {
	tests := []struct {
		available, minPx float64
		want             int
	}{
		{800, 28, 10},
		{100, 28, 3},
		{250, 28, 8},
		{252, 28, 9},
		{280, 28, 10},
		{40, 28, 2},
		{0, 28, 2},
		{-50, 28, 2},
		{500, 0, MaxPreferredTicks},
		{math.NaN(), 28, 2},
	}

	for _, tt := range tests {
		got := TargetTickCount(tt.available, tt.minPx)
		assert.Equal(t, tt.want, got, "TargetTickCount(%v, %v)", tt.available, tt.minPx)
	}
}

func TestGutterWidth(t *testing.T) {
	tests := []struct {
		name      string
		min, max  float64
		precision int
		want      float64
	}{
		{"short labels clamp to the minimum", 0, 100, 0, MinGutterPx},
		{"long labels clamp to the maximum", 0, 123456.78, 2, MaxGutterPx},
		{"negative bound is wider", -5000.5, 10, 1, 7*7 + gutterPaddingPx},
		{"precision adds characters", 0, 10, 3, 6*7 + gutterPaddingPx},
		{"no data", math.NaN(), math.NaN(), 0, MinGutterPx},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GutterWidth(tt.min, tt.max, tt.precision, DefaultCharWidthPx))
		})
	}
}

func TestMetricsPlotArea(t *testing.T) {
	m := Metrics{
		WidthPx:      400,
		HeightPx:     300,
		MarginTop:    10,
		MarginRight:  20,
		MarginBottom: 30,
		MarginLeft:   0,
	}

	assert.Equal(t, 330.0, m.PlotWidth(50))
	assert.Equal(t, 260.0, m.PlotHeight())

	small := Metrics{WidthPx: 10, HeightPx: 10, MarginTop: 20}
	assert.Equal(t, 0.0, small.PlotWidth(50))
	assert.Equal(t, 0.0, small.PlotHeight())
}
