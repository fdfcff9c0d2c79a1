package render

import (
	"bytes"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/recorder"

	"github.com/go-graphite/carbontrack/pkg/axis"
	"github.com/go-graphite/carbontrack/pkg/chart"
	"github.com/go-graphite/carbontrack/pkg/series"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func testResult(samples ...series.Sample) *chart.Result {
	res := chart.Recompute(chart.Inputs{
		Samples: samples,
		Value:   axis.AutoValue(),
		Time:    axis.AutoTime(),
		Layout:  axis.Metrics{WidthPx: 400, HeightPx: 200},
	}, chart.DefaultOptions)
	return &res
}

func TestMarshal(t *testing.T) {
	day := int64(24 * time.Hour / time.Millisecond)
	res := testResult(series.New(0, 1), series.Absent(day), series.New(2*day, 3), series.New(3*day, 2))

	params := DefaultParams
	params.Location = time.UTC
	params.Width, params.Height = 400, 200

	b, err := MarshalPNG(params, res)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, pngMagic))

	b, err = MarshalSVG(params, res)
	require.NoError(t, err)
	assert.Contains(t, string(b), "<svg")
	assert.Contains(t, string(b), "Jan 02")
}

func TestSamplesClippedToManualDomain(t *testing.T) {
	day := int64(24 * time.Hour / time.Millisecond)
	lo, hi := 0.0, 10.0
	res := chart.Recompute(chart.Inputs{
		Samples: []series.Sample{series.New(0, 1), series.New(day, 1000), series.New(2*day, 5), series.New(3*day, -400)},
		Value:   axis.ValueOverride{Min: &lo, Max: &hi},
		Time:    axis.AutoTime(),
		Layout:  axis.Metrics{WidthPx: 400, HeightPx: 200},
	}, chart.DefaultOptions)
	require.Equal(t, [2]float64{0, 10}, res.Value.Domain)

	p := plot.New()
	p.X.Min, p.X.Max = res.Time.Min(), res.Time.Max()
	p.Y.Min, p.Y.Max = res.Value.Min(), res.Value.Max()

	rec := &recorder.Canvas{}
	area := vg.Rectangle{Min: vg.Point{X: 10, Y: 10}, Max: vg.Point{X: 110, Y: 60}}
	newSamplesPlotter(&res, DefaultParams).Plot(draw.Canvas{Canvas: rec, Rectangle: area}, p)

	const tolerance = 1e-6
	strokes := 0
	for _, a := range rec.Actions {
		stroke, ok := a.(*recorder.Stroke)
		if !ok {
			continue
		}
		strokes++
		for _, comp := range stroke.Path {
			if comp.Type != vg.MoveComp && comp.Type != vg.LineComp {
				continue
			}
			assert.InDelta(t, float64(area.Min.X+area.Max.X)/2, float64(comp.Pos.X), float64(area.Max.X-area.Min.X)/2+tolerance, "x outside the plot area")
			assert.InDelta(t, float64(area.Min.Y+area.Max.Y)/2, float64(comp.Pos.Y), float64(area.Max.Y-area.Min.Y)/2+tolerance, "y outside the plot area")
		}
	}
	assert.NotZero(t, strokes)

	params := DefaultParams
	params.Format = FormatSVG
	_, err := Marshal(params, &res)
	assert.NoError(t, err)
}

func TestMarshalTimelineOnly(t *testing.T) {
	res := testResult(series.Absent(0), series.Absent(3_600_000))
	require.True(t, res.TimelineOnly)

	b, err := MarshalPNG(DefaultParams, res)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, pngMagic))
}

func TestMarshalEmpty(t *testing.T) {
	_, err := MarshalPNG(DefaultParams, testResult())
	assert.ErrorIs(t, err, ErrNothingToDraw)

	_, err = Marshal(DefaultParams, nil)
	assert.ErrorIs(t, err, ErrNothingToDraw)
}

func TestGetPictureParams(t *testing.T) {
	r := httptest.NewRequest("GET", "/render?width=320&height=oops&format=SVG&color=%23ff000080&tz=UTC&grid=false", nil)
	p := GetPictureParams(r)

	assert.Equal(t, 320.0, p.Width)
	assert.Equal(t, DefaultParams.Height, p.Height)
	assert.Equal(t, FormatSVG, p.Format)
	assert.Equal(t, "image/svg+xml", p.Format.ContentType())
	assert.Equal(t, uint8(0xff), p.LineColor.R)
	assert.Equal(t, uint8(0x80), p.LineColor.A)
	assert.Equal(t, time.UTC, p.Location)
	assert.False(t, p.Grid)

	p = GetPictureParams(httptest.NewRequest("GET", "/render?color=nope&format=gif", nil))
	assert.Equal(t, DefaultParams.LineColor, p.LineColor)
	assert.Equal(t, FormatPNG, p.Format)
}
