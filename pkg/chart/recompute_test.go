package chart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-graphite/carbontrack/pkg/axis"
	"github.com/go-graphite/carbontrack/pkg/series"
)

var testLayout = axis.Metrics{
	WidthPx:      800,
	HeightPx:     400,
	MarginTop:    20,
	MarginRight:  20,
	MarginBottom: 20,
	MarginLeft:   20,
}

var day = int64(24 * time.Hour / time.Millisecond)

func daily(values ...float64) []series.Sample {
	res := make([]series.Sample, 0, len(values))
	for i, v := range values {
		res = append(res, series.New(int64(i)*day, v))
	}
	return res
}

func ptr[T any](v T) *T { return &v }

func TestRecomputeAuto(t *testing.T) {
	res := Recompute(Inputs{
		Samples: daily(0, 35, 100, 60),
		Value:   axis.AutoValue(),
		Time:    axis.AutoTime(),
		Layout:  testLayout,
	}, Options{})

	assert.False(t, res.Empty)
	assert.False(t, res.TimelineOnly)
	assert.Equal(t, 10, res.ValueTargetTicks)

	require.True(t, res.Value.HasDomain)
	assert.Equal(t, [2]float64{0, 100}, res.Value.Domain)
	assert.Equal(t, 10.0, res.Value.Step)
	assert.Len(t, res.Value.Ticks, 11)
	assert.False(t, res.Value.Manual)

	require.True(t, res.Time.HasDomain)
	assert.LessOrEqual(t, res.Time.Min(), 0.0)
	assert.GreaterOrEqual(t, res.Time.Max(), float64(3*day))
	assert.NotEmpty(t, res.Time.Ticks)

	assert.GreaterOrEqual(t, res.GutterPx, float64(axis.MinGutterPx))
	assert.LessOrEqual(t, res.GutterPx, float64(axis.MaxGutterPx))
	assert.Len(t, res.Visible, 4)
	assert.Equal(t, 4, res.Summary.Valued)
}

func TestRecomputeSortsSamples(t *testing.T) {
	res := Recompute(Inputs{
		Samples: []series.Sample{series.New(3*day, 1), series.New(day, 2), series.New(2*day, 3)},
		Value:   axis.AutoValue(),
		Time:    axis.AutoTime(),
		Layout:  testLayout,
	}, DefaultOptions)

	require.Len(t, res.Visible, 3)
	assert.Equal(t, []int64{day, 2 * day, 3 * day},
		[]int64{res.Visible[0].Timestamp, res.Visible[1].Timestamp, res.Visible[2].Timestamp})
}

func TestRecomputeEmpty(t *testing.T) {
	res := Recompute(Inputs{Value: axis.AutoValue(), Time: axis.AutoTime(), Layout: testLayout}, DefaultOptions)

	assert.True(t, res.Empty)
	assert.False(t, res.TimelineOnly)
	assert.False(t, res.Value.HasDomain)
	assert.False(t, res.Time.HasDomain)
	assert.Empty(t, res.Value.Ticks)
	assert.Empty(t, res.Time.Ticks)
	assert.Equal(t, float64(axis.MinGutterPx), res.GutterPx)
}

func TestRecomputeTimelineOnly(t *testing.T) {
	res := Recompute(Inputs{
		Samples: []series.Sample{series.Absent(0), series.Absent(2 * day), series.Absent(day)},
		Value:   axis.AutoValue(),
		Time:    axis.AutoTime(),
		Layout:  testLayout,
	}, DefaultOptions)

	assert.False(t, res.Empty)
	assert.True(t, res.TimelineOnly)
	assert.False(t, res.Value.HasDomain)
	require.True(t, res.Time.HasDomain)
	assert.LessOrEqual(t, res.Time.Min(), 0.0)
	assert.GreaterOrEqual(t, res.Time.Max(), float64(2*day))
}

func TestRecomputeSingleSample(t *testing.T) {
	res := Recompute(Inputs{
		Samples: []series.Sample{series.New(5*day, 5)},
		Value:   axis.AutoValue(),
		Time:    axis.AutoTime(),
		Layout:  testLayout,
	}, DefaultOptions)

	assert.Equal(t, [2]float64{4, 6}, res.Value.Domain)
	assert.Equal(t, []float64{4, 5, 6}, res.Value.Ticks)

	require.True(t, res.Time.HasDomain)
	assert.Equal(t, [2]float64{float64(5 * day), float64(5 * day)}, res.Time.Domain)
	assert.Empty(t, res.Time.Ticks)
}

func TestRecomputeManualTimeWindowTightensValues(t *testing.T) {
	samples := daily(1000, 10, 12, 18, 15, 2000)

	res := Recompute(Inputs{
		Samples: samples,
		Value:   axis.AutoValue(),
		Time:    axis.TimeOverride{Start: ptr(day), End: ptr(4 * day)},
		Layout:  testLayout,
	}, DefaultOptions)

	require.Len(t, res.Visible, 4)
	assert.Equal(t, 10.0, res.Summary.Min)
	assert.Equal(t, 18.0, res.Summary.Max)
	assert.LessOrEqual(t, res.Value.Min(), 10.0)
	assert.GreaterOrEqual(t, res.Value.Max(), 18.0)
	assert.Less(t, res.Value.Max(), 100.0)

	assert.True(t, res.Time.Manual)
	assert.Equal(t, [2]float64{float64(day), float64(4 * day)}, res.Time.Domain)
	assert.Empty(t, res.Time.Ticks)
}

func TestRecomputeManualValueAxis(t *testing.T) {
	res := Recompute(Inputs{
		Samples: daily(3, 4, 5),
		Value:   axis.ValueOverride{Min: ptr(0.0), Max: ptr(50.0), Interval: ptr(25.0)},
		Time:    axis.AutoTime(),
		Layout:  testLayout,
	}, DefaultOptions)

	assert.True(t, res.Value.Manual)
	assert.Equal(t, [2]float64{0, 50}, res.Value.Domain)
	assert.Equal(t, []float64{0, 25, 50}, res.Value.Ticks)
	assert.Len(t, res.Visible, 3)
}

func TestRecomputeSmallContainer(t *testing.T) {
	small := testLayout
	small.HeightPx = 140

	res := Recompute(Inputs{
		Samples: daily(0, 100),
		Value:   axis.AutoValue(),
		Time:    axis.AutoTime(),
		Layout:  small,
	}, DefaultOptions)

	assert.Equal(t, 3, res.ValueTargetTicks)
	assert.LessOrEqual(t, len(res.Value.Ticks), 5)
}
