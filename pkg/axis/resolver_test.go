package axis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64       { return &v }

func TestResolveValueAxisAuto(t *testing.T) {
	ext := Extent{Min: 3, Max: 97}
	auto, err := AutoValueAxis(ext, 10)
	require.NoError(t, err)

	got := ResolveValueAxis(ext, AutoValue(), 10)
	assert.Equal(t, auto, got)
}

func TestResolveValueAxisManual(t *testing.T) {
	data := Extent{Min: 3, Max: 97}

	tests := []struct {
		name       string
		override   ValueOverride
		wantDomain [2]float64
		wantTicks  []float64
		wantStep   float64
	}{
		{
			name:       "explicit bounds and interval",
			override:   ValueOverride{Min: f64(0), Max: f64(50), Interval: f64(25)},
			wantDomain: [2]float64{0, 50},
			wantTicks:  []float64{0, 25, 50},
			wantStep:   25,
		},
		{
			name:       "no interval leaves ticks to the renderer",
			override:   ValueOverride{Min: f64(0), Max: f64(50)},
			wantDomain: [2]float64{0, 50},
		},
		{
			name:       "missing bounds fall back to data",
			override:   ValueOverride{Min: f64(-10)},
			wantDomain: [2]float64{-10, 97},
		},
		{
			name:       "bound above data is widened",
			override:   ValueOverride{Min: f64(200), Interval: f64(0.5)},
			wantDomain: [2]float64{200, 201},
			wantTicks:  []float64{200, 200.5, 201},
			wantStep:   0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ResolveValueAxis(data, tt.override, 10)
			assert.True(t, r.HasDomain)
			assert.True(t, r.Manual)
			assert.Equal(t, tt.wantDomain, r.Domain)
			assert.Equal(t, tt.wantTicks, r.Ticks)
			assert.Equal(t, tt.wantStep, r.Step)
		})
	}
}

func TestResolveValueAxisManualWithoutData(t *testing.T) {
	r := ResolveValueAxis(EmptyExtent(), ValueOverride{Max: f64(10)}, 8)
	assert.False(t, r.HasDomain)

	r = ResolveValueAxis(EmptyExtent(), ValueOverride{Min: f64(0), Max: f64(10), Interval: f64(5)}, 8)
	assert.True(t, r.HasDomain)
	assert.Equal(t, []float64{0, 5, 10}, r.Ticks)
}

func TestResolveValueAxisRoundTrip(t *testing.T) {
	extents := []Extent{
		{Min: 3, Max: 97},
		{Min: 71.3, Max: 74.9},
		{Min: -0.034, Max: 0.0071},
		{Min: 5, Max: 5},
		{Min: 120000, Max: 1250000},
	}

	for _, ext := range extents {
		auto := ResolveValueAxis(ext, AutoValue(), 8)
		require.True(t, auto.HasDomain)

		manual := ResolveValueAxis(ext, ValueOverride{
			Min:      f64(auto.Min()),
			Max:      f64(auto.Max()),
			Interval: f64(auto.Step),
		}, 8)

		assert.Equal(t, auto.Ticks, manual.Ticks, "extent %v", ext)
		assert.Equal(t, auto.Domain, manual.Domain, "extent %v", ext)
	}
}

func TestResolveTimeAxisRoundTrip(t *testing.T) {
	start := time.Date(2024, time.May, 1, 7, 13, 0, 0, time.UTC)
	spans := []time.Duration{
		90 * time.Minute,
		11 * time.Hour,
		4 * day,
		20 * day,
		400 * day,
	}

	for _, span := range spans {
		ext := Extent{
			Min: float64(start.UnixMilli()),
			Max: float64(start.Add(span).UnixMilli()),
		}
		auto := ResolveTimeAxis(ext, AutoTime(), 8)
		require.True(t, auto.HasDomain)
		require.NotEmpty(t, auto.Ticks, "span %v", span)

		manual := ResolveTimeAxis(ext, TimeOverride{
			Start:      i64(int64(auto.Min())),
			End:        i64(int64(auto.Max())),
			IntervalMs: f64(auto.Step),
		}, 8)

		assert.True(t, manual.Manual)
		assert.Equal(t, auto.Domain, manual.Domain, "span %v", span)
		assert.Equal(t, auto.Ticks, manual.Ticks, "span %v", span)
		assert.Equal(t, auto.Format, manual.Format, "span %v", span)
	}
}

func TestResolveTimeAxis(t *testing.T) {
	start := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	data := Extent{
		Min: float64(start.UnixMilli()),
		Max: float64(start.Add(20 * day).UnixMilli()),
	}

	t.Run("auto", func(t *testing.T) {
		r := ResolveTimeAxis(data, AutoTime(), 8)
		assert.True(t, r.HasDomain)
		assert.False(t, r.Manual)
		assert.Equal(t, ms(3*day), r.Step)
		assert.Equal(t, FormatDate, r.Format)
	})

	t.Run("auto single timestamp keeps raw bounds", func(t *testing.T) {
		ts := Extent{Min: data.Min, Max: data.Min}
		r := ResolveTimeAxis(ts, AutoTime(), 8)
		assert.True(t, r.HasDomain)
		assert.Equal(t, [2]float64{data.Min, data.Min}, r.Domain)
		assert.Nil(t, r.Ticks)
		assert.Equal(t, FormatDate, r.Format)
	})

	t.Run("manual hourly interval", func(t *testing.T) {
		from := start.Add(2 * day)
		r := ResolveTimeAxis(data, TimeOverride{
			Start:      i64(from.UnixMilli()),
			End:        i64(from.Add(4 * time.Hour).UnixMilli()),
			IntervalMs: f64(ms(time.Hour)),
		}, 8)
		assert.True(t, r.Manual)
		assert.Len(t, r.Ticks, 5)
		assert.Equal(t, FormatDateTime, r.Format)
	})

	t.Run("manual without interval picks format from span", func(t *testing.T) {
		r := ResolveTimeAxis(data, TimeOverride{Start: i64(start.Add(10 * day).UnixMilli())}, 8)
		assert.Nil(t, r.Ticks)
		assert.Equal(t, [2]float64{float64(start.Add(10 * day).UnixMilli()), data.Max}, r.Domain)
		assert.Equal(t, FormatDate, r.Format)
	})

	t.Run("manual start after data is widened by a day", func(t *testing.T) {
		late := start.Add(40 * day).UnixMilli()
		r := ResolveTimeAxis(data, TimeOverride{Start: i64(late)}, 8)
		assert.Equal(t, [2]float64{float64(late), float64(late) + DayMs}, r.Domain)
	})
}

func TestTimeWindow(t *testing.T) {
	data := Extent{Min: 1000, Max: 9000}

	w, ok := TimeWindow(data, AutoTime())
	assert.False(t, ok)
	assert.Equal(t, data, w)

	w, ok = TimeWindow(data, TimeOverride{Start: i64(2000)})
	assert.True(t, ok)
	assert.Equal(t, Extent{Min: 2000, Max: 9000}, w)

	w, ok = TimeWindow(data, TimeOverride{Start: i64(2000), End: i64(3000)})
	assert.True(t, ok)
	assert.Equal(t, Extent{Min: 2000, Max: 3000}, w)
}
