package series

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-graphite/carbontrack/pkg/axis"
)

func TestSortedIsStable(t *testing.T) {
	in := []Sample{
		New(300, 3),
		New(100, 1),
		New(200, 20),
		New(200, 21),
		Absent(50),
		New(200, 22),
	}

	got := Sorted(in)

	want := []int64{50, 100, 200, 200, 200, 300}
	for i, s := range got {
		assert.Equal(t, want[i], s.Timestamp)
	}
	assert.Equal(t, []float64{20, 21, 22}, []float64{got[2].Value, got[3].Value, got[4].Value})
	assert.Equal(t, int64(300), in[0].Timestamp, "input must not be reordered")
}

func TestValueExtent(t *testing.T) {
	tests := []struct {
		name    string
		samples []Sample
		want    axis.Extent
		empty   bool
	}{
		{
			name:    "skips absent values",
			samples: []Sample{New(1, 5), Absent(2), New(3, -2), New(4, 7.5)},
			want:    axis.Extent{Min: -2, Max: 7.5},
		},
		{
			name:    "skips infinities",
			samples: []Sample{New(1, math.Inf(1)), New(2, 3), New(3, math.Inf(-1))},
			want:    axis.Extent{Min: 3, Max: 3},
		},
		{
			name:    "only absent values",
			samples: []Sample{Absent(1), Absent(2)},
			empty:   true,
		},
		{
			name:  "no samples",
			empty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValueExtent(tt.samples)
			if tt.empty {
				assert.True(t, got.IsEmpty())
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeExtentAndWindow(t *testing.T) {
	sorted := Sorted([]Sample{New(10, 1), Absent(20), New(30, 3), New(40, 4), New(50, 5)})

	assert.Equal(t, axis.Extent{Min: 10, Max: 50}, TimeExtent(sorted))
	assert.True(t, TimeExtent(nil).IsEmpty())

	w := Window(sorted, axis.Extent{Min: 20, Max: 40})
	require.Len(t, w, 3)
	assert.Equal(t, int64(20), w[0].Timestamp)
	assert.Equal(t, int64(40), w[2].Timestamp)

	assert.Empty(t, Window(sorted, axis.Extent{Min: 41, Max: 49}))
	assert.Len(t, Window(sorted, axis.EmptyExtent()), 5)
	assert.Len(t, Window(sorted, axis.Extent{Min: 0, Max: 1000}), 5)
}

func TestSummarize(t *testing.T) {
	sum := Summarize(Sorted([]Sample{New(1, 2), New(2, 4), Absent(3), New(4, 4), New(5, 4), New(6, 5), New(7, 5), New(8, 7), New(9, 9)}))

	assert.Equal(t, 9, sum.Count)
	assert.Equal(t, 8, sum.Valued)
	require.NotNil(t, sum.Latest)
	assert.Equal(t, int64(9), sum.Latest.Timestamp)
	assert.Equal(t, 2.0, sum.Min)
	assert.Equal(t, 9.0, sum.Max)
	assert.InDelta(t, 5.0, sum.Mean, 1e-9)
	assert.Greater(t, sum.Stddev, 0.0)

	empty := Summarize(nil)
	assert.Zero(t, empty.Count)
	assert.Nil(t, empty.Latest)
	assert.True(t, math.IsNaN(empty.Mean))

	single := Summarize([]Sample{New(1, 3)})
	assert.Equal(t, 0.0, single.Stddev)
}

func TestSampleJSON(t *testing.T) {
	b, err := json.Marshal([]Sample{New(1000, 1.5), Absent(2000)})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"timestamp":1000,"value":1.5},{"timestamp":2000,"value":null}]`, string(b))

	var got []Sample
	require.NoError(t, json.Unmarshal([]byte(`[{"timestamp":5,"value":2},{"timestamp":6}]`), &got))
	require.Len(t, got, 2)
	assert.Equal(t, 2.0, got[0].Value)
	assert.False(t, got[1].HasValue())

	b, err = json.Marshal(Summarize([]Sample{Absent(1)}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":1,"valued":0,"latest":{"timestamp":1,"value":null},"min":null,"max":null,"mean":null,"stddev":null}`, string(b))
}
