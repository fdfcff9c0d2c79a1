// Package series holds measurement samples and the derived values the axis
// engine consumes: ordering, extents, time windows and summaries.
package series

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/dgryski/go-onlinestats"
	"gonum.org/v1/gonum/floats"

	"github.com/go-graphite/carbontrack/pkg/axis"
)

// Sample is one dated entry of a series. Timestamp is in epoch milliseconds.
// An absent value is stored as NaN.
type Sample struct {
	Timestamp int64   `yaml:"timestamp"`
	Value     float64 `yaml:"value"`
}

func New(ts int64, v float64) Sample {
	return Sample{Timestamp: ts, Value: v}
}

// Absent returns a sample that only marks a point in time.
func Absent(ts int64) Sample {
	return Sample{Timestamp: ts, Value: math.NaN()}
}

func (s Sample) HasValue() bool {
	return !math.IsNaN(s.Value)
}

type jsonSample struct {
	Timestamp int64    `json:"timestamp"`
	Value     *float64 `json:"value"`
}

// MarshalJSON writes an absent value as null.
func (s Sample) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonSample{Timestamp: s.Timestamp, Value: nullable(s.Value)})
}

func (s *Sample) UnmarshalJSON(b []byte) error {
	var js jsonSample
	if err := json.Unmarshal(b, &js); err != nil {
		return err
	}
	s.Timestamp = js.Timestamp
	s.Value = math.NaN()
	if js.Value != nil {
		s.Value = *js.Value
	}
	return nil
}

func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Sorted returns a copy of samples ordered by timestamp. Samples sharing a
// timestamp keep their insertion order.
func Sorted(samples []Sample) []Sample {
	res := make([]Sample, len(samples))
	copy(res, samples)
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Timestamp < res[j].Timestamp
	})
	return res
}

// HasValues reports whether at least one sample carries a value.
func HasValues(samples []Sample) bool {
	for _, s := range samples {
		if s.HasValue() {
			return true
		}
	}
	return false
}

// Values returns the finite values of samples in order.
func Values(samples []Sample) []float64 {
	values := make([]float64, 0, len(samples))
	for _, s := range samples {
		if !s.HasValue() || math.IsInf(s.Value, 0) {
			continue
		}
		values = append(values, s.Value)
	}
	return values
}

// ValueExtent is the range of the finite values of samples. Samples without a
// value do not contribute.
func ValueExtent(samples []Sample) axis.Extent {
	values := Values(samples)
	if len(values) == 0 {
		return axis.EmptyExtent()
	}
	return axis.Extent{Min: floats.Min(values), Max: floats.Max(values)}
}

// TimeExtent is the range of timestamps of sorted samples, including those
// without a value.
func TimeExtent(sorted []Sample) axis.Extent {
	if len(sorted) == 0 {
		return axis.EmptyExtent()
	}
	return axis.Extent{
		Min: float64(sorted[0].Timestamp),
		Max: float64(sorted[len(sorted)-1].Timestamp),
	}
}

// Window returns the sorted samples whose timestamp lies within w, bounds
// included.
func Window(sorted []Sample, w axis.Extent) []Sample {
	if w.IsEmpty() {
		return sorted
	}
	lo := sort.Search(len(sorted), func(i int) bool {
		return float64(sorted[i].Timestamp) >= w.Min
	})
	hi := sort.Search(len(sorted), func(i int) bool {
		return float64(sorted[i].Timestamp) > w.Max
	})
	if lo >= hi {
		return []Sample{}
	}
	return sorted[lo:hi]
}

// Summary describes the visible part of a series.
type Summary struct {
	Count  int
	Valued int
	Latest *Sample
	Min    float64
	Max    float64
	Mean   float64
	Stddev float64
}

func (s Summary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Count  int      `json:"count"`
		Valued int      `json:"valued"`
		Latest *Sample  `json:"latest,omitempty"`
		Min    *float64 `json:"min"`
		Max    *float64 `json:"max"`
		Mean   *float64 `json:"mean"`
		Stddev *float64 `json:"stddev"`
	}{s.Count, s.Valued, s.Latest, nullable(s.Min), nullable(s.Max), nullable(s.Mean), nullable(s.Stddev)})
}

// Summarize computes the summary of sorted samples. Statistics are NaN when
// no sample has a value.
func Summarize(sorted []Sample) Summary {
	sum := Summary{
		Count:  len(sorted),
		Min:    math.NaN(),
		Max:    math.NaN(),
		Mean:   math.NaN(),
		Stddev: math.NaN(),
	}
	if len(sorted) > 0 {
		latest := sorted[len(sorted)-1]
		sum.Latest = &latest
	}

	values := Values(sorted)
	sum.Valued = len(values)
	if len(values) == 0 {
		return sum
	}

	r := onlinestats.NewRunning()
	for _, v := range values {
		r.Push(v)
	}

	sum.Min = floats.Min(values)
	sum.Max = floats.Max(values)
	sum.Mean = r.Mean()
	sum.Stddev = 0
	if r.Len() > 1 {
		sum.Stddev = r.Stddev()
	}
	return sum
}
