package series

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON(t *testing.T) {
	got, err := ParseJSON([]byte(`[
		{"timestamp": 1700000000000, "value": 71.5},
		{"timestamp": "2023-11-15T00:00:00Z", "value": null},
		{"timestamp": 1700000000001}
	]`))
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, New(1700000000000, 71.5), got[0])
	assert.Equal(t, int64(1700006400000), got[1].Timestamp)
	assert.False(t, got[1].HasValue())
	assert.False(t, got[2].HasValue())

	empty, err := ParseJSON([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestParseJSONErrors(t *testing.T) {
	tests := []string{
		`{"timestamp": 1}`,
		`[1, 2]`,
		`[{"value": 1}]`,
		`[{"timestamp": true, "value": 1}]`,
		`[{"timestamp": 1, "value": "high"}]`,
		`[{"timestamp": "yesterday", "value": 1}]`,
		`[{"timestamp": 1,`,
		`[{"timestamp": 1e30, "value": 1}]`,
		`[{"timestamp": -1e30, "value": 1}]`,
		`[{"timestamp": 1700000000000.5, "value": 1}]`,
	}

	for _, in := range tests {
		_, err := ParseJSON([]byte(in))
		assert.True(t, errors.Is(err, ErrBadSamples), "input %s: %v", in, err)
	}
}

func TestMillis(t *testing.T) {
	tests := []struct {
		in   float64
		want int64
		ok   bool
	}{
		{1.7e12, 1700000000000, true},
		{-86400000, -86400000, true},
		{0, 0, true},
		{0.5, 0, false},
		{1e30, 0, false},
		{math.MaxInt64, 0, false},
		{math.Inf(-1), 0, false},
		{math.NaN(), 0, false},
	}

	for _, tt := range tests {
		got, ok := Millis(tt.in)
		assert.Equal(t, tt.ok, ok, "Millis(%v)", tt.in)
		assert.Equal(t, tt.want, got, "Millis(%v)", tt.in)
	}
}
