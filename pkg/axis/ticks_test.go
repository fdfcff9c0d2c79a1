package axis

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTicks(t *testing.T) {
	tests := []struct {
		name     string
		min, max float64
		step     float64
		want     []float64
	}{
		{
			name: "integers",
			min:  0, max: 10, step: 2,
			want: []float64{0, 2, 4, 6, 8, 10},
		},
		{
			name: "decimal steps do not drift",
			min:  0, max: 0.5, step: 0.1,
			want: []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5},
		},
		{
			name: "half step overshoot is kept",
			min:  0, max: 9.6, step: 2,
			want: []float64{0, 2, 4, 6, 8, 10},
		},
		{
			name: "more than half step overshoot is dropped",
			min:  0, max: 8.9, step: 2,
			want: []float64{0, 2, 4, 6, 8},
		},
		{
			name: "first tick snaps to a multiple",
			min:  3, max: 21, step: 5,
			want: []float64{5, 10, 15, 20},
		},
		{
			name: "negative range",
			min:  -4, max: 4, step: 2,
			want: []float64{-4, -2, 0, 2, 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildTicks(tt.min, tt.max, tt.step)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildTicksNoTicks(t *testing.T) {
	tests := []struct {
		name           string
		min, max, step float64
	}{
		{"zero step", 0, 10, 0},
		{"negative step", 0, 10, -1},
		{"empty range", 5, 5, 1},
		{"inverted range", 10, 0, 1},
		{"nan step", 0, 10, math.NaN()},
		{"infinite max", 0, math.Inf(1), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildTicks(tt.min, tt.max, tt.step)
			assert.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestBuildTicksRunawayGuard(t *testing.T) {
	got, err := BuildTicks(0, 1e6, 0.001)
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, ErrRunawayTicks))
}

func TestBuildTicksProperties(t *testing.T) {
	tests := []struct {
		min, max, step float64
	}{
		{0, 100, 10},
		{-3.7, 12.2, 0.5},
		{0.001, 0.0093, 0.001},
		{1700000000000, 1700000000000 + 9*float64(24*time.Hour/time.Millisecond), float64(2 * 24 * time.Hour / time.Millisecond)},
		{-1e9, 1e9, 2e8},
		{1e-17, 5e-17, 5e-18},
		{-3e-200, 7e-200, 1e-200},
	}

	for _, tt := range tests {
		ticks, err := BuildTicks(tt.min, tt.max, tt.step)
		require.NoError(t, err)
		require.NotEmpty(t, ticks)

		assert.GreaterOrEqual(t, ticks[0], tt.min-tt.step/2)
		assert.LessOrEqual(t, ticks[len(ticks)-1], tt.max+tt.step/2)
		for i := 1; i < len(ticks); i++ {
			assert.InDelta(t, tt.step, ticks[i]-ticks[i-1], tt.step*1e-9, "gap %d of %v", i, ticks)
		}
	}
}
