package axis

import (
	"math"

	"github.com/ansel1/merry/v2"
)

// MaxTicks caps the tick walk. Reaching it means the step is far too small
// for the range.
const MaxTicks = 1000

// BuildTicks returns the multiples of step from min up to max, allowing half
// a step of overshoot at the top to absorb rounding drift.
//
// Invalid arguments (step <= 0, max <= min, non-finite values) yield no ticks
// and no error: the renderer places its own. A walk longer than MaxTicks
// yields no ticks and ErrRunawayTicks.
func BuildTicks(min, max, step float64) ([]float64, error) {
	if !(step > 0) || !(max > min) || math.IsInf(step, 0) || math.IsInf(min, 0) || math.IsInf(max, 0) {
		return nil, nil
	}

	decimals := stepDecimals(step)
	start := roundTo(math.Ceil(min/step-floatEpsilon)*step, decimals)
	limit := max + step/2

	var ticks []float64
	for i := 0; i < MaxTicks; i++ {
		v := roundTo(start+float64(i)*step, decimals)
		if v > limit {
			return ticks, nil
		}
		ticks = append(ticks, v)
	}

	return nil, merry.Wrap(ErrRunawayTicks,
		merry.WithValue("min", min),
		merry.WithValue("max", max),
		merry.WithValue("step", step),
	)
}
