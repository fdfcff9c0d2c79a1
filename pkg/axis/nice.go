package axis

import (
	"math"
	"strconv"
	"strings"

	"github.com/ansel1/merry/v2"
)

// DefaultStep substitutes a step that NiceNumber refused.
const DefaultStep = 1.0

const (
	floatEpsilon = 0.00000000001

	// maxLabelPrecision bounds the decimals shown in value labels.
	maxLabelPrecision = 6
)

// NiceNumber rounds rawStep up to the closest value of the form 1, 2, 5 or 10
// times a power of ten.
func NiceNumber(rawStep float64) (float64, error) {
	if !(rawStep > 0) || math.IsInf(rawStep, 0) {
		return 0, merry.Wrap(ErrInvalidInput, merry.WithValue("step", rawStep))
	}

	power := math.Pow(10, math.Floor(math.Log10(rawStep)))
	fraction := rawStep / power

	var niceFraction float64
	switch {
	case fraction <= 1:
		niceFraction = 1
	case fraction <= 2:
		niceFraction = 2
	case fraction <= 5:
		niceFraction = 5
	default:
		niceFraction = 10
	}

	return niceFraction * power, nil
}

// niceStep is NiceNumber with the InvalidInput recovery applied.
func niceStep(rawStep float64) float64 {
	step, err := NiceNumber(rawStep)
	if err != nil {
		return DefaultStep
	}
	return step
}

// stepDecimals returns how many fractional digits are needed to write step.
// It follows the magnitude of step, however small.
func stepDecimals(step float64) int {
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return 0
	}
	s := strconv.FormatFloat(step, 'f', -1, 64)
	i := strings.IndexByte(s, '.')
	if i < 0 {
		return 0
	}
	return len(s) - i - 1
}

// Precision returns the number of decimals labels need for ticks spaced by step.
func Precision(step float64) int {
	d := stepDecimals(step)
	if d > maxLabelPrecision {
		d = maxLabelPrecision
	}
	return d
}

// roundTo removes floating point noise accumulated by step arithmetic.
func roundTo(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	if math.IsInf(p, 0) || p == 0 {
		return v
	}
	x := v * p
	if math.IsInf(x, 0) || math.Abs(x) >= 1e15 {
		return v
	}
	return math.Round(x) / p
}
