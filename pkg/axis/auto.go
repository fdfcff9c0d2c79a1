package axis

import (
	"math"
)

// Extent is the [Min, Max] range of a data attribute. NaN bounds mean there
// is no data.
type Extent struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// EmptyExtent has no data.
func EmptyExtent() Extent {
	return Extent{Min: math.NaN(), Max: math.NaN()}
}

func (e Extent) IsEmpty() bool {
	return math.IsNaN(e.Min) || math.IsNaN(e.Max)
}

func (e Extent) Span() float64 {
	return e.Max - e.Min
}

// Resolved is the rendering configuration of one axis. It is replaced as a
// whole on every recompute.
type Resolved struct {
	HasDomain bool        `json:"hasDomain"`
	Domain    [2]float64  `json:"domain"`
	Ticks     []float64   `json:"ticks"`
	Step      float64     `json:"step,omitempty"`
	Format    LabelFormat `json:"labelFormat"`
	Precision int         `json:"precision"`
	Manual    bool        `json:"manual"`
}

func (r Resolved) Min() float64 { return r.Domain[0] }
func (r Resolved) Max() float64 { return r.Domain[1] }

// AutoValueAxis derives a nice value domain containing ext and its ticks.
// A single distinct value is widened by one on each side with a step of one.
func AutoValueAxis(ext Extent, targetTicks int) (Resolved, error) {
	if ext.IsEmpty() {
		return Resolved{Format: FormatNumber}, nil
	}

	if ext.Max == ext.Min {
		step := DefaultStep
		lo, hi := ext.Min-step, ext.Max+step
		ticks, err := BuildTicks(lo, hi, step)
		return Resolved{
			HasDomain: true,
			Domain:    [2]float64{lo, hi},
			Ticks:     ticks,
			Step:      step,
			Format:    FormatNumber,
			Precision: Precision(step),
		}, err
	}

	if targetTicks < 1 {
		targetTicks = 1
	}
	step := niceStep(ext.Span() / float64(targetTicks))
	lo, hi := snapDomain(ext, step)
	ticks, err := BuildTicks(lo, hi, step)

	return Resolved{
		HasDomain: true,
		Domain:    [2]float64{lo, hi},
		Ticks:     ticks,
		Step:      step,
		Format:    FormatNumber,
		Precision: Precision(step),
	}, err
}

// AutoTimeAxis derives a time domain snapped to a TimeSteps interval. It
// returns false when ext spans no time, in which case the caller keeps the
// raw bounds without ticks.
func AutoTimeAxis(ext Extent, targetTicks int) (Resolved, bool, error) {
	if ext.IsEmpty() || !(ext.Max > ext.Min) {
		return Resolved{Format: FormatDate}, false, nil
	}

	step := PickTimeStep(ext.Span(), targetTicks)
	lo, hi := snapDomain(ext, step)
	ticks, err := BuildTicks(lo, hi, step)

	return Resolved{
		HasDomain: true,
		Domain:    [2]float64{lo, hi},
		Ticks:     ticks,
		Step:      step,
		Format:    timeFormatFor(step),
	}, true, err
}

// snapDomain extends ext outwards to the closest multiples of step.
func snapDomain(ext Extent, step float64) (float64, float64) {
	decimals := stepDecimals(step)

	lo := roundTo(math.Floor(ext.Min/step)*step, decimals)
	if lo > ext.Min {
		lo = roundTo(lo-step, decimals)
		if lo > ext.Min {
			lo = math.Floor(ext.Min/step)*step - step
		}
	}
	hi := roundTo(math.Ceil(ext.Max/step)*step, decimals)
	if hi < ext.Max {
		hi = roundTo(hi+step, decimals)
		if hi < ext.Max {
			hi = math.Ceil(ext.Max/step)*step + step
		}
	}
	return lo, hi
}
