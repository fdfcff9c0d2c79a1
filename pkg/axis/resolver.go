package axis

import (
	"math"

	"github.com/lomik/zapwriter"
	"go.uber.org/zap"
)

// ResolveValueAxis merges the automatic value axis with the user override.
// A manual axis takes its bounds from the override, falling back to data,
// and gets ticks only when the override carries a valid interval.
func ResolveValueAxis(data Extent, o ValueOverride, targetTicks int) Resolved {
	if o.Auto {
		r, err := AutoValueAxis(data, targetTicks)
		logTickError(err, AxisValue)
		return r
	}

	lo, hi := data.Min, data.Max
	if o.Min != nil {
		lo = *o.Min
	}
	if o.Max != nil {
		hi = *o.Max
	}
	if math.IsNaN(lo) || math.IsNaN(hi) {
		return Resolved{Format: FormatNumber, Manual: true}
	}
	if hi <= lo {
		hi = lo + DefaultStep
	}

	r := Resolved{
		HasDomain: true,
		Domain:    [2]float64{lo, hi},
		Format:    FormatNumber,
		Manual:    true,
	}

	if validInterval(o.Interval) {
		r.Step = *o.Interval
		ticks, err := BuildTicks(lo, hi, r.Step)
		logTickError(err, AxisValue)
		r.Ticks = ticks
		r.Precision = Precision(r.Step)
	} else {
		if targetTicks < 1 {
			targetTicks = 1
		}
		r.Precision = Precision(niceStep((hi - lo) / float64(targetTicks)))
	}

	return r
}

// ResolveTimeAxis merges the automatic time axis with the user override.
func ResolveTimeAxis(data Extent, o TimeOverride, targetTicks int) Resolved {
	if o.Auto {
		r, ok, err := AutoTimeAxis(data, targetTicks)
		logTickError(err, AxisTime)
		if !ok && !data.IsEmpty() {
			r.HasDomain = true
			r.Domain = [2]float64{data.Min, data.Max}
		}
		return r
	}

	lo, hi := data.Min, data.Max
	if o.Start != nil {
		lo = float64(*o.Start)
	}
	if o.End != nil {
		hi = float64(*o.End)
	}
	if math.IsNaN(lo) || math.IsNaN(hi) {
		return Resolved{Format: FormatDate, Manual: true}
	}
	if hi <= lo {
		hi = lo + DayMs
	}

	r := Resolved{
		HasDomain: true,
		Domain:    [2]float64{lo, hi},
		Manual:    true,
	}

	if validInterval(o.IntervalMs) {
		r.Step = *o.IntervalMs
		ticks, err := BuildTicks(lo, hi, r.Step)
		logTickError(err, AxisTime)
		r.Ticks = ticks
		r.Format = timeFormatFor(r.Step)
	} else {
		r.Format = timeFormatFor(PickTimeStep(hi-lo, targetTicks))
	}

	return r
}

// TimeWindow returns the range a manual time axis restricts samples to. The
// second result is false in auto mode.
func TimeWindow(data Extent, o TimeOverride) (Extent, bool) {
	if o.Auto {
		return data, false
	}
	w := data
	if o.Start != nil {
		w.Min = float64(*o.Start)
	}
	if o.End != nil {
		w.Max = float64(*o.End)
	}
	return w, true
}

func logTickError(err error, a Axis) {
	if err == nil {
		return
	}
	zapwriter.Logger("axis").Warn("tick generation aborted, falling back to renderer ticks",
		zap.String("axis", a.String()),
		zap.Error(err),
	)
}
