package axis

import (
	"math"
	"strings"

	"github.com/ansel1/merry/v2"
)

// Axis names one of the two chart axes.
type Axis int

const (
	AxisValue Axis = iota
	AxisTime
)

func (a Axis) String() string {
	switch a {
	case AxisValue:
		return "value"
	case AxisTime:
		return "time"
	}
	return "unknown"
}

// ParseAxis accepts "value" (or "y") and "time" (or "x").
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(s) {
	case "value", "y":
		return AxisValue, nil
	case "time", "x":
		return AxisTime, nil
	}
	return 0, merry.Wrap(ErrInvalidAxisSettings,
		merry.WithValue("field", "axis"),
		merry.WithMessagef("unknown axis %q", s),
	)
}

// ValueOverride holds the user settings of the value axis. Nil fields fall
// back to the data.
type ValueOverride struct {
	Auto     bool     `json:"auto" yaml:"auto"`
	Min      *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max      *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Interval *float64 `json:"interval,omitempty" yaml:"interval,omitempty"`
}

// TimeOverride holds the user settings of the time axis, in epoch milliseconds.
type TimeOverride struct {
	Auto       bool     `json:"auto" yaml:"auto"`
	Start      *int64   `json:"start,omitempty" yaml:"start,omitempty"`
	End        *int64   `json:"end,omitempty" yaml:"end,omitempty"`
	IntervalMs *float64 `json:"intervalMs,omitempty" yaml:"intervalMs,omitempty"`
}

func AutoValue() ValueOverride { return ValueOverride{Auto: true} }
func AutoTime() TimeOverride   { return TimeOverride{Auto: true} }

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func validInterval(p *float64) bool {
	return p != nil && finite(*p) && *p > 0
}

// Validate checks a manual value axis override. Auto overrides are always valid.
func (o ValueOverride) Validate() error {
	if o.Auto {
		return nil
	}
	if o.Min != nil && !finite(*o.Min) {
		return InvalidSettings(AxisValue, "min", "must be finite")
	}
	if o.Max != nil && !finite(*o.Max) {
		return InvalidSettings(AxisValue, "max", "must be finite")
	}
	if o.Min != nil && o.Max != nil && !(*o.Max > *o.Min) {
		return InvalidSettings(AxisValue, "max", "must be greater than min")
	}
	if o.Interval != nil && !validInterval(o.Interval) {
		return InvalidSettings(AxisValue, "interval", "must be a positive finite number")
	}
	return nil
}

// Validate checks a manual time axis override. Auto overrides are always valid.
func (o TimeOverride) Validate() error {
	if o.Auto {
		return nil
	}
	if o.Start != nil && o.End != nil && !(*o.End > *o.Start) {
		return InvalidSettings(AxisTime, "end", "must be after start")
	}
	if o.IntervalMs != nil && !validInterval(o.IntervalMs) {
		return InvalidSettings(AxisTime, "intervalMs", "must be a positive finite duration")
	}
	return nil
}
