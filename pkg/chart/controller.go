package chart

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/barkimedes/go-deepcopy"
	"github.com/lomik/zapwriter"
	"go.uber.org/zap"

	"github.com/go-graphite/carbontrack/pkg/axis"
	"github.com/go-graphite/carbontrack/pkg/series"
)

// Size is a container measurement delivered by the hosting layer.
type Size struct {
	WidthPx  float64
	HeightPx float64
}

// Controller keeps the chart inputs and republishes a fresh Result after
// every transition. Overrides change only through ApplyValueSettings,
// ApplyTimeSettings and RevertToAuto.
type Controller struct {
	mu      sync.Mutex
	opts    Options
	samples []series.Sample
	value   axis.ValueOverride
	time    axis.TimeOverride
	layout  axis.Metrics

	result atomic.Pointer[Result]
	logger *zap.Logger
}

// NewController returns a controller in auto mode on both axes with an
// initial result for an empty series.
func NewController(layout axis.Metrics, opts Options) *Controller {
	c := &Controller{
		opts:   opts.withDefaults(),
		value:  axis.AutoValue(),
		time:   axis.AutoTime(),
		layout: layout,
		logger: zapwriter.Logger("chart"),
	}
	c.recompute("init")
	return c
}

// WithOverrides restores previously applied settings. Invalid settings are
// rejected as in ApplyValueSettings and ApplyTimeSettings.
func (c *Controller) WithOverrides(v axis.ValueOverride, t axis.TimeOverride) error {
	if err := v.Validate(); err != nil {
		return err
	}
	if err := t.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.value, c.time = v, t
	c.recompute("overridesRestored")
	return nil
}

// DataChanged replaces the series samples.
func (c *Controller) DataChanged(samples []series.Sample) {
	snapshot := make([]series.Sample, len(samples))
	copy(snapshot, samples)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.samples = snapshot
	c.recompute("dataChanged")
}

// ContainerResized updates the container size, keeping the margins.
func (c *Controller) ContainerResized(size Size) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.layout.WidthPx = size.WidthPx
	c.layout.HeightPx = size.HeightPx
	c.recompute("containerResized")
}

// ApplyValueSettings validates and applies a value axis override. A rejected
// override leaves the configuration and the published result untouched.
func (c *Controller) ApplyValueSettings(o axis.ValueOverride) error {
	if err := o.Validate(); err != nil {
		c.logger.Info("value axis settings rejected",
			zap.String("field", axis.Field(err)),
			zap.Error(err),
		)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = o
	c.recompute("axisSettingsApplied")
	return nil
}

// ApplyTimeSettings validates and applies a time axis override.
func (c *Controller) ApplyTimeSettings(o axis.TimeOverride) error {
	if err := o.Validate(); err != nil {
		c.logger.Info("time axis settings rejected",
			zap.String("field", axis.Field(err)),
			zap.Error(err),
		)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.time = o
	c.recompute("axisSettingsApplied")
	return nil
}

// RevertToAuto switches one axis back to auto mode.
func (c *Controller) RevertToAuto(a axis.Axis) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch a {
	case axis.AxisValue:
		c.value = axis.AutoValue()
	case axis.AxisTime:
		c.time = axis.AutoTime()
	}
	c.recompute("axisSettingsReverted")
}

// Result returns the latest published result. It must not be modified.
func (c *Controller) Result() *Result {
	return c.result.Load()
}

// Snapshot returns a deep copy of the latest result.
func (c *Controller) Snapshot() (Result, error) {
	cp, err := deepcopy.Anything(*c.result.Load())
	if err != nil {
		return Result{}, err
	}
	return cp.(Result), nil
}

// ResultFor resolves the current samples and settings for another container
// without changing the controller layout.
func (c *Controller) ResultFor(layout axis.Metrics) Result {
	_, res := c.ResolveFor(layout)
	return res
}

// ResolveFor is ResultFor that also returns the inputs the result was
// computed from. Both come from one snapshot, so the inputs identify the
// result even while settings change concurrently.
func (c *Controller) ResolveFor(layout axis.Metrics) (Inputs, Result) {
	c.mu.Lock()
	in := Inputs{
		Samples: c.samples,
		Value:   c.value,
		Time:    c.time,
		Layout:  layout,
	}
	c.mu.Unlock()
	return in, Recompute(in, c.opts)
}

// Overrides returns the current axis settings.
func (c *Controller) Overrides() (axis.ValueOverride, axis.TimeOverride) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, c.time
}

// ValueSettings pre-fills the value axis settings form: the manual override
// as applied, or the bounds and interval auto mode currently shows.
func (c *Controller) ValueSettings() axis.ValueOverride {
	v, _ := c.Overrides()
	if !v.Auto {
		return v
	}
	r := c.Result().Value
	if !r.HasDomain {
		return v
	}
	lo, hi, step := r.Min(), r.Max(), r.Step
	return axis.ValueOverride{Auto: true, Min: &lo, Max: &hi, Interval: &step}
}

// TimeSettings pre-fills the time axis settings form.
func (c *Controller) TimeSettings() axis.TimeOverride {
	_, t := c.Overrides()
	if !t.Auto {
		return t
	}
	r := c.Result().Time
	if !r.HasDomain {
		return t
	}
	start, end := int64(r.Min()), int64(r.Max())
	o := axis.TimeOverride{Auto: true, Start: &start, End: &end}
	if r.Step > 0 {
		step := r.Step
		o.IntervalMs = &step
	}
	return o
}

// WatchResize recomputes once per size notification until ctx is done or
// sizes is closed.
func (c *Controller) WatchResize(ctx context.Context, sizes <-chan Size) {
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-sizes:
			if !ok {
				return
			}
			c.ContainerResized(s)
		}
	}
}

// recompute must be called with c.mu held.
func (c *Controller) recompute(reason string) {
	res := Recompute(Inputs{
		Samples: c.samples,
		Value:   c.value,
		Time:    c.time,
		Layout:  c.layout,
	}, c.opts)
	c.result.Store(&res)

	if ce := c.logger.Check(zap.DebugLevel, "chart recomputed"); ce != nil {
		ce.Write(
			zap.String("reason", reason),
			zap.Int("samples", len(c.samples)),
			zap.Int("visible", len(res.Visible)),
			zap.Int("value_ticks", len(res.Value.Ticks)),
			zap.Int("time_ticks", len(res.Time.Ticks)),
		)
	}
}
