// Package chart ties samples, container layout and axis settings together and
// resolves both chart axes on every change.
package chart

import (
	"github.com/go-graphite/carbontrack/pkg/axis"
	"github.com/go-graphite/carbontrack/pkg/series"
)

// Options are the layout constants of the resolver.
type Options struct {
	ValueMinPxPerTick float64 `mapstructure:"valueMinPxPerTick"`
	TimeMinPxPerTick  float64 `mapstructure:"timeMinPxPerTick"`
	CharWidthPx       float64 `mapstructure:"charWidthPx"`
}

var DefaultOptions = Options{
	ValueMinPxPerTick: 28,
	TimeMinPxPerTick:  64,
	CharWidthPx:       axis.DefaultCharWidthPx,
}

func (o Options) withDefaults() Options {
	if o.ValueMinPxPerTick <= 0 {
		o.ValueMinPxPerTick = DefaultOptions.ValueMinPxPerTick
	}
	if o.TimeMinPxPerTick <= 0 {
		o.TimeMinPxPerTick = DefaultOptions.TimeMinPxPerTick
	}
	if o.CharWidthPx <= 0 {
		o.CharWidthPx = DefaultOptions.CharWidthPx
	}
	return o
}

// Inputs is an immutable snapshot of everything a recompute depends on.
type Inputs struct {
	Samples []series.Sample
	Value   axis.ValueOverride
	Time    axis.TimeOverride
	Layout  axis.Metrics
}

// Result is the resolved rendering configuration of a chart.
type Result struct {
	Value axis.Resolved `json:"value"`
	Time  axis.Resolved `json:"time"`

	ValueTargetTicks int          `json:"valueTargetTicks"`
	TimeTargetTicks  int          `json:"timeTargetTicks"`
	GutterPx         float64      `json:"gutterPx"`
	Layout           axis.Metrics `json:"layout"`

	// Visible are the sorted samples inside the time axis window.
	Visible []series.Sample `json:"samples"`
	Summary series.Summary  `json:"summary"`

	Empty        bool `json:"empty"`
	TimelineOnly bool `json:"timelineOnly"`
}

// Recompute runs the full pipeline: sort, window, extents, layout-aware
// tick targets, then the value and time axes.
func Recompute(in Inputs, opts Options) Result {
	opts = opts.withDefaults()

	sorted := series.Sorted(in.Samples)
	res := Result{
		Layout: in.Layout,
		Empty:  len(sorted) == 0,
	}

	timeExtent := series.TimeExtent(sorted)
	visible := sorted
	if w, manual := axis.TimeWindow(timeExtent, in.Time); manual {
		visible = series.Window(sorted, w)
	}
	res.Visible = visible
	res.Summary = series.Summarize(visible)
	res.TimelineOnly = len(sorted) > 0 && !series.HasValues(sorted)

	res.ValueTargetTicks = axis.TargetTickCount(in.Layout.PlotHeight(), opts.ValueMinPxPerTick)
	if !res.TimelineOnly {
		res.Value = axis.ResolveValueAxis(series.ValueExtent(visible), in.Value, res.ValueTargetTicks)
	} else {
		res.Value = axis.Resolved{Format: axis.FormatNumber, Manual: !in.Value.Auto}
	}

	res.GutterPx = axis.MinGutterPx
	if res.Value.HasDomain {
		res.GutterPx = axis.GutterWidth(res.Value.Min(), res.Value.Max(), res.Value.Precision, opts.CharWidthPx)
	}

	res.TimeTargetTicks = axis.TargetTickCount(in.Layout.PlotWidth(res.GutterPx), opts.TimeMinPxPerTick)
	res.Time = axis.ResolveTimeAxis(timeExtent, in.Time, res.TimeTargetTicks)

	return res
}
