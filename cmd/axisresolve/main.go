// axisresolve resolves the chart axes of a JSON sample file and prints them
// as YAML.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/ansel1/merry/v2"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/go-graphite/carbontrack/cmd/carbontrack/config"
	"github.com/go-graphite/carbontrack/pkg/axis"
	"github.com/go-graphite/carbontrack/pkg/chart"
	"github.com/go-graphite/carbontrack/pkg/series"
)

type options struct {
	width  float64
	height float64
	tz     string

	valueMin      string
	valueMax      string
	valueInterval string

	timeStart    string
	timeEnd      string
	timeInterval string
}

func main() {
	var o options

	rootCmd := &cobra.Command{
		Use:   "axisresolve [samples.json]",
		Short: "Resolve the chart axes of a series",
		Long: `axisresolve reads a JSON array of {"timestamp", "value"} samples from a
file or stdin, resolves the value and time axes for the given container and
prints domains, ticks and labels as YAML.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return run(in, cmd.OutOrStdout(), o)
		},
	}

	flags := rootCmd.Flags()
	flags.Float64Var(&o.width, "width", config.Config.Layout.WidthPx, "container width in pixels")
	flags.Float64Var(&o.height, "height", config.Config.Layout.HeightPx, "container height in pixels")
	flags.StringVar(&o.tz, "tz", "UTC", "time zone of time labels, name or name,offset")
	flags.StringVar(&o.valueMin, "value-min", "", "manual value axis minimum")
	flags.StringVar(&o.valueMax, "value-max", "", "manual value axis maximum")
	flags.StringVar(&o.valueInterval, "value-interval", "", "manual value axis tick interval")
	flags.StringVar(&o.timeStart, "time-start", "", "manual time axis start, epoch ms or RFC 3339")
	flags.StringVar(&o.timeEnd, "time-end", "", "manual time axis end, epoch ms or RFC 3339")
	flags.StringVar(&o.timeInterval, "time-interval", "", "manual time axis tick interval, epoch ms or a duration such as 24h")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "axisresolve:", err)
		os.Exit(1)
	}
}

type axisOutput struct {
	Domain      []string `yaml:"domain,omitempty"`
	Step        string   `yaml:"step,omitempty"`
	Format      string   `yaml:"format"`
	Manual      bool     `yaml:"manual"`
	TargetTicks int      `yaml:"targetTicks"`
	Ticks       []string `yaml:"ticks"`
}

type output struct {
	Value    axisOutput `yaml:"value"`
	Time     axisOutput `yaml:"time"`
	GutterPx float64    `yaml:"gutterPx"`
	Empty    bool       `yaml:"empty,omitempty"`
	Timeline bool       `yaml:"timelineOnly,omitempty"`
	Summary  string     `yaml:"summary"`
}

func run(in io.Reader, out io.Writer, o options) error {
	b, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	samples, err := series.ParseJSON(b)
	if err != nil {
		return err
	}

	tz, err := config.ParseTimezone(o.tz)
	if err != nil {
		return err
	}

	value, err := o.valueOverride()
	if err != nil {
		return err
	}
	tm, err := o.timeOverride()
	if err != nil {
		return err
	}

	layout := config.Config.Layout.Metrics
	layout.WidthPx, layout.HeightPx = o.width, o.height

	res := chart.Recompute(chart.Inputs{
		Samples: samples,
		Value:   value,
		Time:    tm,
		Layout:  layout,
	}, config.Config.Layout.Options)

	enc, err := yaml.Marshal(describe(res, tz))
	if err != nil {
		return merry.Wrap(err)
	}
	_, err = out.Write(enc)
	return err
}

func describe(res chart.Result, tz *time.Location) output {
	valueLabel := func(v float64) string { return axis.FormatValueLabel(v, res.Value.Precision) }
	timeLabel := func(v float64) string { return time.UnixMilli(int64(v)).In(tz).Format(time.RFC3339) }

	o := output{
		Value:    describeAxis(res.Value, res.ValueTargetTicks, valueLabel, valueLabel),
		Time:     describeAxis(res.Time, res.TimeTargetTicks, timeLabel, func(v float64) string { return axis.FormatTimeLabel(v, res.Time.Format, tz) }),
		GutterPx: res.GutterPx,
		Empty:    res.Empty,
		Timeline: res.TimelineOnly,
		Summary:  summaryLine(res.Summary),
	}
	if res.Time.Step > 0 {
		o.Time.Step = (time.Duration(res.Time.Step) * time.Millisecond).String()
	}
	return o
}

func describeAxis(r axis.Resolved, target int, bound, label func(float64) string) axisOutput {
	o := axisOutput{
		Format:      r.Format.String(),
		Manual:      r.Manual,
		TargetTicks: target,
		Ticks:       make([]string, 0, len(r.Ticks)),
	}
	if r.HasDomain {
		o.Domain = []string{bound(r.Min()), bound(r.Max())}
	}
	if r.Step > 0 {
		o.Step = strconv.FormatFloat(r.Step, 'f', -1, 64)
	}
	for _, t := range r.Ticks {
		o.Ticks = append(o.Ticks, label(t))
	}
	return o
}

func summaryLine(s series.Summary) string {
	if s.Count == 0 {
		return "no samples"
	}
	line := fmt.Sprintf("%s samples, %s with a value", humanize.Comma(int64(s.Count)), humanize.Comma(int64(s.Valued)))
	if s.Valued > 0 {
		line += fmt.Sprintf(", mean %s", humanize.FtoaWithDigits(s.Mean, 3))
	}
	return line
}

func (o options) valueOverride() (axis.ValueOverride, error) {
	if o.valueMin == "" && o.valueMax == "" && o.valueInterval == "" {
		return axis.AutoValue(), nil
	}
	var v axis.ValueOverride
	var err error
	if v.Min, err = parseFloatFlag(axis.AxisValue, "min", o.valueMin); err != nil {
		return v, err
	}
	if v.Max, err = parseFloatFlag(axis.AxisValue, "max", o.valueMax); err != nil {
		return v, err
	}
	if v.Interval, err = parseFloatFlag(axis.AxisValue, "interval", o.valueInterval); err != nil {
		return v, err
	}
	return v, v.Validate()
}

func (o options) timeOverride() (axis.TimeOverride, error) {
	if o.timeStart == "" && o.timeEnd == "" && o.timeInterval == "" {
		return axis.AutoTime(), nil
	}
	var t axis.TimeOverride
	var err error
	if t.Start, err = parseTimeFlag("start", o.timeStart); err != nil {
		return t, err
	}
	if t.End, err = parseTimeFlag("end", o.timeEnd); err != nil {
		return t, err
	}
	if o.timeInterval != "" {
		ms, err := strconv.ParseFloat(o.timeInterval, 64)
		if err != nil {
			d, derr := time.ParseDuration(o.timeInterval)
			if derr != nil {
				return t, axis.InvalidSettings(axis.AxisTime, "intervalMs", "must be milliseconds or a duration")
			}
			ms = float64(d.Milliseconds())
		}
		t.IntervalMs = &ms
	}
	return t, t.Validate()
}

func parseFloatFlag(a axis.Axis, field, s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, axis.InvalidSettings(a, field, "must be a number")
	}
	return &v, nil
}

func parseTimeFlag(field, s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &ms, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, axis.InvalidSettings(axis.AxisTime, field, "must be epoch milliseconds or an RFC 3339 date")
	}
	ms := t.UnixMilli()
	return &ms, nil
}
