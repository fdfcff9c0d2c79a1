package axis

import (
	"math"
	"strconv"
	"time"

	"github.com/ansel1/merry/v2"
	"github.com/dustin/go-humanize"
	"github.com/tebeka/strftime"
)

// LabelFormat is the label granularity chosen for an axis.
type LabelFormat int

const (
	FormatNumber LabelFormat = iota
	FormatDate
	FormatDateTime
)

var labelFormatNames = map[LabelFormat]string{
	FormatNumber:   "number",
	FormatDate:     "date",
	FormatDateTime: "datetime",
}

var labelLayouts = map[LabelFormat]string{
	FormatDate:     "%b %d",
	FormatDateTime: "%b %d %H:%M",
}

func (f LabelFormat) String() string {
	if s, ok := labelFormatNames[f]; ok {
		return s
	}
	return "unknown"
}

func (f LabelFormat) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *LabelFormat) UnmarshalText(b []byte) error {
	for k, v := range labelFormatNames {
		if v == string(b) {
			*f = k
			return nil
		}
	}
	return merry.Errorf("unknown label format: %q", string(b))
}

// Layout returns the strftime layout used for time labels of this format.
func (f LabelFormat) Layout() string {
	return labelLayouts[f]
}

// timeFormatFor picks the label granularity for ticks spaced by intervalMs.
func timeFormatFor(intervalMs float64) LabelFormat {
	if intervalMs > 0 && intervalMs < DayMs {
		return FormatDateTime
	}
	return FormatDate
}

// siThreshold is the magnitude from which value labels switch to SI prefixes.
const siThreshold = 10000

// FormatValueLabel renders a value axis label with the given number of decimals.
func FormatValueLabel(v float64, precision int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	if math.Abs(v) >= siThreshold {
		sv, prefix := humanize.ComputeSI(v)
		return strconv.FormatFloat(roundTo(sv, 2), 'f', -1, 64) + prefix
	}
	if precision < 0 {
		precision = 0
	}
	s := strconv.FormatFloat(v, 'f', precision, 64)
	if isNegativeZero(s) {
		s = s[1:]
	}
	return s
}

func isNegativeZero(s string) bool {
	if len(s) < 2 || s[0] != '-' {
		return false
	}
	for _, c := range s[1:] {
		if c != '0' && c != '.' {
			return false
		}
	}
	return true
}

// FormatTimeLabel renders a time axis label for an epoch millisecond position.
func FormatTimeLabel(tsMs float64, f LabelFormat, tz *time.Location) string {
	if tz == nil {
		tz = time.UTC
	}
	layout := f.Layout()
	if layout == "" {
		layout = labelLayouts[FormatDate]
	}
	t := time.UnixMilli(int64(tsMs)).In(tz)
	label, err := strftime.Format(layout, t)
	if err != nil {
		return t.Format(time.DateOnly)
	}
	return label
}
