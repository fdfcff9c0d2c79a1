package http

import (
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/ansel1/merry/v2"
	"github.com/lomik/zapwriter"
	"github.com/valyala/fastjson"
	"go.uber.org/zap"

	"github.com/go-graphite/carbontrack/pkg/axis"
	"github.com/go-graphite/carbontrack/pkg/chart"
	"github.com/go-graphite/carbontrack/pkg/series"
	"github.com/go-graphite/carbontrack/storage"
)

const maxSettingsBody = 64 << 10

var settingsParserPool fastjson.ParserPool

type settingsResponse struct {
	Value axis.ValueOverride `json:"value"`
	Time  axis.TimeOverride  `json:"time"`
}

// settingsHandler pre-fills (GET), applies (POST) or reverts (DELETE) the
// settings of one axis.
func (h *Handlers) settingsHandler(w http.ResponseWriter, r *http.Request) {
	t0 := timeNow()
	details := newAccessLogDetails(r, "settings")
	defer deferredAccessLogging(accessLogger(), details, t0)
	ApiMetrics.Requests.Add(1)

	id := r.FormValue("series")
	ctrl, _, err := h.load(r.Context(), id)
	if err != nil {
		writeError(w, details, err)
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, details, settingsResponse{Value: ctrl.ValueSettings(), Time: ctrl.TimeSettings()})
		return
	case http.MethodPost, http.MethodDelete:
	default:
		w.Header().Set("Allow", "GET, POST, DELETE")
		writeError(w, details, merry.New("method not allowed", merry.WithHTTPCode(http.StatusMethodNotAllowed)))
		return
	}

	a, err := axis.ParseAxis(r.FormValue("axis"))
	if err != nil {
		writeError(w, details, err)
		return
	}
	details.Axis = a.String()

	if r.Method == http.MethodDelete {
		ctrl.RevertToAuto(a)
	} else {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxSettingsBody))
		if err != nil {
			writeError(w, details, merry.Wrap(err, merry.WithHTTPCode(http.StatusBadRequest)))
			return
		}
		if err := applySettings(ctrl, a, body); err != nil {
			ApiMetrics.SettingsRejected.Add(1)
			writeError(w, details, err)
			return
		}
	}
	ApiMetrics.SettingsApplied.Add(1)

	v, t := ctrl.Overrides()
	if err := h.overrides.Save(id, storage.Overrides{Value: v, Time: t}); err != nil {
		zapwriter.Logger("storage").Error("failed to persist axis settings",
			zap.String("series", id),
			zap.Error(err),
		)
	}

	res := ctrl.ResultFor(getLayout(r, h.layout))
	writeJSON(w, details, axesResponse{
		Series:      id,
		Result:      &res,
		ValueLabels: valueLabels(res.Value),
		TimeLabels:  timeLabels(res.Time, h.tz),
	})
}

func applySettings(ctrl *chart.Controller, a axis.Axis, body []byte) error {
	p := settingsParserPool.Get()
	defer settingsParserPool.Put(p)

	v, err := p.ParseBytes(body)
	if err != nil {
		return axis.InvalidSettings(a, "body", err.Error())
	}
	if v.Type() != fastjson.TypeObject {
		return axis.InvalidSettings(a, "body", "must be a JSON object")
	}

	switch a {
	case axis.AxisValue:
		o, err := parseValueOverride(v)
		if err != nil {
			return err
		}
		return ctrl.ApplyValueSettings(o)
	default:
		o, err := parseTimeOverride(v)
		if err != nil {
			return err
		}
		return ctrl.ApplyTimeSettings(o)
	}
}

func parseValueOverride(v *fastjson.Value) (axis.ValueOverride, error) {
	var o axis.ValueOverride
	var err error
	if o.Auto, err = optionalBool(v, axis.AxisValue, "auto"); err != nil {
		return o, err
	}
	if o.Min, err = optionalFloat(v, axis.AxisValue, "min"); err != nil {
		return o, err
	}
	if o.Max, err = optionalFloat(v, axis.AxisValue, "max"); err != nil {
		return o, err
	}
	if o.Interval, err = optionalFloat(v, axis.AxisValue, "interval"); err != nil {
		return o, err
	}
	return o, nil
}

func parseTimeOverride(v *fastjson.Value) (axis.TimeOverride, error) {
	var o axis.TimeOverride
	var err error
	if o.Auto, err = optionalBool(v, axis.AxisTime, "auto"); err != nil {
		return o, err
	}
	if o.Start, err = optionalTime(v, "start"); err != nil {
		return o, err
	}
	if o.End, err = optionalTime(v, "end"); err != nil {
		return o, err
	}
	if o.IntervalMs, err = optionalFloat(v, axis.AxisTime, "intervalMs"); err != nil {
		return o, err
	}
	return o, nil
}

func present(v *fastjson.Value, key string) *fastjson.Value {
	f := v.Get(key)
	if f == nil || f.Type() == fastjson.TypeNull {
		return nil
	}
	return f
}

func optionalBool(v *fastjson.Value, a axis.Axis, key string) (bool, error) {
	f := present(v, key)
	if f == nil {
		return false, nil
	}
	b, err := f.Bool()
	if err != nil {
		return false, axis.InvalidSettings(a, key, "must be a boolean")
	}
	return b, nil
}

func optionalFloat(v *fastjson.Value, a axis.Axis, key string) (*float64, error) {
	f := present(v, key)
	if f == nil {
		return nil, nil
	}
	var n float64
	var err error
	switch f.Type() {
	case fastjson.TypeNumber:
		n, err = f.Float64()
	case fastjson.TypeString:
		n, err = strconv.ParseFloat(string(f.GetStringBytes()), 64)
	default:
		err = merry.New("not a number")
	}
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, axis.InvalidSettings(a, key, "must be a finite number")
	}
	return &n, nil
}

// optionalTime accepts epoch milliseconds or an RFC 3339 date.
func optionalTime(v *fastjson.Value, key string) (*int64, error) {
	f := present(v, key)
	if f == nil {
		return nil, nil
	}
	switch f.Type() {
	case fastjson.TypeNumber:
		n, err := f.Float64()
		if err != nil {
			break
		}
		if ms, ok := series.Millis(n); ok {
			return &ms, nil
		}
	case fastjson.TypeString:
		t, err := time.Parse(time.RFC3339, string(f.GetStringBytes()))
		if err == nil {
			ms := t.UnixMilli()
			return &ms, nil
		}
	}
	return nil, axis.InvalidSettings(axis.AxisTime, key, "must be epoch milliseconds or an RFC 3339 date")
}

// settingsKey identifies axis settings inside render cache keys.
func settingsKey(v axis.ValueOverride, t axis.TimeOverride) string {
	b := make([]byte, 0, 64)
	b = appendFloatPtr(append(b, 'v'), v.Auto, v.Min, v.Max, v.Interval)
	b = append(b, 't')
	if t.Auto {
		return string(append(b, 'a'))
	}
	b = appendIntPtr(b, t.Start)
	b = appendIntPtr(b, t.End)
	return string(appendFloatPtr(b, false, t.IntervalMs))
}

func appendFloatPtr(b []byte, auto bool, ps ...*float64) []byte {
	if auto {
		return append(b, 'a')
	}
	for _, p := range ps {
		b = append(b, ',')
		if p != nil {
			b = strconv.AppendFloat(b, *p, 'g', -1, 64)
		}
	}
	return b
}

func appendIntPtr(b []byte, p *int64) []byte {
	b = append(b, ',')
	if p != nil {
		b = strconv.AppendInt(b, *p, 10)
	}
	return b
}
