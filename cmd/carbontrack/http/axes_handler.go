package http

import (
	"net/http"

	"github.com/go-graphite/carbontrack/pkg/axis"
	"github.com/go-graphite/carbontrack/pkg/chart"
)

// axesResponse is the resolved chart plus labels ready to display.
type axesResponse struct {
	Series string `json:"series"`
	*chart.Result
	ValueLabels []string `json:"valueLabels"`
	TimeLabels  []string `json:"timeLabels"`
}

func (h *Handlers) axesHandler(w http.ResponseWriter, r *http.Request) {
	t0 := timeNow()
	details := newAccessLogDetails(r, "axes")
	defer deferredAccessLogging(accessLogger(), details, t0)
	ApiMetrics.Requests.Add(1)
	ApiMetrics.AxesRequests.Add(1)

	id := r.FormValue("series")
	ctrl, samples, err := h.load(r.Context(), id)
	if err != nil {
		writeError(w, details, err)
		return
	}

	layout := getLayout(r, h.layout)
	details.Width, details.Height = layout.WidthPx, layout.HeightPx
	res := ctrl.ResultFor(layout)
	details.SamplesCount = len(samples)
	details.VisibleSamples = len(res.Visible)

	tz := h.tz
	if name := r.FormValue("tz"); name != "" {
		if loc, err := timeLocation(name); err == nil {
			tz = loc
		}
	}

	writeJSON(w, details, axesResponse{
		Series:      id,
		Result:      &res,
		ValueLabels: valueLabels(res.Value),
		TimeLabels:  timeLabels(res.Time, tz),
	})
}

func valueLabels(r axis.Resolved) []string {
	labels := make([]string, 0, len(r.Ticks))
	for _, t := range r.Ticks {
		labels = append(labels, axis.FormatValueLabel(t, r.Precision))
	}
	return labels
}
