package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/ansel1/merry/v2"

	"github.com/go-graphite/carbontrack/pkg/axis"
	"github.com/go-graphite/carbontrack/pkg/render"
)

func (h *Handlers) renderHandler(w http.ResponseWriter, r *http.Request) {
	t0 := timeNow()
	details := newAccessLogDetails(r, "render")
	defer deferredAccessLogging(accessLogger(), details, t0)
	ApiMetrics.Requests.Add(1)
	ApiMetrics.RenderRequests.Add(1)

	id := r.FormValue("series")
	ctrl, samples, err := h.load(r.Context(), id)
	if err != nil {
		writeError(w, details, err)
		return
	}
	details.SamplesCount = len(samples)

	params := render.GetPictureParams(r)
	params.Location = h.tz
	if name := r.FormValue("tz"); name != "" {
		if loc, err := timeLocation(name); err == nil {
			params.Location = loc
		}
	}
	if params.Title == "" {
		params.Title = id
	}
	details.Format = string(params.Format)
	details.Width, details.Height = params.Width, params.Height

	layout := h.layout
	layout.WidthPx, layout.HeightPx = params.Width, params.Height
	in, res := ctrl.ResolveFor(layout)
	details.VisibleSamples = len(res.Visible)

	key := renderCacheKey(id, in.Samples, settingsKey(in.Value, in.Time), r)
	details.UseCache = true
	details.CacheTimeout = h.cacheTTL

	if b, err := h.cache.Get(key); err == nil {
		ApiMetrics.RequestCacheHits.Add(1)
		details.FromCache = true
		writeResponse(w, details, http.StatusOK, b, params.Format.ContentType())
		return
	}
	ApiMetrics.RequestCacheMisses.Add(1)

	if err := h.limiter.Enter(r.Context()); err != nil {
		writeError(w, details, merry.Wrap(err, merry.WithHTTPCode(http.StatusServiceUnavailable)))
		return
	}
	defer h.limiter.Leave()

	b, err := render.Marshal(params, &res)
	if err != nil {
		if errors.Is(err, render.ErrNothingToDraw) {
			err = merry.Wrap(err, merry.WithHTTPCode(http.StatusNotFound))
		}
		writeError(w, details, err)
		return
	}

	h.cache.Set(key, b, h.cacheTTL)
	writeResponse(w, details, http.StatusOK, b, params.Format.ContentType())
}

func timeLocation(name string) (*time.Location, error) {
	return time.LoadLocation(name)
}

func timeLabels(r axis.Resolved, tz *time.Location) []string {
	labels := make([]string, 0, len(r.Ticks))
	for _, t := range r.Ticks {
		labels = append(labels, axis.FormatTimeLabel(t, r.Format, tz))
	}
	return labels
}
