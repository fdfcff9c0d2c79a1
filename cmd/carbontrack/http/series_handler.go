package http

import (
	"io"
	"net/http"

	"github.com/ansel1/merry/v2"

	"github.com/go-graphite/carbontrack/pkg/series"
	"github.com/go-graphite/carbontrack/storage"
)

const maxSamplesBody = 8 << 20

type seriesResponse struct {
	Series []string `json:"series"`
}

func (h *Handlers) seriesHandler(w http.ResponseWriter, r *http.Request) {
	t0 := timeNow()
	details := newAccessLogDetails(r, "series")
	defer deferredAccessLogging(accessLogger(), details, t0)
	ApiMetrics.Requests.Add(1)

	ids, err := h.store.SeriesIDs(r.Context())
	if err != nil {
		writeError(w, details, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, details, seriesResponse{Series: ids})
}

// samplesHandler appends the JSON samples of the request body to a series.
func (h *Handlers) samplesHandler(w http.ResponseWriter, r *http.Request) {
	t0 := timeNow()
	details := newAccessLogDetails(r, "samples")
	defer deferredAccessLogging(accessLogger(), details, t0)
	ApiMetrics.Requests.Add(1)

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, details, merry.New("method not allowed", merry.WithHTTPCode(http.StatusMethodNotAllowed)))
		return
	}

	id := r.FormValue("series")
	if err := storage.ValidateID(id); err != nil {
		writeError(w, details, err)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxSamplesBody))
	if err != nil {
		writeError(w, details, merry.Wrap(err, merry.WithHTTPCode(http.StatusBadRequest)))
		return
	}
	samples, err := series.ParseJSON(body)
	if err != nil {
		writeError(w, details, err)
		return
	}
	if err := h.store.Append(r.Context(), id, samples...); err != nil {
		writeError(w, details, err)
		return
	}

	details.SamplesCount = len(samples)
	ApiMetrics.SamplesAppended.Add(int64(len(samples)))
	writeResponse(w, details, http.StatusNoContent, nil, contentTypeText)
}
