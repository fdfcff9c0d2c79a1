package http

import (
	"net/http"
)

func (h *Handlers) lbcheckHandler(w http.ResponseWriter, r *http.Request) {
	t0 := timeNow()
	details := newAccessLogDetails(r, "lbcheck")
	defer deferredAccessLogging(accessLogger(), details, t0)

	if h.Ready.IsNotSet() {
		writeResponse(w, details, http.StatusServiceUnavailable, []byte("Starting\n"), contentTypeText)
		return
	}
	writeResponse(w, details, http.StatusOK, []byte("Ok\n"), contentTypeText)
}
