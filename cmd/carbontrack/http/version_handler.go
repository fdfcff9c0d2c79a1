package http

import (
	"net/http"
)

func (h *Handlers) versionHandler(w http.ResponseWriter, r *http.Request) {
	t0 := timeNow()
	details := newAccessLogDetails(r, "version")
	defer deferredAccessLogging(accessLogger(), details, t0)

	writeResponse(w, details, http.StatusOK, []byte(h.BuildVersion+"\n"), contentTypeText)
}
