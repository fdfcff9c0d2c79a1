package http

import (
	"encoding/binary"
	"encoding/json"
	"hash/fnv"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ansel1/merry/v2"
	"github.com/lomik/zapwriter"
	"github.com/msaf1980/go-stringutils"
	"go.uber.org/zap"

	"github.com/go-graphite/carbontrack/carbontrackpb"
	"github.com/go-graphite/carbontrack/pkg/axis"
	"github.com/go-graphite/carbontrack/pkg/series"
	"github.com/go-graphite/carbontrack/util/ctx"
)

const (
	contentTypeJSON = "application/json"
	contentTypeText = "text/plain"
)

// for testing
var timeNow = time.Now

func newAccessLogDetails(r *http.Request, handler string) *carbontrackpb.AccessLogDetails {
	srcIP, srcPort := splitRemoteAddr(r.RemoteAddr)
	return &carbontrackpb.AccessLogDetails{
		Handler:         handler,
		CarbontrackUUID: ctx.GetUUID(r.Context()),
		URL:             r.URL.RequestURI(),
		PeerIP:          srcIP,
		PeerPort:        srcPort,
		Host:            r.Host,
		Referer:         r.Referer(),
		URI:             r.RequestURI,
		Series:          r.FormValue("series"),
		HTTPCode:        http.StatusOK,
	}
}

func deferredAccessLogging(accessLogger *zap.Logger, accessLogDetails *carbontrackpb.AccessLogDetails, t time.Time) {
	accessLogDetails.Runtime = time.Since(t).Seconds()
	if accessLogDetails.HTTPCode >= 400 {
		accessLogger.Error("request failed", zap.Any("data", *accessLogDetails))
		switch {
		case accessLogDetails.HTTPCode >= 500:
			ApiMetrics.Requests5xx.Add(1)
		default:
			ApiMetrics.Requests4xx.Add(1)
		}
	} else {
		accessLogger.Info("request served", zap.Any("data", *accessLogDetails))
	}
}

func accessLogger() *zap.Logger {
	return zapwriter.Logger("access")
}

func splitRemoteAddr(addr string) (string, string) {
	tmp := strings.Split(addr, ":")
	if len(tmp) < 1 {
		return "unknown", "unknown"
	}
	if len(tmp) == 1 {
		return tmp[0], ""
	}

	return strings.Join(tmp[:len(tmp)-1], ":"), tmp[len(tmp)-1]
}

// writeError answers with the HTTP code carried by err, 500 when it has none.
func writeError(w http.ResponseWriter, details *carbontrackpb.AccessLogDetails, err error) {
	code := merry.HTTPCode(err)
	details.HTTPCode = int32(code)
	details.Reason = err.Error()
	http.Error(w, err.Error(), code)
}

func writeJSON(w http.ResponseWriter, details *carbontrackpb.AccessLogDetails, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		writeError(w, details, merry.Wrap(err))
		return
	}
	writeResponse(w, details, http.StatusOK, b, contentTypeJSON)
}

func writeResponse(w http.ResponseWriter, details *carbontrackpb.AccessLogDetails, code int, b []byte, contentType string) {
	details.HTTPCode = int32(code)
	details.ResponseSizeBytes = int64(len(b))
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(code)
	_, _ = w.Write(b)
}

// getLayout applies the width and height of the request to the default layout.
func getLayout(r *http.Request, def axis.Metrics) axis.Metrics {
	def.WidthPx = getFloat64(r.FormValue("width"), def.WidthPx)
	def.HeightPx = getFloat64(r.FormValue("height"), def.HeightPx)
	return def
}

func getFloat64(s string, def float64) float64 {
	if s == "" {
		return def
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || !(n > 0) || math.IsInf(n, 0) {
		return def
	}
	return n
}

// fingerprint identifies a sample set in cache keys.
func fingerprint(samples []series.Sample) uint64 {
	h := fnv.New64a()
	var buf [16]byte
	for _, s := range samples {
		binary.LittleEndian.PutUint64(buf[:8], uint64(s.Timestamp))
		binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(s.Value))
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}

// renderCacheKey covers everything a rendered chart depends on: the series,
// its samples, its axis settings and the picture parameters.
func renderCacheKey(id string, samples []series.Sample, settings string, r *http.Request) string {
	query := r.URL.Query()
	query.Del("series")

	var sb stringutils.Builder
	sb.Grow(len(id) + len(settings) + 64)
	sb.WriteString("render/")
	sb.WriteString(id)
	sb.WriteString("/")
	sb.WriteString(strconv.FormatUint(fingerprint(samples), 16))
	sb.WriteString("/")
	sb.WriteString(settings)
	sb.WriteString("?")
	sb.WriteString(query.Encode())
	return sb.String()
}
