package http

import (
	"expvar"
	"net/http"
	"time"

	"github.com/tevino/abool"

	"github.com/go-graphite/carbontrack/cache"
	"github.com/go-graphite/carbontrack/cmd/carbontrack/config"
	"github.com/go-graphite/carbontrack/pkg/axis"
	"github.com/go-graphite/carbontrack/pkg/chart"
	"github.com/go-graphite/carbontrack/storage"
	"github.com/go-graphite/carbontrack/util"
	"github.com/go-graphite/carbontrack/util/ctx"
)

// Handlers serves the chart API over one sample store.
type Handlers struct {
	store     storage.Store
	overrides *storage.OverrideFile
	cache     cache.BytesCache
	cacheTTL  int32
	layout    axis.Metrics
	opts      chart.Options
	tz        *time.Location
	limiter   util.SimpleLimiter
	charts    *charts

	// Ready is reported by /lb_check.
	Ready *abool.AtomicBool
	// BuildVersion is reported by /version.
	BuildVersion string
}

// NewHandlers wires the handlers to the configured collaborators.
func NewHandlers(cfg *config.ConfigType) *Handlers {
	h := &Handlers{
		store:     cfg.Store,
		overrides: cfg.Overrides,
		cache:     cfg.ResponseCache,
		cacheTTL:  cfg.Cache.DefaultTimeoutSec,
		layout:    cfg.Layout.Metrics,
		opts:      cfg.Layout.Options,
		tz:        cfg.DefaultTimeZone,
		limiter:   cfg.Limiter,
		Ready:     abool.New(),

		BuildVersion: "(development build)",
	}
	if h.cache == nil {
		h.cache = cache.NullCache{}
	}
	if h.tz == nil {
		h.tz = time.UTC
	}
	if h.limiter == nil {
		h.limiter = util.NewSimpleLimiter(1)
	}
	h.charts = newCharts(h.layout, h.opts)
	return h
}

func (h *Handlers) InitHandlers(expvarEnabled bool) *http.ServeMux {
	r := http.NewServeMux()
	r.Handle("/series", ctx.ParseCtx(http.HandlerFunc(h.seriesHandler)))
	r.Handle("/samples", ctx.ParseCtx(http.HandlerFunc(h.samplesHandler)))
	r.Handle("/axes", ctx.ParseCtx(http.HandlerFunc(h.axesHandler)))
	r.Handle("/render", ctx.ParseCtx(http.HandlerFunc(h.renderHandler)))
	r.Handle("/settings", ctx.ParseCtx(http.HandlerFunc(h.settingsHandler)))

	r.HandleFunc("/lb_check", h.lbcheckHandler)
	r.HandleFunc("/version", h.versionHandler)

	if expvarEnabled {
		r.Handle("/debug/vars", expvar.Handler())
	}
	return r
}
