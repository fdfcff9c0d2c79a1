package http

import (
	"expvar"

	"go.uber.org/zap"

	"github.com/go-graphite/carbontrack/cache"
)

var ApiMetrics = struct {
	Requests           *expvar.Int
	Requests4xx        *expvar.Int
	Requests5xx        *expvar.Int
	AxesRequests       *expvar.Int
	RenderRequests     *expvar.Int
	RequestCacheHits   *expvar.Int
	RequestCacheMisses *expvar.Int
	SettingsApplied    *expvar.Int
	SettingsRejected   *expvar.Int
	SamplesAppended    *expvar.Int

	CacheSize  expvar.Func
	CacheItems expvar.Func
}{
	Requests:           expvar.NewInt("requests"),
	Requests4xx:        expvar.NewInt("requests_4xx"),
	Requests5xx:        expvar.NewInt("requests_5xx"),
	AxesRequests:       expvar.NewInt("axes_requests"),
	RenderRequests:     expvar.NewInt("render_requests"),
	RequestCacheHits:   expvar.NewInt("request_cache_hits"),
	RequestCacheMisses: expvar.NewInt("request_cache_misses"),
	SettingsApplied:    expvar.NewInt("settings_applied"),
	SettingsRejected:   expvar.NewInt("settings_rejected"),
	SamplesAppended:    expvar.NewInt("samples_appended"),
}

// SetupMetrics publishes the size of an in-memory response cache.
func SetupMetrics(logger *zap.Logger, responseCache cache.BytesCache) {
	switch c := responseCache.(type) {
	case cache.ExpireCache:
		ApiMetrics.CacheSize = expvar.Func(func() interface{} {
			return c.Size()
		})
		expvar.Publish("cache_size", ApiMetrics.CacheSize)

		ApiMetrics.CacheItems = expvar.Func(func() interface{} {
			return c.Items()
		})
		expvar.Publish("cache_items", ApiMetrics.CacheItems)
		logger.Debug("cache metrics published")
	default:
	}
}
