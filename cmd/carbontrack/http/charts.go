package http

import (
	"context"
	"sync"

	"github.com/go-graphite/carbontrack/pkg/axis"
	"github.com/go-graphite/carbontrack/pkg/chart"
	"github.com/go-graphite/carbontrack/pkg/series"
	"github.com/go-graphite/carbontrack/storage"
)

// charts keeps one controller per series so axis settings survive between
// requests.
type charts struct {
	mu     sync.Mutex
	layout axis.Metrics
	opts   chart.Options
	m      map[string]*chart.Controller
}

func newCharts(layout axis.Metrics, opts chart.Options) *charts {
	return &charts{
		layout: layout,
		opts:   opts,
		m:      make(map[string]*chart.Controller),
	}
}

// get returns the controller of id, restoring persisted overrides when it is
// created.
func (c *charts) get(id string, overrides *storage.OverrideFile) (*chart.Controller, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ctrl, ok := c.m[id]; ok {
		return ctrl, nil
	}

	ctrl := chart.NewController(c.layout, c.opts)
	if overrides != nil {
		o := overrides.Get(id)
		if err := ctrl.WithOverrides(o.Value, o.Time); err != nil {
			return nil, err
		}
	}
	c.m[id] = ctrl
	return ctrl, nil
}

// load returns the controller of id fed with the current samples of the store.
func (h *Handlers) load(ctx context.Context, id string) (*chart.Controller, []series.Sample, error) {
	if err := storage.ValidateID(id); err != nil {
		return nil, nil, err
	}
	samples, err := h.store.Samples(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	ctrl, err := h.charts.get(id, h.overrides)
	if err != nil {
		return nil, nil, err
	}
	ctrl.DataChanged(samples)
	return ctrl, samples, nil
}
