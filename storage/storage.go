// Package storage provides the series samples the chart engine resolves axes
// for, and persists the axis overrides users apply.
package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/ansel1/merry/v2"
	"github.com/maruel/natural"

	"github.com/go-graphite/carbontrack/pkg/series"
)

var (
	ErrSeriesNotFound = merry.New("series not found", merry.WithHTTPCode(404))
	ErrUnknownBackend = merry.New("unknown storage backend")
	ErrInvalidSeries  = merry.New("invalid series id", merry.WithHTTPCode(400))
)

// SampleSource returns the samples of a series, in any order.
type SampleSource interface {
	SeriesIDs(ctx context.Context) ([]string, error)
	Samples(ctx context.Context, id string) ([]series.Sample, error)
}

type Appender interface {
	Append(ctx context.Context, id string, samples ...series.Sample) error
}

type Store interface {
	SampleSource
	Appender
	Close() error
}

func notFound(id string) error {
	return merry.Wrap(ErrSeriesNotFound, merry.WithValue("series", id))
}

// ValidateID rejects ids that cannot be used as keys by every backend.
func ValidateID(id string) error {
	if id == "" || len(id) > 255 {
		return merry.Wrap(ErrInvalidSeries, merry.WithValue("series", id))
	}
	return nil
}

// SortIDs orders series ids naturally, so "run2" comes before "run10".
func SortIDs(ids []string) []string {
	sort.Sort(natural.StringSlice(ids))
	return ids
}

// Memory keeps series in process memory.
type Memory struct {
	mu     sync.RWMutex
	series map[string][]series.Sample
}

func NewMemory() *Memory {
	return &Memory{series: make(map[string][]series.Sample)}
}

func (m *Memory) SeriesIDs(context.Context) ([]string, error) {
	m.mu.RLock()
	ids := make([]string, 0, len(m.series))
	for id := range m.series {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	return SortIDs(ids), nil
}

func (m *Memory) Samples(_ context.Context, id string) ([]series.Sample, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.series[id]
	if !ok {
		return nil, notFound(id)
	}
	res := make([]series.Sample, len(s))
	copy(res, s)
	return res, nil
}

func (m *Memory) Append(_ context.Context, id string, samples ...series.Sample) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	m.mu.Lock()
	m.series[id] = append(m.series[id], samples...)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error { return nil }
