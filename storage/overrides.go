package storage

import (
	"bytes"
	"os"
	"sync"

	"github.com/ansel1/merry/v2"
	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v2"

	"github.com/go-graphite/carbontrack/pkg/axis"
)

// Overrides are the axis settings of one series.
type Overrides struct {
	Value axis.ValueOverride `yaml:"value"`
	Time  axis.TimeOverride  `yaml:"time"`
}

// AutoOverrides has both axes in auto mode.
func AutoOverrides() Overrides {
	return Overrides{Value: axis.AutoValue(), Time: axis.AutoTime()}
}

// OverrideFile persists per-series overrides as YAML. Every Save rewrites the
// file atomically. An empty path keeps overrides in memory only.
type OverrideFile struct {
	mu     sync.Mutex
	path   string
	series map[string]Overrides
}

// OpenOverrideFile loads path if it exists.
func OpenOverrideFile(path string) (*OverrideFile, error) {
	f := &OverrideFile{
		path:   path,
		series: make(map[string]Overrides),
	}
	if path == "" {
		return f, nil
	}

	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return f, nil
	}
	if err != nil {
		return nil, merry.Wrap(err, merry.WithValue("path", path))
	}
	if err := yaml.Unmarshal(b, &f.series); err != nil {
		return nil, merry.Wrap(err, merry.WithValue("path", path))
	}
	for id, o := range f.series {
		if err := o.Value.Validate(); err != nil {
			return nil, merry.Wrap(err, merry.WithValue("series", id))
		}
		if err := o.Time.Validate(); err != nil {
			return nil, merry.Wrap(err, merry.WithValue("series", id))
		}
	}
	return f, nil
}

// Get returns the stored overrides of id, or auto on both axes.
func (f *OverrideFile) Get(id string) Overrides {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.series[id]; ok {
		return o
	}
	return AutoOverrides()
}

func (f *OverrideFile) Save(id string, o Overrides) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if o.Value.Auto && o.Time.Auto {
		delete(f.series, id)
	} else {
		f.series[id] = o
	}
	return f.flush()
}

// flush must be called with f.mu held.
func (f *OverrideFile) flush() error {
	if f.path == "" {
		return nil
	}
	b, err := yaml.Marshal(f.series)
	if err != nil {
		return merry.Wrap(err)
	}
	if err := atomic.WriteFile(f.path, bytes.NewReader(b)); err != nil {
		return merry.Wrap(err, merry.WithValue("path", f.path))
	}
	return nil
}
