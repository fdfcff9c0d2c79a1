package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ansel1/merry/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-graphite/carbontrack/pkg/axis"
	"github.com/go-graphite/carbontrack/pkg/series"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Append(ctx, "run10", series.New(1, 5)))
	require.NoError(t, m.Append(ctx, "run2", series.New(2, 6), series.Absent(3)))
	require.NoError(t, m.Append(ctx, "run2", series.New(1, 7)))
	assert.Error(t, m.Append(ctx, "", series.New(1, 1)))

	ids, err := m.SeriesIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"run2", "run10"}, ids)

	s, err := m.Samples(ctx, "run2")
	require.NoError(t, err)
	require.Len(t, s, 3)
	assert.Equal(t, int64(1), s[2].Timestamp)
	assert.False(t, s[1].HasValue())

	s[0].Value = 100
	again, _ := m.Samples(ctx, "run2")
	assert.Equal(t, 6.0, again[0].Value)

	_, err = m.Samples(ctx, "missing")
	assert.True(t, errors.Is(err, ErrSeriesNotFound))
	assert.Equal(t, 404, merry.HTTPCode(err))
}

func TestOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.yaml")

	f, err := OpenOverrideFile(path)
	require.NoError(t, err)
	assert.Equal(t, AutoOverrides(), f.Get("weight"))

	lo, hi, step := 60.0, 90.0, 5.0
	start := int64(1_700_000_000_000)
	o := Overrides{
		Value: axis.ValueOverride{Min: &lo, Max: &hi, Interval: &step},
		Time:  axis.TimeOverride{Start: &start},
	}
	require.NoError(t, f.Save("weight", o))

	reopened, err := OpenOverrideFile(path)
	require.NoError(t, err)
	got := reopened.Get("weight")
	require.NotNil(t, got.Value.Min)
	assert.Equal(t, 60.0, *got.Value.Min)
	assert.Equal(t, 5.0, *got.Value.Interval)
	require.NotNil(t, got.Time.Start)
	assert.Equal(t, start, *got.Time.Start)
	assert.Nil(t, got.Time.End)
	assert.False(t, got.Time.Auto)

	require.NoError(t, reopened.Save("weight", AutoOverrides()))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(b))
}

func TestOverrideFileRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	require.NoError(t, os.WriteFile(path, []byte("weight:\n  value:\n    auto: false\n    min: 10\n    max: 5\n  time:\n    auto: true\n"), 0o644))

	_, err := OpenOverrideFile(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, axis.ErrInvalidAxisSettings))
	assert.Equal(t, "weight", merry.Value(err, "series"))
}

func TestOverrideFileInMemory(t *testing.T) {
	f, err := OpenOverrideFile("")
	require.NoError(t, err)

	v := 1.0
	require.NoError(t, f.Save("a", Overrides{Value: axis.ValueOverride{Min: &v}, Time: axis.AutoTime()}))
	assert.Equal(t, 1.0, *f.Get("a").Value.Min)
}
