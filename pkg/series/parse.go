package series

import (
	"math"
	"time"

	"github.com/ansel1/merry/v2"
	"github.com/valyala/fastjson"
)

var ErrBadSamples = merry.New("malformed samples", merry.WithHTTPCode(400))

var parserPool fastjson.ParserPool

// ParseJSON reads an array of {"timestamp": ms, "value": v} objects. A null
// or missing value is an absent sample. Timestamps may also be RFC 3339
// strings.
func ParseJSON(b []byte) ([]Sample, error) {
	p := parserPool.Get()
	defer parserPool.Put(p)

	v, err := p.ParseBytes(b)
	if err != nil {
		return nil, merry.Wrap(ErrBadSamples, merry.WithCause(err))
	}
	arr, err := v.Array()
	if err != nil {
		return nil, merry.Wrap(ErrBadSamples, merry.WithMessage("expected an array of samples"))
	}

	res := make([]Sample, 0, len(arr))
	for i, item := range arr {
		s, err := parseSample(item)
		if err != nil {
			return nil, merry.Wrap(err, merry.WithValue("index", i))
		}
		res = append(res, s)
	}
	return res, nil
}

func parseSample(v *fastjson.Value) (Sample, error) {
	if v.Type() != fastjson.TypeObject {
		return Sample{}, merry.Wrap(ErrBadSamples, merry.WithMessage("sample must be an object"))
	}

	ts, err := parseTimestamp(v.Get("timestamp"))
	if err != nil {
		return Sample{}, err
	}

	val := v.Get("value")
	if val == nil || val.Type() == fastjson.TypeNull {
		return Absent(ts), nil
	}
	f, err := val.Float64()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Sample{}, merry.Wrap(ErrBadSamples, merry.WithMessagef("value %s is not a finite number", val))
	}
	return New(ts, f), nil
}

func parseTimestamp(v *fastjson.Value) (int64, error) {
	if v == nil {
		return 0, merry.Wrap(ErrBadSamples, merry.WithMessage("sample has no timestamp"))
	}
	switch v.Type() {
	case fastjson.TypeNumber:
		f, err := v.Float64()
		if err != nil {
			return 0, merry.Wrap(ErrBadSamples, merry.WithCause(err))
		}
		ms, ok := Millis(f)
		if !ok {
			return 0, merry.Wrap(ErrBadSamples, merry.WithMessagef("timestamp %s is not a whole number of milliseconds in range", v))
		}
		return ms, nil
	case fastjson.TypeString:
		t, err := time.Parse(time.RFC3339, string(v.GetStringBytes()))
		if err != nil {
			return 0, merry.Wrap(ErrBadSamples, merry.WithCause(err))
		}
		return t.UnixMilli(), nil
	}
	return 0, merry.Wrap(ErrBadSamples, merry.WithMessagef("timestamp %s is neither a number nor a date", v))
}

// Millis converts a JSON number to epoch milliseconds. Fractions and values
// outside the int64 range are refused.
func Millis(f float64) (int64, bool) {
	if math.IsNaN(f) || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}
