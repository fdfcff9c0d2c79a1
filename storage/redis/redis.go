// Package redis stores series in redis: one list of "timestamp value" entries
// per series and a set indexing the series ids.
package redis

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ansel1/merry/v2"
	"github.com/gomodule/redigo/redis"
	"github.com/lomik/zapwriter"
	"go.uber.org/zap"

	"github.com/go-graphite/carbontrack/pkg/series"
	"github.com/go-graphite/carbontrack/storage"
)

const absentValue = "null"

type Config struct {
	Address            string         `mapstructure:"address"`
	Prefix             string         `mapstructure:"prefix"`
	MaxIdleConnections *int           `mapstructure:"maxIdleConnections"`
	IdleTimeout        *time.Duration `mapstructure:"idleTimeout"`
	PingInterval       *time.Duration `mapstructure:"pingInterval"`
	DatabaseNumber     *int           `mapstructure:"databaseNumber"`
	Username           *string        `mapstructure:"username"`
	Password           *string        `mapstructure:"password"`
	ConnectTimeout     *time.Duration `mapstructure:"connectTimeout"`
	QueryTimeout       *time.Duration `mapstructure:"queryTimeout"`
	KeepAliveInterval  *time.Duration `mapstructure:"keepAliveInterval"`
	UseTLS             *bool          `mapstructure:"useTLS"`
	TLSSkipVerify      *bool          `mapstructure:"tlsSkipVerify"`
}

type Store struct {
	address      string
	prefix       string
	dialOptions  []redis.DialOption
	queryTimeout time.Duration
	pool         *redis.Pool
	pingInterval *time.Duration
	logger       *zap.Logger
}

func New(cfg Config) *Store {
	s := &Store{
		address:      "127.0.0.1:6379",
		prefix:       "carbontrack",
		dialOptions:  make([]redis.DialOption, 0),
		queryTimeout: 250 * time.Millisecond,
		logger:       zapwriter.Logger("storage").With(zap.String("backend", "redis")),
	}

	if cfg.Address != "" {
		s.address = cfg.Address
	}
	if cfg.Prefix != "" {
		s.prefix = cfg.Prefix
	}
	if cfg.QueryTimeout != nil {
		s.queryTimeout = *cfg.QueryTimeout
	}

	if cfg.DatabaseNumber != nil {
		s.dialOptions = append(s.dialOptions, redis.DialDatabase(*cfg.DatabaseNumber))
	}
	if cfg.Username != nil {
		s.dialOptions = append(s.dialOptions, redis.DialUsername(*cfg.Username))
	}
	if cfg.Password != nil {
		s.dialOptions = append(s.dialOptions, redis.DialPassword(*cfg.Password))
	}
	if cfg.KeepAliveInterval != nil {
		s.dialOptions = append(s.dialOptions, redis.DialKeepAlive(*cfg.KeepAliveInterval))
	}
	if cfg.ConnectTimeout != nil {
		s.dialOptions = append(s.dialOptions, redis.DialConnectTimeout(*cfg.ConnectTimeout))
	}
	if cfg.UseTLS != nil {
		s.dialOptions = append(s.dialOptions, redis.DialUseTLS(*cfg.UseTLS))
	}
	if cfg.TLSSkipVerify != nil {
		s.dialOptions = append(s.dialOptions, redis.DialTLSSkipVerify(*cfg.TLSSkipVerify))
	}

	s.pingInterval = cfg.PingInterval

	maxIdle := 1
	if cfg.MaxIdleConnections != nil && *cfg.MaxIdleConnections > 1 {
		maxIdle = *cfg.MaxIdleConnections
	}

	idleTimeout := 60 * time.Second
	if cfg.IdleTimeout != nil {
		idleTimeout = *cfg.IdleTimeout
	}

	s.pool = &redis.Pool{
		MaxIdle:     maxIdle,
		IdleTimeout: idleTimeout,
		Dial: func() (redis.Conn, error) {
			return redis.Dial("tcp", s.address, s.dialOptions...)
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if s.pingInterval == nil || time.Since(t) < *s.pingInterval {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}

	s.logger.Info("will use redis", zap.String("address", s.address), zap.String("prefix", s.prefix))
	return s
}

func (s *Store) indexKey() string {
	return s.prefix + ":series"
}

func (s *Store) seriesKey(id string) string {
	return s.prefix + ":series:" + id
}

func (s *Store) SeriesIDs(ctx context.Context) ([]string, error) {
	c, err := s.pool.GetContext(ctx)
	if err != nil {
		return nil, merry.Wrap(err)
	}
	defer c.Close()

	ids, err := redis.Strings(redis.DoWithTimeout(c, s.queryTimeout, "SMEMBERS", s.indexKey()))
	if err != nil {
		return nil, merry.Wrap(err)
	}
	return storage.SortIDs(ids), nil
}

func (s *Store) Samples(ctx context.Context, id string) ([]series.Sample, error) {
	c, err := s.pool.GetContext(ctx)
	if err != nil {
		return nil, merry.Wrap(err)
	}
	defer c.Close()

	entries, err := redis.Strings(redis.DoWithTimeout(c, s.queryTimeout, "LRANGE", s.seriesKey(id), 0, -1))
	if err != nil {
		return nil, merry.Wrap(err, merry.WithValue("series", id))
	}
	if len(entries) == 0 {
		known, err := redis.Bool(redis.DoWithTimeout(c, s.queryTimeout, "SISMEMBER", s.indexKey(), id))
		if err != nil {
			return nil, merry.Wrap(err)
		}
		if !known {
			return nil, merry.Wrap(storage.ErrSeriesNotFound, merry.WithValue("series", id))
		}
	}

	res := make([]series.Sample, 0, len(entries))
	for _, e := range entries {
		sample, err := decodeSample(e)
		if err != nil {
			s.logger.Warn("skipping malformed sample",
				zap.String("series", id),
				zap.String("entry", e),
				zap.Error(err),
			)
			continue
		}
		res = append(res, sample)
	}
	return res, nil
}

func (s *Store) Append(ctx context.Context, id string, samples ...series.Sample) error {
	if err := storage.ValidateID(id); err != nil {
		return err
	}

	c, err := s.pool.GetContext(ctx)
	if err != nil {
		return merry.Wrap(err)
	}
	defer c.Close()

	if _, err := redis.DoWithTimeout(c, s.queryTimeout, "SADD", s.indexKey(), id); err != nil {
		return merry.Wrap(err)
	}
	if len(samples) == 0 {
		return nil
	}

	args := redis.Args{}.Add(s.seriesKey(id))
	for _, sample := range samples {
		args = args.Add(encodeSample(sample))
	}
	if _, err := redis.DoWithTimeout(c, s.queryTimeout, "RPUSH", args...); err != nil {
		return merry.Wrap(err, merry.WithValue("series", id))
	}
	return nil
}

func (s *Store) Close() error {
	return s.pool.Close()
}

func encodeSample(s series.Sample) string {
	if !s.HasValue() {
		return strconv.FormatInt(s.Timestamp, 10) + " " + absentValue
	}
	return strconv.FormatInt(s.Timestamp, 10) + " " + strconv.FormatFloat(s.Value, 'g', -1, 64)
}

func decodeSample(e string) (series.Sample, error) {
	ts, v, ok := strings.Cut(e, " ")
	if !ok {
		return series.Sample{}, merry.Errorf("expected \"timestamp value\", got %q", e)
	}
	t, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return series.Sample{}, merry.Wrap(err)
	}
	if v == absentValue {
		return series.Absent(t), nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) {
		return series.Sample{}, merry.Errorf("bad value %q", v)
	}
	return series.New(t, f), nil
}
