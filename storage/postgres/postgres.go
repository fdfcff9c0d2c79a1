// Package postgres reads and appends series samples in a PostgreSQL table:
//
//	CREATE TABLE samples (
//		series text NOT NULL,
//		ts     bigint NOT NULL,
//		value  double precision
//	);
//
// A NULL value is an absent sample.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/ansel1/merry/v2"
	"github.com/lib/pq"
	"github.com/lomik/zapwriter"
	"go.uber.org/zap"

	"github.com/go-graphite/carbontrack/pkg/series"
	"github.com/go-graphite/carbontrack/storage"
)

type Config struct {
	URLDB        string        `mapstructure:"urlDB"`
	Username     string        `mapstructure:"username"`
	Password     string        `mapstructure:"password"`
	NameDB       string        `mapstructure:"nameDB"`
	SSLMode      string        `mapstructure:"sslMode"`
	Table        string        `mapstructure:"table"`
	QueryTimeout time.Duration `mapstructure:"queryTimeout"`
	MaxOpenConns int           `mapstructure:"maxOpenConns"`
}

func (c Config) connectString() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Username, c.Password),
		Host:     c.URLDB,
		Path:     "/" + c.NameDB,
		RawQuery: "sslmode=" + url.QueryEscape(sslMode),
	}
	return u.String()
}

type queries struct {
	ids    string
	read   string
	insert string
}

func buildQueries(table string) queries {
	t := pq.QuoteIdentifier(table)
	return queries{
		ids:    fmt.Sprintf("SELECT DISTINCT series FROM %s", t),
		read:   fmt.Sprintf("SELECT ts, value FROM %s WHERE series = $1 ORDER BY ts", t),
		insert: fmt.Sprintf("INSERT INTO %s (series, ts, value) VALUES ($1, $2, $3)", t),
	}
}

type Store struct {
	db      *sql.DB
	q       queries
	timeout time.Duration
	logger  *zap.Logger
}

func New(cfg Config) (*Store, error) {
	if cfg.Table == "" {
		cfg.Table = "samples"
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = 2 * time.Second
	}

	logger := zapwriter.Logger("storage").With(zap.String("backend", "postgres"))
	db, err := sql.Open("postgres", cfg.connectString())
	if err != nil {
		logger.Error("failed to open PostgreSQL database", zap.Error(err))
		return nil, merry.Wrap(err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	logger.Info("will use postgres",
		zap.String("host", cfg.URLDB),
		zap.String("database", cfg.NameDB),
		zap.String("table", cfg.Table),
	)
	return &Store{db: db, q: buildQueries(cfg.Table), timeout: cfg.QueryTimeout, logger: logger}, nil
}

func (s *Store) SeriesIDs(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, s.q.ids)
	if err != nil {
		return nil, merry.Wrap(err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, merry.Wrap(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, merry.Wrap(err)
	}
	return storage.SortIDs(ids), nil
}

func (s *Store) Samples(ctx context.Context, id string) ([]series.Sample, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, s.q.read, id)
	if err != nil {
		return nil, merry.Wrap(err, merry.WithValue("series", id))
	}
	defer rows.Close()

	var res []series.Sample
	for rows.Next() {
		var ts int64
		var v sql.NullFloat64
		if err := rows.Scan(&ts, &v); err != nil {
			return nil, merry.Wrap(err, merry.WithValue("series", id))
		}
		res = append(res, toSample(ts, v))
	}
	if err := rows.Err(); err != nil {
		return nil, merry.Wrap(err)
	}

	if len(res) == 0 {
		return nil, merry.Wrap(storage.ErrSeriesNotFound, merry.WithValue("series", id))
	}
	return res, nil
}

func (s *Store) Append(ctx context.Context, id string, samples ...series.Sample) error {
	if err := storage.ValidateID(id); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return merry.Wrap(err)
	}
	stmt, err := tx.PrepareContext(ctx, s.q.insert)
	if err != nil {
		_ = tx.Rollback()
		return merry.Wrap(err)
	}
	defer stmt.Close()

	for _, sample := range samples {
		if _, err := stmt.ExecContext(ctx, id, sample.Timestamp, fromSample(sample)); err != nil {
			_ = tx.Rollback()
			return merry.Wrap(err, merry.WithValue("series", id))
		}
	}
	return merry.Wrap(tx.Commit())
}

func (s *Store) Close() error {
	return s.db.Close()
}

func toSample(ts int64, v sql.NullFloat64) series.Sample {
	if !v.Valid {
		return series.Absent(ts)
	}
	return series.New(ts, v.Float64)
}

func fromSample(s series.Sample) sql.NullFloat64 {
	return sql.NullFloat64{Float64: s.Value, Valid: s.HasValue()}
}
