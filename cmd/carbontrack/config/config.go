package config

import (
	"crypto/tls"
	"encoding/json"
	"time"

	"github.com/lomik/zapwriter"

	"github.com/go-graphite/carbontrack/cache"
	"github.com/go-graphite/carbontrack/pkg/axis"
	"github.com/go-graphite/carbontrack/pkg/chart"
	"github.com/go-graphite/carbontrack/pkg/tlsconfig"
	"github.com/go-graphite/carbontrack/storage"
	"github.com/go-graphite/carbontrack/storage/postgres"
	"github.com/go-graphite/carbontrack/storage/redis"
	"github.com/go-graphite/carbontrack/util"
)

var DefaultLoggerConfig = zapwriter.Config{
	Logger:           "",
	File:             "stdout",
	Level:            "info",
	Encoding:         "console",
	EncodingTime:     "iso8601",
	EncodingDuration: "seconds",
}

type CacheConfig struct {
	Type              string   `mapstructure:"type"`
	Size              int      `mapstructure:"size_mb"`
	MemcachedServers  []string `mapstructure:"memcachedServers"`
	DefaultTimeoutSec int32    `mapstructure:"defaultTimeoutSec"`
}

type StorageConfig struct {
	Type     string          `mapstructure:"type"`
	SeedFile string          `mapstructure:"seedFile"`
	Redis    redis.Config    `mapstructure:"redis"`
	Postgres postgres.Config `mapstructure:"postgres"`
}

// LayoutConfig is the container assumed when a request does not give its
// size, and the tick spacing constants.
type LayoutConfig struct {
	axis.Metrics  `mapstructure:",squash"`
	chart.Options `mapstructure:",squash"`
}

type ExpvarConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type ConfigType struct {
	Logger         []zapwriter.Config `mapstructure:"logger"`
	Listen         string             `mapstructure:"listen"`
	TLS            tlsconfig.Config   `mapstructure:"tls"`
	Concurency     int                `mapstructure:"concurency"`
	Cache          CacheConfig        `mapstructure:"cache"`
	Storage        StorageConfig      `mapstructure:"storage"`
	Layout         LayoutConfig       `mapstructure:"layout"`
	TimezoneString string             `mapstructure:"tz"`
	PidFile        string             `mapstructure:"pidFile"`
	OverridesFile  string             `mapstructure:"overridesFile"`
	Expvar         ExpvarConfig       `mapstructure:"expvar"`

	ResponseCache cache.BytesCache      `mapstructure:"-" json:"-"`
	Store         storage.Store         `mapstructure:"-" json:"-"`
	Overrides     *storage.OverrideFile `mapstructure:"-" json:"-"`

	DefaultTimeZone *time.Location `mapstructure:"-" json:"-"`
	// ServerTLS is nil unless tls.certificatePairs is set
	ServerTLS *tls.Config `mapstructure:"-" json:"-"`

	// Limiter bounds concurrent chart renders
	Limiter util.SimpleLimiter `mapstructure:"-" json:"-"`
}

// skipcq: CRT-P0003
func (c ConfigType) String() string {
	data, err := json.Marshal(c)
	if err != nil {
		return "Failed to marshal config: " + err.Error()
	} else {
		return string(data)
	}
}

var Config = ConfigType{
	Listen:     "[::]:8088",
	Concurency: 8,
	Cache: CacheConfig{
		Type:              "mem",
		DefaultTimeoutSec: 60,
	},
	Storage: StorageConfig{
		Type: "memory",
	},
	Layout: LayoutConfig{
		Metrics: axis.Metrics{
			WidthPx:      800,
			HeightPx:     400,
			MarginTop:    20,
			MarginRight:  20,
			MarginBottom: 30,
			MarginLeft:   10,
		},
		Options: chart.DefaultOptions,
	},
	TimezoneString: "",
	PidFile:        "",
	OverridesFile:  "",
	Expvar: ExpvarConfig{
		Enabled: true,
	},

	ResponseCache: cache.NullCache{},

	DefaultTimeZone: time.UTC,
	Logger:          []zapwriter.Config{DefaultLoggerConfig},
}
