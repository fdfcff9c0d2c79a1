package config

import (
	"bytes"
	"context"
	"expvar"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/ansel1/merry/v2"
	"github.com/lomik/zapwriter"
	"github.com/spf13/viper"
	"github.com/valyala/fastjson"
	"go.uber.org/zap"

	"github.com/go-graphite/carbontrack/cache"
	"github.com/go-graphite/carbontrack/pkg/series"
	"github.com/go-graphite/carbontrack/pkg/tlsconfig"
	"github.com/go-graphite/carbontrack/storage"
	"github.com/go-graphite/carbontrack/storage/postgres"
	"github.com/go-graphite/carbontrack/storage/redis"
	"github.com/go-graphite/carbontrack/util"
	"github.com/go-graphite/carbontrack/util/pidfile"
)

var ErrUnknownCache = merry.New("unknown cache type")

func SetUpConfig(logger *zap.Logger, BuildVersion string) {
	err := zapwriter.ApplyConfig(Config.Logger)
	if err != nil {
		logger.Fatal("failed to initialize logger with requested configuration",
			zap.Any("configuration", Config.Logger),
			zap.Error(err),
		)
	}

	needStackTrace := false
	for _, l := range Config.Logger {
		if strings.ToLower(l.Level) == "debug" {
			needStackTrace = true
			break
		}
	}
	merry.SetStackCaptureEnabled(needStackTrace)

	expvar.NewString("GoVersion").Set(runtime.Version())
	expvar.NewString("BuildVersion").Set(BuildVersion)
	expvar.Publish("config", Config)

	Config.Limiter = util.NewSimpleLimiter(Config.Concurency)

	Config.ResponseCache, err = NewCache(Config.Cache)
	if err != nil {
		logger.Error("unknown cache type",
			zap.String("cache_type", Config.Cache.Type),
			zap.Strings("known_cache_types", []string{"null", "mem", "memcache"}),
			zap.Error(err),
		)
		Config.ResponseCache = cache.NullCache{}
	} else {
		logger.Info("response cache configured",
			zap.String("cache_type", Config.Cache.Type),
			zap.Strings("servers", Config.Cache.MemcachedServers),
		)
	}

	Config.DefaultTimeZone, err = ParseTimezone(Config.TimezoneString)
	if err != nil {
		logger.Fatal("unable to parse tz",
			zap.String("timezone_string", Config.TimezoneString),
			zap.Error(err),
		)
	}
	logger.Info("using timezone", zap.String("timezone", Config.DefaultTimeZone.String()))

	Config.Store, err = NewStore(Config.Storage)
	if err != nil {
		logger.Fatal("failed to set up storage",
			zap.String("storage_type", Config.Storage.Type),
			zap.Error(err),
		)
	}
	if Config.Storage.SeedFile != "" {
		n, err := Seed(context.Background(), Config.Store, Config.Storage.SeedFile)
		if err != nil {
			logger.Fatal("failed to load seed file",
				zap.String("seed_file", Config.Storage.SeedFile),
				zap.Error(err),
			)
		}
		logger.Info("seed file loaded",
			zap.String("seed_file", Config.Storage.SeedFile),
			zap.Int("series", n),
		)
	}

	Config.Overrides, err = storage.OpenOverrideFile(Config.OverridesFile)
	if err != nil {
		logger.Fatal("failed to load axis overrides",
			zap.String("overrides_file", Config.OverridesFile),
			zap.Error(err),
		)
	}

	if Config.TLS.Enabled() {
		var warns []string
		Config.ServerTLS, warns, err = tlsconfig.ServerConfig(Config.TLS)
		if err != nil {
			logger.Fatal("failed to set up TLS",
				zap.Error(err),
			)
		}
		for _, w := range warns {
			logger.Warn("insecure TLS configuration", zap.String("warning", w))
		}
	}

	if Config.PidFile != "" {
		err := pidfile.WritePidFile(Config.PidFile)
		if err != nil {
			logger.Fatal("error during pidfile.Write()",
				zap.Error(err),
			)
		}
	}
}

// NewCache builds the response cache described by cfg.
func NewCache(cfg CacheConfig) (cache.BytesCache, error) {
	switch cfg.Type {
	case "memcache":
		if len(cfg.MemcachedServers) == 0 {
			return nil, merry.Wrap(ErrUnknownCache, merry.WithMessage("memcache cache requested but no memcache servers provided"))
		}
		return cache.NewMemcached(50*time.Millisecond, cfg.MemcachedServers...), nil
	case "mem":
		return cache.NewExpireCache(uint64(cfg.Size)*1024*1024, time.Minute), nil
	case "null", "":
		return cache.NullCache{}, nil
	}
	return nil, merry.Wrap(ErrUnknownCache, merry.WithValue("cache_type", cfg.Type))
}

// NewStore opens the sample storage described by cfg.
func NewStore(cfg StorageConfig) (storage.Store, error) {
	switch cfg.Type {
	case "memory", "":
		return storage.NewMemory(), nil
	case "redis":
		return redis.New(cfg.Redis), nil
	case "postgres":
		return postgres.New(cfg.Postgres)
	}
	return nil, merry.Wrap(storage.ErrUnknownBackend, merry.WithValue("storage_type", cfg.Type))
}

// Seed appends every series of a seed file to store. The file maps series
// ids to sample arrays: {"weight": [{"timestamp": 1, "value": 70}]}.
func Seed(ctx context.Context, store storage.Appender, path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, merry.Wrap(err)
	}

	raw, err := splitSeed(b)
	if err != nil {
		return 0, err
	}
	for id, samples := range raw {
		parsed, err := series.ParseJSON(samples)
		if err != nil {
			return 0, merry.Wrap(err, merry.WithValue("series", id))
		}
		if err := store.Append(ctx, id, parsed...); err != nil {
			return 0, err
		}
	}
	return len(raw), nil
}

func splitSeed(b []byte) (map[string][]byte, error) {
	v, err := fastjson.ParseBytes(b)
	if err != nil {
		return nil, merry.Wrap(series.ErrBadSamples, merry.WithCause(err))
	}
	obj, err := v.Object()
	if err != nil {
		return nil, merry.Wrap(series.ErrBadSamples, merry.WithMessage("seed file must map series ids to samples"))
	}
	res := make(map[string][]byte, obj.Len())
	obj.Visit(func(key []byte, v *fastjson.Value) {
		res[string(key)] = v.MarshalTo(nil)
	})
	return res, nil
}

// ParseTimezone accepts an IANA name or "name,offsetSeconds". An empty
// string is UTC, the zone day and longer time ticks are aligned to.
func ParseTimezone(s string) (*time.Location, error) {
	if s == "" {
		return time.UTC, nil
	}
	fields := strings.Split(s, ",")
	if len(fields) == 1 {
		loc, err := time.LoadLocation(s)
		if err != nil {
			return nil, merry.Wrap(err)
		}
		return loc, nil
	}
	if len(fields) != 2 {
		return nil, merry.Errorf("unexpected amount of fields in tz: got %d, expected 2", len(fields))
	}
	offs, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, merry.Wrap(err, merry.WithValue("field", fields[1]))
	}
	return time.FixedZone(fields[0], offs), nil
}

func SetUpViper(logger *zap.Logger, configPath *string, viperPrefix string) {
	if *configPath != "" {
		b, err := os.ReadFile(*configPath)
		if err != nil {
			logger.Fatal("error reading config file",
				zap.String("config_path", *configPath),
				zap.Error(err),
			)
		}

		if strings.HasSuffix(*configPath, ".toml") {
			logger.Info("will parse config as toml",
				zap.String("config_file", *configPath),
			)
			viper.SetConfigType("TOML")
		} else {
			logger.Info("will parse config as yaml",
				zap.String("config_file", *configPath),
			)
			viper.SetConfigType("YAML")
		}
		err = viper.ReadConfig(bytes.NewBuffer(b))
		if err != nil {
			logger.Fatal("failed to parse config",
				zap.String("config_path", *configPath),
				zap.Error(err),
			)
		}
	}

	if viperPrefix != "" {
		viper.SetEnvPrefix(viperPrefix)
	}
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetDefault("listen", "[::]:8088")
	viper.SetDefault("concurency", 8)
	viper.SetDefault("cache.type", "mem")
	viper.SetDefault("cache.size_mb", 0)
	viper.SetDefault("cache.defaultTimeoutSec", 60)
	viper.SetDefault("cache.memcachedServers", []string{})
	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.seedFile", "")
	viper.SetDefault("tz", "")
	viper.SetDefault("pidFile", "")
	viper.SetDefault("overridesFile", "")
	viper.SetDefault("expvar.enabled", true)
	viper.SetDefault("layout.width", Config.Layout.WidthPx)
	viper.SetDefault("layout.height", Config.Layout.HeightPx)
	viper.SetDefault("layout.valueMinPxPerTick", Config.Layout.ValueMinPxPerTick)
	viper.SetDefault("layout.timeMinPxPerTick", Config.Layout.TimeMinPxPerTick)
	viper.SetDefault("layout.charWidthPx", Config.Layout.CharWidthPx)
	viper.AutomaticEnv()

	err := viper.Unmarshal(&Config)
	if err != nil {
		logger.Fatal("failed to parse config",
			zap.Error(err),
		)
	}
}
