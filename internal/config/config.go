// Package config loads command line configuration from a matrixstore.yaml
// file, MATRIXSTORE_* environment variables and flags, in increasing order
// of precedence.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hupe1980/matrixstore"
	"github.com/hupe1980/matrixstore/blobstore"
	"github.com/hupe1980/matrixstore/blobstore/minio"
	"github.com/hupe1980/matrixstore/blobstore/s3"
	"github.com/hupe1980/matrixstore/codec"
)

// EnvPrefix prefixes environment overrides: log.level is MATRIXSTORE_LOG_LEVEL.
const EnvPrefix = "MATRIXSTORE"

// Config is the resolved command line configuration.
type Config struct {
	Codec                string `mapstructure:"codec"`
	MaxConcurrentQueries int    `mapstructure:"max_concurrent_queries"`
	MmapSize             int64  `mapstructure:"mmap_size"`
	Prefetch             bool   `mapstructure:"prefetch"`

	Log    LogConfig    `mapstructure:"log"`
	Remote RemoteConfig `mapstructure:"remote"`
}

// LogConfig selects the log handler.
type LogConfig struct {
	// Format is "text" or "json".
	Format string `mapstructure:"format"`
	// Level is a slog level name such as "info" or "debug".
	Level string `mapstructure:"level"`
}

// RemoteConfig describes where published files are fetched from.
type RemoteConfig struct {
	// Backend is "local", "s3" or "minio".
	Backend   string `mapstructure:"backend"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	PathStyle bool   `mapstructure:"path_style"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Secure    bool   `mapstructure:"secure"`
	// Root is the source directory for the local backend.
	Root      string `mapstructure:"root"`
	CacheDir  string `mapstructure:"cache_dir"`
	RateLimit int64  `mapstructure:"rate_limit"`
}

var defaults = map[string]any{
	"codec":                  "float64",
	"max_concurrent_queries": 0,
	"mmap_size":              int64(0),
	"prefetch":               false,
	"log.format":             "text",
	"log.level":              "warn",
	"remote.backend":         "local",
	"remote.bucket":          "",
	"remote.prefix":          "",
	"remote.region":          "",
	"remote.endpoint":        "",
	"remote.path_style":      false,
	"remote.access_key":      "",
	"remote.secret_key":      "",
	"remote.secure":          true,
	"remote.root":            ".",
	"remote.cache_dir":       ".",
	"remote.rate_limit":      int64(0),
}

// flagKeys maps flag names to configuration keys.
var flagKeys = map[string]string{
	"codec":            "codec",
	"max-queries":      "max_concurrent_queries",
	"mmap-size":        "mmap_size",
	"prefetch":         "prefetch",
	"log-format":       "log.format",
	"log-level":        "log.level",
	"backend":          "remote.backend",
	"bucket":           "remote.bucket",
	"prefix":           "remote.prefix",
	"region":           "remote.region",
	"endpoint":         "remote.endpoint",
	"path-style":       "remote.path_style",
	"root":             "remote.root",
	"cache-dir":        "remote.cache_dir",
	"fetch-rate-limit": "remote.rate_limit",
}

// Load reads the configuration. If file is empty, matrixstore.yaml is
// looked up in the working directory and its absence is not an error.
// Flags in fs that appear in the flag table override file and env values.
func Load(file string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("matrixstore")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("config: bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	var errs []error
	if _, ok := codec.ByName(c.Codec); !ok {
		errs = append(errs, fmt.Errorf("unknown codec %q (want one of %s)", c.Codec, strings.Join(codec.Names(), ", ")))
	}
	if c.MaxConcurrentQueries < 0 {
		errs = append(errs, fmt.Errorf("max_concurrent_queries must be >= 0, got %d", c.MaxConcurrentQueries))
	}
	if c.MmapSize < 0 {
		errs = append(errs, fmt.Errorf("mmap_size must be >= 0, got %d", c.MmapSize))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	if _, err := c.level(); err != nil {
		errs = append(errs, err)
	}
	switch c.Remote.Backend {
	case "local":
	case "s3", "minio":
		if c.Remote.Bucket == "" {
			errs = append(errs, fmt.Errorf("remote.bucket is required for backend %s", c.Remote.Backend))
		}
		if c.Remote.Backend == "minio" && c.Remote.Endpoint == "" {
			errs = append(errs, errors.New("remote.endpoint is required for backend minio"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown remote.backend %q", c.Remote.Backend))
	}
	if c.Remote.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("remote.rate_limit must be >= 0, got %d", c.Remote.RateLimit))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func (c *Config) level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return l, nil
}

// Logger builds the configured logger.
func (c *Config) Logger() *matrixstore.Logger {
	l, err := c.level()
	if err != nil {
		l = slog.LevelWarn
	}
	if c.Log.Format == "json" {
		return matrixstore.NewJSONLogger(l)
	}
	return matrixstore.NewTextLogger(l)
}

// StoreOptions translates the configuration into store options.
func (c *Config) StoreOptions() []matrixstore.Option {
	cd, ok := codec.ByName(c.Codec)
	if !ok {
		cd = codec.Default
	}
	opts := []matrixstore.Option{
		matrixstore.WithCodec(cd),
		matrixstore.WithLogger(c.Logger()),
	}
	if c.MaxConcurrentQueries > 0 {
		opts = append(opts, matrixstore.WithMaxConcurrentQueries(c.MaxConcurrentQueries))
	}
	if c.MmapSize > 0 {
		opts = append(opts, matrixstore.WithMmapSize(c.MmapSize))
	}
	if c.Prefetch {
		opts = append(opts, matrixstore.WithPrefetch())
	}
	if c.Remote.RateLimit > 0 {
		opts = append(opts, matrixstore.WithFetchRateLimit(c.Remote.RateLimit))
	}
	return opts
}

// BlobStore returns the configured remote backend.
func (c *Config) BlobStore(ctx context.Context) (blobstore.BlobStore, error) {
	r := c.Remote
	switch r.Backend {
	case "local":
		return blobstore.NewLocalStore(r.Root), nil
	case "s3":
		optFns := []func(*s3.Options){s3.WithPrefix(r.Prefix)}
		if r.Region != "" {
			optFns = append(optFns, s3.WithRegion(r.Region))
		}
		if r.Endpoint != "" {
			optFns = append(optFns, s3.WithEndpoint(r.Endpoint))
		}
		if r.PathStyle {
			optFns = append(optFns, s3.WithPathStyle())
		}
		return s3.New(ctx, r.Bucket, optFns...)
	case "minio":
		return minio.New(r.Endpoint, r.Bucket, func(o *minio.Options) {
			o.AccessKey = r.AccessKey
			o.SecretKey = r.SecretKey
			o.Secure = r.Secure
			o.Region = r.Region
			o.Prefix = r.Prefix
		})
	default:
		return nil, fmt.Errorf("config: unknown remote.backend %q", r.Backend)
	}
}
