package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/matrixstore"
	"github.com/hupe1980/matrixstore/blobstore"
	"github.com/hupe1980/matrixstore/blobstore/minio"
	"github.com/hupe1980/matrixstore/testutil"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "matrixstore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "float64", cfg.Codec)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "local", cfg.Remote.Backend)
	assert.True(t, cfg.Remote.Secure)
	assert.False(t, cfg.Prefetch)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeConfig(t, `
codec: zstd
max_concurrent_queries: 4
log:
  format: json
  level: info
remote:
  backend: s3
  bucket: prescribing
  prefix: matrixstore/
`)

	t.Setenv("MATRIXSTORE_LOG_LEVEL", "debug")
	t.Setenv("MATRIXSTORE_REMOTE_PREFIX", "env/")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("prefix", "", "")
	fs.Int("max-queries", 0, "")
	require.NoError(t, fs.Parse([]string{"--prefix", "flag/"}))

	cfg, err := Load(path, fs)
	require.NoError(t, err)

	assert.Equal(t, "zstd", cfg.Codec)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "debug", cfg.Log.Level, "env overrides file")
	assert.Equal(t, "flag/", cfg.Remote.Prefix, "flag overrides env")
	assert.Equal(t, 4, cfg.MaxConcurrentQueries, "unset flag keeps file value")
	assert.Equal(t, "prescribing", cfg.Remote.Bucket)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Codec:  "float64",
			Log:    LogConfig{Format: "text", Level: "info"},
			Remote: RemoteConfig{Backend: "local"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"empty codec means default", func(c *Config) { c.Codec = "" }, true},
		{"unknown codec", func(c *Config) { c.Codec = "gzip" }, false},
		{"negative queries", func(c *Config) { c.MaxConcurrentQueries = -1 }, false},
		{"negative mmap", func(c *Config) { c.MmapSize = -1 }, false},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, false},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, false},
		{"s3 without bucket", func(c *Config) { c.Remote.Backend = "s3" }, false},
		{"minio without endpoint", func(c *Config) {
			c.Remote.Backend = "minio"
			c.Remote.Bucket = "b"
		}, false},
		{"unknown backend", func(c *Config) { c.Remote.Backend = "ftp" }, false},
		{"negative rate", func(c *Config) { c.Remote.RateLimit = -1 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestStoreOptions_OpenStore(t *testing.T) {
	path := testutil.BuildFile(t, testutil.Fixture{
		Dates:     []string{"2024-01-01"},
		Practices: []string{"A81001"},
		Presentations: []testutil.Presentation{
			{BNFCode: "0601012V0AAABAB", Items: []float64{3}},
		},
	})

	cfg := &Config{
		Codec:                "float64",
		MaxConcurrentQueries: 2,
		Prefetch:             true,
		Log:                  LogConfig{Format: "json", Level: "error"},
		Remote:               RemoteConfig{Backend: "local", RateLimit: 1 << 20},
	}
	require.NoError(t, cfg.Validate())

	s, err := matrixstore.Open(context.Background(), path, cfg.StoreOptions()...)
	require.NoError(t, err)
	defer s.Close()

	row, err := s.QueryOne(context.Background(), `SELECT items FROM presentation`)
	require.NoError(t, err)
	vec, ok := row.Vector(0)
	require.True(t, ok)
	assert.Equal(t, []float64{3}, vec)
}

func TestBlobStore(t *testing.T) {
	ctx := context.Background()

	cfg := &Config{Remote: RemoteConfig{Backend: "local", Root: t.TempDir()}}
	bs, err := cfg.BlobStore(ctx)
	require.NoError(t, err)
	assert.IsType(t, &blobstore.LocalStore{}, bs)

	cfg = &Config{Remote: RemoteConfig{Backend: "minio", Endpoint: "localhost:9000", Bucket: "b"}}
	bs, err = cfg.BlobStore(ctx)
	require.NoError(t, err)
	assert.IsType(t, &minio.Store{}, bs)

	cfg = &Config{Remote: RemoteConfig{Backend: "ftp"}}
	_, err = cfg.BlobStore(ctx)
	assert.Error(t, err)
}
