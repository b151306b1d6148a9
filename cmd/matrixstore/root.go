package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/hupe1980/matrixstore"
	"github.com/hupe1980/matrixstore/blobstore"
	"github.com/hupe1980/matrixstore/internal/config"
	"github.com/hupe1980/matrixstore/internal/resource"
	"github.com/hupe1980/matrixstore/projection"
)

var version = "0.1.0"

func newRootCmd(out io.Writer) *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "matrixstore",
		Short:         "Read-only access to prescribing matrix files",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "Path to a matrixstore.yaml file")
	pf.String("codec", "float64", "Blob codec (float64, float32, lz4, zstd, sparse)")
	pf.String("log-level", "warn", "Log level (debug, info, warn, error)")
	pf.String("log-format", "text", "Log format (text, json)")
	pf.Int("max-queries", 0, "Maximum concurrent queries (0 = unlimited)")
	pf.Int64("mmap-size", 0, "SQLite mmap_size in bytes (0 = driver default)")
	pf.Bool("prefetch", false, "Map the file and advise the kernel to read it ahead")

	load := func(cmd *cobra.Command) (*config.Config, error) {
		return config.Load(configFile, cmd.Flags())
	}

	root.AddCommand(
		newInfoCmd(out, load),
		newLookupCmd(out, load),
		newQueryCmd(out, load),
		newSumCmd(out, load),
		newFetchCmd(out, load),
	)
	return root
}

type loader func(cmd *cobra.Command) (*config.Config, error)

func openStore(cmd *cobra.Command, load loader, path string) (*matrixstore.Store, error) {
	cfg, err := load(cmd)
	if err != nil {
		return nil, err
	}
	return matrixstore.Open(cmd.Context(), path, cfg.StoreOptions()...)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// floats encodes NaN and ±Inf as null; JSON has no literal for them.
type floats []float64

func (f floats) MarshalJSON() ([]byte, error) {
	if f == nil {
		return []byte("null"), nil
	}
	buf := make([]byte, 0, 2+8*len(f))
	buf = append(buf, '[')
	for i, x := range f {
		if i > 0 {
			buf = append(buf, ',')
		}
		if math.IsNaN(x) || math.IsInf(x, 0) {
			buf = append(buf, "null"...)
			continue
		}
		buf = strconv.AppendFloat(buf, x, 'g', -1, 64)
	}
	return append(buf, ']'), nil
}

// jsonValue converts a cell for encoding, mapping non-finite floats to null.
func jsonValue(v matrixstore.Value) any {
	if vec, ok := v.Vector(); ok {
		return floats(vec)
	}
	if f, ok := v.Any().(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return nil
	}
	return v.Any()
}

type infoOutput struct {
	Path      string   `json:"path"`
	Codec     string   `json:"codec"`
	Practices int      `json:"practices"`
	Dates     int      `json:"dates"`
	FirstDate string   `json:"first_date,omitempty"`
	LastDate  string   `json:"last_date,omitempty"`
	Tables    []string `json:"tables"`
}

func newInfoCmd(out io.Writer, load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Show the shape and tables of a matrix file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cmd, load, args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			info, err := describe(cmd.Context(), s)
			if err != nil {
				return err
			}
			return writeJSON(out, info)
		},
	}
}

func describe(ctx context.Context, s *matrixstore.Store) (info infoOutput, err error) {
	practices, dates, err := s.Shape()
	if err != nil {
		return info, err
	}
	info = infoOutput{
		Path:      s.Path(),
		Codec:     s.Codec().Name(),
		Practices: practices,
		Dates:     dates,
		Tables:    []string{},
	}
	if idx, err := s.Dates(); err == nil && idx.Len() > 0 {
		info.FirstDate, _ = idx.Key(0)
		info.LastDate, _ = idx.Key(idx.Len() - 1)
	}

	rows, err := s.QueryColumns(ctx, matrixstore.Columns{matrixstore.KindScalar},
		`SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`)
	if err != nil {
		return info, err
	}
	for row, err := range rows.All() {
		if err != nil {
			return info, err
		}
		name, _ := row.Text(0)
		info.Tables = append(info.Tables, name)
	}
	return info, nil
}

func newLookupCmd(out io.Writer, load loader) *cobra.Command {
	var date, practice string

	cmd := &cobra.Command{
		Use:   "lookup <file>",
		Short: "Resolve a date or practice code to its matrix offset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (date == "") == (practice == "") {
				return fmt.Errorf("exactly one of --date or --practice is required")
			}
			s, err := openStore(cmd, load, args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			var offset int
			if date != "" {
				offset, err = s.DateOffset(date)
			} else {
				offset, err = s.PracticeOffset(practice)
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, offset)
			return err
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Date key, e.g. 2024-01-01")
	cmd.Flags().StringVar(&practice, "practice", "", "Practice code")
	return cmd
}

func newQueryCmd(out io.Writer, load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "query <file> <sql> [args...]",
		Short: "Run a SQL query and print one JSON object per row",
		Long: `Run a read-only SQL query. Blob columns are decoded with the configured
codec; all other values are printed as stored. NaN and infinite floats are
printed as null.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cmd, load, args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			qargs := make([]any, 0, len(args)-2)
			for _, a := range args[2:] {
				qargs = append(qargs, a)
			}
			rows, err := s.Query(cmd.Context(), args[1], qargs...)
			if err != nil {
				return err
			}

			names := rows.Columns()
			enc := json.NewEncoder(out)
			for row, err := range rows.All() {
				if err != nil {
					return err
				}
				obj := make(map[string]any, len(row))
				for i, v := range row {
					obj[names[i]] = jsonValue(v)
				}
				if err := enc.Encode(obj); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

type sumOutput struct {
	Prefix string   `json:"prefix"`
	Field  string   `json:"field"`
	By     string   `json:"by"`
	Keys   []string `json:"keys,omitempty"`
	Values floats   `json:"values"`
}

func newSumCmd(out io.Writer, load loader) *cobra.Command {
	var field, by, date string

	cmd := &cobra.Command{
		Use:   "sum <file> <bnf-prefix>",
		Short: "Sum a presentation field over all codes with a BNF prefix",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cmd, load, args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			p := projection.New(s)
			res := sumOutput{Prefix: args[1], Field: field, By: by}

			switch by {
			case "total":
				m, err := p.SumByPrefix(ctx, args[1], field)
				if err != nil {
					return err
				}
				res.Values = floats{m.Sum()}
			case "date":
				if res.Values, err = p.DateTotals(ctx, args[1], field); err != nil {
					return err
				}
				idx, err := s.Dates()
				if err != nil {
					return err
				}
				res.Keys = idx.Keys()
			case "practice":
				if date == "" {
					return fmt.Errorf("--date is required with --by practice")
				}
				if res.Values, err = p.PracticeTotals(ctx, args[1], field, date); err != nil {
					return err
				}
				idx, err := s.Practices()
				if err != nil {
					return err
				}
				res.Keys = idx.Keys()
			default:
				return fmt.Errorf("unknown --by %q (want total, date or practice)", by)
			}
			return writeJSON(out, res)
		},
	}
	cmd.Flags().StringVar(&field, "field", "items", "Presentation field (items, quantity, net_cost, actual_cost)")
	cmd.Flags().StringVar(&by, "by", "total", "Grouping: total, date or practice")
	cmd.Flags().StringVar(&date, "date", "", "Date for --by practice")
	return cmd
}

type fetchOutput struct {
	Path    string `json:"path"`
	Bytes   int64  `json:"bytes"`
	Skipped bool   `json:"skipped"`
}

func newFetchCmd(out io.Writer, load loader) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "fetch <name>",
		Short: "Download a published matrix file into the cache directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			bs, err := cfg.BlobStore(ctx)
			if err != nil {
				return err
			}

			name := strings.TrimPrefix(args[0], "/")
			dst := filepath.Join(cfg.Remote.CacheDir, filepath.Base(name))
			logger := cfg.Logger()
			res, err := blobstore.Fetch(ctx, bs, name, dst, func(o *blobstore.FetchOptions) {
				o.Force = force
				o.Controller = resource.NewController(resource.Config{IOLimitBytesPerSec: cfg.Remote.RateLimit})
			})
			logger.LogFetch(ctx, name, res.Bytes, res.Skipped, err)
			if err != nil {
				return err
			}

			// Check the download is a readable matrix file.
			s, err := matrixstore.Open(ctx, res.Path, cfg.StoreOptions()...)
			if err != nil {
				return err
			}
			if err := s.Close(); err != nil {
				return err
			}
			return writeJSON(out, fetchOutput{Path: res.Path, Bytes: res.Bytes, Skipped: res.Skipped})
		},
	}
	f := cmd.Flags()
	f.BoolVar(&force, "force", false, "Download even if a copy of the same size exists")
	f.String("backend", "local", "Remote backend (local, s3, minio)")
	f.String("bucket", "", "Bucket name for s3 and minio")
	f.String("prefix", "", "Key prefix inside the bucket")
	f.String("region", "", "Bucket region")
	f.String("endpoint", "", "Custom endpoint (required for minio)")
	f.Bool("path-style", false, "Use path-style S3 addressing")
	f.String("root", ".", "Source directory for the local backend")
	f.String("cache-dir", ".", "Destination directory")
	f.Int64("fetch-rate-limit", 0, "Download rate limit in bytes per second (0 = unlimited)")
	return cmd
}
