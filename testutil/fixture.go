package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/hupe1980/matrixstore/codec"
	"github.com/hupe1980/matrixstore/internal/sqlite"
)

// Fixture describes the content of a matrix store file.
type Fixture struct {
	// Dates and Practices are stored with their slice index as offset.
	Dates     []string
	Practices []string

	Presentations []Presentation
	Statistics    []Statistic

	// Exec runs after the standard tables are filled, for cases the
	// standard layout cannot express (raw or corrupt blobs, extra tables).
	Exec []Statement

	// Codec encodes the vectors. Default: codec.Default.
	Codec codec.Codec
}

// Presentation is one row of the presentation table. Nil vectors are NULL.
type Presentation struct {
	BNFCode    string
	Items      []float64
	Quantity   []float64
	NetCost    []float64
	ActualCost []float64
}

// Statistic is one row of the practice_statistic table.
type Statistic struct {
	Name   string
	Values []float64
}

// Statement is a SQL statement with bound arguments.
type Statement struct {
	SQL  string
	Args []any
}

const schema = `
CREATE TABLE date (date TEXT NOT NULL UNIQUE, offset INTEGER NOT NULL UNIQUE);
CREATE TABLE practice (code TEXT NOT NULL UNIQUE, offset INTEGER NOT NULL UNIQUE);
CREATE TABLE presentation (
	bnf_code TEXT PRIMARY KEY,
	items BLOB,
	quantity BLOB,
	net_cost BLOB,
	actual_cost BLOB
);
CREATE TABLE practice_statistic (name TEXT PRIMARY KEY, value BLOB);
`

// BuildFile writes f to a new file in t.TempDir() and returns its path.
func BuildFile(tb testing.TB, f Fixture) string {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), "matrixstore.sqlite")
	if err := WriteFile(context.Background(), path, f); err != nil {
		tb.Fatalf("testutil: build fixture: %v", err)
	}
	return path
}

// WriteFile writes f to a new SQLite file at path.
func WriteFile(ctx context.Context, path string, f Fixture) (err error) {
	c := f.Codec
	if c == nil {
		c = codec.Default
	}

	dsn, err := sqlite.WritableDSN(path)
	if err != nil {
		return err
	}
	db, err := sql.Open(sqlite.DriverName, dsn)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); err == nil {
			err = cerr
		}
	}()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	for i, d := range f.Dates {
		if _, err = tx.ExecContext(ctx, `INSERT INTO date (date, offset) VALUES (?, ?)`, d, i); err != nil {
			return fmt.Errorf("insert date %s: %w", d, err)
		}
	}
	for i, p := range f.Practices {
		if _, err = tx.ExecContext(ctx, `INSERT INTO practice (code, offset) VALUES (?, ?)`, p, i); err != nil {
			return fmt.Errorf("insert practice %s: %w", p, err)
		}
	}

	for _, p := range f.Presentations {
		args := []any{p.BNFCode}
		for _, vec := range [][]float64{p.Items, p.Quantity, p.NetCost, p.ActualCost} {
			b, encErr := encode(c, vec)
			if encErr != nil {
				return fmt.Errorf("encode %s: %w", p.BNFCode, encErr)
			}
			args = append(args, b)
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO presentation (bnf_code, items, quantity, net_cost, actual_cost) VALUES (?, ?, ?, ?, ?)`,
			args...); err != nil {
			return fmt.Errorf("insert presentation %s: %w", p.BNFCode, err)
		}
	}

	for _, s := range f.Statistics {
		b, encErr := encode(c, s.Values)
		if encErr != nil {
			return fmt.Errorf("encode %s: %w", s.Name, encErr)
		}
		if _, err = tx.ExecContext(ctx, `INSERT INTO practice_statistic (name, value) VALUES (?, ?)`, s.Name, b); err != nil {
			return fmt.Errorf("insert statistic %s: %w", s.Name, err)
		}
	}

	for _, st := range f.Exec {
		if _, err = tx.ExecContext(ctx, st.SQL, st.Args...); err != nil {
			return fmt.Errorf("exec %q: %w", st.SQL, err)
		}
	}

	return tx.Commit()
}

// encode returns nil (SQL NULL) for a nil vector.
func encode(c codec.Codec, vec []float64) (any, error) {
	if vec == nil {
		return nil, nil
	}
	b, err := c.Encode(vec)
	if err != nil {
		return nil, err
	}
	return b, nil
}
