package testutil

import (
	"context"
	"database/sql"
	"testing"

	"github.com/hupe1980/matrixstore/codec"
	"github.com/hupe1980/matrixstore/internal/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFile(t *testing.T) {
	path := BuildFile(t, Fixture{
		Dates:     []string{"2024-01-01", "2024-02-01"},
		Practices: []string{"X123", "Y456"},
		Presentations: []Presentation{
			{BNFCode: "0601", Items: []float64{10, 20, 30, 40}},
		},
		Exec: []Statement{
			{SQL: `INSERT INTO presentation (bnf_code, items) VALUES (?, ?)`, Args: []any{"bad", []byte{1, 2, 3}}},
		},
	})

	dsn, err := sqlite.WritableDSN(path)
	require.NoError(t, err)
	db, err := sql.Open(sqlite.DriverName, dsn)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	var n int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT count(*) FROM date`).Scan(&n))
	assert.Equal(t, 2, n)

	var items, quantity []byte
	require.NoError(t, db.QueryRowContext(ctx, `SELECT items, quantity FROM presentation WHERE bnf_code = '0601'`).Scan(&items, &quantity))
	assert.Nil(t, quantity)
	vec, err := codec.Default.Decode(items)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20, 30, 40}, vec)

	require.NoError(t, db.QueryRowContext(ctx, `SELECT length(items) FROM presentation WHERE bnf_code = 'bad'`).Scan(&n))
	assert.Equal(t, 3, n)
}

func TestRNG_Fixture(t *testing.T) {
	f := NewRNG(4711).Fixture(5, 3, 20)

	assert.Len(t, f.Practices, 5)
	assert.Len(t, f.Dates, 3)
	assert.Len(t, f.Presentations, 20)
	for _, p := range f.Presentations {
		assert.Len(t, p.Items, 15)
	}

	// Same seed, same data.
	g := NewRNG(4711).Fixture(5, 3, 20)
	assert.Equal(t, f, g)

	// Codes are unique.
	seen := map[string]bool{}
	for _, p := range f.Presentations {
		assert.False(t, seen[p.BNFCode], p.BNFCode)
		seen[p.BNFCode] = true
	}
}

func TestKeys(t *testing.T) {
	assert.Equal(t, []string{"2020-01-01", "2020-02-01"}, Dates(2))
	assert.Equal(t, "2021-01-01", Dates(13)[12])

	p := Practices(30)
	assert.Equal(t, "A81000", p[0])
	assert.Len(t, p, 30)
	seen := map[string]bool{}
	for _, code := range p {
		assert.False(t, seen[code])
		seen[code] = true
	}
}

func TestRNG_Reset(t *testing.T) {
	rng := NewRNG(4711)
	v1 := rng.SparseVector(10, 0.5)
	rng.Reset()
	v2 := rng.SparseVector(10, 0.5)
	assert.Equal(t, v1, v2)
	assert.Equal(t, int64(4711), rng.Seed())
}
