package sqlite

import (
	"context"
	"database/sql"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadOnlyDSN(t *testing.T) {
	dsn, err := ReadOnlyDSN("/data/matrix store.sqlite", ReadOnlyConfig{})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(dsn, "file:///data/matrix%20store.sqlite?"), dsn)

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "ro", q.Get("mode"))
	assert.Equal(t, "1", q.Get("immutable"))
}

func createFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "m.sqlite")
	dsn, err := WritableDSN(path)
	require.NoError(t, err)

	db, err := sql.Open(DriverName, dsn)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE presentation (bnf_code TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO presentation VALUES ('0601'), ('0601abc'), ('0601ABC')`)
	require.NoError(t, err)
	return path
}

func TestReadOnlyDSN_ConnectionSettings(t *testing.T) {
	path := createFile(t)
	dsn, err := ReadOnlyDSN(path, ReadOnlyConfig{MmapSize: 1 << 20})
	require.NoError(t, err)

	db, err := sql.Open(DriverName, dsn)
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(4)

	ctx := context.Background()

	// Every pooled connection sees case-sensitive LIKE.
	conns := make([]*sql.Conn, 3)
	for i := range conns {
		c, err := db.Conn(ctx)
		require.NoError(t, err)
		conns[i] = c
	}
	for _, c := range conns {
		var n int
		require.NoError(t, c.QueryRowContext(ctx, `SELECT count(*) FROM presentation WHERE bnf_code LIKE '0601abc'`).Scan(&n))
		assert.Equal(t, 1, n)
		require.NoError(t, c.Close())
	}

	_, err = db.ExecContext(ctx, `INSERT INTO presentation VALUES ('x')`)
	assert.Error(t, err)
}
