//go:build cgo_sqlite

package sqlite

import (
	"net/url"

	_ "github.com/mattn/go-sqlite3"
)

// DriverName is the database/sql driver registered by this build.
const DriverName = "sqlite3"

// go-sqlite3 has no DSN parameter for mmap_size; cfg.MmapSize is ignored.
func readOnlyParams(q url.Values, _ ReadOnlyConfig) {
	q.Set("_cslike", "1")
	q.Set("_query_only", "1")
}
