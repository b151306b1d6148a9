//go:build !cgo_sqlite

package sqlite

import (
	"net/url"
	"strconv"

	_ "modernc.org/sqlite"
)

// DriverName is the database/sql driver registered by this build.
const DriverName = "sqlite"

func readOnlyParams(q url.Values, cfg ReadOnlyConfig) {
	q.Add("_pragma", "case_sensitive_like(1)")
	q.Add("_pragma", "query_only(1)")
	if cfg.MmapSize > 0 {
		q.Add("_pragma", "mmap_size("+strconv.FormatInt(cfg.MmapSize, 10)+")")
	}
}
