package sqlite

import (
	"net/url"
	"path/filepath"
)

// Header is the 16-byte magic string at the start of every SQLite database.
const Header = "SQLite format 3\x00"

// ReadOnlyConfig describes a read-only connection.
type ReadOnlyConfig struct {
	// MmapSize enables SQLite's own memory-mapped I/O up to this many bytes.
	// Zero leaves the driver default.
	MmapSize int64
}

// ReadOnlyDSN returns a URI DSN that opens path read-only and immutable,
// with case-sensitive LIKE and query_only set on every connection.
func ReadOnlyDSN(path string, cfg ReadOnlyConfig) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	q := url.Values{}
	q.Set("mode", "ro")
	q.Set("immutable", "1")
	readOnlyParams(q, cfg)
	return uri(abs, q), nil
}

// WritableDSN returns a URI DSN that opens or creates path for writing.
func WritableDSN(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	q := url.Values{}
	q.Set("mode", "rwc")
	return uri(abs, q), nil
}

func uri(abs string, q url.Values) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs), RawQuery: q.Encode()}
	return u.String()
}
