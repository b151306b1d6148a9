// Package sqlite selects the database/sql driver and builds connection
// strings for matrix store files.
//
// The default build uses the pure-Go modernc.org/sqlite driver. Building
// with the cgo_sqlite tag switches to github.com/mattn/go-sqlite3.
//
// Connection settings live in the DSN rather than in one-off PRAGMA
// statements because database/sql pools connections: a PRAGMA run on one
// connection is invisible to the next.
package sqlite
