// Package matrixstore provides read-only access to a prescribing matrix
// store: a SQLite file whose blob cells hold dense numeric vectors indexed
// by practice and date.
//
// Every vector cell in the file has practices × dates elements laid out
// practice-major: element practice*dates + date. The file carries two
// lookup tables that map keys to those offsets:
//
//	date(date TEXT, offset INTEGER)
//	practice(code TEXT, offset INTEGER)
//
// # Quick Start
//
//	ctx := context.Background()
//	db, err := matrixstore.Open(ctx, "matrixstore.sqlite")
//	if err != nil { ... }
//	defer db.Close()
//
//	row, err := db.QueryOne(ctx, "SELECT items FROM presentation WHERE bnf_code = ?", "0601023AWAAAAAA")
//	items, _ := row.Vector(0)
//	p, _ := db.PracticeOffset("A81001")
//	d, _ := db.DateOffset("2024-01-01")
//	_, dates, _ := db.Shape()
//	fmt.Println(items[p*dates+d])
//
// # Decoding
//
// Query decodes every blob value with the store's codec and passes other
// values through. QueryColumns takes declared column kinds instead, so a
// blob that is not a vector can be read as opaque bytes. The default codec
// reads little-endian float64 with no header; see package codec for others.
//
// A blob that fails to decode ends the row sequence: Next returns false and
// Err returns a *DecodeError matching ErrCorruptPayload.
//
// # Remote Files
//
// Published files can be fetched from object storage before opening:
//
//	bs, _ := s3.New(ctx, "my-bucket", s3.WithPrefix("matrixstore/"))
//	db, err := matrixstore.OpenRemote(ctx, bs, "matrixstore.sqlite", "/var/cache/matrixstore")
//
// # Drivers
//
// The default build uses the pure-Go modernc.org/sqlite driver. Build with
// -tags cgo_sqlite to use github.com/mattn/go-sqlite3 instead.
package matrixstore
