// Package projection answers prescribing questions over a matrix store:
// one presentation's matrix, sums over a BNF code prefix, per-date and
// per-practice totals, and ratios of two measures.
//
// Every answer is built from parameterized SQL; table and field names are
// checked against a strict identifier pattern before they reach a query.
//
//	p := projection.New(db)
//	items, err := p.SumByPrefix(ctx, "0601", "items")
//	perDate := items.ColumnSums()
package projection
