package dimension

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Querier is the subset of *sql.DB used to scan a lookup relation.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether s can be interpolated into SQL as a table
// or column name.
func ValidIdentifier(s string) bool {
	return identifier.MatchString(s)
}

// Load reads every (keyColumn, offset) row of table and builds an Index.
func Load(ctx context.Context, q Querier, axis, table, keyColumn string) (*Index, error) {
	if !ValidIdentifier(table) || !ValidIdentifier(keyColumn) {
		return nil, fmt.Errorf("%s: invalid lookup relation %q.%q", axis, table, keyColumn)
	}

	rows, err := q.QueryContext(ctx, fmt.Sprintf(`SELECT "%s", "offset" FROM "%s"`, keyColumn, table))
	if err != nil {
		return nil, fmt.Errorf("%s: scan lookup relation %s: %w", axis, table, err)
	}
	defer rows.Close()

	var pairs []Pair
	for rows.Next() {
		var (
			raw    any
			offset int64
		)
		if err := rows.Scan(&raw, &offset); err != nil {
			return nil, fmt.Errorf("%s: scan lookup row: %w", axis, err)
		}
		key, err := keyString(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", axis, err)
		}
		pairs = append(pairs, Pair{Key: key, Offset: int(offset)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: scan lookup relation %s: %w", axis, table, err)
	}

	return New(axis, pairs)
}

// keyString normalizes a lookup key. Drivers may surface a DATE column as
// time.Time; such keys are rendered as YYYY-MM-DD, the format the file is
// written with.
func keyString(v any) (string, error) {
	switch k := v.(type) {
	case string:
		return k, nil
	case []byte:
		return string(k), nil
	case int64:
		return strconv.FormatInt(k, 10), nil
	case time.Time:
		return k.Format(time.DateOnly), nil
	case nil:
		return "", fmt.Errorf("NULL key in lookup relation")
	default:
		return "", fmt.Errorf("unsupported key type %T in lookup relation", v)
	}
}
