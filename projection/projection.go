package projection

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/matrixstore"
	"github.com/hupe1980/matrixstore/dimension"
	"github.com/hupe1980/matrixstore/matrix"
)

// ErrInvalidIdentifier is returned for table or field names that are not
// plain SQL identifiers.
var ErrInvalidIdentifier = errors.New("projection: invalid identifier")

// Querier is the part of *matrixstore.Store a Projection needs.
type Querier interface {
	QueryColumns(ctx context.Context, cols matrixstore.Columns, query string, args ...any) (*matrixstore.Rows, error)
	QueryOneColumns(ctx context.Context, cols matrixstore.Columns, query string, args ...any) (matrixstore.Row, error)
	Shape() (practices, dates int, err error)
	Dates() (*dimension.Index, error)
	PracticeOffset(code string) (int, error)
	DateOffset(date string) (int, error)
}

// Options configures the relations a Projection reads.
type Options struct {
	PresentationTable string
	CodeColumn        string
	StatisticTable    string
}

// Projection builds matrices from a matrix store.
type Projection struct {
	q    Querier
	opts Options
}

// New returns a Projection over q reading presentation(bnf_code, ...) and
// practice_statistic(name, value) unless overridden.
func New(q Querier, optFns ...func(*Options)) *Projection {
	opts := Options{
		PresentationTable: "presentation",
		CodeColumn:        "bnf_code",
		StatisticTable:    "practice_statistic",
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Projection{q: q, opts: opts}
}

// Presentation returns the field matrix of one presentation. A NULL cell
// means nothing was prescribed and yields a zero matrix.
func (p *Projection) Presentation(ctx context.Context, code, field string) (*matrix.Matrix, error) {
	if err := checkIdentifiers(p.opts.PresentationTable, p.opts.CodeColumn, field); err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT "%s" FROM "%s" WHERE "%s" = ?`, field, p.opts.PresentationTable, p.opts.CodeColumn)
	row, err := p.q.QueryOneColumns(ctx, matrixstore.Columns{matrixstore.KindVector}, query, code)
	if err != nil {
		return nil, fmt.Errorf("projection: presentation %s: %w", code, err)
	}
	practices, dates, err := p.q.Shape()
	if err != nil {
		return nil, err
	}
	acc := matrix.Zeros(practices, dates)
	if err := accumulate(acc, row[0]); err != nil {
		return nil, fmt.Errorf("projection: presentation %s: %w", code, err)
	}
	return acc, nil
}

// SumByPrefix sums the field matrices of every presentation whose code
// starts with prefix. Matching is case-sensitive; an empty prefix matches
// everything. No matches yield a zero matrix.
func (p *Projection) SumByPrefix(ctx context.Context, prefix, field string) (*matrix.Matrix, error) {
	sums, err := p.sumFields(ctx, prefix, field)
	if err != nil {
		return nil, err
	}
	return sums[0], nil
}

// Ratio divides the prefix sum of numField by that of denField elementwise.
// Elements with a zero denominator are NaN.
func (p *Projection) Ratio(ctx context.Context, prefix, numField, denField string) (*matrix.Matrix, error) {
	sums, err := p.sumFields(ctx, prefix, numField, denField)
	if err != nil {
		return nil, err
	}
	return sums[0].Divide(sums[1])
}

// PracticeSeries returns one practice's values over all dates.
func (p *Projection) PracticeSeries(ctx context.Context, code, field, practice string) ([]float64, error) {
	i, err := p.q.PracticeOffset(practice)
	if err != nil {
		return nil, err
	}
	m, err := p.Presentation(ctx, code, field)
	if err != nil {
		return nil, err
	}
	return m.Row(i), nil
}

// DateTotals returns, per date, the field summed over all practices and all
// presentations matching prefix.
func (p *Projection) DateTotals(ctx context.Context, prefix, field string) ([]float64, error) {
	m, err := p.SumByPrefix(ctx, prefix, field)
	if err != nil {
		return nil, err
	}
	return m.ColumnSums(), nil
}

// PracticeTotals returns, per practice, the field summed over presentations
// matching prefix at one date.
func (p *Projection) PracticeTotals(ctx context.Context, prefix, field, date string) ([]float64, error) {
	j, err := p.q.DateOffset(date)
	if err != nil {
		return nil, err
	}
	m, err := p.SumByPrefix(ctx, prefix, field)
	if err != nil {
		return nil, err
	}
	return m.Column(j), nil
}

// PracticeStatistic returns the named statistic matrix, such as list size.
func (p *Projection) PracticeStatistic(ctx context.Context, name string) (*matrix.Matrix, error) {
	if err := checkIdentifiers(p.opts.StatisticTable); err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT "value" FROM "%s" WHERE "name" = ?`, p.opts.StatisticTable)
	row, err := p.q.QueryOneColumns(ctx, matrixstore.Columns{matrixstore.KindVector}, query, name)
	if err != nil {
		return nil, fmt.Errorf("projection: statistic %s: %w", name, err)
	}
	practices, dates, err := p.q.Shape()
	if err != nil {
		return nil, err
	}
	acc := matrix.Zeros(practices, dates)
	if err := accumulate(acc, row[0]); err != nil {
		return nil, fmt.Errorf("projection: statistic %s: %w", name, err)
	}
	return acc, nil
}

// Between restricts m to the dates from..to inclusive.
func (p *Projection) Between(m *matrix.Matrix, from, to string) (*matrix.Matrix, error) {
	dates, err := p.q.Dates()
	if err != nil {
		return nil, err
	}
	lo, hi, err := dates.Range(from, to)
	if err != nil {
		return nil, err
	}
	return m.SliceColumns(lo, hi)
}

func (p *Projection) sumFields(ctx context.Context, prefix string, fields ...string) ([]*matrix.Matrix, error) {
	if err := checkIdentifiers(append([]string{p.opts.PresentationTable, p.opts.CodeColumn}, fields...)...); err != nil {
		return nil, err
	}
	practices, dates, err := p.q.Shape()
	if err != nil {
		return nil, err
	}

	quoted := make([]string, len(fields))
	cols := make(matrixstore.Columns, len(fields))
	sums := make([]*matrix.Matrix, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + f + `"`
		cols[i] = matrixstore.KindVector
		sums[i] = matrix.Zeros(practices, dates)
	}

	query := fmt.Sprintf(`SELECT %s FROM "%s" WHERE "%s" LIKE ? ESCAPE '\'`,
		strings.Join(quoted, ", "), p.opts.PresentationTable, p.opts.CodeColumn)
	rows, err := p.q.QueryColumns(ctx, cols, query, LikePrefix(prefix))
	if err != nil {
		return nil, fmt.Errorf("projection: sum %q: %w", prefix, err)
	}
	for row, err := range rows.All() {
		if err != nil {
			return nil, fmt.Errorf("projection: sum %q: %w", prefix, err)
		}
		for i, v := range row {
			if err := accumulate(sums[i], v); err != nil {
				return nil, fmt.Errorf("projection: sum %q field %s: %w", prefix, fields[i], err)
			}
		}
	}
	return sums, nil
}

// accumulate adds a decoded vector cell into acc. NULL adds nothing.
func accumulate(acc *matrix.Matrix, v matrixstore.Value) error {
	vec, ok := v.Vector()
	if !ok {
		return nil
	}
	rows, cols := acc.Shape()
	m, err := matrix.New(vec, rows, cols)
	if err != nil {
		return err
	}
	return acc.AddInPlace(m)
}

// LikePrefix returns a LIKE pattern matching strings that start with
// prefix, escaping %, _ and the escape character itself with '\'.
func LikePrefix(prefix string) string {
	var b strings.Builder
	for _, r := range prefix {
		switch r {
		case '%', '_', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('%')
	return b.String()
}

func checkIdentifiers(names ...string) error {
	for _, n := range names {
		if !dimension.ValidIdentifier(n) {
			return fmt.Errorf("%w: %q", ErrInvalidIdentifier, n)
		}
	}
	return nil
}

var _ Querier = (*matrixstore.Store)(nil)
