package projection

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/matrixstore"
	"github.com/hupe1980/matrixstore/testutil"
)

// 2 practices x 3 dates, row-major per practice.
func openFixture(t *testing.T) *matrixstore.Store {
	t.Helper()
	path := testutil.BuildFile(t, testutil.Fixture{
		Dates:     []string{"2024-01-01", "2024-02-01", "2024-03-01"},
		Practices: []string{"A81001", "A81002"},
		Presentations: []testutil.Presentation{
			{
				BNFCode:  "0601012V0AAABAB",
				Items:    []float64{1, 2, 3, 4, 5, 6},
				Quantity: []float64{10, 20, 30, 40, 50, 60},
				NetCost:  []float64{2, 4, 0, 8, 10, 12},
			},
			{
				BNFCode:  "0601023A0AAAAAA",
				Items:    []float64{1, 1, 1, 1, 1, 1},
				Quantity: []float64{5, 5, 5, 5, 5, 5},
			},
			{
				BNFCode: "0212000AAAAAAAA",
				Items:   []float64{100, 100, 100, 100, 100, 100},
			},
			{
				BNFCode: "06_literal",
				Items:   []float64{7, 7, 7, 7, 7, 7},
			},
		},
		Statistics: []testutil.Statistic{
			{Name: "total_list_size", Values: []float64{1000, 1010, 1020, 2000, 2010, 2020}},
		},
	})
	s, err := matrixstore.Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPresentation(t *testing.T) {
	p := New(openFixture(t))
	ctx := context.Background()

	m, err := p.Presentation(ctx, "0601012V0AAABAB", "items")
	require.NoError(t, err)

	rows, cols := m.Shape()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 3, cols)
	assert.Equal(t, []float64{1, 2, 3}, m.Row(0))
	assert.Equal(t, []float64{4, 5, 6}, m.Row(1))

	t.Run("null field is zeros", func(t *testing.T) {
		m, err := p.Presentation(ctx, "0601023A0AAAAAA", "actual_cost")
		require.NoError(t, err)
		assert.Equal(t, 0.0, m.Sum())
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := p.Presentation(ctx, "9999999", "items")
		assert.ErrorIs(t, err, matrixstore.ErrNoResult)
	})

	t.Run("invalid field", func(t *testing.T) {
		_, err := p.Presentation(ctx, "0601012V0AAABAB", `items"; DROP TABLE presentation; --`)
		assert.ErrorIs(t, err, ErrInvalidIdentifier)
	})
}

func TestSumByPrefix(t *testing.T) {
	p := New(openFixture(t))
	ctx := context.Background()

	tests := []struct {
		name   string
		prefix string
		sum    float64
	}{
		{"chapter", "06", 21 + 6 + 42},
		{"section", "0601", 21 + 6},
		{"single", "0601012", 21},
		{"underscore is literal", "06_", 42},
		{"everything", "", 21 + 6 + 600 + 42},
		{"no match", "99", 0},
		{"case sensitive", "06_LITERAL", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := p.SumByPrefix(ctx, tt.prefix, "items")
			require.NoError(t, err)
			assert.Equal(t, tt.sum, m.Sum())
		})
	}
}

func TestTotals(t *testing.T) {
	p := New(openFixture(t))
	ctx := context.Background()

	dates, err := p.DateTotals(ctx, "0601", "quantity")
	require.NoError(t, err)
	assert.Equal(t, []float64{10 + 40 + 10, 20 + 50 + 10, 30 + 60 + 10}, dates)

	practices, err := p.PracticeTotals(ctx, "0601", "quantity", "2024-02-01")
	require.NoError(t, err)
	assert.Equal(t, []float64{25, 55}, practices)

	_, err = p.PracticeTotals(ctx, "0601", "quantity", "1999-01-01")
	assert.ErrorIs(t, err, matrixstore.ErrUnknownKey)
}

func TestPracticeSeries(t *testing.T) {
	p := New(openFixture(t))

	series, err := p.PracticeSeries(context.Background(), "0601012V0AAABAB", "net_cost", "A81002")
	require.NoError(t, err)
	assert.Equal(t, []float64{8, 10, 12}, series)

	_, err = p.PracticeSeries(context.Background(), "0601012V0AAABAB", "net_cost", "Z99")
	assert.ErrorIs(t, err, matrixstore.ErrUnknownKey)
}

func TestRatio(t *testing.T) {
	p := New(openFixture(t))

	m, err := p.Ratio(context.Background(), "0601012", "net_cost", "items")
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2, 0}, m.Row(0))

	m, err = p.Ratio(context.Background(), "0601012", "items", "net_cost")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(m.At(0, 2)))
	assert.Equal(t, 0.5, m.At(1, 0))
}

func TestPracticeStatistic(t *testing.T) {
	p := New(openFixture(t))

	m, err := p.PracticeStatistic(context.Background(), "total_list_size")
	require.NoError(t, err)
	assert.Equal(t, []float64{1000, 2000}, m.Column(0))

	_, err = p.PracticeStatistic(context.Background(), "nope")
	assert.ErrorIs(t, err, matrixstore.ErrNoResult)
}

func TestBetween(t *testing.T) {
	p := New(openFixture(t))

	m, err := p.Presentation(context.Background(), "0601012V0AAABAB", "items")
	require.NoError(t, err)

	sub, err := p.Between(m, "2024-02-01", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3}, sub.Row(0))
	assert.Equal(t, []float64{5, 6}, sub.Row(1))

	_, err = p.Between(m, "2024-03-01", "2024-01-01")
	assert.Error(t, err)
}

func TestCustomTables(t *testing.T) {
	s := openFixture(t)
	p := New(s, func(o *Options) {
		o.PresentationTable = "presentation"
		o.CodeColumn = "bnf_code"
		o.StatisticTable = "missing_table"
	})
	_, err := p.PracticeStatistic(context.Background(), "total_list_size")
	assert.Error(t, err)

	p = New(s, func(o *Options) { o.StatisticTable = "bad name" })
	_, err = p.PracticeStatistic(context.Background(), "total_list_size")
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
}

func TestLikePrefix(t *testing.T) {
	assert.Equal(t, "0601%", LikePrefix("0601"))
	assert.Equal(t, `a\%b\_c\\%`, LikePrefix(`a%b_c\`))
	assert.Equal(t, "%", LikePrefix(""))
}
