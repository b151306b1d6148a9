package main

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/matrixstore/testutil"
)

func fixtureFile(t *testing.T) string {
	t.Helper()
	return testutil.BuildFile(t, testutil.Fixture{
		Dates:     []string{"2024-01-01", "2024-02-01"},
		Practices: []string{"A81001", "A81002"},
		Presentations: []testutil.Presentation{
			{BNFCode: "0601012V0AAABAB", Items: []float64{1, 2, 3, 4}},
			{BNFCode: "0601023A0AAAAAA", Items: []float64{10, 10, 10, 10}},
			{BNFCode: "0212000AAAAAAAA", Items: []float64{100, 100, 100, 100}},
		},
	})
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestInfo(t *testing.T) {
	path := fixtureFile(t)

	out, err := run(t, "info", path)
	require.NoError(t, err)

	var info infoOutput
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, 2, info.Practices)
	assert.Equal(t, 2, info.Dates)
	assert.Equal(t, "float64", info.Codec)
	assert.Equal(t, "2024-01-01", info.FirstDate)
	assert.Equal(t, "2024-02-01", info.LastDate)
	assert.Equal(t, []string{"date", "practice", "practice_statistic", "presentation"}, info.Tables)
}

func TestLookup(t *testing.T) {
	path := fixtureFile(t)

	out, err := run(t, "lookup", path, "--practice", "A81002")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)

	out, err = run(t, "lookup", path, "--date", "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, "0\n", out)

	_, err = run(t, "lookup", path, "--practice", "Z99")
	assert.Error(t, err)

	_, err = run(t, "lookup", path)
	assert.Error(t, err)
}

func TestQuery(t *testing.T) {
	path := fixtureFile(t)

	out, err := run(t, "query", path,
		`SELECT bnf_code, items FROM presentation WHERE bnf_code = ?`, "0601012V0AAABAB")
	require.NoError(t, err)
	assert.Equal(t, `{"bnf_code":"0601012V0AAABAB","items":[1,2,3,4]}`, strings.TrimSpace(out))

	_, err = run(t, "query", path, `DELETE FROM presentation`)
	assert.Error(t, err)
}

func TestQuery_NonFiniteValues(t *testing.T) {
	path := testutil.BuildFile(t, testutil.Fixture{
		Dates:     []string{"2024-01-01", "2024-02-01"},
		Practices: []string{"A81001", "A81002"},
		Presentations: []testutil.Presentation{
			{BNFCode: "0601012V0AAABAB", Items: []float64{math.NaN(), math.Inf(1), math.Inf(-1), 2.5}},
		},
	})

	out, err := run(t, "query", path, `SELECT items, 1e999 AS big FROM presentation`)
	require.NoError(t, err)
	assert.Equal(t, `{"big":null,"items":[null,null,null,2.5]}`, strings.TrimSpace(out))
}

func TestFloats_MarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   floats
		want string
	}{
		{"Nil", nil, `null`},
		{"Empty", floats{}, `[]`},
		{"Finite", floats{1, -0.5, 1e21}, `[1,-0.5,1e+21]`},
		{"NonFinite", floats{math.NaN(), math.Inf(1), 3}, `[null,null,3]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(b))
		})
	}
}

func TestSum(t *testing.T) {
	path := fixtureFile(t)

	decode := func(out string) sumOutput {
		var res sumOutput
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		return res
	}

	out, err := run(t, "sum", path, "0601")
	require.NoError(t, err)
	assert.Equal(t, floats{50}, decode(out).Values)

	out, err = run(t, "sum", path, "0601", "--by", "date")
	require.NoError(t, err)
	res := decode(out)
	assert.Equal(t, []string{"2024-01-01", "2024-02-01"}, res.Keys)
	assert.Equal(t, floats{1 + 3 + 20, 2 + 4 + 20}, res.Values)

	out, err = run(t, "sum", path, "0601", "--by", "practice", "--date", "2024-02-01")
	require.NoError(t, err)
	res = decode(out)
	assert.Equal(t, []string{"A81001", "A81002"}, res.Keys)
	assert.Equal(t, floats{12, 14}, res.Values)

	_, err = run(t, "sum", path, "0601", "--by", "practice")
	assert.Error(t, err)

	_, err = run(t, "sum", path, "0601", "--by", "week")
	assert.Error(t, err)
}

func TestFetch_Local(t *testing.T) {
	src := t.TempDir()
	data, err := os.ReadFile(fixtureFile(t))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(src, "matrixstore_2024.sqlite"), data, 0o600))

	cache := t.TempDir()
	args := []string{"fetch", "matrixstore_2024.sqlite", "--root", src, "--cache-dir", cache}

	out, err := run(t, args...)
	require.NoError(t, err)
	var res fetchOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.False(t, res.Skipped)
	assert.Equal(t, int64(len(data)), res.Bytes)
	assert.Equal(t, filepath.Join(cache, "matrixstore_2024.sqlite"), res.Path)

	out, err = run(t, args...)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.Skipped)

	_, err = run(t, "fetch", "absent.sqlite", "--root", src, "--cache-dir", cache)
	assert.Error(t, err)
}

func TestInvalidConfig(t *testing.T) {
	_, err := run(t, "info", fixtureFile(t), "--codec", "gzip")
	assert.Error(t, err)
}
