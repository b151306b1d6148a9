package matrixstore

import (
	"fmt"
	"math"
	"time"
)

// Kind is the type of a decoded column value.
type Kind uint8

const (
	// KindNull is a SQL NULL.
	KindNull Kind = iota
	// KindScalar is any non-vector value, passed through from the driver.
	KindScalar
	// KindVector is a decoded blob.
	KindVector
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindScalar:
		return "scalar"
	case KindVector:
		return "vector"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Columns declares the kind of each result column for QueryColumns.
// Only KindScalar and KindVector are valid declarations.
type Columns []Kind

// Value is one column of a decoded row.
//
// Scalars hold whatever the driver produced: int64, float64, string,
// []byte, bool or time.Time.
type Value struct {
	kind   Kind
	scalar any
	vector []float64
}

// Null returns a NULL value.
func Null() Value { return Value{} }

// Scalar wraps a driver value. A nil v yields a NULL value.
func Scalar(v any) Value {
	if v == nil {
		return Value{}
	}
	return Value{kind: KindScalar, scalar: v}
}

// Vector wraps a decoded vector. A nil v is still a vector of length zero.
func Vector(v []float64) Value {
	if v == nil {
		v = []float64{}
	}
	return Value{kind: KindVector, vector: v}
}

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is NULL.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Any returns the scalar, the vector, or nil for NULL.
func (v Value) Any() any {
	switch v.kind {
	case KindScalar:
		return v.scalar
	case KindVector:
		return v.vector
	default:
		return nil
	}
}

// Vector returns the decoded vector and whether the value is a vector.
func (v Value) Vector() ([]float64, bool) {
	return v.vector, v.kind == KindVector
}

// Text returns the scalar as a string. []byte scalars are converted.
func (v Value) Text() (string, bool) {
	switch s := v.scalar.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	case time.Time:
		return s.Format(time.DateOnly), true
	default:
		return "", false
	}
}

// Int64 returns the scalar as an int64.
func (v Value) Int64() (int64, bool) {
	switch s := v.scalar.(type) {
	case int64:
		return s, true
	case float64:
		if s >= math.MinInt64 && s < math.MaxInt64 && s == math.Trunc(s) {
			return int64(s), true
		}
	}
	return 0, false
}

// Float64 returns the scalar as a float64.
func (v Value) Float64() (float64, bool) {
	switch s := v.scalar.(type) {
	case float64:
		return s, true
	case int64:
		return float64(s), true
	default:
		return 0, false
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindVector:
		return fmt.Sprintf("vector[%d]", len(v.vector))
	default:
		return fmt.Sprint(v.scalar)
	}
}

// Row is one decoded result row.
type Row []Value

// Vector returns column i as a vector.
func (r Row) Vector(i int) ([]float64, bool) {
	if i < 0 || i >= len(r) {
		return nil, false
	}
	return r[i].Vector()
}

// Text returns column i as a string.
func (r Row) Text(i int) (string, bool) {
	if i < 0 || i >= len(r) {
		return "", false
	}
	return r[i].Text()
}
