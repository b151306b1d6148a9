// Package matrix provides a practice × date view over a decoded vector.
//
// A Matrix is row-major: row i is a practice, column j a date, and the
// element lives at data[i*cols+j]. This is the layout every vector cell in
// a matrix store file uses.
package matrix

import (
	"errors"
	"fmt"
	"math"
)

// ErrShape is returned when dimensions do not fit the data or each other.
var ErrShape = errors.New("matrix: shape mismatch")

// Matrix is a dense row-major float64 matrix.
type Matrix struct {
	rows, cols int
	data       []float64
}

// New wraps data as a rows × cols matrix without copying.
// len(data) must equal rows*cols.
func New(data []float64, rows, cols int) (*Matrix, error) {
	if rows < 0 || cols < 0 || len(data) != rows*cols {
		return nil, fmt.Errorf("%w: %d values for %d×%d", ErrShape, len(data), rows, cols)
	}
	return &Matrix{rows: rows, cols: cols, data: data}, nil
}

// Zeros returns a rows × cols matrix of zeros.
func Zeros(rows, cols int) *Matrix {
	return &Matrix{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

// Shape returns the number of rows and columns.
func (m *Matrix) Shape() (rows, cols int) { return m.rows, m.cols }

// Data returns the backing slice.
func (m *Matrix) Data() []float64 { return m.data }

// At returns the element at row i, column j. It panics if out of range.
func (m *Matrix) At(i, j int) float64 {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic(fmt.Sprintf("matrix: index (%d, %d) out of range %d×%d", i, j, m.rows, m.cols))
	}
	return m.data[i*m.cols+j]
}

// Row returns a copy of row i.
func (m *Matrix) Row(i int) []float64 {
	if i < 0 || i >= m.rows {
		panic(fmt.Sprintf("matrix: row %d out of range %d", i, m.rows))
	}
	return append([]float64(nil), m.data[i*m.cols:(i+1)*m.cols]...)
}

// Column returns a copy of column j.
func (m *Matrix) Column(j int) []float64 {
	if j < 0 || j >= m.cols {
		panic(fmt.Sprintf("matrix: column %d out of range %d", j, m.cols))
	}
	out := make([]float64, m.rows)
	for i := range out {
		out[i] = m.data[i*m.cols+j]
	}
	return out
}

// Sum returns the sum of all elements.
func (m *Matrix) Sum() float64 {
	var s float64
	for _, v := range m.data {
		s += v
	}
	return s
}

// RowSums returns the sum of each row (per-practice totals).
func (m *Matrix) RowSums() []float64 {
	out := make([]float64, m.rows)
	for i := range out {
		for _, v := range m.data[i*m.cols : (i+1)*m.cols] {
			out[i] += v
		}
	}
	return out
}

// ColumnSums returns the sum of each column (per-date totals).
func (m *Matrix) ColumnSums() []float64 {
	out := make([]float64, m.cols)
	for i := range m.rows {
		for j, v := range m.data[i*m.cols : (i+1)*m.cols] {
			out[j] += v
		}
	}
	return out
}

// Add returns m + o.
func (m *Matrix) Add(o *Matrix) (*Matrix, error) {
	out := m.Clone()
	if err := out.AddInPlace(o); err != nil {
		return nil, err
	}
	return out, nil
}

// AddInPlace adds o to m elementwise.
func (m *Matrix) AddInPlace(o *Matrix) error {
	if err := m.sameShape(o); err != nil {
		return err
	}
	for i, v := range o.data {
		m.data[i] += v
	}
	return nil
}

// Divide returns the elementwise ratio m / o. Elements where o is zero
// are NaN.
func (m *Matrix) Divide(o *Matrix) (*Matrix, error) {
	if err := m.sameShape(o); err != nil {
		return nil, err
	}
	out := make([]float64, len(m.data))
	for i, v := range m.data {
		if o.data[i] == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = v / o.data[i]
	}
	return &Matrix{rows: m.rows, cols: m.cols, data: out}, nil
}

// SliceColumns returns a copy of columns [lo, hi).
func (m *Matrix) SliceColumns(lo, hi int) (*Matrix, error) {
	if lo < 0 || hi > m.cols || lo > hi {
		return nil, fmt.Errorf("%w: columns [%d, %d) of %d", ErrShape, lo, hi, m.cols)
	}
	width := hi - lo
	out := make([]float64, m.rows*width)
	for i := range m.rows {
		copy(out[i*width:(i+1)*width], m.data[i*m.cols+lo:i*m.cols+hi])
	}
	return &Matrix{rows: m.rows, cols: width, data: out}, nil
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	return &Matrix{rows: m.rows, cols: m.cols, data: append([]float64(nil), m.data...)}
}

func (m *Matrix) sameShape(o *Matrix) error {
	if m.rows != o.rows || m.cols != o.cols {
		return fmt.Errorf("%w: %d×%d and %d×%d", ErrShape, m.rows, m.cols, o.rows, o.cols)
	}
	return nil
}
