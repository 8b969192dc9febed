// Package dataset holds the tabular housing data and its file formats.
package dataset

import (
	"errors"
	"fmt"
	"math"
)

// ErrColumnNotFound is returned when a named column is absent.
var ErrColumnNotFound = errors.New("column not found")

// Frame is a dense table of float values with named columns. NaN marks a
// missing cell.
type Frame struct {
	Columns []string
	Rows    [][]float64
}

// New builds a frame, checking every row has one value per column.
func New(columns []string, rows [][]float64) (*Frame, error) {
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		if seen[c] {
			return nil, fmt.Errorf("duplicate column %q", c)
		}
		seen[c] = true
	}
	for i, r := range rows {
		if len(r) != len(columns) {
			return nil, fmt.Errorf("row %d has %d values, want %d", i, len(r), len(columns))
		}
	}
	return &Frame{Columns: columns, Rows: rows}, nil
}

// Len is the number of rows.
func (f *Frame) Len() int { return len(f.Rows) }

// Index returns the position of name or -1.
func (f *Frame) Index(name string) int {
	for i, c := range f.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Has reports whether the frame carries column name.
func (f *Frame) Has(name string) bool { return f.Index(name) >= 0 }

// Column returns a copy of the named column.
func (f *Frame) Column(name string) ([]float64, error) {
	j := f.Index(name)
	if j < 0 {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	out := make([]float64, len(f.Rows))
	for i, r := range f.Rows {
		out[i] = r[j]
	}
	return out, nil
}

// Clone deep-copies the frame.
func (f *Frame) Clone() *Frame {
	cols := make([]string, len(f.Columns))
	copy(cols, f.Columns)
	rows := make([][]float64, len(f.Rows))
	for i, r := range f.Rows {
		rows[i] = append([]float64(nil), r...)
	}
	return &Frame{Columns: cols, Rows: rows}
}

// Select returns a new frame with only the named columns, in that order.
func (f *Frame) Select(names []string) (*Frame, error) {
	idx := make([]int, len(names))
	for k, n := range names {
		j := f.Index(n)
		if j < 0 {
			return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, n)
		}
		idx[k] = j
	}
	rows := make([][]float64, len(f.Rows))
	for i, r := range f.Rows {
		out := make([]float64, len(idx))
		for k, j := range idx {
			out[k] = r[j]
		}
		rows[i] = out
	}
	return &Frame{Columns: append([]string(nil), names...), Rows: rows}, nil
}

// Drop returns a copy without column name. A missing column is a no-op.
func (f *Frame) Drop(name string) *Frame {
	if !f.Has(name) {
		return f.Clone()
	}
	keep := make([]string, 0, len(f.Columns)-1)
	for _, c := range f.Columns {
		if c != name {
			keep = append(keep, c)
		}
	}
	out, _ := f.Select(keep)
	return out
}

// Take returns the rows at the given positions, in that order.
func (f *Frame) Take(idx []int) *Frame {
	rows := make([][]float64, len(idx))
	for k, i := range idx {
		rows[k] = append([]float64(nil), f.Rows[i]...)
	}
	return &Frame{Columns: append([]string(nil), f.Columns...), Rows: rows}
}

// FillNaN returns a copy with missing cells of column replaced by value.
func (f *Frame) FillNaN(column string, value float64) (*Frame, error) {
	j := f.Index(column)
	if j < 0 {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, column)
	}
	out := f.Clone()
	for _, r := range out.Rows {
		if math.IsNaN(r[j]) {
			r[j] = value
		}
	}
	return out, nil
}

// XY splits the frame into a feature matrix and target vector.
func (f *Frame) XY(features []string, target string) ([][]float64, []float64, error) {
	y, err := f.Column(target)
	if err != nil {
		return nil, nil, fmt.Errorf("target: %w", err)
	}
	x, err := f.Select(features)
	if err != nil {
		return nil, nil, fmt.Errorf("features: %w", err)
	}
	return x.Rows, y, nil
}
