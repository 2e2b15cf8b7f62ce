// Package grid provides the square pixel grid that every chaoscrypt
// transform consumes and produces.
//
// A [Grid] holds N×N integer pixels (one scalar channel, or a packed color)
// in row-major order. Transforms never mutate their input: they allocate a
// fresh Grid of the same size for each result.
//
// # Coordinates
//
// Pixels are addressed as (x, y), with x the column and y the row, both in
// [0, N). [Grid.At] and [Grid.Set] panic on out-of-range coordinates, the same
// way slice indexing does.
//
// # Construction
//
//	g := grid.New(256)              // zero-filled 256×256
//	g, err := grid.FromRows(rows)   // DIMENSION_MISMATCH unless rows is square
package grid

import (
	"fmt"

	errs "github.com/matzehuels/chaoscrypt/pkg/errors"
)

// Grid is a square N×N array of pixel values stored row-major.
type Grid struct {
	size int
	pix  []uint32
}

// New allocates a zero-filled size×size grid.
// It panics if size is negative.
func New(size int) *Grid {
	if size < 0 {
		panic(fmt.Sprintf("grid: negative size %d", size))
	}
	return &Grid{size: size, pix: make([]uint32, size*size)}
}

// FromRows builds a grid from a slice of rows, copying the data.
// Every row must have exactly len(rows) pixels.
func FromRows(rows [][]uint32) (*Grid, error) {
	n := len(rows)
	g := New(n)
	for y, row := range rows {
		if len(row) != n {
			return nil, errs.New(errs.ErrCodeDimensionMismatch,
				"row %d has %d pixels, want %d (grid must be square)", y, len(row), n)
		}
		copy(g.pix[y*n:(y+1)*n], row)
	}
	return g, nil
}

// FromPix wraps a row-major pixel slice of length size*size without copying.
func FromPix(size int, pix []uint32) (*Grid, error) {
	if size < 0 || len(pix) != size*size {
		return nil, errs.New(errs.ErrCodeDimensionMismatch,
			"%d pixels cannot form a %dx%d grid", len(pix), size, size)
	}
	return &Grid{size: size, pix: pix}, nil
}

// Size returns N, the side length of the grid.
func (g *Grid) Size() int { return g.size }

// At returns the pixel at column x, row y.
func (g *Grid) At(x, y int) uint32 {
	g.check(x, y)
	return g.pix[y*g.size+x]
}

// Set stores v at column x, row y.
func (g *Grid) Set(x, y int, v uint32) {
	g.check(x, y)
	g.pix[y*g.size+x] = v
}

// Pix returns the underlying row-major pixel slice.
func (g *Grid) Pix() []uint32 { return g.pix }

// Rows returns a copy of the grid as a slice of rows.
func (g *Grid) Rows() [][]uint32 {
	rows := make([][]uint32, g.size)
	for y := range rows {
		rows[y] = append([]uint32(nil), g.pix[y*g.size:(y+1)*g.size]...)
	}
	return rows
}

// Clone returns a deep copy of g.
func (g *Grid) Clone() *Grid {
	return &Grid{size: g.size, pix: append([]uint32(nil), g.pix...)}
}

// Equal reports whether g and o have the same size and pixels.
func (g *Grid) Equal(o *Grid) bool {
	if g == nil || o == nil {
		return g == o
	}
	if g.size != o.size {
		return false
	}
	for i, v := range g.pix {
		if o.pix[i] != v {
			return false
		}
	}
	return true
}

// Transpose returns a new grid with rows and columns swapped.
func (g *Grid) Transpose() *Grid {
	out := New(g.size)
	for y := 0; y < g.size; y++ {
		for x := 0; x < g.size; x++ {
			out.pix[x*g.size+y] = g.pix[y*g.size+x]
		}
	}
	return out
}

// CheckSize returns DIMENSION_MISMATCH unless g is a non-nil grid of side width.
func CheckSize(g *Grid, width int) error {
	if g == nil {
		return errs.New(errs.ErrCodeDimensionMismatch, "grid is nil")
	}
	if g.size != width {
		return errs.New(errs.ErrCodeDimensionMismatch,
			"grid is %dx%d but width is %d", g.size, g.size, width)
	}
	return nil
}

// Sequential returns a size×size grid whose pixel at (x, y) is y*size+x,
// so every cell holds a distinct marker.
func Sequential(size int) *Grid {
	g := New(size)
	for i := range g.pix {
		g.pix[i] = uint32(i)
	}
	return g
}

func (g *Grid) check(x, y int) {
	if x < 0 || y < 0 || x >= g.size || y >= g.size {
		panic(fmt.Sprintf("grid: (%d, %d) out of range for %dx%d grid", x, y, g.size, g.size))
	}
}
