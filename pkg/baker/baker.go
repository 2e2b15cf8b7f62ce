// Package baker implements the discretized, generalized Baker map driven by a
// secret key.
//
// The key k = (v_0, ..., v_m-1) partitions the grid width N into strips of
// v_i columns. Strip i is cut into v_i stacked blocks, each N/v_i rows tall,
// and each block (v_i × N/v_i = N pixels) is stretched into one full output
// row. Strips are taken from the right edge inward, starting with the last
// key value, and fill output rows from the top.
//
// # Orientation
//
// [transform.Horizontal] cuts vertical strips of columns as described above.
// [transform.Vertical] reads the source transposed, cutting horizontal strips
// of rows instead. The two are not inverses of each other: a grid encrypted
// horizontally must be decrypted horizontally.
//
// # Direction
//
// Both directions walk the same block traversal and differ only in which
// side is read and which is written, so decryption is the exact inverse of
// encryption for the same width, key and orientation.
package baker

import (
	errs "github.com/matzehuels/chaoscrypt/pkg/errors"
	"github.com/matzehuels/chaoscrypt/pkg/grid"
	"github.com/matzehuels/chaoscrypt/pkg/key"
	"github.com/matzehuels/chaoscrypt/pkg/transform"
)

// Encrypt scrambles g with the Baker map.
func Encrypt(g *grid.Grid, width int, k key.SecretKey, o transform.Orientation) (*grid.Grid, error) {
	return Apply(g, width, k, o, transform.Encrypt)
}

// Decrypt restores a grid scrambled by [Encrypt] with the same width, key
// and orientation.
func Decrypt(g *grid.Grid, width int, k key.SecretKey, o transform.Orientation) (*grid.Grid, error) {
	return Apply(g, width, k, o, transform.Decrypt)
}

// Apply runs the Baker map over g in the given direction.
//
// The grid must be width×width (DIMENSION_MISMATCH otherwise) and k must
// partition width into its divisors (INVALID_SECRET_KEY otherwise). The
// result is a new grid; g is not modified.
func Apply(g *grid.Grid, width int, k key.SecretKey, o transform.Orientation, dir transform.Direction) (*grid.Grid, error) {
	if err := grid.CheckSize(g, width); err != nil {
		return nil, err
	}
	if err := k.Validate(width); err != nil {
		return nil, err
	}
	if !o.Valid() {
		return nil, errs.New(errs.ErrCodeInvalidInput, "invalid orientation %v", o)
	}
	if !dir.Valid() {
		return nil, errs.New(errs.ErrCodeInvalidInput, "invalid direction %v", dir)
	}

	out := grid.New(width)
	src, dst := g.Pix(), out.Pix()
	walk(width, k, func(col, r, linear int) {
		block := blockIndex(width, col, r, o)
		if dir == transform.Encrypt {
			dst[linear] = src[block]
		} else {
			dst[block] = src[linear]
		}
	})
	return out, nil
}

// walk visits every pixel of the keyed block layout exactly once.
//
// For each visit, (col, r) is the strip column and row of the pixel in block
// space and linear is its row-major index in the stretched layout. Within a
// block, columns are read left to right and each column bottom to top.
func walk(width int, k key.SecretKey, visit func(col, r, linear int)) {
	offset := width
	row := 0
	for i := k.Len() - 1; i >= 0; i-- {
		v := k.At(i)
		h := width / v
		offset -= v
		for top := 0; top < width; top += h {
			linear := row * width
			for col := offset; col < offset+v; col++ {
				for r := top + h - 1; r >= top; r-- {
					visit(col, r, linear)
					linear++
				}
			}
			row++
		}
	}
}

// blockIndex maps block-space coordinates to a row-major grid index.
// Vertical orientation swaps the axes.
func blockIndex(width, col, r int, o transform.Orientation) int {
	if o == transform.Vertical {
		return col*width + r
	}
	return r*width + col
}
