// Package arnold implements the generalized Arnold cat map as a pixel
// permutation on an N×N torus.
//
// The forward map sends the pixel at (x, y) to
//
//	x' = ((a*b+1)*x + a*y) mod N
//	y' = (b*x + y) mod N
//
// Its matrix has determinant 1, so the inverse is again an integer shear:
//
//	x = (x' - a*y') mod N
//	y = (-b*x' + (a*b+1)*y') mod N
//
// Both directions allocate a new grid and leave the input untouched.
package arnold

import (
	errs "github.com/matzehuels/chaoscrypt/pkg/errors"
	"github.com/matzehuels/chaoscrypt/pkg/grid"
	"github.com/matzehuels/chaoscrypt/pkg/transform"
)

// Params holds the two shear parameters of the cat map.
type Params struct {
	A int `json:"a" toml:"a"`
	B int `json:"b" toml:"b"`
}

// Validate rejects negative parameters.
func (p Params) Validate() error {
	if p.A < 0 || p.B < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "arnold parameters must be non-negative, got a=%d b=%d", p.A, p.B)
	}
	return nil
}

// Encrypt applies the forward cat map once.
func Encrypt(g *grid.Grid, a, b int) (*grid.Grid, error) {
	return Apply(g, Params{A: a, B: b}, transform.Encrypt)
}

// Decrypt applies the inverse cat map once.
func Decrypt(g *grid.Grid, a, b int) (*grid.Grid, error) {
	return Apply(g, Params{A: a, B: b}, transform.Decrypt)
}

// Apply permutes g with the cat map in the given direction.
func Apply(g *grid.Grid, p Params, dir transform.Direction) (*grid.Grid, error) {
	if g == nil || g.Size() == 0 {
		return nil, errs.New(errs.ErrCodeDimensionMismatch, "grid is empty")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if !dir.Valid() {
		return nil, errs.New(errs.ErrCodeInvalidInput, "invalid direction %v", dir)
	}

	n := g.Size()
	// Only a and b modulo n affect the result; reducing first keeps the
	// products well inside int range for any grid size.
	a, b := p.A%n, p.B%n
	ab1 := (a*b + 1) % n

	out := grid.New(n)
	src, dst := g.Pix(), out.Pix()
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			var nx, ny int
			if dir == transform.Encrypt {
				nx = (ab1*x + a*y) % n
				ny = (b*x + y) % n
			} else {
				nx = mod(x-a*y, n)
				ny = mod(-b*x+ab1*y, n)
			}
			dst[ny*n+nx] = src[y*n+x]
		}
	}
	return out, nil
}

// Iterate applies the cat map rounds times. Zero rounds returns a copy of g.
// Decrypting with the same parameters and rounds restores the original.
func Iterate(g *grid.Grid, p Params, dir transform.Direction, rounds int) (*grid.Grid, error) {
	if rounds < 0 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "rounds must be non-negative, got %d", rounds)
	}
	if g == nil || g.Size() == 0 {
		return nil, errs.New(errs.ErrCodeDimensionMismatch, "grid is empty")
	}
	out := g.Clone()
	for i := 0; i < rounds; i++ {
		next, err := Apply(out, p, dir)
		if err != nil {
			return nil, err
		}
		out = next
	}
	return out, nil
}

// Period returns the number of forward applications after which the map
// returns every pixel of an n×n grid to its starting place.
func Period(n int, p Params) int {
	if n <= 1 {
		return 1
	}
	a, b := p.A%n, p.B%n
	// Track the image of the basis vectors; the map is linear, so it is the
	// identity exactly when both return home.
	m00, m01, m10, m11 := 1, 0, 0, 1
	f00, f01, f10, f11 := (a*b+1)%n, a, b, 1
	for k := 1; ; k++ {
		m00, m01, m10, m11 =
			(f00*m00+f01*m10)%n, (f00*m01+f01*m11)%n,
			(f10*m00+f11*m10)%n, (f10*m01+f11*m11)%n
		if m00 == 1%n && m01 == 0 && m10 == 0 && m11 == 1%n {
			return k
		}
	}
}

// mod returns r reduced into [0, n), also for negative r.
func mod(r, n int) int {
	return ((r % n) + n) % n
}
