// Package transform defines the variants shared by the chaotic-map packages.
//
// Each map type (Arnold, Baker) has a single implementation that takes a
// [Direction] rather than separate encrypt and decrypt code paths, so the
// forward and inverse geometry cannot drift apart.
package transform

import (
	"fmt"
	"strings"

	errs "github.com/matzehuels/chaoscrypt/pkg/errors"
)

// Direction selects the forward (scramble) or inverse (unscramble) mapping.
type Direction int

const (
	Encrypt Direction = iota
	Decrypt
)

// String returns "encrypt" or "decrypt".
func (d Direction) String() string {
	switch d {
	case Encrypt:
		return "encrypt"
	case Decrypt:
		return "decrypt"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Inverse returns the opposite direction.
func (d Direction) Inverse() Direction {
	if d == Encrypt {
		return Decrypt
	}
	return Encrypt
}

// Valid reports whether d is Encrypt or Decrypt.
func (d Direction) Valid() bool {
	return d == Encrypt || d == Decrypt
}

// Orientation selects which axis the Baker map strips run along.
// The two orientations are transposes of each other and are not
// mutually invertible.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

// String returns "horizontal" or "vertical".
func (o Orientation) String() string {
	switch o {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
}

// Valid reports whether o is Horizontal or Vertical.
func (o Orientation) Valid() bool {
	return o == Horizontal || o == Vertical
}

// ParseOrientation parses "horizontal"/"h" or "vertical"/"v" (case-insensitive).
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "horizontal", "h":
		return Horizontal, nil
	case "vertical", "v":
		return Vertical, nil
	default:
		return 0, errs.New(errs.ErrCodeInvalidInput, "invalid orientation: %q (must be one of: horizontal, vertical)", s)
	}
}
