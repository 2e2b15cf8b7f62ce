// Package key derives the secret key that drives the Baker map.
//
// A secret key is an ordered partition of a grid width N into divisors of N,
// each in the range [2, N/2+1]. The key is not a cryptographic secret: it only
// decides how the Baker map cuts the grid into strips and blocks.
//
// # Generation
//
// [Generate] draws divisors from a PCG stream seeded with the width, so the
// same width always yields the same key:
//
//	k, err := key.Generate(512)
//	if errs.Is(err, errs.ErrCodeNoUsableDivisors) {
//	    // width is 1 or prime: no Baker key exists
//	}
//
// Odd divisors are always appended in pairs. For some widths the running sum
// can reach a remainder that no divisor can close (21 = 3+3+7+7+1, for
// example); generation then fails with KEY_GENERATION_EXHAUSTED instead of
// looping forever.
//
// # Parameters
//
// [DeriveParameters] is a separate utility producing six values in [0, 200)
// from a seed, for callers who want to derive Arnold parameters.
package key

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	errs "github.com/matzehuels/chaoscrypt/pkg/errors"
)

// SecretKey is an immutable ordered partition of a grid width.
// The zero value is an empty key, which is valid for no width.
type SecretKey struct {
	values []int
}

// New builds a key from the given block sizes. The values are copied.
// New does not validate; use [SecretKey.Validate] against a width.
func New(values ...int) SecretKey {
	return SecretKey{values: append([]int(nil), values...)}
}

// Values returns a copy of the block sizes in order.
func (k SecretKey) Values() []int {
	return append([]int(nil), k.values...)
}

// Len returns the number of blocks.
func (k SecretKey) Len() int { return len(k.values) }

// At returns the i-th block size.
func (k SecretKey) At(i int) int { return k.values[i] }

// Sum returns the total of all block sizes.
func (k SecretKey) Sum() int {
	sum := 0
	for _, v := range k.values {
		sum += v
	}
	return sum
}

// String formats the key as comma-separated block sizes, e.g. "2,3,3,4".
func (k SecretKey) String() string {
	parts := make([]string, len(k.values))
	for i, v := range k.values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

// Equal reports whether two keys have the same block sizes in the same order.
func (k SecretKey) Equal(o SecretKey) bool {
	if len(k.values) != len(o.values) {
		return false
	}
	for i, v := range k.values {
		if o.values[i] != v {
			return false
		}
	}
	return true
}

// Validate checks that k partitions width using only usable divisors.
// It returns INVALID_SECRET_KEY describing the first violation.
func (k SecretKey) Validate(width int) error {
	if width <= 0 {
		return errs.New(errs.ErrCodeInvalidSecretKey, "width must be positive, got %d", width)
	}
	if len(k.values) == 0 {
		return errs.New(errs.ErrCodeInvalidSecretKey, "key is empty")
	}
	upper := width/2 + 1
	sum := 0
	for i, v := range k.values {
		if v < 2 || v > upper {
			return errs.New(errs.ErrCodeInvalidSecretKey,
				"block %d has size %d, want a value in [2, %d]", i, v, upper)
		}
		if width%v != 0 {
			return errs.New(errs.ErrCodeInvalidSecretKey,
				"block %d has size %d, which does not divide width %d", i, v, width)
		}
		sum += v
	}
	if sum != width {
		return errs.New(errs.ErrCodeInvalidSecretKey,
			"blocks sum to %d, want width %d", sum, width)
	}
	return nil
}

// Parse reads a key in the format produced by [SecretKey.String].
func Parse(s string) (SecretKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return SecretKey{}, errs.New(errs.ErrCodeInvalidSecretKey, "key is empty")
	}
	fields := strings.Split(s, ",")
	values := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return SecretKey{}, errs.Wrap(errs.ErrCodeInvalidSecretKey, err, "block %d: %q is not an integer", i, f)
		}
		values[i] = v
	}
	return SecretKey{values: values}, nil
}

// MarshalJSON encodes the key as a JSON array of block sizes.
func (k SecretKey) MarshalJSON() ([]byte, error) {
	if k.values == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(k.values)
}

// UnmarshalJSON decodes a JSON array of block sizes.
func (k *SecretKey) UnmarshalJSON(data []byte) error {
	var values []int
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("decode secret key: %w", err)
	}
	k.values = values
	return nil
}
