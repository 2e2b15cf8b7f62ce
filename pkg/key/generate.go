package key

import (
	"math/rand/v2"

	errs "github.com/matzehuels/chaoscrypt/pkg/errors"
)

// DefaultMaxDraws bounds the number of divisor draws [Generate] makes.
const DefaultMaxDraws = 1 << 20

// GeneratorVersion identifies the generation algorithm and seeding scheme.
// Caches must include it in their keys so a change invalidates stored keys.
const GeneratorVersion = 1

// seedMix decorrelates the two PCG state words derived from one seed.
const seedMix = 0xdeadbeef

// Divisors returns every d in [2, width/2+1] that divides width, ascending.
func Divisors(width int) []int {
	var out []int
	for d := 2; d <= width/2+1; d++ {
		if width%d == 0 {
			out = append(out, d)
		}
	}
	return out
}

// Generate derives the secret key for width using [DefaultMaxDraws].
func Generate(width int) (SecretKey, error) {
	return GenerateWithLimit(width, DefaultMaxDraws)
}

// GenerateWithLimit derives the secret key for width, making at most
// maxDraws divisor draws.
//
// Each draw picks a divisor v uniformly. If v closes the partition exactly it
// is appended and generation ends. Otherwise an even v that fits is appended
// once, and an odd v is appended twice if 2v still leaves room; any other
// draw is discarded.
func GenerateWithLimit(width, maxDraws int) (SecretKey, error) {
	if err := errs.ValidateWidth(width); err != nil {
		return SecretKey{}, err
	}
	divisors := Divisors(width)
	if len(divisors) == 0 {
		return SecretKey{}, errs.New(errs.ErrCodeNoUsableDivisors,
			"width %d has no divisor in [2, %d]", width, width/2+1)
	}

	rng := newRand(uint64(width))
	var values []int
	sum := 0
	for draw := 0; draw < maxDraws; draw++ {
		if !canProgress(divisors, width-sum) {
			return SecretKey{}, errs.New(errs.ErrCodeKeyGenerationExhausted,
				"width %d: remainder %d cannot be closed by divisors %v (partial key %v)",
				width, width-sum, divisors, values)
		}

		v := divisors[rng.IntN(len(divisors))]
		switch {
		case sum+v == width:
			return SecretKey{values: append(values, v)}, nil
		case sum+v > width:
			continue
		case v%2 == 0:
			values = append(values, v)
			sum += v
		case sum+2*v < width:
			values = append(values, v, v)
			sum += 2 * v
		}
	}
	return SecretKey{}, errs.New(errs.ErrCodeKeyGenerationExhausted,
		"width %d: no partition found in %d draws", width, maxDraws)
}

// canProgress reports whether any divisor would be accepted with remaining
// pixels left to partition. Acceptance depends only on the remainder, so once
// this is false every later draw would be discarded.
func canProgress(divisors []int, remaining int) bool {
	for _, v := range divisors {
		if v == remaining || (v < remaining && v%2 == 0) || 2*v < remaining {
			return true
		}
	}
	return false
}

// DeriveParameters returns six pseudorandom values in [0, 200) determined by
// seed. chaoscrypt does not decide how they map onto Arnold parameters; the
// CLI uses the first two as (a, b) when asked to.
func DeriveParameters(seed int) [6]int {
	rng := newRand(uint64(seed))
	var out [6]int
	for i := range out {
		out[i] = rng.IntN(200)
	}
	return out
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^seedMix))
}
