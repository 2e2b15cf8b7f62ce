// Package pipeline applies a chaotic-map transform to every channel of an
// image concurrently.
//
// The pipeline is the only place chaoscrypt runs work in parallel. Each
// channel grid gets its own worker goroutine; workers share nothing except the
// outcome slice, which is indexed by channel and written under a mutex. The
// pipeline returns only after every worker has finished.
//
// # Outcomes
//
// Every input channel produces exactly one [Outcome] at the same index,
// carrying either the transformed grid or a CHANNEL_WORKER_FAILURE
// attributed to that channel. A failed or panicking worker never removes its
// channel from the result, so callers cannot mistake a partial image for a
// complete one. [Join] turns outcomes into ordered grids, or a single error
// naming every failed channel.
//
// # Usage
//
// Run a resolved operation directly:
//
//	op := pipeline.Op{Map: pipeline.MapArnold, Direction: transform.Encrypt, Arnold: arnold.Params{A: 3, B: 5}}
//	outcomes := pipeline.Run(ctx, channels, op)
//	grids, err := pipeline.Join(outcomes)
//
// Or let a [Runner] resolve options, cache the Baker key, and log the run:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, channels, pipeline.Options{Map: "baker"})
//	grids, err := result.Grids()
package pipeline

import (
	"fmt"
	"strings"

	"github.com/matzehuels/chaoscrypt/pkg/arnold"
	"github.com/matzehuels/chaoscrypt/pkg/baker"
	errs "github.com/matzehuels/chaoscrypt/pkg/errors"
	"github.com/matzehuels/chaoscrypt/pkg/grid"
	"github.com/matzehuels/chaoscrypt/pkg/key"
	"github.com/matzehuels/chaoscrypt/pkg/transform"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Library Callers
// =============================================================================

const (
	// DefaultArnoldA is the default first shear parameter.
	DefaultArnoldA = 1

	// DefaultArnoldB is the default second shear parameter.
	DefaultArnoldB = 1

	// DefaultRounds is the default number of Arnold map applications.
	DefaultRounds = 1

	// DefaultMap is the default map type.
	DefaultMap = MapNameArnold

	// DefaultOrientation is the default Baker orientation.
	DefaultOrientation = "horizontal"
)

// Map names accepted in Options.
const (
	MapNameArnold = "arnold"
	MapNameBaker  = "baker"
)

// ValidMaps is the set of supported map names.
var ValidMaps = map[string]bool{
	MapNameArnold: true,
	MapNameBaker:  true,
}

// =============================================================================
// Op - Resolved Transform
// =============================================================================

// MapKind selects the chaotic map an Op applies.
type MapKind int

const (
	MapArnold MapKind = iota
	MapBaker
)

// String returns the map name.
func (m MapKind) String() string {
	switch m {
	case MapArnold:
		return MapNameArnold
	case MapBaker:
		return MapNameBaker
	default:
		return fmt.Sprintf("MapKind(%d)", int(m))
	}
}

// Op is a fully resolved transform applied identically to every channel.
type Op struct {
	Map       MapKind
	Direction transform.Direction

	// Arnold settings
	Arnold arnold.Params
	Rounds int // values below 1 are treated as 1

	// Baker settings
	Key         key.SecretKey
	Orientation transform.Orientation
	Width       int // expected grid side; zero accepts each grid's own size
}

// Apply transforms a single grid.
func (op Op) Apply(g *grid.Grid) (*grid.Grid, error) {
	switch op.Map {
	case MapArnold:
		return arnold.Iterate(g, op.Arnold, op.Direction, max(op.Rounds, 1))
	case MapBaker:
		width := op.Width
		if width == 0 && g != nil {
			width = g.Size()
		}
		return baker.Apply(g, width, op.Key, op.Orientation, op.Direction)
	default:
		return nil, errs.New(errs.ErrCodeInvalidInput, "unknown map %v", op.Map)
	}
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options is the caller-facing description of a run. A [Runner] resolves it
// into an [Op], generating or loading the Baker key as needed.
type Options struct {
	Map         string `json:"map" toml:"map"`                   // "arnold" or "baker"
	Decrypt     bool   `json:"decrypt,omitempty" toml:"-"`       // run the inverse map
	A           int    `json:"a,omitempty" toml:"a"`             // Arnold shear parameter a
	B           int    `json:"b,omitempty" toml:"b"`             // Arnold shear parameter b
	Rounds      int    `json:"rounds,omitempty" toml:"rounds"`   // Arnold iterations
	Orientation string `json:"orientation,omitempty" toml:"orientation"`
	Key         string `json:"key,omitempty" toml:"-"`           // explicit Baker key, e.g. "2,3,3,4"
	Refresh     bool   `json:"refresh,omitempty" toml:"-"`       // regenerate the key even if cached
}

// SetDefaults fills zero-valued fields with the package defaults.
func (o *Options) SetDefaults() {
	if o.Map == "" {
		o.Map = DefaultMap
	}
	if o.A == 0 && o.B == 0 {
		o.A, o.B = DefaultArnoldA, DefaultArnoldB
	}
	if o.Rounds == 0 {
		o.Rounds = DefaultRounds
	}
	if o.Orientation == "" {
		o.Orientation = DefaultOrientation
	}
}

// Validate checks option values without modifying them.
func (o *Options) Validate() error {
	if !ValidMaps[strings.ToLower(o.Map)] {
		return errs.New(errs.ErrCodeInvalidInput, "invalid map: %q (must be one of: arnold, baker)", o.Map)
	}
	if o.IsArnold() {
		if err := (arnold.Params{A: o.A, B: o.B}).Validate(); err != nil {
			return err
		}
		if o.Rounds < 0 {
			return errs.New(errs.ErrCodeInvalidInput, "rounds must be non-negative, got %d", o.Rounds)
		}
	}
	if o.IsBaker() {
		if _, err := transform.ParseOrientation(o.Orientation); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults applies defaults and then validates.
// Calling it more than once has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	o.SetDefaults()
	return o.Validate()
}

// IsArnold reports whether the options select the Arnold map.
func (o *Options) IsArnold() bool {
	return strings.EqualFold(o.Map, MapNameArnold)
}

// IsBaker reports whether the options select the Baker map.
func (o *Options) IsBaker() bool {
	return strings.EqualFold(o.Map, MapNameBaker)
}

// Direction returns Decrypt when o.Decrypt is set, Encrypt otherwise.
func (o *Options) Direction() transform.Direction {
	if o.Decrypt {
		return transform.Decrypt
	}
	return transform.Encrypt
}
