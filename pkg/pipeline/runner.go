package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/chaoscrypt/pkg/arnold"
	"github.com/matzehuels/chaoscrypt/pkg/cache"
	errs "github.com/matzehuels/chaoscrypt/pkg/errors"
	"github.com/matzehuels/chaoscrypt/pkg/grid"
	"github.com/matzehuels/chaoscrypt/pkg/key"
	"github.com/matzehuels/chaoscrypt/pkg/observability"
	"github.com/matzehuels/chaoscrypt/pkg/transform"
)

// cacheKeyType labels secret key entries in cache hooks.
const cacheKeyType = "secretkey"

// Runner resolves options, loads or generates Baker keys through a cache,
// and runs the channel pipeline with logging and observability hooks.
//
// The Runner holds no per-run state: every call to Execute or Run owns its
// own outcome slice. Multiple goroutines can share one Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID uniquely identifies the run in logs and hooks.
	RunID string

	// Op is the resolved transform that was applied.
	Op Op

	// Outcomes holds one entry per input channel, in channel order.
	Outcomes []Outcome

	// KeyCached reports whether the Baker key came from the cache.
	KeyCached bool

	// Duration is the wall time of the run, key resolution included.
	Duration time.Duration
}

// Grids returns the transformed grids in channel order, or a
// CHANNEL_WORKER_FAILURE error naming every failed channel.
func (r *Result) Grids() ([]*grid.Grid, error) {
	return Join(r.Outcomes)
}

// Execute validates opts, resolves them into an [Op] for the given channels
// and runs the pipeline.
//
// The returned error covers setup only (invalid options, mismatched channel
// sizes, key generation). Per-channel failures are reported in the result's
// outcomes; use [Result.Grids] to turn them into an error.
func (r *Runner) Execute(ctx context.Context, channels []*grid.Grid, opts Options) (*Result, error) {
	start := time.Now()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if len(channels) == 0 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "no channels to transform")
	}

	width, err := channelWidth(channels)
	if err != nil {
		return nil, err
	}

	op, cached, err := r.Resolve(ctx, width, opts)
	if err != nil {
		return nil, err
	}

	result := r.Run(ctx, channels, op)
	result.KeyCached = cached
	result.Duration = time.Since(start)
	return result, nil
}

// Resolve turns validated options into an [Op] for grids of the given width.
// For the Baker map it parses opts.Key, or loads the width's generated key
// from the cache (generating and storing it on a miss). The boolean reports
// a cache hit.
func (r *Runner) Resolve(ctx context.Context, width int, opts Options) (Op, bool, error) {
	op := Op{Direction: opts.Direction(), Width: width}

	if opts.IsArnold() {
		op.Map = MapArnold
		op.Arnold = arnold.Params{A: opts.A, B: opts.B}
		op.Rounds = opts.Rounds
		return op, false, nil
	}

	op.Map = MapBaker
	orientation, err := transform.ParseOrientation(opts.Orientation)
	if err != nil {
		return Op{}, false, err
	}
	op.Orientation = orientation

	if opts.Key != "" {
		k, err := key.Parse(opts.Key)
		if err != nil {
			return Op{}, false, err
		}
		if err := k.Validate(width); err != nil {
			return Op{}, false, err
		}
		op.Key = k
		return op, false, nil
	}

	k, hit, err := r.SecretKey(ctx, width, opts.Refresh)
	if err != nil {
		return Op{}, false, err
	}
	op.Key = k
	return op, hit, nil
}

// SecretKey returns the secret key for width, from the cache when possible.
// Cached entries that fail to decode or validate are regenerated. Cache
// failures are logged and never fail the call.
func (r *Runner) SecretKey(ctx context.Context, width int, refresh bool) (key.SecretKey, bool, error) {
	cacheKey := r.Keyer.SecretKeyKey(width, key.GeneratorVersion)

	if !refresh {
		data, hit, err := r.Cache.Get(ctx, cacheKey)
		switch {
		case err != nil:
			r.Logger.Warn("secret key cache read failed", "width", width, "err", err)
		case hit:
			var k key.SecretKey
			if err := json.Unmarshal(data, &k); err == nil && k.Validate(width) == nil {
				observability.Cache().OnCacheHit(ctx, cacheKeyType)
				r.Logger.Debug("secret key from cache", "width", width, "blocks", k.Len())
				return k, true, nil
			}
			r.Logger.Debug("discarding invalid cached secret key", "width", width)
		}
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
	}

	start := time.Now()
	k, err := key.Generate(width)
	observability.Key().OnKeyGenerated(ctx, width, k.Len(), time.Since(start), err)
	if err != nil {
		return key.SecretKey{}, false, fmt.Errorf("generate secret key: %w", err)
	}
	r.Logger.Debug("generated secret key",
		"width", width,
		"blocks", k.Len(),
		"duration", time.Since(start))

	if data, err := json.Marshal(k); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLSecretKey); err != nil {
			r.Logger.Warn("secret key cache write failed", "width", width, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, cacheKeyType, len(data))
		}
	}
	return k, false, nil
}

// Run applies op to every channel with a fresh run ID, logging each
// channel's outcome and reporting it to the pipeline hooks.
func (r *Runner) Run(ctx context.Context, channels []*grid.Grid, op Op) *Result {
	start := time.Now()
	runID := uuid.NewString()
	logger := r.Logger.With("run", runID)
	hooks := observability.Pipeline()

	hooks.OnRunStart(ctx, runID, op.Map.String(), len(channels))
	logger.Debug("starting channel workers",
		"map", op.Map,
		"direction", op.Direction,
		"channels", len(channels))

	apply := op.transformFunc()
	outcomes := RunFunc(ctx, channels, func(ctx context.Context, channel int, g *grid.Grid) (*grid.Grid, error) {
		chStart := time.Now()
		out, err := apply(ctx, channel, g)
		hooks.OnChannelComplete(ctx, runID, channel, time.Since(chStart), err)
		return out, err
	})

	failed := Failed(outcomes)
	for _, o := range failed {
		logger.Error("channel failed", "channel", o.Channel, "err", o.Err)
	}
	duration := time.Since(start)
	hooks.OnRunComplete(ctx, runID, len(failed), duration)
	logger.Info("transformed channels",
		"map", op.Map,
		"direction", op.Direction,
		"channels", len(channels),
		"failed", len(failed),
		"duration", duration)

	return &Result{
		RunID:    runID,
		Op:       op,
		Outcomes: outcomes,
		Duration: duration,
	}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// channelWidth returns the shared side length of the channel grids.
func channelWidth(channels []*grid.Grid) (int, error) {
	var width int
	for i, ch := range channels {
		if ch == nil {
			return 0, errs.New(errs.ErrCodeDimensionMismatch, "channel %d is nil", i)
		}
		if i == 0 {
			width = ch.Size()
			continue
		}
		if ch.Size() != width {
			return 0, errs.New(errs.ErrCodeDimensionMismatch,
				"channel %d is %dx%d, channel 0 is %dx%d", i, ch.Size(), ch.Size(), width, width)
		}
	}
	return width, nil
}
