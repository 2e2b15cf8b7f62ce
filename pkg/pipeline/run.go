package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	errs "github.com/matzehuels/chaoscrypt/pkg/errors"
	"github.com/matzehuels/chaoscrypt/pkg/grid"
)

// Outcome is the result of one channel worker. Exactly one of Grid and Err
// is set.
type Outcome struct {
	Channel  int           // index of the input channel
	Grid     *grid.Grid    // transformed grid on success
	Err      error         // *errs.ChannelError on failure
	Duration time.Duration // time spent in the worker
}

// OK reports whether the channel was transformed successfully.
func (o Outcome) OK() bool { return o.Err == nil && o.Grid != nil }

// TransformFunc transforms the grid of one channel.
type TransformFunc func(ctx context.Context, channel int, g *grid.Grid) (*grid.Grid, error)

// Run applies op to every channel concurrently and returns one outcome per
// channel, in channel order.
func Run(ctx context.Context, channels []*grid.Grid, op Op) []Outcome {
	return RunFunc(ctx, channels, op.transformFunc())
}

// RunFunc runs fn once per channel, each call in its own goroutine, and
// waits for all of them. outcomes[i] always belongs to channels[i].
func RunFunc(ctx context.Context, channels []*grid.Grid, fn TransformFunc) []Outcome {
	outcomes := make([]Outcome, len(channels))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for i, ch := range channels {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o := runWorker(ctx, i, ch, fn)
			mu.Lock()
			outcomes[i] = o
			mu.Unlock()
		}()
	}
	wg.Wait()
	return outcomes
}

// runWorker runs fn for one channel and converts every failure, including a
// panic, into a channel-attributed outcome.
func runWorker(ctx context.Context, channel int, g *grid.Grid, fn TransformFunc) (o Outcome) {
	start := time.Now()
	o.Channel = channel
	defer func() {
		if r := recover(); r != nil {
			o.Grid = nil
			o.Err = &errs.ChannelError{
				Channel: channel,
				Err:     errs.New(errs.ErrCodeInternal, "worker panicked: %v", r),
			}
		}
		o.Duration = time.Since(start)
	}()

	if err := ctx.Err(); err != nil {
		o.Err = &errs.ChannelError{Channel: channel, Err: err}
		return o
	}
	out, err := fn(ctx, channel, g)
	if err == nil && out == nil {
		err = errs.New(errs.ErrCodeInternal, "transform returned no grid")
	}
	if err != nil {
		o.Err = &errs.ChannelError{Channel: channel, Err: err}
		return o
	}
	o.Grid = out
	return o
}

// Join returns the grids of outcomes in channel order. If any channel
// failed, it returns a CHANNEL_WORKER_FAILURE error wrapping an
// errs.ChannelErrors that lists every failed channel, and no grids.
func Join(outcomes []Outcome) ([]*grid.Grid, error) {
	var failed errs.ChannelErrors
	for i, o := range outcomes {
		if o.Channel != i {
			return nil, errs.New(errs.ErrCodeInternal, "outcome %d is tagged with channel %d", i, o.Channel)
		}
		if o.OK() {
			continue
		}
		ce := &errs.ChannelError{Channel: i, Err: o.Err}
		if inner, ok := o.Err.(*errs.ChannelError); ok {
			ce = inner
		} else if o.Err == nil {
			ce.Err = fmt.Errorf("no grid produced")
		}
		failed = append(failed, ce)
	}
	if len(failed) > 0 {
		return nil, errs.Wrap(errs.ErrCodeChannelWorkerFailure, failed,
			"%d of %d channels failed", len(failed), len(outcomes))
	}

	grids := make([]*grid.Grid, len(outcomes))
	for i, o := range outcomes {
		grids[i] = o.Grid
	}
	return grids, nil
}

// Failed returns the outcomes that carry an error.
func Failed(outcomes []Outcome) []Outcome {
	var out []Outcome
	for _, o := range outcomes {
		if !o.OK() {
			out = append(out, o)
		}
	}
	return out
}

func (op Op) transformFunc() TransformFunc {
	return func(_ context.Context, _ int, g *grid.Grid) (*grid.Grid, error) {
		return op.Apply(g)
	}
}
