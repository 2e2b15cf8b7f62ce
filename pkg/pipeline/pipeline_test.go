package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/chaoscrypt/pkg/arnold"
	"github.com/matzehuels/chaoscrypt/pkg/cache"
	errs "github.com/matzehuels/chaoscrypt/pkg/errors"
	"github.com/matzehuels/chaoscrypt/pkg/grid"
	"github.com/matzehuels/chaoscrypt/pkg/key"
	"github.com/matzehuels/chaoscrypt/pkg/observability"
	"github.com/matzehuels/chaoscrypt/pkg/transform"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// channels returns n distinct grids of the given size.
func channels(n, size int) []*grid.Grid {
	out := make([]*grid.Grid, n)
	for i := range out {
		g := grid.Sequential(size)
		for j, v := range g.Pix() {
			g.Pix()[j] = v + uint32(i*size*size)
		}
		out[i] = g
	}
	return out
}

func TestRunAllChannelsSucceed(t *testing.T) {
	in := channels(3, 8)
	op := Op{Map: MapArnold, Direction: transform.Encrypt, Arnold: arnold.Params{A: 3, B: 5}}

	outcomes := Run(context.Background(), in, op)
	if len(outcomes) != 3 {
		t.Fatalf("got %d outcomes, want 3", len(outcomes))
	}
	for i, o := range outcomes {
		if o.Channel != i {
			t.Errorf("outcomes[%d].Channel = %d", i, o.Channel)
		}
		if !o.OK() {
			t.Fatalf("channel %d failed: %v", i, o.Err)
		}
		want, err := arnold.Encrypt(in[i], 3, 5)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(want.Rows(), o.Grid.Rows()); diff != "" {
			t.Errorf("channel %d mismatch (-want +got):\n%s", i, diff)
		}
	}

	grids, err := Join(outcomes)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if len(grids) != 3 {
		t.Errorf("Join returned %d grids, want 3", len(grids))
	}
}

func TestRunSingleChannelFailure(t *testing.T) {
	in := channels(3, 4)
	boom := errors.New("boom")

	outcomes := RunFunc(context.Background(), in, func(_ context.Context, ch int, g *grid.Grid) (*grid.Grid, error) {
		if ch == 1 {
			return nil, boom
		}
		return g.Clone(), nil
	})

	failed := Failed(outcomes)
	if len(failed) != 1 {
		t.Fatalf("got %d failures, want 1", len(failed))
	}
	if failed[0].Channel != 1 {
		t.Errorf("failed channel = %d, want 1", failed[0].Channel)
	}
	if !errs.Is(failed[0].Err, errs.ErrCodeChannelWorkerFailure) {
		t.Errorf("failure should carry CHANNEL_WORKER_FAILURE, got %v", failed[0].Err)
	}
	if !errors.Is(failed[0].Err, boom) {
		t.Error("failure should wrap the worker's error")
	}
	for _, i := range []int{0, 2} {
		if !outcomes[i].OK() {
			t.Errorf("channel %d should succeed: %v", i, outcomes[i].Err)
		}
	}

	_, err := Join(outcomes)
	if !errs.Is(err, errs.ErrCodeChannelWorkerFailure) {
		t.Fatalf("Join error = %v, want CHANNEL_WORKER_FAILURE", err)
	}
	var ces errs.ChannelErrors
	if !errors.As(err, &ces) {
		t.Fatal("Join error should contain ChannelErrors")
	}
	if diff := cmp.Diff([]int{1}, ces.Channels()); diff != "" {
		t.Errorf("failed channels mismatch (-want +got):\n%s", diff)
	}
}

func TestRunRecoversPanics(t *testing.T) {
	in := channels(2, 4)
	outcomes := RunFunc(context.Background(), in, func(_ context.Context, ch int, g *grid.Grid) (*grid.Grid, error) {
		if ch == 0 {
			panic("worker exploded")
		}
		return g.Clone(), nil
	})

	if outcomes[0].OK() {
		t.Fatal("panicking channel should fail")
	}
	var ce *errs.ChannelError
	if !errors.As(outcomes[0].Err, &ce) || ce.Channel != 0 {
		t.Errorf("panic should be attributed to channel 0, got %v", outcomes[0].Err)
	}
	if !errs.Is(outcomes[0].Err, errs.ErrCodeInternal) {
		t.Errorf("panic should be reported as INTERNAL_ERROR, got %v", outcomes[0].Err)
	}
	if !outcomes[1].OK() {
		t.Errorf("channel 1 should be unaffected: %v", outcomes[1].Err)
	}
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int
	var mu sync.Mutex
	outcomes := RunFunc(ctx, channels(3, 4), func(_ context.Context, _ int, g *grid.Grid) (*grid.Grid, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return g, nil
	})

	if calls != 0 {
		t.Errorf("transform called %d times after cancellation", calls)
	}
	for i, o := range outcomes {
		if !errors.Is(o.Err, context.Canceled) {
			t.Errorf("channel %d: err = %v, want context.Canceled", i, o.Err)
		}
	}
}

func TestRunNilGridFails(t *testing.T) {
	in := []*grid.Grid{grid.Sequential(4), nil}
	op := Op{Map: MapArnold, Direction: transform.Encrypt, Arnold: arnold.Params{A: 1, B: 1}}

	outcomes := Run(context.Background(), in, op)
	if !outcomes[0].OK() {
		t.Errorf("channel 0 should succeed: %v", outcomes[0].Err)
	}
	if outcomes[1].OK() {
		t.Fatal("nil channel should fail")
	}
	if !errs.Is(outcomes[1].Err, errs.ErrCodeChannelWorkerFailure) {
		t.Errorf("err = %v, want CHANNEL_WORKER_FAILURE", outcomes[1].Err)
	}
}

func TestRunNilResultFails(t *testing.T) {
	outcomes := RunFunc(context.Background(), channels(1, 4), func(context.Context, int, *grid.Grid) (*grid.Grid, error) {
		return nil, nil
	})
	if outcomes[0].OK() {
		t.Error("a worker returning no grid should fail")
	}
}

func TestRunNoChannels(t *testing.T) {
	outcomes := Run(context.Background(), nil, Op{})
	if len(outcomes) != 0 {
		t.Errorf("got %d outcomes, want 0", len(outcomes))
	}
	grids, err := Join(outcomes)
	if err != nil || len(grids) != 0 {
		t.Errorf("Join(empty) = %v, %v", grids, err)
	}
}

func TestJoinRejectsMisplacedOutcome(t *testing.T) {
	outcomes := []Outcome{
		{Channel: 1, Grid: grid.New(2)},
		{Channel: 0, Grid: grid.New(2)},
	}
	if _, err := Join(outcomes); !errs.Is(err, errs.ErrCodeInternal) {
		t.Errorf("Join error = %v, want INTERNAL_ERROR", err)
	}
}

func TestRunRoundTrip(t *testing.T) {
	k, err := key.Generate(16)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		op   Op
	}{
		{"arnold", Op{Map: MapArnold, Arnold: arnold.Params{A: 7, B: 2}, Rounds: 3}},
		{"baker horizontal", Op{Map: MapBaker, Key: k, Orientation: transform.Horizontal, Width: 16}},
		{"baker vertical", Op{Map: MapBaker, Key: k, Orientation: transform.Vertical}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := channels(4, 16)

			enc := tt.op
			enc.Direction = transform.Encrypt
			scrambled, err := Join(Run(context.Background(), in, enc))
			if err != nil {
				t.Fatalf("encrypt: %v", err)
			}

			dec := tt.op
			dec.Direction = transform.Decrypt
			restored, err := Join(Run(context.Background(), scrambled, dec))
			if err != nil {
				t.Fatalf("decrypt: %v", err)
			}

			for i := range in {
				if !restored[i].Equal(in[i]) {
					t.Errorf("channel %d did not round trip", i)
				}
			}
		})
	}
}

func TestOptionsSetDefaults(t *testing.T) {
	var opts Options
	opts.SetDefaults()

	want := Options{
		Map:         DefaultMap,
		A:           DefaultArnoldA,
		B:           DefaultArnoldB,
		Rounds:      DefaultRounds,
		Orientation: DefaultOrientation,
	}
	if diff := cmp.Diff(want, opts); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}

	// Only one parameter set keeps the other at zero.
	opts = Options{A: 4}
	opts.SetDefaults()
	if opts.A != 4 || opts.B != 0 {
		t.Errorf("A, B = %d, %d, want 4, 0", opts.A, opts.B)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"arnold", Options{Map: "arnold", A: 1, B: 1, Rounds: 1}, false},
		{"case insensitive", Options{Map: "Baker", Orientation: "v"}, false},
		{"unknown map", Options{Map: "tent"}, true},
		{"empty map", Options{}, true},
		{"negative a", Options{Map: "arnold", A: -1, B: 1}, true},
		{"negative rounds", Options{Map: "arnold", A: 1, B: 1, Rounds: -2}, true},
		{"bad orientation", Options{Map: "baker", Orientation: "diagonal"}, true},
		{"orientation ignored for arnold", Options{Map: "arnold", A: 1, Orientation: "diagonal"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRunnerCachesSecretKey(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, nil, quietLogger())
	defer runner.Close()

	ctx := context.Background()
	in := channels(3, 16)

	first, err := runner.Execute(ctx, in, Options{Map: "baker"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if first.KeyCached {
		t.Error("first run should generate the key")
	}

	second, err := runner.Execute(ctx, in, Options{Map: "baker"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !second.KeyCached {
		t.Error("second run should load the key from the cache")
	}
	if !first.Op.Key.Equal(second.Op.Key) {
		t.Errorf("cached key %v differs from generated key %v", second.Op.Key, first.Op.Key)
	}
	if first.RunID == second.RunID {
		t.Error("runs should have distinct IDs")
	}

	refreshed, err := runner.Execute(ctx, in, Options{Map: "baker", Refresh: true})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if refreshed.KeyCached {
		t.Error("refresh should bypass the cache")
	}
}

func TestRunnerRegeneratesCorruptKey(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, nil, quietLogger())
	ctx := context.Background()

	cacheKey := runner.Keyer.SecretKeyKey(12, key.GeneratorVersion)
	if err := fc.Set(ctx, cacheKey, []byte(`[5,7]`), time.Hour); err != nil {
		t.Fatal(err)
	}

	k, hit, err := runner.SecretKey(ctx, 12, false)
	if err != nil {
		t.Fatalf("SecretKey: %v", err)
	}
	if hit {
		t.Error("invalid cached key should not count as a hit")
	}
	if err := k.Validate(12); err != nil {
		t.Errorf("regenerated key invalid: %v", err)
	}
}

func TestRunnerExplicitKey(t *testing.T) {
	runner := NewRunner(nil, nil, quietLogger())
	in := channels(3, 12)

	result, err := runner.Execute(context.Background(), in, Options{Map: "baker", Key: "3,3,6"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := result.Op.Key.String(); got != "3,3,6" {
		t.Errorf("key = %s, want 3,3,6", got)
	}
	if _, err := result.Grids(); err != nil {
		t.Errorf("Grids: %v", err)
	}

	_, err = runner.Execute(context.Background(), in, Options{Map: "baker", Key: "5,7"})
	if !errs.Is(err, errs.ErrCodeInvalidSecretKey) {
		t.Errorf("err = %v, want INVALID_SECRET_KEY", err)
	}
}

func TestRunnerSetupErrors(t *testing.T) {
	runner := NewRunner(nil, nil, quietLogger())
	ctx := context.Background()

	tests := []struct {
		name     string
		channels []*grid.Grid
		opts     Options
		code     errs.Code
	}{
		{"no channels", nil, Options{}, errs.ErrCodeInvalidInput},
		{"mismatched sizes", []*grid.Grid{grid.New(4), grid.New(8)}, Options{}, errs.ErrCodeDimensionMismatch},
		{"nil channel", []*grid.Grid{grid.New(4), nil}, Options{}, errs.ErrCodeDimensionMismatch},
		{"no usable divisors", channels(3, 13), Options{Map: "baker"}, errs.ErrCodeNoUsableDivisors},
		{"bad map", channels(1, 4), Options{Map: "tent"}, errs.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runner.Execute(ctx, tt.channels, tt.opts)
			if !errs.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu        sync.Mutex
	started   int
	completed []int
	failed    int
}

func (h *recordingHooks) OnRunStart(context.Context, string, string, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started++
}

func (h *recordingHooks) OnChannelComplete(_ context.Context, _ string, channel int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.completed = append(h.completed, channel)
}

func (h *recordingHooks) OnRunComplete(_ context.Context, _ string, failed int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failed = failed
}

func TestRunnerReportsHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	t.Cleanup(observability.Reset)

	runner := NewRunner(nil, nil, quietLogger())
	in := []*grid.Grid{grid.Sequential(4), grid.Sequential(4), nil}
	op := Op{Map: MapArnold, Direction: transform.Encrypt, Arnold: arnold.Params{A: 1, B: 2}}

	result := runner.Run(context.Background(), in, op)
	if result.RunID == "" {
		t.Error("RunID should be set")
	}

	if hooks.started != 1 {
		t.Errorf("OnRunStart called %d times, want 1", hooks.started)
	}
	if len(hooks.completed) != 3 {
		t.Errorf("OnChannelComplete called %d times, want 3", len(hooks.completed))
	}
	if hooks.failed != 1 {
		t.Errorf("failed = %d, want 1", hooks.failed)
	}
}

func ExampleRun() {
	rows := [][]uint32{
		{1, 2},
		{3, 4},
	}
	g, _ := grid.FromRows(rows)
	op := Op{Map: MapArnold, Direction: transform.Encrypt, Arnold: arnold.Params{A: 1, B: 1}}

	grids, err := Join(Run(context.Background(), []*grid.Grid{g, g.Transpose()}, op))
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, out := range grids {
		fmt.Println(out.Rows())
	}
	// Output:
	// [[1 4] [2 3]]
	// [[1 4] [3 2]]
}
