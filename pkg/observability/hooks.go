// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about channel pipeline runs, key generation, and cache
// operations.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    observability.SetKeyHooks(&myKeyHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnRunStart(ctx, runID, "baker", 3)
//	// ... run channel workers ...
//	observability.Pipeline().OnRunComplete(ctx, runID, failed, duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the channel pipeline.
type PipelineHooks interface {
	// OnRunStart is called once per run before any worker starts.
	OnRunStart(ctx context.Context, runID, mapName string, channels int)

	// OnChannelComplete is called from each worker goroutine when it ends.
	// Implementations must be safe for concurrent use.
	OnChannelComplete(ctx context.Context, runID string, channel int, duration time.Duration, err error)

	// OnRunComplete is called after every worker has finished.
	OnRunComplete(ctx context.Context, runID string, failed int, duration time.Duration)
}

// =============================================================================
// Key Hooks
// =============================================================================

// KeyHooks receives events from secret key generation.
type KeyHooks interface {
	// OnKeyGenerated records a generation attempt for width.
	OnKeyGenerated(ctx context.Context, width, blocks int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnRunStart(context.Context, string, string, int) {}
func (NoopPipelineHooks) OnChannelComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnRunComplete(context.Context, string, int, time.Duration) {}

// NoopKeyHooks is a no-op implementation of KeyHooks.
type NoopKeyHooks struct{}

func (NoopKeyHooks) OnKeyGenerated(context.Context, int, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	keyHooks      KeyHooks      = NoopKeyHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any pipeline runs.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetKeyHooks registers custom key generation hooks.
func SetKeyHooks(h KeyHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		keyHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Key returns the registered key generation hooks.
func Key() KeyHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return keyHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	keyHooks = NoopKeyHooks{}
	cacheHooks = NoopCacheHooks{}
}
