// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup to
// receive events about pipeline stages and cache operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// [LogPipelineHooks] and [LogCacheHooks] report events through a
// charmbracelet logger and are what the CLI installs.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(observability.NewLogPipelineHooks(logger))
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnParseStart(ctx, input)
//	// ... do parsing ...
//	observability.Pipeline().OnParseComplete(ctx, input, rows, duration, err)
package observability

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the parse → dedupe → export pipeline.
type PipelineHooks interface {
	// Parse events
	OnParseStart(ctx context.Context, input string)
	OnParseComplete(ctx context.Context, input string, rows int, duration time.Duration, err error)

	// Dedupe events
	OnDedupeComplete(ctx context.Context, candidates, unique int, duration time.Duration)

	// Export events
	OnExportStart(ctx context.Context, output string, cities int)
	OnExportComplete(ctx context.Context, output string, duration time.Duration, err error)
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

func (NoopPipelineHooks) OnParseStart(context.Context, string)                               {}
func (NoopPipelineHooks) OnParseComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnDedupeComplete(context.Context, int, int, time.Duration)          {}
func (NoopPipelineHooks) OnExportStart(context.Context, string, int)                         {}
func (NoopPipelineHooks) OnExportComplete(context.Context, string, time.Duration, error)     {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Logging Implementations
// =============================================================================

// LogPipelineHooks reports pipeline events at debug level.
type LogPipelineHooks struct {
	Logger *log.Logger
}

// NewLogPipelineHooks creates pipeline hooks that log to l.
func NewLogPipelineHooks(l *log.Logger) *LogPipelineHooks {
	return &LogPipelineHooks{Logger: l}
}

func (h *LogPipelineHooks) OnParseStart(_ context.Context, input string) {
	h.Logger.Debug("parse started", "input", input)
}

func (h *LogPipelineHooks) OnParseComplete(_ context.Context, input string, rows int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("parse failed", "input", input, "duration", d, "err", err)
		return
	}
	h.Logger.Debug("parse finished", "input", input, "rows", rows, "duration", d)
}

func (h *LogPipelineHooks) OnDedupeComplete(_ context.Context, candidates, unique int, d time.Duration) {
	h.Logger.Debug("dedupe finished", "candidates", candidates, "unique", unique, "duration", d)
}

func (h *LogPipelineHooks) OnExportStart(_ context.Context, output string, cities int) {
	h.Logger.Debug("export started", "output", output, "cities", cities)
}

func (h *LogPipelineHooks) OnExportComplete(_ context.Context, output string, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("export failed", "output", output, "duration", d, "err", err)
		return
	}
	h.Logger.Debug("export finished", "output", output, "duration", d)
}

// LogCacheHooks reports cache events at debug level.
type LogCacheHooks struct {
	Logger *log.Logger
}

// NewLogCacheHooks creates cache hooks that log to l.
func NewLogCacheHooks(l *log.Logger) *LogCacheHooks {
	return &LogCacheHooks{Logger: l}
}

func (h *LogCacheHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogCacheHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogCacheHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any pipeline operations.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
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
	cacheHooks = NoopCacheHooks{}
}
