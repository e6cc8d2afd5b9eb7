// Package observability lets an application attach metrics or tracing to
// shader builds without this module depending on a particular backend.
//
// Three hook sets exist: [PipelineHooks] for loading, building and rendering
// graphs, [CacheHooks] for build cache lookups and [HTTPHooks] for the HTTP
// service. Each defaults to a no-op implementation. Install real ones once at
// startup:
//
//	observability.SetPipelineHooks(promPipeline{})
//	observability.SetCacheHooks(promCache{})
//
// Library code fetches the current hooks at the call site:
//
//	observability.Pipeline().OnBuildStart(ctx, s.Len())
//
// Embedding a Noop type in a custom implementation keeps it compiling when
// events are added.
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// PipelineHooks receives events from pkg/pipeline.
type PipelineHooks interface {
	// OnLoadStart and OnLoadComplete bracket importing a graph file.
	OnLoadStart(ctx context.Context, source string)
	OnLoadComplete(ctx context.Context, source string, nodeCount int, duration time.Duration, err error)

	// OnBuildStart and OnBuildComplete bracket scheduling and code generation.
	// size is the length of the generated source.
	OnBuildStart(ctx context.Context, nodeCount int)
	OnBuildComplete(ctx context.Context, size int, duration time.Duration, err error)

	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks receives build cache events. keyType is "shader" or "render".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from the HTTP service. route is the chi route
// pattern, not the raw path.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, route string)
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, route string, err error)
}

// NoopPipelineHooks ignores every event.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadStart(context.Context, string)                               {}
func (NoopPipelineHooks) OnLoadComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnBuildStart(context.Context, int)                                 {}
func (NoopPipelineHooks) OnBuildComplete(context.Context, int, time.Duration, error)        {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                           {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error)  {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, error)                 {}

// slot holds one installed hook set. The pointer indirection lets atomic.Pointer
// store an interface value.
type slot[H any] struct{ p atomic.Pointer[H] }

func (s *slot[H]) get() H  { return *s.p.Load() }
func (s *slot[H]) set(h H) { s.p.Store(&h) }

func newSlot[H any](h H) *slot[H] {
	s := &slot[H]{}
	s.set(h)
	return s
}

var (
	pipelineSlot = newSlot[PipelineHooks](NoopPipelineHooks{})
	cacheSlot    = newSlot[CacheHooks](NoopCacheHooks{})
	httpSlot     = newSlot[HTTPHooks](NoopHTTPHooks{})
)

// SetPipelineHooks installs h. A nil h is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		pipelineSlot.set(h)
	}
}

// SetCacheHooks installs h. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		cacheSlot.set(h)
	}
}

// SetHTTPHooks installs h. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		httpSlot.set(h)
	}
}

func Pipeline() PipelineHooks { return pipelineSlot.get() }
func Cache() CacheHooks       { return cacheSlot.get() }
func HTTP() HTTPHooks         { return httpSlot.get() }

// Reset reinstalls the no-op hooks. Tests use it to undo their setup.
func Reset() {
	pipelineSlot.set(NoopPipelineHooks{})
	cacheSlot.set(NoopCacheHooks{})
	httpSlot.set(NoopHTTPHooks{})
}
