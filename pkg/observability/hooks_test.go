package observability

import (
	"context"
	"sync"
	"testing"
	"time"
)

type recordingCache struct {
	NoopCacheHooks
	mu     sync.Mutex
	events []string
}

func (r *recordingCache) OnCacheHit(_ context.Context, keyType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "hit:"+keyType)
}

func (r *recordingCache) OnCacheMiss(_ context.Context, keyType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "miss:"+keyType)
}

type countingPipeline struct{ NoopPipelineHooks }
type countingHTTP struct{ NoopHTTPHooks }

func TestNoopHooks(t *testing.T) {
	ctx := context.Background()

	var p PipelineHooks = NoopPipelineHooks{}
	p.OnLoadStart(ctx, "graphs/blur.hcl")
	p.OnLoadComplete(ctx, "graphs/blur.hcl", 12, time.Millisecond, nil)
	p.OnBuildStart(ctx, 12)
	p.OnBuildComplete(ctx, 2048, time.Millisecond, nil)
	p.OnRenderStart(ctx, []string{"svg", "dot"})
	p.OnRenderComplete(ctx, []string{"svg", "dot"}, time.Millisecond, nil)

	var c CacheHooks = NoopCacheHooks{}
	c.OnCacheHit(ctx, "shader")
	c.OnCacheMiss(ctx, "render")
	c.OnCacheSet(ctx, "shader", 512)

	var h HTTPHooks = NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/v1/build")
	h.OnResponse(ctx, "POST", "/v1/build", 422, time.Millisecond)
	h.OnError(ctx, "POST", "/v1/build", nil)
}

func TestDefaultsAndReset(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Errorf("Pipeline() = %T, want NoopPipelineHooks", Pipeline())
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("Cache() = %T, want NoopCacheHooks", Cache())
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Errorf("HTTP() = %T, want NoopHTTPHooks", HTTP())
	}

	p, h := &countingPipeline{}, &countingHTTP{}
	SetPipelineHooks(p)
	SetHTTPHooks(h)
	if Pipeline() != p || HTTP() != h {
		t.Fatal("setters did not install the given hooks")
	}

	Reset()
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Errorf("after Reset HTTP() = %T, want NoopHTTPHooks", HTTP())
	}
}

func TestSetNilKeepsCurrent(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	rec := &recordingCache{}
	SetCacheHooks(rec)
	SetCacheHooks(nil)
	SetPipelineHooks(nil)
	SetHTTPHooks(nil)

	if Cache() != rec {
		t.Errorf("Cache() = %T, want the recording hooks", Cache())
	}
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Errorf("Pipeline() = %T, want NoopPipelineHooks", Pipeline())
	}
}

func TestHooksConcurrentUse(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	rec := &recordingCache{}
	SetCacheHooks(rec)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				Cache().OnCacheHit(context.Background(), "shader")
			} else {
				Cache().OnCacheMiss(context.Background(), "shader")
			}
		}()
	}
	wg.Wait()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.events) != 8 {
		t.Errorf("recorded %d events, want 8", len(rec.events))
	}
}
