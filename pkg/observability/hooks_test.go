package observability

import (
	"context"
	"testing"
	"time"
)

type recordingCacheHooks struct {
	hits, misses, sets int
}

func (r *recordingCacheHooks) OnCacheHit(context.Context, string)      { r.hits++ }
func (r *recordingCacheHooks) OnCacheMiss(context.Context, string)     { r.misses++ }
func (r *recordingCacheHooks) OnCacheSet(context.Context, string, int) { r.sets++ }

func TestDefaultHooksAreNoop(t *testing.T) {
	Reset()
	ctx := context.Background()

	// None of these should panic.
	Pipeline().OnParseStart(ctx, "app/app.speck")
	Pipeline().OnParseComplete(ctx, "app/app.speck", 3, time.Millisecond, nil)
	Pipeline().OnLayoutStart(ctx, 3)
	Pipeline().OnLayoutComplete(ctx, time.Millisecond, nil)
	Pipeline().OnRenderStart(ctx, "svg")
	Pipeline().OnRenderComplete(ctx, "svg", time.Millisecond, nil)
	Cache().OnCacheHit(ctx, "snapshot")
	Cache().OnCacheMiss(ctx, "layout")
	Cache().OnCacheSet(ctx, "artifact", 100)
	Server().OnRequest(ctx, "GET", "/graph")
	Server().OnResponse(ctx, "GET", "/graph", 200, time.Millisecond)
	Server().OnSourceChange(ctx, "app/app.speck")
}

func TestSetAndResetHooks(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	rec := &recordingCacheHooks{}
	SetCacheHooks(rec)

	ctx := context.Background()
	Cache().OnCacheHit(ctx, "snapshot")
	Cache().OnCacheMiss(ctx, "snapshot")
	Cache().OnCacheMiss(ctx, "layout")
	Cache().OnCacheSet(ctx, "layout", 42)

	if rec.hits != 1 || rec.misses != 2 || rec.sets != 1 {
		t.Errorf("recorded hits=%d misses=%d sets=%d", rec.hits, rec.misses, rec.sets)
	}

	Reset()
	Cache().OnCacheHit(ctx, "snapshot")
	if rec.hits != 1 {
		t.Error("Reset should restore the no-op hooks")
	}
}

func TestSetHooksIgnoresNil(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	rec := &recordingCacheHooks{}
	SetCacheHooks(rec)
	SetCacheHooks(nil)

	Cache().OnCacheHit(context.Background(), "snapshot")
	if rec.hits != 1 {
		t.Error("nil registration should keep the previous hooks")
	}
}
