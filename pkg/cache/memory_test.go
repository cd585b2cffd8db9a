package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type cachedBar struct {
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

func TestMemoryCacheRoundTripsStructs(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	in := []cachedBar{{Close: 48.2, Volume: 1200}, {Close: 48.4, Volume: 900}}
	if err := mc.Set(ctx, "bars", in, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var out []cachedBar
	if err := mc.Get(ctx, "bars", &out); err != nil {
		t.Fatalf("warm Get: %v", err)
	}
	if len(out) != 2 || out[0].Close != 48.2 || out[1].Volume != 900 {
		t.Fatalf("round trip = %+v, want %+v", out, in)
	}
}

func TestMemoryCacheStringPassthrough(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", "plain value", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	var s string
	if err := mc.Get(ctx, "k", &s); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if s != "plain value" {
		t.Fatalf("got %q, want plain value", s)
	}
}

func TestMemoryCacheMissAndExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	var s string
	if err := mc.Get(ctx, "absent", &s); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("err = %v, want ErrCacheMiss", err)
	}

	if err := mc.Set(ctx, "gone", "v", time.Nanosecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if err := mc.Get(ctx, "gone", &s); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expired err = %v, want ErrCacheMiss", err)
	}
}
