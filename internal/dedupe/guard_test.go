package dedupe

import (
	"context"
	"testing"
	"time"

	"github.com/tavoosi/approval-bridge/internal/store"
)

func TestShouldProcess_TrueExactlyOncePerID(t *testing.T) {
	ctx := context.Background()
	g := NewGuard(store.NewMemory(), time.Hour)

	first, err := g.ShouldProcess(ctx, 1001)
	if err != nil || !first {
		t.Fatalf("first ShouldProcess = %v, %v; want true", first, err)
	}
	for i := 0; i < 3; i++ {
		again, err := g.ShouldProcess(ctx, 1001)
		if err != nil || again {
			t.Fatalf("repeat #%d ShouldProcess = %v, %v; want false", i+1, again, err)
		}
	}

	// A distinct id is unaffected.
	other, err := g.ShouldProcess(ctx, 1002)
	if err != nil || !other {
		t.Fatalf("distinct id ShouldProcess = %v, %v; want true", other, err)
	}
}

func TestShouldProcess_MarkerExpires(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	g := NewGuard(mem, time.Hour)

	base := time.Unix(9000, 0)
	mem.SetClock(func() time.Time { return base })
	if ok, err := g.ShouldProcess(ctx, 55); err != nil || !ok {
		t.Fatalf("ShouldProcess = %v, %v", ok, err)
	}

	mem.SetClock(func() time.Time { return base.Add(2 * time.Hour) })
	if ok, err := g.ShouldProcess(ctx, 55); err != nil || !ok {
		t.Fatalf("ShouldProcess after expiry = %v, %v; want true", ok, err)
	}
}
