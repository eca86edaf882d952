// Package dedupe guards against redelivery of inbound chat updates. The
// chat platform retries webhook deliveries it considers unacknowledged, so
// every update is checked against a short-lived marker before processing.
package dedupe

import (
	"context"
	"time"

	"github.com/tavoosi/approval-bridge/internal/store"
)

// Guard deduplicates delivery events by their platform-assigned update id.
type Guard struct {
	kv  store.KV
	ttl time.Duration
}

// NewGuard returns a guard whose markers expire after ttl.
func NewGuard(kv store.KV, ttl time.Duration) *Guard {
	return &Guard{kv: kv, ttl: ttl}
}

// ShouldProcess reports whether the caller is the first to see updateID
// within the dedup window. The marker is written with the store's atomic
// set-if-absent, so concurrent deliveries of the same update race on a
// single winner instead of both proceeding.
func (g *Guard) ShouldProcess(ctx context.Context, updateID int) (bool, error) {
	return g.kv.SetNX(ctx, store.ProcessedUpdateKey(updateID), "true", g.ttl)
}
