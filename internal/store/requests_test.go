package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tavoosi/approval-bridge/internal/domain"
)

func newTestStore() (*RequestStore, *Memory) {
	mem := NewMemory()
	return NewRequestStore(mem, DefaultTTLs()), mem
}

func ref(id string) domain.RequestRef {
	return domain.RequestRef{RequestID: id, NationalCode: "1234567890", License: "123"}
}

func TestPendingRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()
	r := ref("req-1")

	rec := domain.PendingDecision{
		State:     domain.StateAwaitingExplanation,
		Action:    domain.ActionAccept,
		ChatID:    42,
		MessageID: 7,
		CreatedAt: time.Unix(1000, 0).UTC(),
	}
	if err := s.PutPending(ctx, r, rec); err != nil {
		t.Fatalf("PutPending error: %v", err)
	}

	got, err := s.GetPending(ctx, r)
	if err != nil {
		t.Fatalf("GetPending error: %v", err)
	}
	if got != rec {
		t.Fatalf("GetPending = %+v; want %+v", got, rec)
	}

	if err := s.DeletePending(ctx, 42, r); err != nil {
		t.Fatalf("DeletePending error: %v", err)
	}
	if _, err := s.GetPending(ctx, r); !errors.Is(err, ErrNotFound) {
		t.Fatalf("after delete err = %v; want ErrNotFound", err)
	}
}

func TestPendingExpiry(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore()
	r := ref("req-exp")

	base := time.Unix(5000, 0)
	mem.SetClock(func() time.Time { return base })
	if err := s.PutPending(ctx, r, domain.PendingDecision{State: domain.StateAwaitingDecision, ChatID: 1}); err != nil {
		t.Fatalf("PutPending error: %v", err)
	}

	mem.SetClock(func() time.Time { return base.Add(61 * time.Minute) })
	if _, err := s.GetPending(ctx, r); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired record err = %v; want ErrNotFound", err)
	}
}

func TestNextPending_OldestFirstViaIndex(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()
	const chat = int64(99)

	newer := ref("req-newer")
	older := ref("req-older")
	t0 := time.Unix(2000, 0).UTC()

	for _, tc := range []struct {
		r  domain.RequestRef
		at time.Time
	}{
		{newer, t0.Add(time.Minute)},
		{older, t0},
	} {
		rec := domain.PendingDecision{
			State:     domain.StateAwaitingExplanation,
			Action:    domain.ActionReject,
			ChatID:    chat,
			CreatedAt: tc.at,
		}
		if err := s.PutPending(ctx, tc.r, rec); err != nil {
			t.Fatalf("PutPending error: %v", err)
		}
		if err := s.EnqueuePending(ctx, chat, tc.r, tc.at); err != nil {
			t.Fatalf("EnqueuePending error: %v", err)
		}
	}

	got, rec, found, err := s.NextPending(ctx, chat, domain.StateAwaitingExplanation)
	if err != nil || !found {
		t.Fatalf("NextPending = found=%v err=%v", found, err)
	}
	if got != older {
		t.Fatalf("NextPending ref = %+v; want oldest %+v", got, older)
	}
	if rec.Action != domain.ActionReject {
		t.Fatalf("rec.Action = %q", rec.Action)
	}
}

func TestNextPending_PrunesExpiredIndexMembers(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore()
	const chat = int64(7)

	gone := ref("req-gone")
	alive := ref("req-alive")
	t0 := time.Unix(3000, 0).UTC()

	// Enqueue an index member without a backing record: simulates expiry.
	if err := s.EnqueuePending(ctx, chat, gone, t0); err != nil {
		t.Fatalf("EnqueuePending error: %v", err)
	}
	rec := domain.PendingDecision{
		State:     domain.StateAwaitingExplanation,
		Action:    domain.ActionAccept,
		ChatID:    chat,
		CreatedAt: t0.Add(time.Second),
	}
	if err := s.PutPending(ctx, alive, rec); err != nil {
		t.Fatalf("PutPending error: %v", err)
	}
	if err := s.EnqueuePending(ctx, chat, alive, rec.CreatedAt); err != nil {
		t.Fatalf("EnqueuePending error: %v", err)
	}

	got, _, found, err := s.NextPending(ctx, chat, domain.StateAwaitingExplanation)
	if err != nil || !found {
		t.Fatalf("NextPending = found=%v err=%v", found, err)
	}
	if got != alive {
		t.Fatalf("NextPending ref = %+v; want %+v", got, alive)
	}

	// The stale member must be gone from the index.
	members, err := mem.OrderedRange(ctx, PendingIndexKey(chat), 10)
	if err != nil {
		t.Fatalf("OrderedRange error: %v", err)
	}
	for _, m := range members {
		if m == PendingKey(gone) {
			t.Fatalf("stale index member %q not pruned", m)
		}
	}
}

func TestNextPending_FallsBackToScan(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()
	const chat = int64(11)

	// Records exist but were never indexed (older deployment).
	second := ref("req-second")
	first := ref("req-first")
	t0 := time.Unix(4000, 0).UTC()
	if err := s.PutPending(ctx, second, domain.PendingDecision{
		State: domain.StateAwaitingExplanation, Action: domain.ActionAccept,
		ChatID: chat, CreatedAt: t0.Add(time.Minute),
	}); err != nil {
		t.Fatalf("PutPending error: %v", err)
	}
	if err := s.PutPending(ctx, first, domain.PendingDecision{
		State: domain.StateAwaitingExplanation, Action: domain.ActionAccept,
		ChatID: chat, CreatedAt: t0,
	}); err != nil {
		t.Fatalf("PutPending error: %v", err)
	}

	got, _, found, err := s.NextPending(ctx, chat, domain.StateAwaitingExplanation)
	if err != nil || !found {
		t.Fatalf("NextPending = found=%v err=%v", found, err)
	}
	if got != first {
		t.Fatalf("scan fallback picked %+v; want earliest-created %+v", got, first)
	}
}

func TestNextPending_IgnoresOtherStatesAndChats(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	undecided := ref("req-undecided")
	otherChat := ref("req-other-chat")
	if err := s.PutPending(ctx, undecided, domain.PendingDecision{
		State: domain.StateAwaitingDecision, ChatID: 5, CreatedAt: time.Unix(1, 0),
	}); err != nil {
		t.Fatalf("PutPending error: %v", err)
	}
	if err := s.PutPending(ctx, otherChat, domain.PendingDecision{
		State: domain.StateAwaitingExplanation, Action: domain.ActionAccept,
		ChatID: 6, CreatedAt: time.Unix(2, 0),
	}); err != nil {
		t.Fatalf("PutPending error: %v", err)
	}

	if _, _, found, err := s.NextPending(ctx, 5, domain.StateAwaitingExplanation); err != nil || found {
		t.Fatalf("NextPending found=%v err=%v; want no match", found, err)
	}
}

func TestResponseLifecycle(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	if _, err := s.GetResponse(ctx, "1234567890", "123"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unresolved err = %v; want ErrNotFound", err)
	}

	if err := s.PutResponse(ctx, "1234567890", "123", "done"); err != nil {
		t.Fatalf("PutResponse error: %v", err)
	}
	got, err := s.GetResponse(ctx, "1234567890", "123")
	if err != nil || got != "done" {
		t.Fatalf("GetResponse = %q, %v", got, err)
	}
	has, err := s.HasResponse(ctx, "1234567890", "123")
	if err != nil || !has {
		t.Fatalf("HasResponse = %v, %v", has, err)
	}

	// Clear twice: idempotent.
	for i := 0; i < 2; i++ {
		if err := s.DeleteResponse(ctx, "1234567890", "123"); err != nil {
			t.Fatalf("DeleteResponse #%d error: %v", i+1, err)
		}
	}
	if _, err := s.GetResponse(ctx, "1234567890", "123"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("after clear err = %v; want ErrNotFound", err)
	}
}

func TestCallbackMarker_FirstWriteWins(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()
	r := ref("req-cb")

	seen, err := s.CallbackProcessed(ctx, r)
	if err != nil || seen {
		t.Fatalf("CallbackProcessed before mark = %v, %v", seen, err)
	}

	first, err := s.MarkCallbackProcessed(ctx, r)
	if err != nil || !first {
		t.Fatalf("first mark = %v, %v; want true", first, err)
	}
	again, err := s.MarkCallbackProcessed(ctx, r)
	if err != nil || again {
		t.Fatalf("second mark = %v, %v; want false", again, err)
	}

	seen, err = s.CallbackProcessed(ctx, r)
	if err != nil || !seen {
		t.Fatalf("CallbackProcessed after mark = %v, %v", seen, err)
	}
}
