package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tavoosi/approval-bridge/internal/domain"
)

// TTLs control how long each record family survives in the store.
type TTLs struct {
	// Pending bounds how long a request may wait for the admin before it is
	// silently dropped.
	Pending time.Duration
	// ProcessedUpdate bounds the dedup window for inbound delivery events.
	ProcessedUpdate time.Duration
	// Callback bounds the dedup window for decision button presses.
	Callback time.Duration
	// Response bounds how long a resolution stays retrievable.
	Response time.Duration
}

// DefaultTTLs are the production values: pending and update markers live an
// hour, callback markers a day, resolutions a week.
func DefaultTTLs() TTLs {
	return TTLs{
		Pending:         time.Hour,
		ProcessedUpdate: time.Hour,
		Callback:        24 * time.Hour,
		Response:        7 * 24 * time.Hour,
	}
}

// RequestStore owns all reads and writes of the three record families
// (pending decisions, resolved responses, dedup markers) plus the per-admin
// pending index. It is a thin typed layer over KV; it adds no locking, so
// consistency rules live with the callers.
type RequestStore struct {
	kv   KV
	ttls TTLs
}

// NewRequestStore wraps kv with the given TTLs.
func NewRequestStore(kv KV, ttls TTLs) *RequestStore {
	return &RequestStore{kv: kv, ttls: ttls}
}

// PutPending writes the pending record for ref, replacing any previous one.
// The record expires after the pending TTL; expiry is the lifecycle's escape
// hatch for requests the admin never finishes.
func (s *RequestStore) PutPending(ctx context.Context, ref domain.RequestRef, rec domain.PendingDecision) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal pending record: %w", err)
	}
	return s.kv.Set(ctx, PendingKey(ref), string(raw), s.ttls.Pending)
}

// GetPending reads the pending record for ref, or ErrNotFound.
func (s *RequestStore) GetPending(ctx context.Context, ref domain.RequestRef) (domain.PendingDecision, error) {
	raw, err := s.kv.Get(ctx, PendingKey(ref))
	if err != nil {
		return domain.PendingDecision{}, err
	}
	var rec domain.PendingDecision
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return domain.PendingDecision{}, fmt.Errorf("unmarshal pending record %s: %w", PendingKey(ref), err)
	}
	return rec, nil
}

// DeletePending removes the pending record and its index membership.
func (s *RequestStore) DeletePending(ctx context.Context, chatID int64, ref domain.RequestRef) error {
	if err := s.kv.Delete(ctx, PendingKey(ref)); err != nil {
		return err
	}
	return s.kv.OrderedRemove(ctx, PendingIndexKey(chatID), PendingKey(ref))
}

// EnqueuePending adds ref to the admin's pending index, scored by creation
// time so the oldest outstanding request is served first.
func (s *RequestStore) EnqueuePending(ctx context.Context, chatID int64, ref domain.RequestRef, createdAt time.Time) error {
	return s.kv.OrderedAdd(ctx, PendingIndexKey(chatID), PendingKey(ref),
		float64(createdAt.UnixNano()), s.ttls.Pending)
}

// NextPending returns the oldest pending record for chatID that is in the
// given state, along with its identity. Index members whose backing record
// has expired are pruned as they are encountered. When the index itself is
// empty or missing (lost, or written by an older deployment), it falls back
// to a prefix scan picking the record with the earliest creation time, which
// keeps selection deterministic either way.
func (s *RequestStore) NextPending(ctx context.Context, chatID int64, state domain.PendingState) (domain.RequestRef, domain.PendingDecision, bool, error) {
	indexKey := PendingIndexKey(chatID)
	members, err := s.kv.OrderedRange(ctx, indexKey, 64)
	if err != nil {
		return domain.RequestRef{}, domain.PendingDecision{}, false, err
	}

	for _, key := range members {
		ref, ok := ParsePendingKey(key)
		if !ok {
			_ = s.kv.OrderedRemove(ctx, indexKey, key)
			continue
		}
		rec, err := s.GetPending(ctx, ref)
		if errors.Is(err, ErrNotFound) {
			// Record expired out from under the index.
			_ = s.kv.OrderedRemove(ctx, indexKey, key)
			continue
		}
		if err != nil {
			return domain.RequestRef{}, domain.PendingDecision{}, false, err
		}
		if rec.State != state || rec.ChatID != chatID {
			continue
		}
		return ref, rec, true, nil
	}

	return s.scanPending(ctx, chatID, state)
}

// scanPending is the index-less fallback: walk every pending key and pick
// the oldest matching record.
func (s *RequestStore) scanPending(ctx context.Context, chatID int64, state domain.PendingState) (domain.RequestRef, domain.PendingDecision, bool, error) {
	keys, err := s.kv.Scan(ctx, prefixPending)
	if err != nil {
		return domain.RequestRef{}, domain.PendingDecision{}, false, err
	}

	var (
		bestRef domain.RequestRef
		bestRec domain.PendingDecision
		found   bool
	)
	for _, key := range keys {
		ref, ok := ParsePendingKey(key)
		if !ok {
			continue
		}
		rec, err := s.GetPending(ctx, ref)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return domain.RequestRef{}, domain.PendingDecision{}, false, err
		}
		if rec.State != state || rec.ChatID != chatID {
			continue
		}
		if !found || rec.CreatedAt.Before(bestRec.CreatedAt) {
			bestRef, bestRec, found = ref, rec, true
		}
	}
	return bestRef, bestRec, found, nil
}

// PutResponse stores the resolved response text for (nationalCode, license).
func (s *RequestStore) PutResponse(ctx context.Context, nationalCode, license, text string) error {
	return s.kv.Set(ctx, ResponseKey(nationalCode, license), text, s.ttls.Response)
}

// GetResponse returns the resolved response text, or ErrNotFound when the
// request is not yet resolved.
func (s *RequestStore) GetResponse(ctx context.Context, nationalCode, license string) (string, error) {
	return s.kv.Get(ctx, ResponseKey(nationalCode, license))
}

// HasResponse reports whether a resolution is currently stored.
func (s *RequestStore) HasResponse(ctx context.Context, nationalCode, license string) (bool, error) {
	_, err := s.GetResponse(ctx, nationalCode, license)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// DeleteResponse removes the resolution. Deleting a missing response is not
// an error; clear is idempotent.
func (s *RequestStore) DeleteResponse(ctx context.Context, nationalCode, license string) error {
	return s.kv.Delete(ctx, ResponseKey(nationalCode, license))
}

// MarkCallbackProcessed writes the button-press dedup marker for ref,
// reporting whether this call was the first to do so.
func (s *RequestStore) MarkCallbackProcessed(ctx context.Context, ref domain.RequestRef) (bool, error) {
	return s.kv.SetNX(ctx, CallbackKey(ref), "true", s.ttls.Callback)
}

// CallbackProcessed reports whether the button press for ref was already
// handled within the dedup window.
func (s *RequestStore) CallbackProcessed(ctx context.Context, ref domain.RequestRef) (bool, error) {
	_, err := s.kv.Get(ctx, CallbackKey(ref))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}
