package store

import (
	"testing"

	"github.com/tavoosi/approval-bridge/internal/domain"
)

func TestKeyFormats(t *testing.T) {
	r := domain.RequestRef{RequestID: "abc", NationalCode: "1234567890", License: "123"}

	cases := map[string]string{
		ProcessedUpdateKey(42):            "processed_update_42",
		PendingKey(r):                     "pending_abc_1234567890_123",
		CallbackKey(r):                    "callback_abc_1234567890_123",
		ResponseKey("1234567890", "123"):  "response_1234567890_123",
		PendingIndexKey(-1001234567890):   "pending_index_-1001234567890",
	}
	for got, want := range cases {
		if got != want {
			t.Errorf("key = %q; want %q", got, want)
		}
	}
}

func TestParsePendingKey(t *testing.T) {
	r := domain.RequestRef{RequestID: "abc-def", NationalCode: "1234567890", License: "123"}
	got, ok := ParsePendingKey(PendingKey(r))
	if !ok || got != r {
		t.Fatalf("ParsePendingKey = %+v, %v; want %+v", got, ok, r)
	}

	for _, key := range []string{
		"pending_index_42",  // index keys share the pending_ prefix
		"pending_only_two",  // wrong hierarchy depth: "only_two" is 2 fields
		"pending_a_b",       // too few fields
		"pending_a_b_c_d",   // too many fields
		"pending___",        // empty components
		"response_123_456",  // wrong family
	} {
		if _, ok := ParsePendingKey(key); ok {
			t.Errorf("ParsePendingKey(%q) ok; want rejection", key)
		}
	}
}
