package store

import (
	"fmt"
	"strings"

	"github.com/tavoosi/approval-bridge/internal/domain"
)

// Key-naming scheme. These formats are a wire contract with any other
// process sharing the store; do not change them without a migration.
//
//	processed_update_<updateID>                      dedup marker per inbound delivery
//	pending_<requestID>_<nationalCode>_<license>     JSON PendingDecision
//	callback_<requestID>_<nationalCode>_<license>    dedup marker per button press
//	response_<nationalCode>_<license>                plain-text resolution
//	pending_index_<chatID>                           ordered set of pending keys
const (
	prefixProcessedUpdate = "processed_update_"
	prefixPending         = "pending_"
	prefixCallback        = "callback_"
	prefixResponse        = "response_"
	prefixPendingIndex    = "pending_index_"
)

// ProcessedUpdateKey keys the dedup marker for one inbound delivery event.
func ProcessedUpdateKey(updateID int) string {
	return fmt.Sprintf("%s%d", prefixProcessedUpdate, updateID)
}

// PendingKey keys the pending-decision record for ref.
func PendingKey(ref domain.RequestRef) string {
	return prefixPending + compositeID(ref)
}

// CallbackKey keys the button-press dedup marker for ref.
func CallbackKey(ref domain.RequestRef) string {
	return prefixCallback + compositeID(ref)
}

// ResponseKey keys the resolved response. It deliberately drops the request
// id: a new submission under the same (nationalCode, license) pair overwrites
// a stale, uncleared resolution.
func ResponseKey(nationalCode, license string) string {
	return fmt.Sprintf("%s%s_%s", prefixResponse, nationalCode, license)
}

// PendingIndexKey keys the per-admin ordered set of outstanding pending keys.
func PendingIndexKey(chatID int64) string {
	return fmt.Sprintf("%s%d", prefixPendingIndex, chatID)
}

func compositeID(ref domain.RequestRef) string {
	return fmt.Sprintf("%s_%s_%s", ref.RequestID, ref.NationalCode, ref.License)
}

// ParsePendingKey recovers the request identity from a pending key. It is
// the inverse of PendingKey for identities whose request id, national code,
// and license are free of underscores (uuid request ids always are).
func ParsePendingKey(key string) (domain.RequestRef, bool) {
	rest, ok := strings.CutPrefix(key, prefixPending)
	if !ok || strings.HasPrefix(key, prefixPendingIndex) {
		return domain.RequestRef{}, false
	}
	parts := strings.Split(rest, "_")
	if len(parts) != 3 {
		return domain.RequestRef{}, false
	}
	for _, p := range parts {
		if p == "" {
			return domain.RequestRef{}, false
		}
	}
	return domain.RequestRef{
		RequestID:    parts[0],
		NationalCode: parts[1],
		License:      parts[2],
	}, true
}
