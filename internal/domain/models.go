// Package domain defines the core types of the approval bridge: the
// submitted form, the composite identity that ties a submission to the
// records it produces in the key-value store, and the pending-decision
// record that carries a request through its lifecycle.
package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// NoneSentinel is the value the submission form uses for "no national code"
// and "no description". It is preserved verbatim in admin-facing messages.
const NoneSentinel = "ندارد"

// Action is the admin's verdict on a submission.
type Action string

const (
	ActionAccept Action = "accept"
	ActionReject Action = "reject"
)

// Valid reports whether a is one of the two recognized verdicts.
func (a Action) Valid() bool { return a == ActionAccept || a == ActionReject }

// PendingState is the explicit lifecycle stage of a pending request. It is
// persisted inside the pending record so the stage is never inferred from
// which keys happen to exist in the store.
type PendingState string

const (
	// StateAwaitingDecision: the request was forwarded to the admin and no
	// decision button has been pressed yet.
	StateAwaitingDecision PendingState = "awaiting_decision"

	// StateAwaitingExplanation: the admin pressed accept or reject and the
	// bridge is waiting for their free-text explanation.
	StateAwaitingExplanation PendingState = "awaiting_explanation"
)

// Submission is one user-initiated request as received from the form.
// It is immutable once created; identity is the generated RequestID.
type Submission struct {
	Name         string
	MinAge       int
	MaxAge       int
	NationalCode string // "0" or NoneSentinel means none
	Description  string // empty or NoneSentinel means none
	License      string
}

// RequestRef is the composite identity (request id, national code, license)
// under which a submission's records are keyed. The request id is the finest
// component; resolved responses deliberately drop it (see ResponseRef).
type RequestRef struct {
	RequestID    string
	NationalCode string
	License      string
}

// CallbackData encodes ref and action as the opaque payload attached to a
// decision button: "<action>_<nationalCode>_<license>_<requestID>".
func (r RequestRef) CallbackData(a Action) string {
	return fmt.Sprintf("%s_%s_%s_%s", a, r.NationalCode, r.License, r.RequestID)
}

// ErrBadCallbackData is returned when a callback payload does not have
// exactly four underscore-separated fields or names an unknown action.
var ErrBadCallbackData = errors.New("malformed callback data")

// ParseCallbackData recovers the action and request identity from a decision
// button payload. The payload must have exactly four underscore-separated
// fields; anything else is rejected without guessing.
func ParseCallbackData(data string) (RequestRef, Action, error) {
	parts := strings.Split(data, "_")
	if len(parts) != 4 {
		return RequestRef{}, "", ErrBadCallbackData
	}
	a := Action(parts[0])
	if !a.Valid() {
		return RequestRef{}, "", ErrBadCallbackData
	}
	ref := RequestRef{
		NationalCode: parts[1],
		License:      parts[2],
		RequestID:    parts[3],
	}
	return ref, a, nil
}

// PendingDecision is the record of a request awaiting either an admin
// decision or the admin's explanatory text. At most one outstanding
// PendingDecision exists per request id; the record expires on its own if
// the admin never completes the flow.
type PendingDecision struct {
	// State is the explicit lifecycle stage.
	State PendingState `json:"state"`
	// Action is set when State is StateAwaitingExplanation.
	Action Action `json:"action,omitempty"`
	// ChatID is the admin chat the decision prompt was sent to.
	ChatID int64 `json:"chatId"`
	// MessageID identifies the admin message carrying the decision buttons,
	// kept so the buttons can be stripped after use.
	MessageID int `json:"messageId"`
	// CreatedAt orders outstanding records oldest-first.
	CreatedAt time.Time `json:"createdAt"`
}
