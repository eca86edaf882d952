// Form-facing HTTP handlers.
//
// This file exposes the endpoints the submission form talks to:
//   - POST /validate-license  (license lookup before showing the form)
//   - POST /submit-form       (intake: forward to admin, start lifecycle)
//   - POST /check-response    (poll for the admin's resolution)
//   - POST /clear-messages    (drop a consumed resolution)
//   - GET  /                  (liveness)
//
// Handlers are transport-thin: they validate input, call the approval
// service, and translate results into the `{success, message, name}` JSON
// shape the form expects. Business failures (unknown license, Telegram
// delivery failure, no resolution yet) are soft: HTTP 200 with
// success=false, so the form can show the message verbatim. Only store
// unavailability surfaces as a 5xx.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tavoosi/approval-bridge/internal/approval"
	"github.com/tavoosi/approval-bridge/internal/domain"
	"github.com/tavoosi/approval-bridge/internal/telegram"
)

//
// Service contracts (context-aware)
//

// ApprovalService defines the lifecycle operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type ApprovalService interface {
	// ValidateLicense resolves a license code to the registered name.
	ValidateLicense(code string) (string, error)
	// Intake forwards a submission to the admin and returns the request id.
	Intake(ctx context.Context, sub domain.Submission) (string, error)
	// HandleUpdate processes one decoded webhook delivery.
	HandleUpdate(ctx context.Context, upd tgbotapi.Update) error
	// PollResponse returns the stored resolution, if any.
	PollResponse(ctx context.Context, nationalCode, license string) (string, bool, error)
	// ClearResponse removes a stored resolution. Idempotent.
	ClearResponse(ctx context.Context, nationalCode, license string) error
}

// WebhookRegistrar registers the public webhook URL with the chat platform.
type WebhookRegistrar interface {
	SetWebhook(url string) error
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints of the bridge. It depends on abstract
// contracts to keep transport concerns separate from the lifecycle logic.
type Handlers struct {
	svc       ApprovalService
	registrar WebhookRegistrar

	// webhookBase, when set, overrides the request Host for /set-webhook.
	webhookBase string
}

// New constructs a Handlers instance bound to the given service and
// registrar. webhookBase may be empty; see SetWebhook.
func New(svc ApprovalService, registrar WebhookRegistrar, webhookBase string) *Handlers {
	return &Handlers{svc: svc, registrar: registrar, webhookBase: webhookBase}
}

//
// DTOs
//

// ValidateLicenseRequest is the JSON payload for license validation.
type ValidateLicenseRequest struct {
	License string `json:"license" binding:"required"`
}

// SubmitFormRequest is the JSON payload for a form submission.
type SubmitFormRequest struct {
	Name         string `json:"name" binding:"required"`
	MinAge       int    `json:"minAge"`
	MaxAge       int    `json:"maxAge"`
	NationalCode string `json:"nationalCode"`
	Description  string `json:"description"`
	License      string `json:"license" binding:"required"`
}

// ResponseLookupRequest identifies the resolution records of a submitter.
// Used by both /check-response and /clear-messages.
type ResponseLookupRequest struct {
	NationalCode string `json:"nationalCode" binding:"required"`
	License      string `json:"license" binding:"required"`
}

// BridgeResponse is the success/failure shape consumed by the form.
type BridgeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Name    string `json:"name,omitempty"`
}

//
// Handlers
//

// ValidateLicense checks a license code against the registry. Unknown codes
// are a soft failure: 200 with success=false and a user-facing message.
func (h *Handlers) ValidateLicense(c *gin.Context) {
	var req ValidateLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	name, err := h.svc.ValidateLicense(strings.TrimSpace(req.License))
	if err != nil {
		ok(c, http.StatusOK, BridgeResponse{Success: false, Message: telegram.MsgInvalidLicense})
		return
	}
	ok(c, http.StatusOK, BridgeResponse{Success: true, Name: name})
}

// SubmitForm accepts a submission and forwards it to the admin. License and
// delivery failures are soft; a store failure after delivery is a 500.
func (h *Handlers) SubmitForm(c *gin.Context) {
	var req SubmitFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if req.MinAge > req.MaxAge {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "minAge exceeds maxAge")
		return
	}

	sub := domain.Submission{
		Name:         strings.TrimSpace(req.Name),
		MinAge:       req.MinAge,
		MaxAge:       req.MaxAge,
		NationalCode: strings.TrimSpace(req.NationalCode),
		Description:  req.Description,
		License:      strings.TrimSpace(req.License),
	}

	_, err := h.svc.Intake(c.Request.Context(), sub)
	switch {
	case errors.Is(err, approval.ErrInvalidLicense):
		ok(c, http.StatusOK, BridgeResponse{Success: false, Message: telegram.MsgInvalidLicense})
	case errors.Is(err, approval.ErrDeliveryFailed):
		ok(c, http.StatusOK, BridgeResponse{Success: false, Message: telegram.MsgDeliveryFailed})
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeStoreUnavailable, err.Error())
	default:
		ok(c, http.StatusOK, BridgeResponse{Success: true, Message: telegram.MsgSubmitted})
	}
}

// CheckResponse polls for the admin's resolution. Absence is a soft
// failure with a fixed message, not a 404.
func (h *Handlers) CheckResponse(c *gin.Context) {
	var req ResponseLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	text, found, err := h.svc.PollResponse(c.Request.Context(), req.NationalCode, req.License)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeStoreUnavailable, err.Error())
		return
	}
	if !found {
		ok(c, http.StatusOK, BridgeResponse{Success: false, Message: telegram.MsgNoResponseYet})
		return
	}
	ok(c, http.StatusOK, BridgeResponse{Success: true, Message: text})
}

// ClearMessages drops the stored resolution for a submitter. Clearing a
// missing record still succeeds.
func (h *Handlers) ClearMessages(c *gin.Context) {
	var req ResponseLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	if err := h.svc.ClearResponse(c.Request.Context(), req.NationalCode, req.License); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeStoreUnavailable, err.Error())
		return
	}
	ok(c, http.StatusOK, BridgeResponse{Success: true})
}

// Liveness answers plain text so load balancers and uptime probes can hit
// the root path without parsing JSON.
func (h *Handlers) Liveness(c *gin.Context) {
	c.String(http.StatusOK, "Bot is running")
}
