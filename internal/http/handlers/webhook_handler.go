// Webhook HTTP handlers.
//
// This file covers the chat-platform side of the bridge:
//   - POST /webhook      (inbound update deliveries)
//   - GET  /set-webhook  (one-shot registration after deploy)
//
// The webhook contract matters: Telegram redelivers any update that is not
// acknowledged with a 2xx, so the handler returns 200 for everything it
// could durably process (including malformed payloads and business-level
// rejections, which a retry cannot fix) and 500 only when the store is
// unreachable, making the platform's retry the recovery path.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tavoosi/approval-bridge/internal/http/middleware"
)

// Webhook decodes one Telegram update and runs it through the lifecycle.
func (h *Handlers) Webhook(c *gin.Context) {
	var upd tgbotapi.Update
	if err := c.ShouldBindJSON(&upd); err != nil {
		// Not retryable; ack so the platform drops it.
		middleware.LoggerFrom(c).Warn().Err(err).Msg("undecodable webhook payload")
		c.Status(http.StatusOK)
		return
	}

	if err := h.svc.HandleUpdate(c.Request.Context(), upd); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeStoreUnavailable, "update processing failed")
		return
	}
	c.Status(http.StatusOK)
}

// SetWebhook registers this deployment's /webhook URL with Telegram. The
// base URL comes from configuration when set, otherwise from the request
// Host header, which is correct behind the usual single-hostname proxy.
func (h *Handlers) SetWebhook(c *gin.Context) {
	base := h.webhookBase
	if base == "" {
		base = "https://" + c.Request.Host
	}
	url := base + "/webhook"

	if err := h.registrar.SetWebhook(url); err != nil {
		middleware.LoggerFrom(c).Error().Err(err).Str("url", url).Msg("webhook registration failed")
		c.String(http.StatusInternalServerError, "Failed to set webhook")
		return
	}

	middleware.LoggerFrom(c).Info().Str("url", url).Msg("webhook registered")
	c.String(http.StatusOK, "Webhook set successfully")
}
