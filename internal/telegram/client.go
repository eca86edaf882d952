// Package telegram adapts the Telegram Bot API to the needs of the approval
// flow: sending admin prompts, attaching and stripping decision buttons,
// acknowledging button presses, and registering the webhook. It also owns
// the Persian message templates shown to the admin and the submitter.
package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// Client wraps a Telegram bot connection.
type Client struct {
	api *tgbotapi.BotAPI
}

// NewClient authenticates the bot token against the Telegram API.
func NewClient(token string) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	log.Info().Str("username", api.Self.UserName).Msg("telegram bot authorized")
	return &Client{api: api}, nil
}

// SendText delivers a plain text message and returns its message id.
func (c *Client) SendText(chatID int64, text string) (int, error) {
	sent, err := c.api.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// SendWithDecisionButtons delivers text with an accept/reject inline
// keyboard. The payloads become the opaque callback data of the buttons.
func (c *Client) SendWithDecisionButtons(chatID int64, text, acceptPayload, rejectPayload string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(acceptLabel, acceptPayload),
			tgbotapi.NewInlineKeyboardButtonData(rejectLabel, rejectPayload),
		),
	)
	sent, err := c.api.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// RemoveButtons strips the inline keyboard from a previously sent message.
// Used after a decision so the admin cannot press the buttons again; the
// callback dedup marker is the actual guard, this is cosmetic.
func (c *Client) RemoveButtons(chatID int64, messageID int) error {
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{},
	})
	_, err := c.api.Request(edit)
	return err
}

// AnswerCallback acknowledges a button press. An empty text dismisses the
// client-side spinner without showing a notification.
func (c *Client) AnswerCallback(callbackID, text string) error {
	_, err := c.api.Request(tgbotapi.NewCallback(callbackID, text))
	return err
}

// SetWebhook registers url as the delivery target for inbound updates.
func (c *Client) SetWebhook(url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return err
	}
	_, err = c.api.Request(wh)
	return err
}
