package approval

import (
	"context"
	"errors"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tavoosi/approval-bridge/internal/dedupe"
	"github.com/tavoosi/approval-bridge/internal/domain"
	"github.com/tavoosi/approval-bridge/internal/licenses"
	"github.com/tavoosi/approval-bridge/internal/store"
	"github.com/tavoosi/approval-bridge/internal/telegram"
)

// Messenger is the outbound chat contract the lifecycle needs. The concrete
// implementation is telegram.Client; tests substitute a fake.
type Messenger interface {
	// SendText delivers a plain message and returns its message id.
	SendText(chatID int64, text string) (int, error)
	// SendWithDecisionButtons delivers text with accept/reject buttons
	// carrying the given opaque payloads.
	SendWithDecisionButtons(chatID int64, text, acceptPayload, rejectPayload string) (int, error)
	// RemoveButtons strips the buttons from a previously sent message.
	RemoveButtons(chatID int64, messageID int) error
	// AnswerCallback acknowledges a button press, optionally with text.
	AnswerCallback(callbackID, text string) error
}

// Service is the lifecycle engine. Every submission moves through
//
//	awaiting_decision -> awaiting_explanation -> resolved
//
// with the shared store as the only coordination mechanism: no in-process
// state survives between calls, and every multi-step sequence re-derives
// its precondition from store state, so partial completion is tolerated.
type Service struct {
	store       *store.RequestStore
	guard       *dedupe.Guard
	registry    *licenses.Registry
	messenger   Messenger
	adminChatID int64

	// now is swappable for tests.
	now func() time.Time
}

// NewService wires the lifecycle engine. adminChatID is the only chat
// authorized to decide requests; updates from any other chat are ignored.
func NewService(st *store.RequestStore, guard *dedupe.Guard, reg *licenses.Registry, m Messenger, adminChatID int64) *Service {
	return &Service{
		store:       st,
		guard:       guard,
		registry:    reg,
		messenger:   m,
		adminChatID: adminChatID,
		now:         time.Now,
	}
}

// ValidateLicense looks up a license code and returns the registered
// display name.
func (s *Service) ValidateLicense(code string) (string, error) {
	l, ok := s.registry.Validate(code)
	if !ok {
		return "", ErrInvalidLicense
	}
	return l.Name, nil
}

// Intake accepts a new submission: validates the license, forwards the
// request to the admin with decision buttons, and stores the pending record
// that tracks it. Returns the generated request id.
//
// A Telegram delivery failure surfaces as ErrDeliveryFailed; the caller
// reports it to the submitter as a soft failure, not a server error.
func (s *Service) Intake(ctx context.Context, sub domain.Submission) (string, error) {
	if _, ok := s.registry.Validate(sub.License); !ok {
		submissionsTotal.WithLabelValues("invalid_license").Inc()
		return "", ErrInvalidLicense
	}

	ref := domain.RequestRef{
		RequestID:    uuid.NewString(),
		NationalCode: sub.NationalCode,
		License:      sub.License,
	}

	messageID, err := s.messenger.SendWithDecisionButtons(
		s.adminChatID,
		telegram.FormatSubmission(sub),
		ref.CallbackData(domain.ActionAccept),
		ref.CallbackData(domain.ActionReject),
	)
	if err != nil {
		submissionsTotal.WithLabelValues("delivery_failed").Inc()
		log.Error().Err(err).Str("request_id", ref.RequestID).Msg("admin notification failed")
		return "", ErrDeliveryFailed
	}

	rec := domain.PendingDecision{
		State:     domain.StateAwaitingDecision,
		ChatID:    s.adminChatID,
		MessageID: messageID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.PutPending(ctx, ref, rec); err != nil {
		return "", err
	}

	// Existing uncleared resolutions under the same coarse identity would
	// shadow this request's eventual outcome; flag the collision.
	if has, err := s.store.HasResponse(ctx, sub.NationalCode, sub.License); err == nil && has {
		log.Warn().
			Str("national_code", sub.NationalCode).
			Str("license", sub.License).
			Msg("stale resolution present for identity; new resolution will overwrite it")
	}

	submissionsTotal.WithLabelValues("forwarded").Inc()
	log.Info().
		Str("request_id", ref.RequestID).
		Str("license", sub.License).
		Msg("submission forwarded to admin")
	return ref.RequestID, nil
}

// HandleUpdate is the entry point for one decoded webhook delivery. The
// dedup guard runs first; redelivered updates are absorbed silently. Errors
// are returned only when the store is unreachable, so the webhook handler
// can signal the platform to retry.
func (s *Service) HandleUpdate(ctx context.Context, upd tgbotapi.Update) error {
	fresh, err := s.guard.ShouldProcess(ctx, upd.UpdateID)
	if err != nil {
		return err
	}
	if !fresh {
		duplicatesTotal.WithLabelValues("update").Inc()
		log.Debug().Int("update_id", upd.UpdateID).Msg("duplicate update absorbed")
		return nil
	}

	switch {
	case upd.CallbackQuery != nil:
		return s.HandleDecision(ctx, upd.CallbackQuery)
	case upd.Message != nil:
		return s.HandleAdminReply(ctx, upd.Message.Chat.ID, upd.Message.Text)
	default:
		return nil
	}
}

// HandleDecision processes a decision button press. The sequence is
// best-effort: the pending write is the state transition, the button strip
// and prompts are cosmetic, and the callback marker written last bounds
// duplicate processing to at most one extra pass if the process dies midway.
func (s *Service) HandleDecision(ctx context.Context, cq *tgbotapi.CallbackQuery) error {
	if cq.Data == "" {
		s.answer(cq.ID, telegram.MsgEmptyCallbackData)
		return nil
	}

	ref, action, err := domain.ParseCallbackData(cq.Data)
	if err != nil {
		malformedCallbacksTotal.Inc()
		log.Warn().Str("data", cq.Data).Msg("malformed callback payload")
		s.answer(cq.ID, telegram.MsgBadCallbackData)
		return nil
	}

	if cq.Message == nil || cq.Message.Chat.ID != s.adminChatID {
		log.Warn().Str("request_id", ref.RequestID).Msg("decision from unauthorized chat ignored")
		s.answer(cq.ID, "")
		return nil
	}

	seen, err := s.store.CallbackProcessed(ctx, ref)
	if err != nil {
		return err
	}
	if seen {
		duplicatesTotal.WithLabelValues("callback").Inc()
		s.answer(cq.ID, telegram.MsgAlreadyProcessed)
		return nil
	}

	rec := domain.PendingDecision{
		State:     domain.StateAwaitingExplanation,
		Action:    action,
		ChatID:    cq.Message.Chat.ID,
		MessageID: cq.Message.MessageID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.PutPending(ctx, ref, rec); err != nil {
		return err
	}
	if err := s.store.EnqueuePending(ctx, rec.ChatID, ref, rec.CreatedAt); err != nil {
		return err
	}

	if err := s.messenger.RemoveButtons(rec.ChatID, rec.MessageID); err != nil {
		log.Warn().Err(err).Int("message_id", rec.MessageID).Msg("could not strip decision buttons")
	}
	if _, err := s.messenger.SendText(rec.ChatID, telegram.ExplanationPrompt(action)); err != nil {
		log.Warn().Err(err).Msg("could not send explanation prompt")
	}
	s.answer(cq.ID, telegram.CallbackAck(action))

	if _, err := s.store.MarkCallbackProcessed(ctx, ref); err != nil {
		return err
	}

	decisionsTotal.WithLabelValues(string(action)).Inc()
	log.Info().
		Str("request_id", ref.RequestID).
		Str("action", string(action)).
		Msg("decision recorded, awaiting explanation")
	return nil
}

// HandleAdminReply consumes the admin's free-text explanation for the
// oldest request awaiting one. Text from other chats, empty text, and
// commands are ignored without acknowledgment.
func (s *Service) HandleAdminReply(ctx context.Context, chatID int64, text string) error {
	if chatID != s.adminChatID || text == "" || strings.HasPrefix(text, "/") {
		return nil
	}

	ref, rec, found, err := s.store.NextPending(ctx, chatID, domain.StateAwaitingExplanation)
	if err != nil {
		return err
	}
	if !found {
		log.Debug().Int64("chat_id", chatID).Msg("admin text with no pending request")
		if _, err := s.messenger.SendText(chatID, telegram.MsgNoPendingRequest); err != nil {
			log.Warn().Err(err).Msg("could not send no-pending notice")
		}
		return nil
	}

	resolution := telegram.ResolutionText(rec.Action, text)
	if err := s.store.PutResponse(ctx, ref.NationalCode, ref.License, resolution); err != nil {
		return err
	}
	if err := s.store.DeletePending(ctx, chatID, ref); err != nil {
		return err
	}

	if _, err := s.messenger.SendText(chatID, telegram.ResolutionSaved(resolution)); err != nil {
		log.Warn().Err(err).Msg("could not confirm resolution to admin")
	}

	resolutionsTotal.WithLabelValues(string(rec.Action)).Inc()
	log.Info().
		Str("request_id", ref.RequestID).
		Str("action", string(rec.Action)).
		Msg("request resolved")
	return nil
}

// PollResponse returns the stored resolution for (nationalCode, license).
// Absence is not an error; it means "not yet resolved".
func (s *Service) PollResponse(ctx context.Context, nationalCode, license string) (string, bool, error) {
	text, err := s.store.GetResponse(ctx, nationalCode, license)
	if errors.Is(err, store.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}

// ClearResponse removes the stored resolution. Idempotent: clearing a
// missing resolution succeeds.
func (s *Service) ClearResponse(ctx context.Context, nationalCode, license string) error {
	return s.store.DeleteResponse(ctx, nationalCode, license)
}

// answer acknowledges a callback query, logging delivery failures instead
// of propagating them; acknowledgment is never required for correctness.
func (s *Service) answer(callbackID, text string) {
	if err := s.messenger.AnswerCallback(callbackID, text); err != nil {
		log.Warn().Err(err).Msg("could not answer callback query")
	}
}
