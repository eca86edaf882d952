package telegram

import (
	"fmt"
	"strings"

	"github.com/tavoosi/approval-bridge/internal/domain"
)

// User-facing strings. The production audience is Persian-speaking; wording
// is kept byte-identical to what submitters and admins already see.
const (
	acceptLabel = "تأیید"
	rejectLabel = "رد"

	// MsgInvalidLicense is returned when the submitted license fails lookup.
	MsgInvalidLicense = "لایسنس نامعتبر است"
	// MsgSubmitted confirms the form reached the admin.
	MsgSubmitted = "اطلاعات ارسال شد، منتظر تأیید باشید"
	// MsgDeliveryFailed reports a Telegram send failure to the submitter.
	MsgDeliveryFailed = "خطا در ارسال به تلگرام"
	// MsgNoResponseYet is the poll result before resolution.
	MsgNoResponseYet = "هنوز پاسخی یافت نشد"
	// MsgAlreadyProcessed acknowledges a duplicate button press.
	MsgAlreadyProcessed = "این درخواست قبلاً پردازش شده است."
	// MsgBadCallbackData acknowledges a structurally invalid button payload.
	MsgBadCallbackData = "خطای داخلی: ساختار داده نادرست"
	// MsgEmptyCallbackData acknowledges a button press with no payload.
	MsgEmptyCallbackData = "خطای داخلی: داده‌ای دریافت نشد"
	// MsgNoPendingRequest tells the admin their text matched nothing.
	MsgNoPendingRequest = "هیچ درخواست در انتظاری یافت نشد"
)

// ActionLabel translates an action verb to its display label.
func ActionLabel(a domain.Action) string {
	if a == domain.ActionAccept {
		return acceptLabel
	}
	return rejectLabel
}

// FormatSubmission renders the admin notification for a new request.
// National code "0" and empty descriptions render as the none sentinel,
// matching what the form sends for omitted fields.
func FormatSubmission(sub domain.Submission) string {
	nationalCode := sub.NationalCode
	if nationalCode == "0" || nationalCode == "" {
		nationalCode = domain.NoneSentinel
	}
	description := strings.TrimSpace(sub.Description)
	if description == "" {
		description = domain.NoneSentinel
	}
	return fmt.Sprintf("درخواست جدید:\nنام: %s\nسن: %d تا %d\nکد ملی: %s\nتوضیحات: %s\nلایسنس: %s",
		sub.Name, sub.MinAge, sub.MaxAge, nationalCode, description, sub.License)
}

// ExplanationPrompt asks the admin for the free-text explanation after a
// decision button press.
func ExplanationPrompt(a domain.Action) string {
	return fmt.Sprintf("لطفاً توضیحات برای %s درخواست را وارد کنید:", ActionLabel(a))
}

// CallbackAck is the notification shown when a decision is registered.
func CallbackAck(a domain.Action) string {
	return fmt.Sprintf("درخواست برای %s ثبت شد.", ActionLabel(a))
}

// ResolutionText composes the final message delivered to the submitter.
func ResolutionText(a domain.Action, explanation string) string {
	verdict := "درخواست شما تایید شد"
	if a == domain.ActionReject {
		verdict = "درخواست شما رد شد"
	}
	return fmt.Sprintf("%s\nتوضیحات: %s", verdict, explanation)
}

// ResolutionSaved confirms to the admin that the resolution was stored.
func ResolutionSaved(resolution string) string {
	return "پاسخ ثبت شد: " + resolution
}
