package telegram

import (
	"strings"
	"testing"

	"github.com/tavoosi/approval-bridge/internal/domain"
)

func TestFormatSubmission(t *testing.T) {
	sub := domain.Submission{
		Name:         "رضا",
		MinAge:       20,
		MaxAge:       30,
		NationalCode: "1234567890",
		Description:  "فوری",
		License:      "123",
	}
	got := FormatSubmission(sub)
	for _, want := range []string{"درخواست جدید:", "رضا", "20 تا 30", "1234567890", "فوری", "لایسنس: 123"} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatSubmission missing %q in %q", want, got)
		}
	}
}

func TestFormatSubmission_NoneSentinels(t *testing.T) {
	cases := []struct {
		name string
		sub  domain.Submission
	}{
		{"zero national code", domain.Submission{NationalCode: "0", Description: "x"}},
		{"empty national code", domain.Submission{NationalCode: "", Description: "x"}},
		{"blank description", domain.Submission{NationalCode: "1", Description: "   "}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatSubmission(tc.sub); !strings.Contains(got, domain.NoneSentinel) {
				t.Fatalf("expected none sentinel in %q", got)
			}
		})
	}
}

func TestActionLabels(t *testing.T) {
	if ActionLabel(domain.ActionAccept) != "تأیید" {
		t.Fatalf("accept label = %q", ActionLabel(domain.ActionAccept))
	}
	if ActionLabel(domain.ActionReject) != "رد" {
		t.Fatalf("reject label = %q", ActionLabel(domain.ActionReject))
	}
}

func TestResolutionText(t *testing.T) {
	got := ResolutionText(domain.ActionAccept, "Approved, welcome")
	if !strings.Contains(got, "درخواست شما تایید شد") || !strings.Contains(got, "توضیحات: Approved, welcome") {
		t.Fatalf("accept resolution = %q", got)
	}
	got = ResolutionText(domain.ActionReject, "missing docs")
	if !strings.Contains(got, "درخواست شما رد شد") || !strings.Contains(got, "missing docs") {
		t.Fatalf("reject resolution = %q", got)
	}
}

func TestPrompts(t *testing.T) {
	if got := ExplanationPrompt(domain.ActionAccept); !strings.Contains(got, "تأیید") {
		t.Fatalf("ExplanationPrompt = %q", got)
	}
	if got := CallbackAck(domain.ActionReject); !strings.Contains(got, "رد") {
		t.Fatalf("CallbackAck = %q", got)
	}
	if got := ResolutionSaved("متن"); !strings.HasPrefix(got, "پاسخ ثبت شد: ") {
		t.Fatalf("ResolutionSaved = %q", got)
	}
}
