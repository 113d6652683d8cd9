package tebex

import (
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		in   string
		want EventKind
	}{
		{"validation.webhook", KindValidation},
		{"payment.completed", KindPaymentCompleted},
		{"payment.declined", KindPaymentDeclined},
		{"recurring-payment.renewed", KindRecurringRenewed},
		{"recurring-payment.ended", KindRecurringEnded},
		{"recurring-payment.cancellation.requested", KindCancellationRequested},
		{"recurring-payment.cancellation.aborted", KindCancellationAborted},
		{" Payment.Completed ", KindPaymentCompleted},
		{"basket.abandoned", KindUnknown},
		{"", KindUnknown},
	}
	for _, tt := range tests {
		if got := KindOf(tt.in); got != tt.want {
			t.Fatalf("KindOf(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseWebhookEnvelope(t *testing.T) {
	raw := []byte(`{
		"id": "evt-9f2",
		"type": "payment.completed",
		"subject": {
			"transaction_id": "tbx-1001",
			"status": { "id": 1, "description": "Complete" },
			"products": [ { "id": 55, "name": "Premium Monthly" } ],
			"custom": { "userid": "42" },
			"recurring_payment_reference": "tbx-rec-7"
		}
	}`)

	env, err := ParseWebhookEnvelope(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if env.Kind() != KindPaymentCompleted {
		t.Fatalf("unexpected kind %v", env.Kind())
	}

	p, err := env.PaymentSubject()
	if err != nil {
		t.Fatalf("subject: %v", err)
	}
	if p.TransactionID != "tbx-1001" || p.Custom.UserID != "42" {
		t.Fatalf("unexpected payment: txn=%q user=%q", p.TransactionID, p.Custom.UserID)
	}
	if len(p.Products) != 1 || p.Products[0].Name != "Premium Monthly" {
		t.Fatalf("unexpected products %+v", p.Products)
	}
	if p.RecurringPaymentReference != "tbx-rec-7" {
		t.Fatalf("unexpected recurring reference %q", p.RecurringPaymentReference)
	}
}

func TestParseWebhookEnvelopeRejectsMissingType(t *testing.T) {
	if _, err := ParseWebhookEnvelope([]byte(`{"id":"evt-1"}`)); err == nil {
		t.Fatalf("expected an error for an envelope without type")
	}
	if _, err := ParseWebhookEnvelope([]byte(`not json`)); err == nil {
		t.Fatalf("expected an error for invalid json")
	}
}

func TestRecurringPaymentSubjectUserID(t *testing.T) {
	raw := []byte(`{
		"id": "evt-ren-1",
		"type": "recurring-payment.renewed",
		"subject": {
			"reference": "tbx-rec-7",
			"status": { "id": 2, "description": "Active" },
			"next_payment_at": "2026-10-01T00:00:00Z",
			"interval": "month",
			"amount": 4.99,
			"last_payment": {
				"transaction_id": "tbx-1002",
				"custom": { "userid": " 42 " }
			}
		}
	}`)

	env, err := ParseWebhookEnvelope(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	s, err := env.RecurringPaymentSubject()
	if err != nil {
		t.Fatalf("subject: %v", err)
	}
	if s.UserID() != "42" {
		t.Fatalf("expected trimmed user id, got %q", s.UserID())
	}
	if s.Reference != "tbx-rec-7" || s.Status.ID != 2 {
		t.Fatalf("unexpected subject %+v", s)
	}

	s.LastPayment = nil
	if s.UserID() != "" {
		t.Fatalf("expected empty user id without a last payment")
	}
}

func TestParseTimeLayouts(t *testing.T) {
	for _, in := range []string{
		"2026-10-01T00:00:00Z",
		"2026-10-01T00:00:00",
		"2026-10-01 00:00:00",
	} {
		got := ParseTime(in)
		if got == nil {
			t.Fatalf("ParseTime(%q) returned nil", in)
		}
		if got.Year() != 2026 || got.Month() != 10 || got.Day() != 1 {
			t.Fatalf("ParseTime(%q) = %v", in, got)
		}
	}

	if ParseTime("") != nil {
		t.Fatalf("empty input must parse to nil")
	}
	if ParseTime("yesterday") != nil {
		t.Fatalf("garbage input must parse to nil")
	}
	if ParseTimePtr(nil) != nil {
		t.Fatalf("nil pointer must parse to nil")
	}
}
