package tebex

import (
	"encoding/json"
	"errors"
	"strings"
)

// Provider webhook event types.
const (
	EventTypeValidation            = "validation.webhook"
	EventTypePaymentCompleted      = "payment.completed"
	EventTypePaymentDeclined       = "payment.declined"
	EventTypeRecurringRenewed      = "recurring-payment.renewed"
	EventTypeRecurringEnded        = "recurring-payment.ended"
	EventTypeCancellationRequested = "recurring-payment.cancellation.requested"
	EventTypeCancellationAborted   = "recurring-payment.cancellation.aborted"
)

// EventKind is the closed set of webhook events we dispatch on. Unknown
// provider types map to KindUnknown and are acknowledged without processing,
// so new provider events cannot break delivery.
type EventKind int

const (
	KindUnknown EventKind = iota
	KindValidation
	KindPaymentCompleted
	KindPaymentDeclined
	KindRecurringRenewed
	KindRecurringEnded
	KindCancellationRequested
	KindCancellationAborted
)

func KindOf(eventType string) EventKind {
	switch strings.ToLower(strings.TrimSpace(eventType)) {
	case EventTypeValidation:
		return KindValidation
	case EventTypePaymentCompleted:
		return KindPaymentCompleted
	case EventTypePaymentDeclined:
		return KindPaymentDeclined
	case EventTypeRecurringRenewed:
		return KindRecurringRenewed
	case EventTypeRecurringEnded:
		return KindRecurringEnded
	case EventTypeCancellationRequested:
		return KindCancellationRequested
	case EventTypeCancellationAborted:
		return KindCancellationAborted
	default:
		return KindUnknown
	}
}

func (k EventKind) String() string {
	switch k {
	case KindValidation:
		return EventTypeValidation
	case KindPaymentCompleted:
		return EventTypePaymentCompleted
	case KindPaymentDeclined:
		return EventTypePaymentDeclined
	case KindRecurringRenewed:
		return EventTypeRecurringRenewed
	case KindRecurringEnded:
		return EventTypeRecurringEnded
	case KindCancellationRequested:
		return EventTypeCancellationRequested
	case KindCancellationAborted:
		return EventTypeCancellationAborted
	default:
		return "unknown"
	}
}

// WebhookEnvelope is the outer shape of every provider callback.
type WebhookEnvelope struct {
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	Subject json.RawMessage `json:"subject"`
}

func ParseWebhookEnvelope(raw []byte) (*WebhookEnvelope, error) {
	var env WebhookEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	if strings.TrimSpace(env.Type) == "" {
		return nil, errors.New("webhook envelope missing type")
	}
	return &env, nil
}

func (e *WebhookEnvelope) Kind() EventKind {
	return KindOf(e.Type)
}

// PaymentSubject decodes the subject of payment.* events.
func (e *WebhookEnvelope) PaymentSubject() (*Payment, error) {
	if len(e.Subject) == 0 {
		return nil, errors.New("webhook envelope has no subject")
	}
	var p Payment
	if err := json.Unmarshal(e.Subject, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// RecurringPaymentSubject is the subject of recurring-payment.* events. The
// owning user is only reachable through the embedded last payment's custom
// data.
type RecurringPaymentSubject struct {
	Reference     string                 `json:"reference"`
	Status        RecurringPaymentStatus `json:"status"`
	NextPaymentAt string                 `json:"next_payment_at"`
	CancelledAt   *string                `json:"cancelled_at"`
	CancelReason  *string                `json:"cancel_reason"`
	Interval      string                 `json:"interval"`
	Amount        float64                `json:"amount"`
	LastPayment   *Payment               `json:"last_payment"`
}

func (e *WebhookEnvelope) RecurringPaymentSubject() (*RecurringPaymentSubject, error) {
	if len(e.Subject) == 0 {
		return nil, errors.New("webhook envelope has no subject")
	}
	var s RecurringPaymentSubject
	if err := json.Unmarshal(e.Subject, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// UserID returns the join key for recurring-payment events, empty when the
// event is unattributable.
func (s *RecurringPaymentSubject) UserID() string {
	if s.LastPayment == nil {
		return ""
	}
	return strings.TrimSpace(s.LastPayment.Custom.UserID)
}
