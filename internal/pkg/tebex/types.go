package tebex

import (
	"strings"
	"time"
)

// Recurring payment status ids as reported by the provider.
const (
	StatusActive    = 2
	StatusOverdue   = 3
	StatusExpired   = 4
	StatusCancelled = 5
)

type RecurringPaymentStatus struct {
	ID          int    `json:"id"`
	Class       string `json:"class"`
	Description string `json:"description"`
	Active      int    `json:"active"`
}

// RecurringPayment is the provider's view of an ongoing charge schedule,
// fetched by reference via the pull API.
type RecurringPayment struct {
	ID                      int                    `json:"id"`
	CreatedAt               string                 `json:"created_at"`
	UpdatedAt               string                 `json:"updated_at"`
	PausedAt                *string                `json:"paused_at"`
	PausedUntil             *string                `json:"paused_until"`
	NextPaymentDate         string                 `json:"next_payment_date"`
	Reference               string                 `json:"reference"`
	AccountID               int                    `json:"account_id"`
	Interval                string                 `json:"interval"`
	CancelledAt             *string                `json:"cancelled_at"`
	CancellationRequestedAt *string                `json:"cancellation_requested_at"`
	Status                  RecurringPaymentStatus `json:"status"`
	Amount                  float64                `json:"amount"`
	CancelReason            *string                `json:"cancel_reason"`
	Period                  string                 `json:"period"`
}

type Product struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// PaymentCustom carries the opaque data we attach at basket creation.
// userid is the local account the payment belongs to.
type PaymentCustom struct {
	UserID string `json:"userid"`
}

type PaymentStatus struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// Payment is a single transaction, fetched by transaction id or embedded in
// webhook subjects.
type Payment struct {
	TransactionID             string        `json:"transaction_id"`
	Status                    PaymentStatus `json:"status"`
	Products                  []Product     `json:"products"`
	Custom                    PaymentCustom `json:"custom"`
	RecurringPaymentReference string        `json:"recurring_payment_reference"`
	DeclineReason             string        `json:"decline_reason"`
	Interval                  string        `json:"interval"`
	Price                     struct {
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
	} `json:"price"`
}

type Basket struct {
	Ident string `json:"ident"`
	Links struct {
		Checkout string `json:"checkout"`
	} `json:"links"`
}

// timeLayouts covers the formats the provider has been observed to emit.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTime parses a provider timestamp, returning nil for empty or
// unrecognized values.
func ParseTime(s string) *time.Time {
	v := strings.TrimSpace(s)
	if v == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}
	return nil
}

// ParseTimePtr is ParseTime over an optional string.
func ParseTimePtr(s *string) *time.Time {
	if s == nil {
		return nil
	}
	return ParseTime(*s)
}
