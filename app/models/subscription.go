package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Subscription status values. Overdue is transient: it turns into expired
// once the failed payment threshold is crossed.
const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusCancelled = "cancelled"
	SubscriptionStatusExpired   = "expired"
	SubscriptionStatusOverdue   = "overdue"
)

// StringBool persists a boolean as the literal strings "true"/"false".
// The subscriptions table inherited this encoding from the original portal
// schema and the column is shared with other consumers, so we keep it.
type StringBool bool

func (b StringBool) Value() (driver.Value, error) {
	if b {
		return "true", nil
	}
	return "false", nil
}

func (b *StringBool) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*b = false
	case bool:
		*b = StringBool(v)
	case string:
		*b = v == "true" || v == "1"
	case []byte:
		s := string(v)
		*b = StringBool(s == "true" || s == "1")
	default:
		return fmt.Errorf("cannot scan %T into StringBool", value)
	}
	return nil
}

func (b StringBool) Bool() bool { return bool(b) }

// Subscription is the local record of one provider subscription, keyed by the
// provider transaction reference and mutated only through the billing engine.
type Subscription struct {
	ID                      string     `gorm:"primaryKey;type:varchar(64)" json:"id"`
	UserID                  uint       `gorm:"not null;index" json:"user_id"`
	Plan                    string     `gorm:"type:varchar(100);not null" json:"plan"`
	BillingCycle            string     `gorm:"type:varchar(32)" json:"billing_cycle"`
	IsActive                StringBool `gorm:"type:varchar(5);not null;default:'false';index" json:"is_active"`
	Status                  string     `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	PendingCancellation     StringBool `gorm:"type:varchar(5);not null;default:'false'" json:"pending_cancellation"`
	CancellationRequestedAt *time.Time `gorm:"type:timestamp;default:null" json:"cancellation_requested_at,omitempty"`
	CancelledAt             *time.Time `gorm:"type:timestamp;default:null" json:"cancelled_at,omitempty"`
	CancellationReason      string     `gorm:"type:text" json:"cancellation_reason,omitempty"`
	RecurringPayment        string     `gorm:"type:varchar(100);index" json:"recurring_payment,omitempty"`
	NextPaymentDate         *time.Time `gorm:"type:timestamp;default:null" json:"next_payment_date,omitempty"`
	FailedPaymentCount      int        `gorm:"not null;default:0" json:"failed_payment_count"`
	LastFailedPaymentReason string     `gorm:"type:text" json:"last_failed_payment_reason,omitempty"`
	LastCheckedAt           *time.Time `gorm:"type:timestamp;default:null" json:"last_checked_at,omitempty"`
	Interval                string     `gorm:"type:varchar(10)" json:"interval,omitempty"`
	Amount                  string     `gorm:"type:varchar(32)" json:"amount,omitempty"`
	CreatedAt               time.Time  `gorm:"autoCreateTime" json:"created_at"`
	// Microsecond precision: the optimistic save guard compares this column,
	// and a second-granularity timestamp cannot tell two writes within the
	// same second apart.
	UpdatedAt time.Time `gorm:"type:timestamp(6);autoUpdateTime" json:"updated_at"`
}

// HasTerminalStatus reports whether no further transitions are expected
// without a new payment.
func (s *Subscription) HasTerminalStatus() bool {
	return s.Status == SubscriptionStatusCancelled || s.Status == SubscriptionStatusExpired
}

// Entitled reports whether the subscription currently grants access.
func (s *Subscription) Entitled() bool {
	return s.IsActive.Bool() && !s.HasTerminalStatus()
}
