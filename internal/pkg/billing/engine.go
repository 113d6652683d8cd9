package billing

import (
	"strconv"
	"time"

	"github.com/gamehaven/GameHaven/app/models"
	"github.com/gamehaven/GameHaven/internal/pkg/tebex"
)

// FailedPaymentThreshold is the number of declined payments at which a
// subscription is considered expired instead of merely overdue.
const FailedPaymentThreshold = 3

const defaultEndedReason = "Recurring payment ended"

func formatAmount(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// applyPaymentCompleted refreshes a subscription row after a successful
// charge. Creation of missing rows is the caller's job; this only mutates.
func applyPaymentCompleted(sub *models.Subscription, p *tebex.Payment, now time.Time) {
	sub.IsActive = true
	sub.Status = models.SubscriptionStatusActive
	sub.FailedPaymentCount = 0
	sub.LastFailedPaymentReason = ""
	if p.RecurringPaymentReference != "" {
		sub.RecurringPayment = p.RecurringPaymentReference
	}
	if p.Interval != "" {
		sub.Interval = p.Interval
	}
	if a := formatAmount(p.Price.Amount); a != "" {
		sub.Amount = a
	}
	sub.LastCheckedAt = &now
}

// applyRenewal handles recurring-payment.renewed: a fresh billing period
// starts, so the failure counter resets and the next charge date moves.
func applyRenewal(sub *models.Subscription, s *tebex.RecurringPaymentSubject, now time.Time) {
	sub.IsActive = true
	sub.Status = models.SubscriptionStatusActive
	sub.FailedPaymentCount = 0
	sub.LastFailedPaymentReason = ""
	sub.PendingCancellation = false
	if s.Reference != "" {
		sub.RecurringPayment = s.Reference
	}
	if next := tebex.ParseTime(s.NextPaymentAt); next != nil {
		sub.NextPaymentDate = next
	}
	if s.Interval != "" {
		sub.Interval = s.Interval
	}
	if a := formatAmount(s.Amount); a != "" {
		sub.Amount = a
	}
	sub.LastCheckedAt = &now
}

// applyEnded handles recurring-payment.ended: the schedule is gone and the
// subscription is terminally cancelled.
func applyEnded(sub *models.Subscription, s *tebex.RecurringPaymentSubject, now time.Time) {
	sub.IsActive = false
	sub.Status = models.SubscriptionStatusCancelled
	sub.NextPaymentDate = nil
	sub.PendingCancellation = false
	if sub.CancelledAt == nil {
		if t := tebex.ParseTimePtr(s.CancelledAt); t != nil {
			sub.CancelledAt = t
		} else {
			sub.CancelledAt = &now
		}
	}
	if sub.CancellationReason == "" {
		if s.CancelReason != nil && *s.CancelReason != "" {
			sub.CancellationReason = *s.CancelReason
		} else {
			sub.CancellationReason = defaultEndedReason
		}
	}
	sub.LastCheckedAt = &now
}

// applyCancellationRequested flags an intent to cancel. Access stays intact
// until the provider ends the schedule.
func applyCancellationRequested(sub *models.Subscription, now time.Time) {
	sub.PendingCancellation = true
	if sub.CancellationRequestedAt == nil {
		sub.CancellationRequestedAt = &now
	}
	sub.LastCheckedAt = &now
}

// applyCancellationAborted clears a previously requested cancellation.
func applyCancellationAborted(sub *models.Subscription, now time.Time) {
	sub.PendingCancellation = false
	sub.CancellationRequestedAt = nil
	sub.LastCheckedAt = &now
}

// applyDecline counts a failed charge. At the threshold the subscription
// expires and loses access; below it the row goes overdue but stays active so
// the provider can retry.
func applyDecline(sub *models.Subscription, reason string, now time.Time) {
	sub.FailedPaymentCount++
	if reason != "" {
		sub.LastFailedPaymentReason = reason
	}
	if sub.FailedPaymentCount >= FailedPaymentThreshold {
		sub.Status = models.SubscriptionStatusExpired
		sub.IsActive = false
		sub.NextPaymentDate = nil
	} else {
		sub.Status = models.SubscriptionStatusOverdue
	}
	sub.LastCheckedAt = &now
}

// applyPollState folds the provider's authoritative recurring-payment state
// into the local row during a sync pass. Returns true when anything beyond
// the check timestamp changed.
func applyPollState(sub *models.Subscription, rp *tebex.RecurringPayment, now time.Time) bool {
	prevStatus := sub.Status
	prevActive := sub.IsActive
	prevNext := sub.NextPaymentDate

	switch rp.Status.ID {
	case tebex.StatusActive:
		sub.IsActive = true
		sub.Status = models.SubscriptionStatusActive
		if next := tebex.ParseTime(rp.NextPaymentDate); next != nil {
			sub.NextPaymentDate = next
		}
	case tebex.StatusOverdue:
		// The poll is the backstop: an overdue schedule loses access until a
		// successful charge reactivates it.
		sub.IsActive = false
		sub.Status = models.SubscriptionStatusOverdue
	case tebex.StatusExpired:
		sub.IsActive = false
		sub.Status = models.SubscriptionStatusExpired
		sub.NextPaymentDate = nil
	case tebex.StatusCancelled:
		sub.IsActive = false
		sub.Status = models.SubscriptionStatusCancelled
		sub.NextPaymentDate = nil
		sub.PendingCancellation = false
		if sub.CancelledAt == nil {
			if t := tebex.ParseTimePtr(rp.CancelledAt); t != nil {
				sub.CancelledAt = t
			} else {
				sub.CancelledAt = &now
			}
		}
		if sub.CancellationReason == "" {
			if rp.CancelReason != nil && *rp.CancelReason != "" {
				sub.CancellationReason = *rp.CancelReason
			} else {
				sub.CancellationReason = defaultEndedReason
			}
		}
	default:
		// Unknown status ids are left alone; only the check time moves.
		sub.LastCheckedAt = &now
		return false
	}

	sub.LastCheckedAt = &now

	changed := sub.Status != prevStatus || sub.IsActive != prevActive
	if !changed && sub.NextPaymentDate != nil && prevNext != nil {
		changed = !sub.NextPaymentDate.Equal(*prevNext)
	} else if !changed {
		changed = (sub.NextPaymentDate == nil) != (prevNext == nil)
	}
	return changed
}
