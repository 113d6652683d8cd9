package billing

import (
	"testing"
	"time"

	"github.com/gamehaven/GameHaven/app/models"
	"github.com/gamehaven/GameHaven/internal/pkg/tebex"
)

func activeSub() *models.Subscription {
	return &models.Subscription{
		ID:               "tbx-txn-1",
		UserID:           42,
		Plan:             "premium",
		IsActive:         true,
		Status:           models.SubscriptionStatusActive,
		RecurringPayment: "tbx-rec-1",
		UpdatedAt:        time.Now(),
	}
}

func TestApplyDeclineBelowThreshold(t *testing.T) {
	sub := activeSub()
	now := time.Now()

	applyDecline(sub, "insufficient funds", now)

	if sub.FailedPaymentCount != 1 {
		t.Fatalf("expected 1 failed payment, got %d", sub.FailedPaymentCount)
	}
	if sub.Status != models.SubscriptionStatusOverdue {
		t.Fatalf("expected overdue status, got %q", sub.Status)
	}
	if !sub.IsActive.Bool() {
		t.Fatalf("expected subscription to stay active below the threshold")
	}
	if sub.LastFailedPaymentReason != "insufficient funds" {
		t.Fatalf("unexpected decline reason %q", sub.LastFailedPaymentReason)
	}
}

func TestApplyDeclineReachesThreshold(t *testing.T) {
	sub := activeSub()
	now := time.Now()

	for i := 0; i < FailedPaymentThreshold; i++ {
		applyDecline(sub, "card expired", now)
	}

	if sub.Status != models.SubscriptionStatusExpired {
		t.Fatalf("expected expired status at the threshold, got %q", sub.Status)
	}
	if sub.IsActive.Bool() {
		t.Fatalf("an expired subscription must not stay active")
	}
}

func TestApplyRenewalResetsFailures(t *testing.T) {
	sub := activeSub()
	sub.FailedPaymentCount = 2
	sub.LastFailedPaymentReason = "card expired"
	sub.Status = models.SubscriptionStatusOverdue
	sub.PendingCancellation = true

	next := "2026-10-01T00:00:00Z"
	subject := &tebex.RecurringPaymentSubject{
		Reference:     "tbx-rec-1",
		NextPaymentAt: next,
		Interval:      "month",
		Amount:        4.99,
	}
	applyRenewal(sub, subject, time.Now())

	if sub.FailedPaymentCount != 0 || sub.LastFailedPaymentReason != "" {
		t.Fatalf("expected failure state to reset, got count=%d reason=%q", sub.FailedPaymentCount, sub.LastFailedPaymentReason)
	}
	if sub.Status != models.SubscriptionStatusActive || !sub.IsActive.Bool() {
		t.Fatalf("expected renewal to reactivate, got status=%q active=%v", sub.Status, sub.IsActive.Bool())
	}
	if sub.PendingCancellation.Bool() {
		t.Fatalf("a renewal clears the pending cancellation flag")
	}
	if sub.NextPaymentDate == nil || sub.NextPaymentDate.Format(time.RFC3339) != next {
		t.Fatalf("unexpected next payment date %v", sub.NextPaymentDate)
	}
	if sub.Amount != "4.99" {
		t.Fatalf("unexpected amount %q", sub.Amount)
	}
}

func TestApplyEndedUsesDefaultReason(t *testing.T) {
	sub := activeSub()
	sub.PendingCancellation = true

	applyEnded(sub, &tebex.RecurringPaymentSubject{Reference: "tbx-rec-1"}, time.Now())

	if sub.Status != models.SubscriptionStatusCancelled {
		t.Fatalf("expected cancelled status, got %q", sub.Status)
	}
	if sub.IsActive.Bool() {
		t.Fatalf("an ended subscription must not stay active")
	}
	if sub.CancellationReason != defaultEndedReason {
		t.Fatalf("expected default reason, got %q", sub.CancellationReason)
	}
	if sub.CancelledAt == nil {
		t.Fatalf("expected a cancellation timestamp")
	}
	if sub.PendingCancellation.Bool() {
		t.Fatalf("expected pending cancellation to clear")
	}
}

func TestApplyEndedKeepsProviderReason(t *testing.T) {
	sub := activeSub()
	reason := "Customer requested cancellation"

	applyEnded(sub, &tebex.RecurringPaymentSubject{CancelReason: &reason}, time.Now())

	if sub.CancellationReason != reason {
		t.Fatalf("expected provider reason %q, got %q", reason, sub.CancellationReason)
	}
}

func TestApplyCancellationRoundTrip(t *testing.T) {
	sub := activeSub()

	applyCancellationRequested(sub, time.Now())
	if !sub.PendingCancellation.Bool() || sub.CancellationRequestedAt == nil {
		t.Fatalf("expected pending cancellation with timestamp")
	}
	if !sub.IsActive.Bool() || sub.Status != models.SubscriptionStatusActive {
		t.Fatalf("a cancellation request must not revoke access")
	}

	applyCancellationAborted(sub, time.Now())
	if sub.PendingCancellation.Bool() || sub.CancellationRequestedAt != nil {
		t.Fatalf("expected cancellation state to clear after abort")
	}
}

func TestApplyPollStateTransitions(t *testing.T) {
	tests := []struct {
		statusID   int
		wantStatus string
		wantActive bool
	}{
		{tebex.StatusActive, models.SubscriptionStatusActive, true},
		{tebex.StatusOverdue, models.SubscriptionStatusOverdue, false},
		{tebex.StatusExpired, models.SubscriptionStatusExpired, false},
		{tebex.StatusCancelled, models.SubscriptionStatusCancelled, false},
	}

	for _, tt := range tests {
		sub := activeSub()
		rp := &tebex.RecurringPayment{
			Reference:       "tbx-rec-1",
			Status:          tebex.RecurringPaymentStatus{ID: tt.statusID},
			NextPaymentDate: "2026-10-01T00:00:00Z",
		}
		applyPollState(sub, rp, time.Now())

		if sub.Status != tt.wantStatus {
			t.Fatalf("status id %d: expected %q, got %q", tt.statusID, tt.wantStatus, sub.Status)
		}
		if sub.IsActive.Bool() != tt.wantActive {
			t.Fatalf("status id %d: expected active=%v, got %v", tt.statusID, tt.wantActive, sub.IsActive.Bool())
		}
		if sub.LastCheckedAt == nil {
			t.Fatalf("status id %d: expected last checked timestamp", tt.statusID)
		}
	}
}

func TestApplyPollStateOverdueRevokesAccess(t *testing.T) {
	sub := activeSub()
	rp := &tebex.RecurringPayment{
		Reference: "tbx-rec-1",
		Status:    tebex.RecurringPaymentStatus{ID: tebex.StatusOverdue},
	}

	if !applyPollState(sub, rp, time.Now()) {
		t.Fatalf("expected the overdue transition to report a change")
	}
	if sub.IsActive.Bool() {
		t.Fatalf("an overdue schedule must lose access until a charge succeeds")
	}
	if sub.Entitled() {
		t.Fatalf("an overdue subscription must not stay entitled")
	}
	if sub.Status != models.SubscriptionStatusOverdue {
		t.Fatalf("expected overdue status, got %q", sub.Status)
	}
}

func TestTerminationClearsNextPaymentDate(t *testing.T) {
	paths := map[string]func(*models.Subscription){
		"ended": func(sub *models.Subscription) {
			applyEnded(sub, &tebex.RecurringPaymentSubject{}, time.Now())
		},
		"decline threshold": func(sub *models.Subscription) {
			for i := 0; i < FailedPaymentThreshold; i++ {
				applyDecline(sub, "", time.Now())
			}
		},
		"poll expired": func(sub *models.Subscription) {
			applyPollState(sub, &tebex.RecurringPayment{Status: tebex.RecurringPaymentStatus{ID: tebex.StatusExpired}}, time.Now())
		},
		"poll cancelled": func(sub *models.Subscription) {
			applyPollState(sub, &tebex.RecurringPayment{Status: tebex.RecurringPaymentStatus{ID: tebex.StatusCancelled}}, time.Now())
		},
	}

	for name, apply := range paths {
		sub := activeSub()
		sub.NextPaymentDate = tebex.ParseTime("2026-10-01T00:00:00Z")
		apply(sub)
		if sub.NextPaymentDate != nil {
			t.Fatalf("%s: expected next payment date cleared, got %v", name, sub.NextPaymentDate)
		}
	}
}

func TestApplyPollStateUnknownStatusOnlyStamps(t *testing.T) {
	sub := activeSub()
	rp := &tebex.RecurringPayment{Status: tebex.RecurringPaymentStatus{ID: 99}}

	changed := applyPollState(sub, rp, time.Now())

	if changed {
		t.Fatalf("an unknown provider status must not change state")
	}
	if sub.Status != models.SubscriptionStatusActive || !sub.IsActive.Bool() {
		t.Fatalf("expected state untouched, got status=%q active=%v", sub.Status, sub.IsActive.Bool())
	}
	if sub.LastCheckedAt == nil {
		t.Fatalf("expected last checked timestamp")
	}
}

func TestApplyPollStateReportsChange(t *testing.T) {
	sub := activeSub()
	rp := &tebex.RecurringPayment{Status: tebex.RecurringPaymentStatus{ID: tebex.StatusCancelled}}

	if !applyPollState(sub, rp, time.Now()) {
		t.Fatalf("expected cancellation to report a change")
	}

	sub2 := activeSub()
	sub2.NextPaymentDate = tebex.ParseTime("2026-10-01T00:00:00Z")
	rp2 := &tebex.RecurringPayment{
		Status:          tebex.RecurringPaymentStatus{ID: tebex.StatusActive},
		NextPaymentDate: "2026-10-01T00:00:00Z",
	}
	if applyPollState(sub2, rp2, time.Now()) {
		t.Fatalf("identical provider state must not report a change")
	}
}

func TestTerminalStatusNeverActive(t *testing.T) {
	// Every transition path that lands on a terminal status must also drop
	// the active flag.
	paths := []func(*models.Subscription){
		func(sub *models.Subscription) {
			for i := 0; i < FailedPaymentThreshold; i++ {
				applyDecline(sub, "", time.Now())
			}
		},
		func(sub *models.Subscription) {
			applyEnded(sub, &tebex.RecurringPaymentSubject{}, time.Now())
		},
		func(sub *models.Subscription) {
			applyPollState(sub, &tebex.RecurringPayment{Status: tebex.RecurringPaymentStatus{ID: tebex.StatusExpired}}, time.Now())
		},
		func(sub *models.Subscription) {
			applyPollState(sub, &tebex.RecurringPayment{Status: tebex.RecurringPaymentStatus{ID: tebex.StatusCancelled}}, time.Now())
		},
	}

	for i, apply := range paths {
		sub := activeSub()
		apply(sub)
		if sub.HasTerminalStatus() && sub.IsActive.Bool() {
			t.Fatalf("path %d left a terminal subscription active (status=%q)", i, sub.Status)
		}
		if !sub.HasTerminalStatus() {
			t.Fatalf("path %d expected a terminal status, got %q", i, sub.Status)
		}
	}
}
