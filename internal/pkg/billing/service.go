package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/gamehaven/GameHaven/app/models"
	"github.com/gamehaven/GameHaven/internal/pkg/database"
	"github.com/gamehaven/GameHaven/internal/pkg/plans"
	"github.com/gamehaven/GameHaven/internal/pkg/tebex"
)

// ErrConcurrentUpdate is returned when a subscription row kept changing under
// us across all retry attempts.
var ErrConcurrentUpdate = errors.New("subscription was modified concurrently")

const (
	saveAttempts       = 3
	declinedGuardTTL   = 7 * 24 * time.Hour
	declinedGuardScope = "billing:declined:"
)

// ProviderAPI is the slice of the payment provider the billing service pulls
// state from.
type ProviderAPI interface {
	GetRecurringPayment(ctx context.Context, reference string) (*tebex.RecurringPayment, error)
	GetPayment(ctx context.Context, transactionID string) (*tebex.Payment, error)
}

// Service owns every mutation of subscription state. Webhook deliveries and
// the poll sync both funnel through it.
type Service struct {
	repo     Repository
	provider ProviderAPI
	guard    EventGuard
}

func NewService(repo Repository, provider ProviderAPI, guard EventGuard) *Service {
	return &Service{repo: repo, provider: provider, guard: guard}
}

// NewServiceFromDB wires the service against the shared database handle, the
// live provider client and the Redis event guard.
func NewServiceFromDB() *Service {
	return NewService(NewRepository(database.GetDB()), tebex.NewClientFromEnv(), NewRedisEventGuard())
}

// ProcessResult describes how a webhook delivery was handled. A business
// problem (unattributable event, missing row) is contained here and still
// acknowledged to the provider; only storage failures surface as errors so
// the provider retries.
type ProcessResult struct {
	Duplicate bool
	Handled   bool
	// BusinessErr is recorded for diagnosis but does not fail the delivery.
	BusinessErr error
}

// ProcessWebhook records and dispatches one verified webhook delivery.
// The returned error means the event could not be durably recorded or
// applied and the delivery must be retried by the provider.
func (s *Service) ProcessWebhook(ctx context.Context, envelope *tebex.WebhookEnvelope, raw []byte) (ProcessResult, error) {
	var res ProcessResult

	eventID := strings.TrimSpace(envelope.ID)
	if eventID == "" {
		// Deliveries without an id still need a stable dedup key.
		sum := sha256.Sum256(raw)
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	record := &models.WebhookEvent{
		Provider:        models.BillingProviderTebex,
		ProviderEventID: eventID,
		EventType:       envelope.Type,
		PayloadJSON:     string(raw),
		SignatureValid:  true,
	}
	created, stored, err := s.repo.CreateWebhookEventIfNotExists(record)
	if err != nil {
		return res, err
	}
	if !created && stored.ProcessedAt != nil {
		log.Printf("[Billing] Skipping duplicate webhook event %s (%s)", eventID, envelope.Type)
		res.Duplicate = true
		return res, nil
	}

	handled, businessErr, storeErr := s.dispatch(ctx, eventID, envelope)
	if storeErr != nil {
		// Leave the event unprocessed so a redelivery can finish the job.
		return res, storeErr
	}

	procNote := ""
	if businessErr != nil {
		procNote = businessErr.Error()
		log.Printf("[Billing] Webhook event %s (%s) not applied: %v", eventID, envelope.Type, businessErr)
	}
	if err := s.repo.MarkWebhookProcessed(stored.ID, procNote); err != nil {
		return res, err
	}

	res.Handled = handled
	res.BusinessErr = businessErr
	return res, nil
}

// dispatch applies one event. businessErr covers malformed or unattributable
// events; storeErr covers persistence failures.
func (s *Service) dispatch(ctx context.Context, eventID string, envelope *tebex.WebhookEnvelope) (handled bool, businessErr error, storeErr error) {
	switch envelope.Kind() {
	case tebex.KindPaymentCompleted:
		p, err := envelope.PaymentSubject()
		if err != nil {
			return false, err, nil
		}
		businessErr, storeErr = s.HandlePaymentCompleted(ctx, p)
		return storeErr == nil && businessErr == nil, businessErr, storeErr

	case tebex.KindPaymentDeclined:
		p, err := envelope.PaymentSubject()
		if err != nil {
			return false, err, nil
		}
		businessErr, storeErr = s.HandlePaymentDeclined(ctx, eventID, p)
		return storeErr == nil && businessErr == nil, businessErr, storeErr

	case tebex.KindRecurringRenewed:
		sub, err := envelope.RecurringPaymentSubject()
		if err != nil {
			return false, err, nil
		}
		businessErr, storeErr = s.HandleRenewal(ctx, sub)
		return storeErr == nil && businessErr == nil, businessErr, storeErr

	case tebex.KindRecurringEnded:
		sub, err := envelope.RecurringPaymentSubject()
		if err != nil {
			return false, err, nil
		}
		businessErr, storeErr = s.HandleEnded(ctx, sub)
		return storeErr == nil && businessErr == nil, businessErr, storeErr

	case tebex.KindCancellationRequested:
		sub, err := envelope.RecurringPaymentSubject()
		if err != nil {
			return false, err, nil
		}
		businessErr, storeErr = s.HandleCancellationRequested(ctx, sub)
		return storeErr == nil && businessErr == nil, businessErr, storeErr

	case tebex.KindCancellationAborted:
		sub, err := envelope.RecurringPaymentSubject()
		if err != nil {
			return false, err, nil
		}
		businessErr, storeErr = s.HandleCancellationAborted(ctx, sub)
		return storeErr == nil && businessErr == nil, businessErr, storeErr

	default:
		log.Printf("[Billing] Ignoring webhook event type %s", envelope.Type)
		return false, nil, nil
	}
}

func parseUserID(raw string) (uint, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return 0, errors.New("event carries no user id")
	}
	id, err := strconv.ParseUint(v, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("event carries an invalid user id: " + v)
	}
	return uint(id), nil
}

// mutateByUserID loads the user's subscription, applies fn and writes it back
// under the optimistic guard, retrying a bounded number of times.
func (s *Service) mutateByUserID(userID uint, fn func(*models.Subscription)) (*models.Subscription, error) {
	for attempt := 0; attempt < saveAttempts; attempt++ {
		sub, err := s.repo.GetSubscriptionByUserID(userID)
		if err != nil {
			return nil, err
		}
		seen := sub.UpdatedAt
		fn(sub)
		ok, err := s.repo.SaveSubscriptionGuarded(sub, seen)
		if err != nil {
			return nil, err
		}
		if ok {
			return sub, nil
		}
	}
	return nil, ErrConcurrentUpdate
}

// HandlePaymentCompleted refreshes the payer's subscription after a
// successful charge. A missing row is a business no-op: rows are created at
// checkout completion, not here.
func (s *Service) HandlePaymentCompleted(ctx context.Context, p *tebex.Payment) (businessErr, storeErr error) {
	userID, err := parseUserID(p.Custom.UserID)
	if err != nil {
		return err, nil
	}

	now := time.Now()
	_, err = s.mutateByUserID(userID, func(sub *models.Subscription) {
		applyPaymentCompleted(sub, p, now)
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.New("no subscription on file for user " + strconv.FormatUint(uint64(userID), 10)), nil
	}
	if err != nil {
		return nil, err
	}
	log.Printf("[Billing] Payment %s completed for user %d", p.TransactionID, userID)
	return nil, nil
}

// HandlePaymentDeclined counts a failed charge once per provider event. The
// Redis guard fails open: a guard outage must not drop a real decline.
func (s *Service) HandlePaymentDeclined(ctx context.Context, eventID string, p *tebex.Payment) (businessErr, storeErr error) {
	userID, err := parseUserID(p.Custom.UserID)
	if err != nil {
		return err, nil
	}

	first, err := s.guard.FirstDelivery(declinedGuardScope+eventID, declinedGuardTTL)
	if err != nil {
		log.Printf("[Billing] Decline guard unavailable for event %s, counting anyway: %v", eventID, err)
	} else if !first {
		log.Printf("[Billing] Decline event %s already counted for user %d", eventID, userID)
		return nil, nil
	}

	now := time.Now()
	sub, err := s.mutateByUserID(userID, func(sub *models.Subscription) {
		applyDecline(sub, p.DeclineReason, now)
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.New("no subscription on file for user " + strconv.FormatUint(uint64(userID), 10)), nil
	}
	if err != nil {
		return nil, err
	}

	log.Printf("[Billing] Payment declined for user %d, failure %d/%d", userID, sub.FailedPaymentCount, FailedPaymentThreshold)
	s.notifyStatusChange(sub)
	return nil, nil
}

// HandleRenewal resets the failure counter and moves the next charge date.
func (s *Service) HandleRenewal(ctx context.Context, subject *tebex.RecurringPaymentSubject) (businessErr, storeErr error) {
	userID, err := parseUserID(subject.UserID())
	if err != nil {
		return err, nil
	}

	now := time.Now()
	_, err = s.mutateByUserID(userID, func(sub *models.Subscription) {
		applyRenewal(sub, subject, now)
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.New("no subscription on file for user " + strconv.FormatUint(uint64(userID), 10)), nil
	}
	if err != nil {
		return nil, err
	}
	log.Printf("[Billing] Recurring payment %s renewed for user %d", subject.Reference, userID)
	return nil, nil
}

// HandleEnded terminally cancels the subscription.
func (s *Service) HandleEnded(ctx context.Context, subject *tebex.RecurringPaymentSubject) (businessErr, storeErr error) {
	userID, err := parseUserID(subject.UserID())
	if err != nil {
		return err, nil
	}

	now := time.Now()
	sub, err := s.mutateByUserID(userID, func(sub *models.Subscription) {
		applyEnded(sub, subject, now)
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.New("no subscription on file for user " + strconv.FormatUint(uint64(userID), 10)), nil
	}
	if err != nil {
		return nil, err
	}

	log.Printf("[Billing] Recurring payment %s ended for user %d", subject.Reference, userID)
	s.notifyStatusChange(sub)
	return nil, nil
}

// HandleCancellationRequested flags the pending cancellation. Access is kept
// until the schedule actually ends.
func (s *Service) HandleCancellationRequested(ctx context.Context, subject *tebex.RecurringPaymentSubject) (businessErr, storeErr error) {
	userID, err := parseUserID(subject.UserID())
	if err != nil {
		return err, nil
	}

	now := time.Now()
	_, err = s.mutateByUserID(userID, func(sub *models.Subscription) {
		applyCancellationRequested(sub, now)
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.New("no subscription on file for user " + strconv.FormatUint(uint64(userID), 10)), nil
	}
	if err != nil {
		return nil, err
	}
	log.Printf("[Billing] Cancellation requested for user %d", userID)
	return nil, nil
}

// HandleCancellationAborted clears the pending cancellation flag.
func (s *Service) HandleCancellationAborted(ctx context.Context, subject *tebex.RecurringPaymentSubject) (businessErr, storeErr error) {
	userID, err := parseUserID(subject.UserID())
	if err != nil {
		return err, nil
	}

	now := time.Now()
	_, err = s.mutateByUserID(userID, func(sub *models.Subscription) {
		applyCancellationAborted(sub, now)
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.New("no subscription on file for user " + strconv.FormatUint(uint64(userID), 10)), nil
	}
	if err != nil {
		return nil, err
	}
	log.Printf("[Billing] Cancellation aborted for user %d", userID)
	return nil, nil
}

// RegisterPayment creates the subscription row for a completed checkout,
// keyed by the provider transaction id. Calling it twice for the same
// transaction returns the existing row.
func (s *Service) RegisterPayment(ctx context.Context, p *tebex.Payment) (*models.Subscription, error) {
	txn := strings.TrimSpace(p.TransactionID)
	if txn == "" {
		return nil, errors.New("payment carries no transaction id")
	}
	userID, err := parseUserID(p.Custom.UserID)
	if err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetSubscriptionByID(txn); err == nil {
		return existing, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	planName := ""
	if len(p.Products) > 0 {
		planName = p.Products[0].Name
	}
	now := time.Now()
	sub := &models.Subscription{
		ID:               txn,
		UserID:           userID,
		Plan:             string(plans.Normalize(planName)),
		BillingCycle:     p.Interval,
		IsActive:         true,
		Status:           models.SubscriptionStatusActive,
		RecurringPayment: p.RecurringPaymentReference,
		Interval:         p.Interval,
		Amount:           formatAmount(p.Price.Amount),
		LastCheckedAt:    &now,
	}
	if err := s.repo.CreateSubscription(sub); err != nil {
		return nil, err
	}
	log.Printf("[Billing] Registered subscription %s for user %d (plan %s)", txn, userID, sub.Plan)

	// Pull the schedule once right away so the row starts out with the
	// provider's next payment date instead of waiting for the first sync tick.
	if sub.RecurringPayment != "" {
		if _, err := s.ReconcileSubscription(ctx, sub); err != nil {
			log.Printf("[Billing] Post-checkout reconcile for %s: %v", sub.ID, err)
		}
	}
	return sub, nil
}

// ReconcileSubscription pulls the provider's current state for one
// subscription and folds it into the local row. Returns whether the row's
// effective state changed.
func (s *Service) ReconcileSubscription(ctx context.Context, sub *models.Subscription) (bool, error) {
	ref := strings.TrimSpace(sub.RecurringPayment)
	if ref == "" {
		return false, errors.New("subscription " + sub.ID + " has no recurring payment reference")
	}

	rp, err := s.provider.GetRecurringPayment(ctx, ref)
	if err != nil {
		return false, err
	}

	now := time.Now()
	prevStatus := sub.Status
	changed := false
	for attempt := 0; attempt < saveAttempts; attempt++ {
		seen := sub.UpdatedAt
		changed = applyPollState(sub, rp, now)
		ok, err := s.repo.SaveSubscriptionGuarded(sub, seen)
		if err != nil {
			return false, err
		}
		if ok {
			break
		}
		// Lost the race, reload and fold again.
		fresh, err := s.repo.GetSubscriptionByID(sub.ID)
		if err != nil {
			return false, err
		}
		*sub = *fresh
		if attempt == saveAttempts-1 {
			return false, ErrConcurrentUpdate
		}
	}

	if changed && sub.Status != prevStatus {
		log.Printf("[Billing] Sync moved subscription %s from %s to %s", sub.ID, prevStatus, sub.Status)
		s.notifyStatusChange(sub)
	}
	return changed, nil
}
