package billing

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gamehaven/GameHaven/app/models"
)

// Repository provides DB operations used by the billing service.
type Repository interface {
	GetSubscriptionByID(id string) (*models.Subscription, error)
	GetSubscriptionByUserID(userID uint) (*models.Subscription, error)
	CreateSubscription(sub *models.Subscription) error
	// SaveSubscriptionGuarded writes the full field set of sub conditioned on
	// the row still carrying seenUpdatedAt. Returns false when another writer
	// got there first.
	SaveSubscriptionGuarded(sub *models.Subscription, seenUpdatedAt time.Time) (bool, error)
	ListActiveRecurring() ([]models.Subscription, error)
	CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error)
	MarkWebhookProcessed(id uint, processingError string) error
	GetUserEmail(userID uint) (string, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetSubscriptionByID(id string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.Where("id = ?", id).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) GetSubscriptionByUserID(userID uint) (*models.Subscription, error) {
	// One subscription per user is the intent but not enforced; the most
	// recently touched row is the effective one.
	var sub models.Subscription
	err := r.db.Where("user_id = ?", userID).
		Order("updated_at DESC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) CreateSubscription(sub *models.Subscription) error {
	return r.db.Create(sub).Error
}

func (r *gormRepository) SaveSubscriptionGuarded(sub *models.Subscription, seenUpdatedAt time.Time) (bool, error) {
	now := time.Now()
	updates := map[string]interface{}{
		"user_id":                    sub.UserID,
		"plan":                       sub.Plan,
		"billing_cycle":              sub.BillingCycle,
		"is_active":                  sub.IsActive,
		"status":                     sub.Status,
		"pending_cancellation":       sub.PendingCancellation,
		"cancellation_requested_at":  sub.CancellationRequestedAt,
		"cancelled_at":               sub.CancelledAt,
		"cancellation_reason":        sub.CancellationReason,
		"recurring_payment":          sub.RecurringPayment,
		"next_payment_date":          sub.NextPaymentDate,
		"failed_payment_count":       sub.FailedPaymentCount,
		"last_failed_payment_reason": sub.LastFailedPaymentReason,
		"last_checked_at":            sub.LastCheckedAt,
		"interval":                   sub.Interval,
		"amount":                     sub.Amount,
		"updated_at":                 now,
	}

	tx := r.db.Model(&models.Subscription{}).
		Where("id = ? AND updated_at = ?", sub.ID, seenUpdatedAt).
		Updates(updates)
	if tx.Error != nil {
		return false, tx.Error
	}
	if tx.RowsAffected == 0 {
		return false, nil
	}
	sub.UpdatedAt = now
	return true, nil
}

func (r *gormRepository) ListActiveRecurring() ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.
		Where("is_active = ? AND recurring_payment <> ''", models.StringBool(true)).
		Find(&subs).Error
	return subs, err
}

func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.WebhookEvent
	if err := r.db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.WebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}

func (r *gormRepository) GetUserEmail(userID uint) (string, error) {
	var user models.User
	if err := r.db.Select("email").First(&user, userID).Error; err != nil {
		return "", err
	}
	return user.Email, nil
}
