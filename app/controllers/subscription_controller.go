package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/gamehaven/GameHaven/app/models"
	"github.com/gamehaven/GameHaven/internal/pkg/database"
	"github.com/gamehaven/GameHaven/internal/pkg/plans"
	"github.com/gamehaven/GameHaven/internal/pkg/usercontext"
)

// HandleGetUserSubscription returns the authenticated user's subscription
// state. Users without a subscription get the free tier shape instead of 404
// so clients have one code path.
func HandleGetUserSubscription(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	var sub models.Subscription
	err := database.GetDB().Where("user_id = ?", userCtx.UserID).
		Order("updated_at DESC").First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(fiber.Map{
				"plan":     string(plans.PlanFree),
				"entitled": false,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load subscription"})
	}

	return c.JSON(fiber.Map{
		"id":                   sub.ID,
		"plan":                 sub.Plan,
		"status":               sub.Status,
		"entitled":             sub.Entitled(),
		"is_active":            sub.IsActive.Bool(),
		"pending_cancellation": sub.PendingCancellation.Bool(),
		"billing_cycle":        sub.BillingCycle,
		"next_payment_date":    formatTimePtr(sub.NextPaymentDate),
		"failed_payment_count": sub.FailedPaymentCount,
		"cancellation_reason":  nullableString(sub.CancellationReason),
		"cancelled_at":         formatTimePtr(sub.CancelledAt),
		"created_at":           sub.CreatedAt.UTC().Format(time.RFC3339),
	})
}

func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
