package controllers

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gamehaven/GameHaven/internal/pkg/billing"
	"github.com/gamehaven/GameHaven/internal/pkg/env"
	"github.com/gamehaven/GameHaven/internal/pkg/metrics/counter"
)

const syncRunTimeout = 5 * time.Minute

// HandleSubscriptionSync runs a full reconciliation pass. The endpoint is
// called by the scheduler, authenticated with a static bearer key.
func HandleSubscriptionSync(c *fiber.Ctx) error {
	if !syncKeyValid(c.Get("Authorization")) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	svc := newBillingService()
	ctx, cancel := context.WithTimeout(context.Background(), syncRunTimeout)
	defer cancel()

	result, err := svc.SyncAll(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "sync_failed"})
	}

	// Piggyback the counter flush on the scheduler tick.
	if err := counter.FlushAll(); err != nil {
		log.Printf("[Sync] Counter flush failed: %v", err)
	}

	return c.JSON(syncResponse(result))
}

// syncResponse shapes the scheduler reply: a success flag and summary
// message alongside the raw counters.
func syncResponse(result billing.SyncResult) fiber.Map {
	return fiber.Map{
		"success":     true,
		"message":     fmt.Sprintf("Synced %d subscriptions, %d errors", result.SyncedCount, result.ErrorCount),
		"syncedCount": result.SyncedCount,
		"errorCount":  result.ErrorCount,
	}
}

func syncKeyValid(authHeader string) bool {
	key := env.GetEnv("SYNC_API_KEY", "")
	if key == "" {
		return false
	}
	token := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(authHeader), "Bearer"))
	if token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(key)) == 1
}
