package controllers

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gamehaven/GameHaven/internal/pkg/billing"
	"github.com/gamehaven/GameHaven/internal/pkg/env"
	"github.com/gamehaven/GameHaven/internal/pkg/tebex"
)

// Tebex delivers webhooks from a fixed set of source addresses.
const defaultWebhookAllowedIPs = "18.209.80.3,54.87.231.232"

const webhookProcessTimeout = 15 * time.Second

// newBillingService is swapped out in tests.
var newBillingService = billing.NewServiceFromDB

// HandleBillingWebhook receives provider callbacks. Order matters: source IP
// and signature are checked before anything is written, so forged deliveries
// leave no trace in the event log.
func HandleBillingWebhook(c *fiber.Ctx) error {
	clientIP := extractClientIP(c)
	if !webhookIPAllowed(clientIP) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	}

	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := strings.TrimSpace(c.Get("X-Signature"))
	if signature == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing_signature"})
	}

	secret := env.GetEnv("TEBEX_WEBHOOK_SECRET", "")
	if !tebex.VerifyWebhookSignature(rawBody, signature, secret) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_signature"})
	}

	envelope, err := tebex.ParseWebhookEnvelope(rawBody)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}

	// The provider validates the endpoint by expecting its id echoed back.
	if envelope.Kind() == tebex.KindValidation {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"id": envelope.ID})
	}

	svc := newBillingService()
	ctx, cancel := context.WithTimeout(context.Background(), webhookProcessTimeout)
	defer cancel()

	res, err := svc.ProcessWebhook(ctx, envelope, rawBody)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_persist_failed"})
	}
	if res.Duplicate {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "duplicate": true})
	}
	if !res.Handled {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

// extractClientIP resolves the original client address behind proxies. The
// first X-Forwarded-For entry wins, then X-Real-Ip, then the socket address.
func extractClientIP(c *fiber.Ctx) string {
	if xff := c.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	if realIP := strings.TrimSpace(c.Get("X-Real-Ip")); realIP != "" {
		return realIP
	}
	return c.IP()
}

// webhookIPAllowed checks the client address against WEBHOOK_ALLOWED_IPS.
// An explicit "*" disables the check for local development.
func webhookIPAllowed(clientIP string) bool {
	allowed := env.GetEnv("WEBHOOK_ALLOWED_IPS", defaultWebhookAllowedIPs)
	if strings.TrimSpace(allowed) == "*" {
		return true
	}
	ip := strings.TrimSpace(clientIP)
	if ip == "" {
		return false
	}
	for _, entry := range strings.Split(allowed, ",") {
		if strings.TrimSpace(entry) == ip {
			return true
		}
	}
	return false
}
