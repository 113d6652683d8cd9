package controllers

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/gamehaven/GameHaven/internal/pkg/billing"
)

func TestSyncKeyValid(t *testing.T) {
	t.Setenv("SYNC_API_KEY", "sync-secret-1")

	assert.True(t, syncKeyValid("Bearer sync-secret-1"))
	assert.True(t, syncKeyValid("  Bearer   sync-secret-1"))
	assert.False(t, syncKeyValid("Bearer wrong-key"))
	assert.False(t, syncKeyValid("Bearer "))
	assert.False(t, syncKeyValid(""))
}

func TestSyncKeyValidNoKeyConfigured(t *testing.T) {
	t.Setenv("SYNC_API_KEY", "")

	// An empty configured key must never authenticate anything.
	assert.False(t, syncKeyValid("Bearer "))
	assert.False(t, syncKeyValid(""))
}

func TestSyncResponseShape(t *testing.T) {
	resp := syncResponse(billing.SyncResult{SyncedCount: 7, ErrorCount: 2})

	assert.Equal(t, true, resp["success"])
	assert.Equal(t, 7, resp["syncedCount"])
	assert.Equal(t, 2, resp["errorCount"])
	assert.Equal(t, "Synced 7 subscriptions, 2 errors", resp["message"])
}

func TestHandleSubscriptionSyncUnauthorized(t *testing.T) {
	t.Setenv("SYNC_API_KEY", "sync-secret-1")

	app := fiber.New()
	app.Post("/sync/subscriptions", HandleSubscriptionSync)

	req := httptest.NewRequest("POST", "/sync/subscriptions", nil)
	req.Header.Set("Authorization", "Bearer wrong-key")

	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
