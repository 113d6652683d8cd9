package controllers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatTimePtr(t *testing.T) {
	assert.Nil(t, formatTimePtr(nil))

	ts := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-06-01T12:30:00Z", formatTimePtr(&ts))

	// Non-UTC times are rendered in UTC.
	berlin := time.FixedZone("CEST", 2*60*60)
	local := time.Date(2025, 6, 1, 14, 30, 0, 0, berlin)
	assert.Equal(t, "2025-06-01T12:30:00Z", formatTimePtr(&local))
}

func TestNullableString(t *testing.T) {
	assert.Nil(t, nullableString(""))
	assert.Equal(t, "payment declined", nullableString("payment declined"))
}
