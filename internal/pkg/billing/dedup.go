package billing

import (
	"time"

	"github.com/gamehaven/GameHaven/internal/pkg/cache"
)

// EventGuard answers whether an event id is being seen for the first time
// within a retention window. Used on top of the DB-level event log for
// events whose replay would double-count, like payment declines.
type EventGuard interface {
	FirstDelivery(key string, ttl time.Duration) (bool, error)
}

type redisEventGuard struct{}

// NewRedisEventGuard builds a guard over the shared Redis client.
func NewRedisEventGuard() EventGuard {
	return redisEventGuard{}
}

func (redisEventGuard) FirstDelivery(key string, ttl time.Duration) (bool, error) {
	return cache.SetNX(key, "1", ttl)
}
