package billing

import (
	"context"
	"log"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gamehaven/GameHaven/app/models"
	"github.com/gamehaven/GameHaven/internal/pkg/env"
)

const (
	defaultSyncWorkers    = 4
	defaultSyncRowTimeout = 10 * time.Second
)

// SyncResult summarizes one reconciliation pass over the active
// subscriptions.
type SyncResult struct {
	SyncedCount int `json:"syncedCount"`
	ErrorCount  int `json:"errorCount"`
}

func syncWorkerCount() int {
	if raw := env.GetEnv("SYNC_WORKERS", ""); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return defaultSyncWorkers
}

func syncRowTimeout() time.Duration {
	if raw := env.GetEnv("SYNC_ROW_TIMEOUT", ""); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			return d
		}
	}
	return defaultSyncRowTimeout
}

// SyncAll reconciles every active subscription that has a recurring payment
// reference against the provider. Rows are worked by a bounded pool and each
// row gets its own timeout so one slow provider call cannot stall the pass.
func (s *Service) SyncAll(ctx context.Context) (SyncResult, error) {
	subs, err := s.repo.ListActiveRecurring()
	if err != nil {
		return SyncResult{}, err
	}
	if len(subs) == 0 {
		return SyncResult{}, nil
	}

	workers := syncWorkerCount()
	if workers > len(subs) {
		workers = len(subs)
	}
	rowTimeout := syncRowTimeout()

	var synced, failed int64
	jobs := make(chan *models.Subscription)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sub := range jobs {
				rowCtx, cancel := context.WithTimeout(ctx, rowTimeout)
				_, err := s.ReconcileSubscription(rowCtx, sub)
				cancel()
				if err != nil {
					atomic.AddInt64(&failed, 1)
					log.Printf("[Billing] Sync failed for subscription %s: %v", sub.ID, err)
					continue
				}
				atomic.AddInt64(&synced, 1)
			}
		}()
	}

feed:
	for i := range subs {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- &subs[i]:
		}
	}
	close(jobs)
	wg.Wait()

	result := SyncResult{
		SyncedCount: int(atomic.LoadInt64(&synced)),
		ErrorCount:  int(atomic.LoadInt64(&failed)),
	}
	log.Printf("[Billing] Subscription sync finished: %d synced, %d errors", result.SyncedCount, result.ErrorCount)
	return result, ctx.Err()
}
