package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pavitra93/menulink/shared/models"
)

// RetryWorker re-relays queued handoffs with exponential backoff
type RetryWorker struct {
	ledger        Ledger
	notifier      *Notifier
	maxRetries    int
	batchSize     int
	checkInterval time.Duration
	baseDelay     time.Duration
	now           func() time.Time
}

// NewRetryWorker creates a retry worker
func NewRetryWorker(ledger Ledger, notifier *Notifier, maxRetries, batchSize int, checkInterval, baseDelay time.Duration) *RetryWorker {
	return &RetryWorker{
		ledger:        ledger,
		notifier:      notifier,
		maxRetries:    maxRetries,
		batchSize:     batchSize,
		checkInterval: checkInterval,
		baseDelay:     baseDelay,
		now:           time.Now,
	}
}

// backoff is base, 2*base, 4*base... for the nth failed retry
func backoff(base time.Duration, retryCount int) time.Duration {
	if retryCount < 1 {
		return base
	}
	return base * time.Duration(1<<(retryCount-1))
}

// Run processes due retries every check interval until ctx is done
func (rw *RetryWorker) Run(ctx context.Context) {
	logrus.Info("Starting handoff retry worker...")

	ticker := time.NewTicker(rw.checkInterval)
	defer ticker.Stop()

	for {
		if n, err := rw.ProcessDue(ctx); err != nil {
			logrus.Errorf("Error fetching failed handoffs: %v", err)
		} else if n > 0 {
			logrus.Infof("Processed %d failed handoffs", n)
		}

		select {
		case <-ctx.Done():
			logrus.Info("Handoff retry worker stopped")
			return
		case <-ticker.C:
		}
	}
}

// ProcessDue retries one batch of due handoffs and returns how many it tried
func (rw *RetryWorker) ProcessDue(ctx context.Context) (int, error) {
	due, err := rw.ledger.DueFailures(ctx, rw.now(), rw.batchSize)
	if err != nil {
		return 0, err
	}
	for i := range due {
		if err := rw.retry(ctx, &due[i]); err != nil {
			logrus.WithField("id", due[i].ID).Errorf("Failed to retry handoff: %v", err)
		}
	}
	return len(due), nil
}

func (rw *RetryWorker) retry(ctx context.Context, failed *models.FailedHandoff) error {
	var event models.HandoffEvent
	if err := json.Unmarshal([]byte(failed.Payload), &event); err != nil {
		return rw.markPermanentlyFailed(ctx, failed, fmt.Sprintf("Unreadable payload: %v", err))
	}

	if err := rw.notifier.Relay(ctx, event); err != nil {
		return rw.updateRetryStatus(ctx, failed, err)
	}

	if err := rw.ledger.MarkRelayed(ctx, failed.EventID); err != nil {
		logrus.WithField("event_id", failed.EventID).Warnf("Failed to mark handoff relayed: %v", err)
	}
	return rw.markResolved(ctx, failed)
}

// updateRetryStatus schedules the next attempt or gives up
func (rw *RetryWorker) updateRetryStatus(ctx context.Context, failed *models.FailedHandoff, cause error) error {
	now := rw.now()
	failed.RetryCount++
	failed.UpdatedAt = now

	if failed.RetryCount >= rw.maxRetries {
		failed.Status = models.FailedStatusPermanentlyFailed
		failed.ResolvedAt = &now
		failed.ErrorMessage = fmt.Sprintf("Max retries reached: %s", cause.Error())
	} else {
		next := now.Add(backoff(rw.baseDelay, failed.RetryCount))
		failed.NextRetryAt = &next
		failed.ErrorMessage = cause.Error()
	}

	return rw.ledger.SaveFailure(ctx, failed)
}

func (rw *RetryWorker) markResolved(ctx context.Context, failed *models.FailedHandoff) error {
	now := rw.now()
	failed.Status = models.FailedStatusResolved
	failed.UpdatedAt = now
	failed.ResolvedAt = &now
	return rw.ledger.SaveFailure(ctx, failed)
}

func (rw *RetryWorker) markPermanentlyFailed(ctx context.Context, failed *models.FailedHandoff, reason string) error {
	now := rw.now()
	failed.Status = models.FailedStatusPermanentlyFailed
	failed.UpdatedAt = now
	failed.ResolvedAt = &now
	failed.ErrorMessage = reason
	return rw.ledger.SaveFailure(ctx, failed)
}

// GetRetryStats returns retry statistics
func (rw *RetryWorker) GetRetryStats(ctx context.Context) (map[string]interface{}, error) {
	counts, err := rw.ledger.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"retry_stats": counts,
		"config": map[string]interface{}{
			"max_retries":    rw.maxRetries,
			"batch_size":     rw.batchSize,
			"check_interval": rw.checkInterval.String(),
			"base_delay":     rw.baseDelay.String(),
		},
	}, nil
}
