package jobs

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"tapmove.backend/internal/domain/entities"
	"tapmove.backend/internal/domain/repositories"
	"tapmove.backend/internal/usecases"
	"tapmove.backend/pkg/logger"
	"tapmove.backend/pkg/metrics"
)

const sweepBatchSize = 100

// Reconciler resolves a submitted session against the ledger by its hash.
type Reconciler interface {
	ReconcileSubmitted(ctx context.Context, session *entities.PaymentSession) (*entities.PaymentSession, error)
}

// ExpiryConfig carries the sweeper's timing knobs.
type ExpiryConfig struct {
	Interval        time.Duration // sweep cycle, default 30s
	CleanupInterval time.Duration // retention scan, default 1h
	RetentionAge    time.Duration // default 7 days
	StuckAfter      time.Duration // submitted-session reconcile threshold, default 2m
}

func (c ExpiryConfig) withDefaults() ExpiryConfig {
	if c.Interval <= 0 {
		c.Interval = 30 * time.Second
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = time.Hour
	}
	if c.RetentionAge <= 0 {
		c.RetentionAge = 7 * 24 * time.Hour
	}
	if c.StuckAfter <= 0 {
		c.StuckAfter = 2 * time.Minute
	}
	return c
}

// PaymentExpiryJob sweeps pending sessions past their deadline into expired
// and fires best-effort expiry webhooks. A slower secondary cycle counts
// retention candidates without deleting anything, and each sweep also
// reconciles sessions stuck in submitted.
type PaymentExpiryJob struct {
	repo       repositories.PaymentRepository
	notifier   usecases.Notifier
	reconciler Reconciler
	cfg        ExpiryConfig
	stop       chan struct{}
	running    atomic.Bool
	now        func() time.Time
}

func NewPaymentExpiryJob(repo repositories.PaymentRepository, notifier usecases.Notifier, reconciler Reconciler, cfg ExpiryConfig) *PaymentExpiryJob {
	return &PaymentExpiryJob{
		repo:       repo,
		notifier:   notifier,
		reconciler: reconciler,
		cfg:        cfg.withDefaults(),
		stop:       make(chan struct{}),
		now:        time.Now,
	}
}

// Start runs the sweep loop until ctx is cancelled or Stop is called. The
// first sweep runs immediately rather than waiting a full interval.
func (j *PaymentExpiryJob) Start(ctx context.Context) {
	logger.Info(ctx, "starting payment expiry sweeper",
		zap.Duration("interval", j.cfg.Interval),
		zap.Duration("cleanup_interval", j.cfg.CleanupInterval))
	j.running.Store(true)
	defer j.running.Store(false)

	j.Sweep(ctx)

	ticker := time.NewTicker(j.cfg.Interval)
	defer ticker.Stop()
	cleanup := time.NewTicker(j.cfg.CleanupInterval)
	defer cleanup.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "payment expiry sweeper stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "payment expiry sweeper stopped")
			return
		case <-ticker.C:
			j.Sweep(ctx)
		case <-cleanup.C:
			j.CountCleanupCandidates(ctx)
		}
	}
}

func (j *PaymentExpiryJob) Stop() {
	close(j.stop)
}

// Running reports whether the sweep loop is active, for the health endpoint.
func (j *PaymentExpiryJob) Running() bool {
	return j.running.Load()
}

// Interval exposes the sweep interval, for the health endpoint.
func (j *PaymentExpiryJob) Interval() time.Duration {
	return j.cfg.Interval
}

// Sweep runs one expiry cycle: find overdue pending sessions, batch-expire
// them with a status-guarded update, then notify the merchants. Running it
// twice back to back is safe: the second pass matches nothing.
func (j *PaymentExpiryJob) Sweep(ctx context.Context) int64 {
	expired, err := j.repo.GetExpiredPending(ctx, j.now(), sweepBatchSize)
	if err != nil {
		logger.Error(ctx, "failed to query expired payments", zap.Error(err))
		return 0
	}
	if len(expired) == 0 {
		j.reconcileStuck(ctx)
		return 0
	}

	ids := make([]string, 0, len(expired))
	for _, session := range expired {
		ids = append(ids, session.ID)
	}

	n, err := j.repo.ExpireSessions(ctx, ids)
	if err != nil {
		logger.Error(ctx, "failed to expire payments", zap.Error(err))
		return 0
	}
	logger.Info(ctx, "expired overdue payments", zap.Int64("count", n))
	metrics.PaymentsExpired.WithLabelValues("sweeper").Add(float64(n))

	// webhook failures never roll back the transition or block the batch
	for _, session := range expired {
		session.Status = entities.PaymentStatusExpired
		j.notifier.NotifyPaymentExpired(ctx, session)
	}

	j.reconcileStuck(ctx)
	return n
}

// reconcileStuck polls the ledger for sessions sitting in submitted longer
// than the configured threshold and settles them to confirmed or failed.
func (j *PaymentExpiryJob) reconcileStuck(ctx context.Context) {
	if j.reconciler == nil {
		return
	}

	cutoff := j.now().Add(-j.cfg.StuckAfter)
	stuck, err := j.repo.GetStuckSubmitted(ctx, cutoff, sweepBatchSize)
	if err != nil {
		logger.Error(ctx, "failed to query stuck submissions", zap.Error(err))
		return
	}

	for _, session := range stuck {
		if !session.TxHash.Valid {
			continue
		}
		if _, err := j.reconciler.ReconcileSubmitted(ctx, session); err != nil {
			logger.Warn(ctx, "failed to reconcile stuck submission",
				zap.String("payment_id", session.ID), zap.Error(err))
		}
	}
}

// CountCleanupCandidates counts terminal sessions past the retention window
// and publishes the number. Nothing is deleted; this is an observability
// signal and a hook point for future archival.
func (j *PaymentExpiryJob) CountCleanupCandidates(ctx context.Context) int64 {
	cutoff := j.now().Add(-j.cfg.RetentionAge)
	count, err := j.repo.CountOldTerminal(ctx, cutoff)
	if err != nil {
		logger.Error(ctx, "failed to count cleanup candidates", zap.Error(err))
		return 0
	}

	metrics.CleanupCandidates.Set(float64(count))
	if count > 0 {
		logger.Info(ctx, "found old terminal payments", zap.Int64("candidates", count))
	}
	return count
}
