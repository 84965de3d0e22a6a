package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/gympulse/gym-notify/backend/internal/repositories"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper reclaims old terminal queue records on a fixed schedule. Each run
// deletes at most batchSize records so a large backlog cannot blow the cost
// of a single delete; unprocessed records are never touched regardless of
// age, preserving the audit trail for anything still unresolved.
type Sweeper struct {
	queue     repositories.QueueRepository
	retention time.Duration
	batchSize int64
	logger    *zap.Logger
	onSwept   func(count int64)
}

// New creates a Sweeper. onSwept is an optional metric callback (nil = no-op).
func New(queue repositories.QueueRepository, retention time.Duration, batchSize int64, logger *zap.Logger, onSwept func(int64)) *Sweeper {
	if onSwept == nil {
		onSwept = func(int64) {}
	}
	return &Sweeper{
		queue:     queue,
		retention: retention,
		batchSize: batchSize,
		logger:    logger,
		onSwept:   onSwept,
	}
}

// RunOnce performs a single capped sweep and returns the number of records
// deleted.
func (s *Sweeper) RunOnce(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.retention)

	deleted, err := s.queue.DeleteProcessedBefore(ctx, cutoff, s.batchSize)
	if err != nil {
		s.logger.Error("retention sweep failed", zap.Error(err))
		return 0, err
	}
	if deleted == 0 {
		s.logger.Info("no old notification records to clean up")
		return 0, nil
	}

	s.logger.Info("cleaned up old notification records",
		zap.Int64("deleted", deleted),
		zap.Time("cutoff", cutoff))
	s.onSwept(deleted)
	return deleted, nil
}

// Start registers the sweep on the given cron schedule and starts the
// scheduler. The caller stops the returned cron instance on shutdown.
func (s *Sweeper) Start(schedule string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		// Best-effort: errors are already logged inside RunOnce.
		_, _ = s.RunOnce(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	c.Start()
	s.logger.Info("retention sweeper scheduled", zap.String("schedule", schedule))
	return c, nil
}
