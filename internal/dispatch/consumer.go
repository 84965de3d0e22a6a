package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/gympulse/gym-notify/backend/internal/models"
	"github.com/gympulse/gym-notify/backend/internal/repositories"
	"go.uber.org/zap"
)

// Terminal result messages written back to queue records.
const (
	resultMissingTarget = "Missing targetUid"
	resultNoTokens      = "No tokens found"
	resultSent          = "Successfully sent"
)

// Hooks carries optional metric callbacks injected by main. Nil hooks are
// replaced with no-ops so the consumer stays metrics-agnostic.
type Hooks struct {
	OnProcessed func(success bool, latency time.Duration)
	OnTokens    func(count int)
}

// Options tunes the consumer's poll loop.
type Options struct {
	PollInterval time.Duration
	BatchSize    int64
	Workers      int
	Hooks        Hooks
}

// Consumer drains the notification queue: it resolves each record's
// recipient to device tokens, builds the envelope, delivers it through the
// gateway and writes the terminal outcome back. It owns the full lifecycle
// of a record from detection to terminal marking.
type Consumer struct {
	queue    repositories.QueueRepository
	feed     repositories.FeedRepository
	resolver *Resolver
	builder  *Builder
	gateway  Gateway
	logger   *zap.Logger
	opts     Options
}

// NewConsumer creates a Consumer. feed may be nil to disable feed mirroring.
func NewConsumer(
	queue repositories.QueueRepository,
	feed repositories.FeedRepository,
	resolver *Resolver,
	builder *Builder,
	gateway Gateway,
	logger *zap.Logger,
	opts Options,
) *Consumer {
	if opts.Hooks.OnProcessed == nil {
		opts.Hooks.OnProcessed = func(bool, time.Duration) {}
	}
	if opts.Hooks.OnTokens == nil {
		opts.Hooks.OnTokens = func(int) {}
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Consumer{
		queue:    queue,
		feed:     feed,
		resolver: resolver,
		builder:  builder,
		gateway:  gateway,
		logger:   logger,
		opts:     opts,
	}
}

// Run polls for unprocessed records until ctx is cancelled. A poll batch
// completes before the next tick fires, so no record is ever handled by two
// goroutines at once.
func (c *Consumer) Run(ctx context.Context) {
	ticker := time.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()

	c.logger.Info("dispatch consumer started",
		zap.Duration("interval", c.opts.PollInterval),
		zap.Int("workers", c.opts.Workers))

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("dispatch consumer stopping")
			return
		case <-ticker.C:
			c.poll(ctx)
		}
	}
}

func (c *Consumer) poll(ctx context.Context) {
	records, err := c.queue.FetchUnprocessed(ctx, c.opts.BatchSize)
	if err != nil {
		c.logger.Error("queue poll error", zap.Error(err))
		return
	}
	if len(records) == 0 {
		return
	}

	sem := make(chan struct{}, c.opts.Workers)
	var wg sync.WaitGroup
	for i := range records {
		record := records[i]
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			c.Process(ctx, &record)
		}()
	}
	wg.Wait()
}

// Process runs one record through the dispatch state machine:
// resolving → building → sending → terminal. Every failure kind is converted
// into a terminal-failure write with a human-readable reason; nothing
// propagates to the caller. Calling Process again for an already-terminal
// record is a no-op, so redelivered triggers cannot cause a double send.
func (c *Consumer) Process(ctx context.Context, record *models.NotificationRecord) {
	start := time.Now()
	log := c.logger.With(
		zap.String("notification_id", record.ID.Hex()),
		zap.String("target_uid", record.TargetUID))

	if record.Processed {
		log.Debug("record already terminal, skipping")
		return
	}

	if record.TargetUID == "" {
		log.Warn("record missing target identity")
		c.finish(ctx, log, record, false, resultMissingTarget, start)
		return
	}

	tokens := c.resolver.Resolve(ctx, record.TargetUID)
	c.opts.Hooks.OnTokens(len(tokens))
	if len(tokens) == 0 {
		log.Warn("no device tokens found for target")
		c.finish(ctx, log, record, false, resultNoTokens, start)
		return
	}

	env := c.builder.Build(record, tokens)
	outcome, err := c.gateway.Send(ctx, env)
	if err != nil {
		log.Warn("gateway delivery failed", zap.Error(err))
		c.finish(ctx, log, record, false, err.Error(), start)
		return
	}

	log.Info("notification delivered",
		zap.String("mode", string(env.Mode)),
		zap.Int("token_count", len(tokens)),
		zap.Int("success_count", outcome.SuccessCount),
		zap.Int("failure_count", outcome.FailureCount))
	c.finish(ctx, log, record, true, resultSent, start)
}

// finish writes the terminal outcome. Marking is best-effort: a failed
// write-back leaves the record non-terminal and is logged, never re-raised —
// escalating it would only cause redelivery loops.
func (c *Consumer) finish(ctx context.Context, log *zap.Logger, record *models.NotificationRecord, success bool, result string, start time.Time) {
	if err := c.queue.MarkProcessed(ctx, record.ID.Hex(), success, result); err != nil {
		log.Error("failed to mark record processed", zap.Error(err))
	}

	if success && c.feed != nil {
		notifType := record.Type
		if notifType == "" {
			notifType = models.TypeGeneral
		}
		entry := &models.AdminNotification{
			AdminUID: record.TargetUID,
			Type:     notifType,
			Title:    record.Title,
			Message:  record.Body,
		}
		if err := c.feed.CreateEntry(entry); err != nil {
			log.Warn("failed to mirror record into admin feed", zap.Error(err))
		}
	}

	c.opts.Hooks.OnProcessed(success, time.Since(start))
}
