package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/kickoff/fantasy/internal/domain"
	"github.com/kickoff/fantasy/internal/guard"
	"github.com/kickoff/fantasy/internal/repository"
)

// OutboxRelay polls event_outbox and hands unpublished events to a Publisher.
type OutboxRelay struct {
	db        repository.DBTX
	repo      repository.OutboxRepository
	publisher Publisher
	metrics   *Metrics
	breaker   *guard.CircuitBreaker
	clock     clockwork.Clock
	logger    *slog.Logger

	topicPrefix string
	interval    time.Duration
	batchSize   int
}

// RelayOption customizes an OutboxRelay.
type RelayOption func(*OutboxRelay)

// WithClock replaces the real clock, mainly for tests.
func WithClock(c clockwork.Clock) RelayOption {
	return func(r *OutboxRelay) { r.clock = c }
}

// WithMetrics reports publish results to m.
func WithMetrics(m *Metrics) RelayOption {
	return func(r *OutboxRelay) { r.metrics = m }
}

// WithBreaker skips polls while the broker circuit is open.
func WithBreaker(cb *guard.CircuitBreaker) RelayOption {
	return func(r *OutboxRelay) { r.breaker = cb }
}

// NewOutboxRelay creates a relay using the poll settings from cfg.
func NewOutboxRelay(db repository.DBTX, repo repository.OutboxRepository, publisher Publisher, cfg *Config, logger *slog.Logger, opts ...RelayOption) *OutboxRelay {
	r := &OutboxRelay{
		db:          db,
		repo:        repo,
		publisher:   publisher,
		clock:       clockwork.NewRealClock(),
		logger:      logger,
		topicPrefix: cfg.KafkaTopicPrefix,
		interval:    cfg.OutboxPollInterval,
		batchSize:   cfg.OutboxBatchSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

const breakerKey = "broker"

// envelope is the message body written to Kafka.
type envelope struct {
	EventID       string          `json:"event_id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// Run polls until ctx is cancelled.
func (r *OutboxRelay) Run(ctx context.Context) {
	r.logger.Info("outbox relay started", "interval", r.interval, "batch_size", r.batchSize)

	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay stopped")
			return
		case <-ticker.Chan():
			if _, err := r.PollOnce(ctx); err != nil {
				r.logger.Error("outbox poll error", "error", err)
			}
		}
	}
}

// PollOnce publishes one batch and returns how many events were marked published.
// Publishing stops at the first failure so later events are not delivered ahead of it.
func (r *OutboxRelay) PollOnce(ctx context.Context) (int, error) {
	if r.breaker != nil {
		if res := r.breaker.Check(ctx, breakerKey); !res.Allowed {
			r.logger.Debug("outbox poll skipped", "reason", res.Reason)
			return 0, nil
		}
	}

	rows, err := r.repo.FetchUnpublished(ctx, r.db, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch outbox: %w", err)
	}
	if len(rows) == 0 {
		r.recordBatch(0, 0)
		r.closeBreaker()
		return 0, nil
	}

	published := make([]int64, 0, len(rows))
	var publishErr error
	for _, row := range rows {
		msg, err := json.Marshal(envelope{
			EventID:       row.EventID.String(),
			AggregateType: string(row.AggregateType),
			AggregateID:   row.AggregateID,
			EventType:     string(row.EventType),
			Payload:       row.Payload,
			OccurredAt:    row.OccurredAt,
		})
		if err != nil {
			publishErr = fmt.Errorf("encode event %s: %w", row.EventID, err)
			break
		}

		topic := row.Topic(r.topicPrefix)
		if err := r.publisher.Publish(ctx, topic, []byte(row.AggregateID), msg); err != nil {
			r.recordPublish(row.EventType, false)
			publishErr = fmt.Errorf("publish event %s to %s: %w", row.EventID, topic, err)
			break
		}
		r.recordPublish(row.EventType, true)
		published = append(published, row.SeqID)
	}

	if publishErr != nil {
		if r.breaker != nil {
			r.breaker.RecordFailure(breakerKey)
		}
	} else {
		r.closeBreaker()
	}

	if len(published) > 0 {
		if err := r.repo.MarkPublished(ctx, r.db, published); err != nil {
			return 0, fmt.Errorf("mark published: %w", err)
		}
	}
	r.recordBatch(len(rows), len(rows)-len(published))
	r.logger.Debug("outbox poll complete", "fetched", len(rows), "published", len(published))

	return len(published), publishErr
}

func (r *OutboxRelay) closeBreaker() {
	if r.breaker != nil {
		r.breaker.RecordSuccess(breakerKey)
	}
}

func (r *OutboxRelay) recordPublish(evt domain.EventType, ok bool) {
	if r.metrics != nil {
		r.metrics.RecordPublish(string(evt), ok)
	}
}

func (r *OutboxRelay) recordBatch(fetched, pending int) {
	if r.metrics != nil {
		r.metrics.RecordBatch(fetched, pending)
	}
}
