package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Mahbub-Sajon/srs-publications-server/pkg/config"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/db/models"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/enums"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/logger"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/outbox"
)

const (
	defaultBatchSize   = 50
	defaultPoll        = 500 * time.Millisecond
	defaultMaxAttempts = 10
	publishTimeout     = 15 * time.Second
	maxBackoff         = 10 * time.Second
	jitterWindow       = 250 * time.Millisecond
)

type dbClient interface {
	Ping(context.Context) error
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

type pubSubClient interface {
	Ping(context.Context) error
	DomainTopic() string
	Publisher(name string) *gcppubsub.Publisher
}

type outboxRepository interface {
	FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error
}

type publisherFactory func(topic string) publisher

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(context.Context) (string, error)
}

type ServiceParams struct {
	Config     *config.Config
	Logger     *logger.Logger
	DB         dbClient
	PubSub     pubSubClient
	Repository outboxRepository
	// PublisherFactory overrides the Pub/Sub publisher, mainly for tests.
	PublisherFactory publisherFactory
}

// Service drains outbox_events into the domain Pub/Sub topic. Each batch is
// claimed, published and marked inside one transaction.
type Service struct {
	logg        *logger.Logger
	db          dbClient
	repo        outboxRepository
	pubsub      pubSubClient
	publisher   publisher
	topic       string
	batchSize   int
	maxAttempts int
	poll        time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	switch {
	case params.Config == nil:
		return nil, errors.New("config is required")
	case params.Logger == nil:
		return nil, errors.New("logger is required")
	case params.DB == nil:
		return nil, errors.New("database client is required")
	case params.PubSub == nil:
		return nil, errors.New("pubsub client is required")
	case params.Repository == nil:
		return nil, errors.New("outbox repository is required")
	}
	topic := params.PubSub.DomainTopic()
	if topic == "" {
		return nil, errors.New("pubsub domain topic is required")
	}

	factory := params.PublisherFactory
	if factory == nil {
		factory = func(topic string) publisher { return newGCPPublisher(params.PubSub.Publisher(topic)) }
	}
	pub := factory(topic)
	if pub == nil {
		return nil, fmt.Errorf("publisher not configured for topic %s", topic)
	}

	cfg := params.Config.Outbox
	s := &Service{
		logg:        params.Logger,
		db:          params.DB,
		repo:        params.Repository,
		pubsub:      params.PubSub,
		publisher:   pub,
		topic:       topic,
		batchSize:   cfg.BatchSize,
		maxAttempts: cfg.MaxAttempts,
		poll:        time.Duration(cfg.PollIntervalMS) * time.Millisecond,
	}
	if s.batchSize <= 0 {
		s.batchSize = defaultBatchSize
	}
	if s.maxAttempts <= 0 {
		s.maxAttempts = defaultMaxAttempts
	}
	if s.poll <= 0 {
		s.poll = defaultPoll
	}
	return s, nil
}

// Run polls until ctx is cancelled. A non-empty batch is followed
// immediately by the next one; failing batches back off exponentially.
// Fields describes what this publisher drains, for the startup log.
func (s *Service) Fields() map[string]any {
	all := enums.OutboxEventTypes()
	types := make([]string, 0, len(all))
	for _, t := range all {
		types = append(types, string(t))
	}
	return map[string]any{
		"topic":       s.topic,
		"eventTypes":  types,
		"batchSize":   s.batchSize,
		"maxAttempts": s.maxAttempts,
		"pollMs":      s.poll.Milliseconds(),
	}
}

func (s *Service) Run(ctx context.Context) error {
	deps := []struct {
		name string
		ping func(context.Context) error
	}{{"database", s.db.Ping}, {"pubsub", s.pubsub.Ping}}
	for _, dep := range deps {
		if err := dep.ping(ctx); err != nil {
			s.logg.Error(ctx, dep.name+" ping failed", err)
			return fmt.Errorf("%s ping failed: %w", dep.name, err)
		}
	}

	backoff := s.poll
	for ctx.Err() == nil {
		processed, err := s.processBatch(ctx)
		var wait time.Duration
		switch {
		case err != nil:
			s.logg.Error(ctx, "outbox publisher batch error", err)
			backoff = nextBackoff(backoff, s.poll, maxBackoff)
			wait = withJitter(backoff)
		case processed:
			backoff = s.poll
			continue
		default:
			backoff = s.poll
			wait = withJitter(s.poll)
		}
		select {
		case <-ctx.Done():
		case <-time.After(wait):
		}
	}
	s.logg.Info(ctx, "outbox publisher context canceled")
	return ctx.Err()
}

// pending is one claimed row on its way to Pub/Sub.
type pending struct {
	event    models.OutboxEvent
	envelope outbox.PayloadEnvelope
	result   publishResult
	err      error
}

// processBatch sends every claimed row before waiting on any result so the
// client can batch them, then records each outcome.
func (s *Service) processBatch(ctx context.Context) (bool, error) {
	processed := false
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		events, err := s.repo.FetchUnpublishedForPublish(tx, s.batchSize, s.maxAttempts)
		if err != nil || len(events) == 0 {
			return err
		}
		processed = true

		publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
		defer cancel()

		batch := make([]*pending, 0, len(events))
		for _, event := range events {
			p := &pending{event: event}
			p.envelope, p.err = outbox.DecodeEnvelope(event.Payload)
			if p.err == nil {
				p.result = s.publisher.Publish(publishCtx, s.message(p))
			}
			batch = append(batch, p)
		}
		for _, p := range batch {
			if p.err == nil {
				p.err = s.await(publishCtx, p.result)
			}
			if err := s.record(ctx, tx, p); err != nil {
				return err
			}
		}
		return nil
	})
	return processed, err
}

func (s *Service) message(p *pending) *gcppubsub.Message {
	return &gcppubsub.Message{
		Data: p.event.Payload,
		Attributes: map[string]string{
			"event_id":       p.envelope.EventID,
			"event_type":     string(p.event.EventType),
			"aggregate_type": string(p.event.AggregateType),
			"aggregate_id":   p.event.AggregateID.String(),
			"created_at":     p.event.CreatedAt.Format(time.RFC3339Nano),
		},
	}
}

func (s *Service) await(ctx context.Context, result publishResult) error {
	if result == nil {
		return fmt.Errorf("publisher returned nil for topic %s", s.topic)
	}
	_, err := result.Get(ctx)
	return err
}

func (s *Service) record(ctx context.Context, tx *gorm.DB, p *pending) error {
	fields := map[string]any{
		"outbox_id":      p.event.ID.String(),
		"event_id":       p.envelope.EventID,
		"event_type":     p.event.EventType,
		"aggregate_type": p.event.AggregateType,
		"aggregate_id":   p.event.AggregateID.String(),
		"topic":          s.topic,
	}
	if p.err == nil {
		if err := s.repo.MarkPublishedTx(tx, p.event.ID); err != nil {
			return fmt.Errorf("mark published %s: %w", p.event.ID, err)
		}
		s.logg.Info(s.logg.WithFields(ctx, fields), "outbox event published")
		return nil
	}

	attempt := p.event.AttemptCount + 1
	fields["attempt_count"] = attempt
	fields["error"] = p.err.Error()
	msg := "outbox publish failed"
	if attempt >= s.maxAttempts {
		msg = "outbox event will not be retried"
	}
	s.logg.Warn(s.logg.WithFields(ctx, fields), msg)
	if err := s.repo.MarkFailedTx(tx, p.event.ID, p.err); err != nil {
		return fmt.Errorf("mark failure %s: %w", p.event.ID, err)
	}
	return nil
}

func nextBackoff(current, base, ceiling time.Duration) time.Duration {
	if current <= 0 {
		current = base
	}
	return min(current*2, ceiling)
}

func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d + rand.N(jitterWindow)
}

func newGCPPublisher(p *gcppubsub.Publisher) publisher {
	if p == nil {
		return nil
	}
	return gcpPublisher{p}
}

type gcpPublisher struct {
	p *gcppubsub.Publisher
}

func (g gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	return g.p.Publish(ctx, msg)
}
