package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/yourusername/video-sharing-platform/internal/metrics"
)

// messageWriter is the part of kafka.Writer the producer uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher sends activity events to a broker
type Publisher interface {
	Publish(ctx context.Context, event ActivityEvent) error
	Close() error
}

type Producer struct {
	writer     messageWriter
	mu         sync.RWMutex
	closed     bool
	maxRetries int
	backoff    time.Duration
	logger     *logrus.Logger
}

func NewProducer(brokers []string, topic string, maxRetries int, logger *logrus.Logger) *Producer {
	return newProducer(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		MaxAttempts:  3,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}, maxRetries, time.Second, logger)
}

func newProducer(writer messageWriter, maxRetries int, backoff time.Duration, logger *logrus.Logger) *Producer {
	if logger == nil {
		logger = logrus.New()
	}
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Producer{
		writer:     writer,
		maxRetries: maxRetries,
		backoff:    backoff,
		logger:     logger,
	}
}

// Publish writes the event keyed by its target so events of one target stay ordered
func (p *Producer) Publish(ctx context.Context, event ActivityEvent) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return fmt.Errorf("producer is closed")
	}
	p.mu.RUnlock()

	data, err := json.Marshal(event)
	if err != nil {
		p.logger.WithError(err).Error("Failed to marshal Kafka event")
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < p.maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err = p.writer.WriteMessages(ctx, kafka.Message{
			Key:   []byte(event.TargetID),
			Value: data,
			Time:  event.Timestamp,
		})
		if err == nil {
			p.logger.WithFields(logrus.Fields{
				"event_type": event.Type,
				"target_id":  event.TargetID,
				"attempt":    attempt + 1,
			}).Debug("Successfully published Kafka event")
			return nil
		}

		lastErr = err
		p.logger.WithFields(logrus.Fields{
			"attempt":     attempt + 1,
			"max_retries": p.maxRetries,
			"error":       err.Error(),
			"event_type":  event.Type,
		}).Warn("Failed to publish Kafka message, retrying...")

		if attempt < p.maxRetries-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt+1) * p.backoff):
			}
		}
	}

	return fmt.Errorf("failed to publish event after %d retries: %w", p.maxRetries, lastErr)
}

func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.closed = true
	p.logger.Info("Closing Kafka producer")

	if err := p.writer.Close(); err != nil {
		p.logger.WithError(err).Error("Error closing Kafka writer")
		return err
	}
	return nil
}

// IsClosed returns whether the producer is closed
func (p *Producer) IsClosed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.closed
}

// NoopPublisher drops every event; used when Kafka is disabled
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, ActivityEvent) error { return nil }

func (NoopPublisher) Close() error { return nil }

// Emitter publishes events behind a circuit breaker. Publish failures never
// fail the request that caused the event.
type Emitter struct {
	publisher Publisher
	breaker   *gobreaker.CircuitBreaker
	timeout   time.Duration
	logger    *logrus.Logger
}

func NewEmitter(publisher Publisher, breaker *gobreaker.CircuitBreaker, timeout time.Duration, logger *logrus.Logger) *Emitter {
	return &Emitter{
		publisher: publisher,
		breaker:   breaker,
		timeout:   timeout,
		logger:    logger,
	}
}

func (e *Emitter) Emit(ctx context.Context, event ActivityEvent) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	_, err := e.breaker.Execute(func() (interface{}, error) {
		return nil, e.publisher.Publish(ctx, event)
	})
	metrics.RecordEventPublished(string(event.Type), err)
	if err != nil {
		e.logger.WithError(err).WithFields(logrus.Fields{
			"event_type": event.Type,
			"target_id":  event.TargetID,
		}).Warn("Failed to publish activity event (circuit breaker may be open)")
	}
}
