// Package events publishes enquiry lifecycle events to Kafka. Publishing is
// best-effort: the API never fails a user request because an event could not
// be delivered.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stem-for-society/enquiry-api/pkg/logger"
	"github.com/stem-for-society/enquiry-api/pkg/retry"
	"go.uber.org/zap"
)

// Event names carried on the enquiry topic.
const (
	EventEnquirySubmitted = "enquiry.submitted"
	EventPaymentVerified  = "payment.verified"
	EventPaymentFailed    = "payment.failed"
)

// Publisher writes lifecycle events to a single topic, keyed by enquiry id so
// one enquiry's events stay ordered.
type Publisher struct {
	writer  *kafka.Writer
	enabled bool
}

// NewPublisher creates a Publisher. With enabled false or no brokers it
// becomes a no-op, which keeps local development broker-free.
func NewPublisher(enabled bool, brokers []string, topic string) *Publisher {
	if !enabled || len(brokers) == 0 {
		logger.Info("Event publishing disabled")
		return &Publisher{}
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: 10 * time.Second,
	}

	logger.Info("Event publisher initialized",
		zap.Strings("brokers", brokers),
		zap.String("topic", topic))

	return &Publisher{writer: writer, enabled: true}
}

// Publish sends one event keyed by enquiry id. Failures are logged and
// swallowed after retries; callers treat delivery as best-effort.
func (p *Publisher) Publish(ctx context.Context, event, enquiryID string, payload map[string]interface{}) {
	if !p.enabled {
		return
	}

	body := map[string]interface{}{
		"event":      event,
		"enquiry_id": enquiryID,
		"ts":         time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range payload {
		body[k] = v
	}

	value, err := json.Marshal(body)
	if err != nil {
		logger.Error("Failed to marshal event", zap.String("event", event), zap.Error(err))
		return
	}

	msg := kafka.Message{
		Key:   []byte(enquiryID),
		Value: value,
	}

	err = retry.Do(ctx, retry.EventsConfig(), "kafka_publish", func() error {
		return p.writer.WriteMessages(ctx, msg)
	})
	if err != nil {
		logger.Error("Failed to publish event",
			zap.String("event", event),
			zap.String("enquiry_id", enquiryID),
			zap.Error(err))
		return
	}

	logger.Debug("Event published",
		zap.String("event", event),
		zap.String("enquiry_id", enquiryID))
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
