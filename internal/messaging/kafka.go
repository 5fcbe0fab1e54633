package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/cinerec/cinerec/internal/config"
	"github.com/cinerec/cinerec/pkg/models"
)

const ConsumerGroup = "action-processors"

// ActionEvent is the wire envelope for a recorded user action.
type ActionEvent struct {
	Action    models.Action `json:"action"`
	Timestamp time.Time     `json:"timestamp"`
}

// ActionBus publishes recorded user actions to the action topic so that
// downstream consumers (model trainers, analytics) see the same stream the
// engine stores.
type ActionBus struct {
	writer *kafka.Writer
	reader *kafka.Reader
	logger *logrus.Logger
}

func NewActionBus(cfg *config.Config, logger *logrus.Logger) (*ActionBus, error) {
	topic := cfg.Kafka.Topics.UserActions

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Kafka.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // Key by user id so one user's stream stays ordered
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Kafka.Brokers,
		Topic:          topic,
		GroupID:        ConsumerGroup,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
		StartOffset:    kafka.LastOffset,
	})

	return &ActionBus{
		writer: writer,
		reader: reader,
		logger: logger,
	}, nil
}

func (b *ActionBus) PublishAction(ctx context.Context, action *models.Action) error {
	event := ActionEvent{
		Action:    *action,
		Timestamp: time.Now(),
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal action event: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(action.UserID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "action_id", Value: []byte(action.ID.String())},
			{Key: "action_type", Value: []byte(action.Type)},
			{Key: "timestamp", Value: []byte(event.Timestamp.Format(time.RFC3339))},
		},
	}

	if err := b.writer.WriteMessages(ctx, message); err != nil {
		b.logger.WithError(err).WithFields(logrus.Fields{
			"action_id": action.ID,
			"user_id":   action.UserID,
		}).Error("Failed to publish action to Kafka")
		return fmt.Errorf("failed to write action to Kafka: %w", err)
	}

	b.logger.WithFields(logrus.Fields{
		"action_id":   action.ID,
		"user_id":     action.UserID,
		"action_type": action.Type,
	}).Debug("Action published to Kafka")

	return nil
}

// ConsumeActions reads the action stream until the context is canceled.
func (b *ActionBus) ConsumeActions(ctx context.Context, handler func(ActionEvent) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			message, err := b.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				b.logger.WithError(err).Error("Failed to read action from Kafka")
				continue
			}

			var event ActionEvent
			if err := json.Unmarshal(message.Value, &event); err != nil {
				b.logger.WithError(err).Error("Failed to unmarshal action event")
				continue
			}

			if err := handler(event); err != nil {
				b.logger.WithError(err).WithField("action_id", event.Action.ID).
					Warn("Action handler failed")
			}
		}
	}
}

func (b *ActionBus) Close() error {
	var errs []error

	if err := b.writer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close writer: %w", err))
	}
	if err := b.reader.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close reader: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing action bus: %v", errs)
	}
	return nil
}

// Stats exposes reader counters for the monitoring endpoint.
func (b *ActionBus) Stats() map[string]interface{} {
	stats := b.reader.Stats()
	return map[string]interface{}{
		"consumer_lag":    stats.Lag,
		"consumer_offset": stats.Offset,
		"messages_read":   stats.Messages,
		"bytes_read":      stats.Bytes,
		"errors":          stats.Errors,
	}
}
