// Package payments adapts the payment collaborator's event stream into booking
// lifecycle calls. The engine never initiates charges; it only reacts to
// payment.succeeded and payment.failed signals.
package payments

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/kerbside/service-booking/internal/application"
	"github.com/kerbside/service-booking/internal/events"
	"github.com/kerbside/service-booking/internal/kafka"
)

// EventConsumer listens to payment events and advances booking payment status.
type EventConsumer struct {
	consumer *kafka.Consumer
	service  *application.BookingService
	logger   *zap.Logger
}

// NewEventConsumer creates a new payment EventConsumer.
func NewEventConsumer(
	brokers []string,
	groupID string,
	service *application.BookingService,
	logger *zap.Logger,
) *EventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, events.TopicPaymentEvents, logger)
	return &EventConsumer{
		consumer: consumer,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming payment events. This blocks until the context is cancelled.
func (c *EventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *EventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *EventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var cloudEvent kafka.CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		c.logger.Error("failed to parse cloud event from payment topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case events.PaymentSucceeded:
		return c.handlePaymentResult(ctx, cloudEvent, true)
	case events.PaymentFailed:
		return c.handlePaymentResult(ctx, cloudEvent, false)
	default:
		c.logger.Debug("ignoring unhandled payment event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *EventConsumer) handlePaymentResult(ctx context.Context, cloudEvent kafka.CloudEvent, succeeded bool) error {
	var evt events.PaymentResultEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse payment result event data", zap.Error(err))
		return nil // Don't retry malformed data
	}

	c.logger.Info("processing payment result",
		zap.String("booking_id", evt.BookingID.String()),
		zap.String("payment_id", evt.PaymentID.String()),
		zap.Bool("succeeded", succeeded),
	)

	var err error
	if succeeded {
		_, err = c.service.MarkPaid(ctx, evt.BookingID)
	} else {
		_, err = c.service.MarkPaymentFailed(ctx, evt.BookingID)
	}
	if err != nil {
		c.logger.Error("failed to apply payment result",
			zap.String("booking_id", evt.BookingID.String()),
			zap.Error(err),
		)
		return err
	}

	return nil
}
