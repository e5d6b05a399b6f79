package payments

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kerbside/service-booking/internal/application"
	"github.com/kerbside/service-booking/internal/clock"
	bookingDomain "github.com/kerbside/service-booking/internal/domain/booking"
	carDomain "github.com/kerbside/service-booking/internal/domain/car"
	"github.com/kerbside/service-booking/internal/events"
	"github.com/kerbside/service-booking/internal/kafka"
	"github.com/kerbside/service-booking/internal/repository"
)

type consumerFixture struct {
	consumer *EventConsumer
	service  *application.BookingService
	booking  uuid.UUID
	renterID uuid.UUID
}

// newConsumerFixture wires a consumer over in-memory storage with one booking
// sitting in the payment window.
func newConsumerFixture(t *testing.T) *consumerFixture {
	t.Helper()
	ctx := context.Background()

	cars := repository.NewMemoryCarRepository()
	bookings := repository.NewMemoryBookingRepository()
	clk := clock.NewFixed(time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC))

	hostID := uuid.New()
	renterID := uuid.New()
	c := carDomain.Car{
		ID:             uuid.New(),
		HostID:         hostID,
		Make:           "Skoda",
		Model:          "Octavia",
		Year:           2022,
		DailyRate:      70,
		ProtectionPlan: carDomain.ProtectionBasic,
		Currency:       "EUR",
	}
	cars.Put(c)

	service := application.NewBookingService(
		bookings, cars, bookingDomain.NewStandardPricingCalculator(), nil, clk, zap.NewNop())

	start := clk.Instant.AddDate(0, 0, 7)
	created, err := service.CreateBooking(ctx, renterID, application.CreateBookingRequest{
		CarID:     c.ID,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 2),
	})
	require.NoError(t, err)
	_, err = service.ApproveBooking(ctx, created.ID, hostID, "")
	require.NoError(t, err)

	return &consumerFixture{
		consumer: &EventConsumer{service: service, logger: zap.NewNop()},
		service:  service,
		booking:  created.ID,
		renterID: renterID,
	}
}

func (f *consumerFixture) paymentStatus(t *testing.T) string {
	t.Helper()
	dto, err := f.service.GetBooking(context.Background(), f.booking, f.renterID)
	require.NoError(t, err)
	return dto.PaymentStatus
}

func paymentMessage(t *testing.T, eventType string, bookingID uuid.UUID) kafkago.Message {
	t.Helper()
	ce, err := kafka.NewCloudEvent("service-payment", eventType, events.PaymentResultEvent{
		BookingID:  bookingID,
		PaymentID:  uuid.New(),
		OccurredAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	value, err := json.Marshal(ce)
	require.NoError(t, err)
	return kafkago.Message{Topic: events.TopicPaymentEvents, Value: value}
}

func TestEventConsumer_HandleMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("payment succeeded marks the booking paid", func(t *testing.T) {
		f := newConsumerFixture(t)

		err := f.consumer.handleMessage(ctx, paymentMessage(t, events.PaymentSucceeded, f.booking))
		require.NoError(t, err)
		assert.Equal(t, "paid", f.paymentStatus(t))
	})

	t.Run("payment failed records the failure and allows retry", func(t *testing.T) {
		f := newConsumerFixture(t)

		err := f.consumer.handleMessage(ctx, paymentMessage(t, events.PaymentFailed, f.booking))
		require.NoError(t, err)
		assert.Equal(t, "failed", f.paymentStatus(t))

		err = f.consumer.handleMessage(ctx, paymentMessage(t, events.PaymentSucceeded, f.booking))
		require.NoError(t, err)
		assert.Equal(t, "paid", f.paymentStatus(t))
	})

	t.Run("repeated success is idempotent", func(t *testing.T) {
		f := newConsumerFixture(t)

		msg := paymentMessage(t, events.PaymentSucceeded, f.booking)
		require.NoError(t, f.consumer.handleMessage(ctx, msg))
		require.NoError(t, f.consumer.handleMessage(ctx, msg))
		assert.Equal(t, "paid", f.paymentStatus(t))
	})

	t.Run("malformed message is skipped without error", func(t *testing.T) {
		f := newConsumerFixture(t)

		err := f.consumer.handleMessage(ctx, kafkago.Message{Value: []byte("not json")})
		assert.NoError(t, err, "malformed messages must not wedge the consumer")
	})

	t.Run("unknown event type is ignored", func(t *testing.T) {
		f := newConsumerFixture(t)

		ce, err := kafka.NewCloudEvent("service-payment", "payment.refunded", map[string]string{})
		require.NoError(t, err)
		value, err := json.Marshal(ce)
		require.NoError(t, err)

		err = f.consumer.handleMessage(ctx, kafkago.Message{Value: value})
		assert.NoError(t, err)
	})

	t.Run("unknown booking surfaces the error so the consumer retries", func(t *testing.T) {
		f := newConsumerFixture(t)

		err := f.consumer.handleMessage(ctx, paymentMessage(t, events.PaymentSucceeded, uuid.New()))
		assert.Error(t, err)
	})
}
