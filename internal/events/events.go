// Package events defines the topics and payloads this service exchanges with its
// collaborators. Booking events go out for the notification collaborator; payment
// events come in from the payment collaborator.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics.
const (
	TopicBookingEvents = "booking.events"
	TopicPaymentEvents = "payment.events"
)

// Booking event types.
const (
	BookingRequested     = "booking.requested"
	BookingApproved      = "booking.approved"
	BookingDeclined      = "booking.declined"
	BookingCancelled     = "booking.cancelled"
	BookingTripStarted   = "booking.trip_started"
	BookingTripCompleted = "booking.trip_completed"
)

// Payment event types.
const (
	PaymentSucceeded = "payment.succeeded"
	PaymentFailed    = "payment.failed"
)

// BookingRequestedEvent is published when a renter creates a booking request.
type BookingRequestedEvent struct {
	BookingID   uuid.UUID `json:"booking_id"`
	CarID       uuid.UUID `json:"car_id"`
	RenterID    uuid.UUID `json:"renter_id"`
	HostID      uuid.UUID `json:"host_id"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Total       float64   `json:"total"`
	Currency    string    `json:"currency"`
	InstantBook bool      `json:"instant_book"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// BookingApprovedEvent is published when a host approves a request (or instant
// book auto-approves it). The renter is expected to pay next.
type BookingApprovedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	CarID      uuid.UUID `json:"car_id"`
	RenterID   uuid.UUID `json:"renter_id"`
	HostID     uuid.UUID `json:"host_id"`
	Total      float64   `json:"total"`
	Currency   string    `json:"currency"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingDeclinedEvent is published when a host declines a request.
type BookingDeclinedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	RenterID   uuid.UUID `json:"renter_id"`
	HostID     uuid.UUID `json:"host_id"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingCancelledEvent is published on any cancellation. MidTrip flags
// cancellations out of in_progress for manual refund reconciliation.
type BookingCancelledEvent struct {
	BookingID   uuid.UUID `json:"booking_id"`
	RenterID    uuid.UUID `json:"renter_id"`
	HostID      uuid.UUID `json:"host_id"`
	CancelledBy uuid.UUID `json:"cancelled_by"`
	Reason      string    `json:"reason"`
	MidTrip     bool      `json:"mid_trip"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// BookingTripStartedEvent is published when check-in completes.
type BookingTripStartedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	RenterID   uuid.UUID `json:"renter_id"`
	HostID     uuid.UUID `json:"host_id"`
	StartedAt  time.Time `json:"started_at"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingTripCompletedEvent is published when check-out completes.
type BookingTripCompletedEvent struct {
	BookingID   uuid.UUID `json:"booking_id"`
	RenterID    uuid.UUID `json:"renter_id"`
	HostID      uuid.UUID `json:"host_id"`
	CompletedAt time.Time `json:"completed_at"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// PaymentResultEvent is the payload of payment.succeeded and payment.failed
// events emitted by the payment collaborator.
type PaymentResultEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	PaymentID  uuid.UUID `json:"payment_id"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
