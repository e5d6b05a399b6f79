package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/kerbside/service-booking/internal/domain"
)

// Review is a post-trip annotation left by the renter or the host. It is not a
// lifecycle state: a completed booking stays completed.
type Review struct {
	ReviewerID uuid.UUID `json:"reviewer_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Booking is the aggregate root for the booking domain. It owns no car or user
// records, only references to them, and is mutated exclusively through its
// transition methods. Bookings are never deleted: decline and cancel are terminal
// states, not removal.
type Booking struct {
	id       uuid.UUID
	carID    uuid.UUID
	renterID uuid.UUID
	hostID   uuid.UUID

	startDate time.Time
	endDate   time.Time

	status        BookingStatus
	paymentStatus PaymentStatus
	pricing       PriceBreakdown

	hostMessage   string
	declineReason string
	cancelReason  string
	cancelledBy   *uuid.UUID

	checkIn  *InspectionReport
	checkOut *InspectionReport

	renterReview *Review
	hostReview   *Review

	approvedAt  *time.Time
	declinedAt  *time.Time
	cancelledAt *time.Time
	startedAt   *time.Time
	completedAt *time.Time

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a new Booking with status=pending and paymentStatus=pending.
// The availability of the date range is not checked here; the repository
// re-validates it when the booking is persisted.
func NewBooking(
	carID, renterID, hostID uuid.UUID,
	startDate, endDate time.Time,
	message string,
	pricing PriceBreakdown,
	now time.Time,
) (*Booking, error) {
	if carID == uuid.Nil {
		return nil, domain.NewValidationError("car ID is required")
	}
	if renterID == uuid.Nil {
		return nil, domain.NewValidationError("renter ID is required")
	}
	if hostID == uuid.Nil {
		return nil, domain.NewValidationError("host ID is required")
	}
	if renterID == hostID {
		return nil, domain.NewValidationError("a user cannot book their own car")
	}
	if !startDate.Before(endDate) {
		return nil, domain.NewValidationError("start date must be before end date")
	}

	return &Booking{
		id:            uuid.New(),
		carID:         carID,
		renterID:      renterID,
		hostID:        hostID,
		startDate:     startDate.UTC(),
		endDate:       endDate.UTC(),
		status:        StatusPending,
		paymentStatus: PaymentPending,
		pricing:       pricing,
		hostMessage:   message,
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id, carID, renterID, hostID uuid.UUID,
	startDate, endDate time.Time,
	status BookingStatus,
	paymentStatus PaymentStatus,
	pricing PriceBreakdown,
	hostMessage, declineReason, cancelReason string,
	cancelledBy *uuid.UUID,
	checkIn, checkOut *InspectionReport,
	renterReview, hostReview *Review,
	approvedAt, declinedAt, cancelledAt, startedAt, completedAt *time.Time,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:            id,
		carID:         carID,
		renterID:      renterID,
		hostID:        hostID,
		startDate:     startDate,
		endDate:       endDate,
		status:        status,
		paymentStatus: paymentStatus,
		pricing:       pricing,
		hostMessage:   hostMessage,
		declineReason: declineReason,
		cancelReason:  cancelReason,
		cancelledBy:   cancelledBy,
		checkIn:       checkIn,
		checkOut:      checkOut,
		renterReview:  renterReview,
		hostReview:    hostReview,
		approvedAt:    approvedAt,
		declinedAt:    declinedAt,
		cancelledAt:   cancelledAt,
		startedAt:     startedAt,
		completedAt:   completedAt,
		version:       version,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// CarID returns the booked car's identifier.
func (b *Booking) CarID() uuid.UUID { return b.carID }

// RenterID returns the renter's user ID.
func (b *Booking) RenterID() uuid.UUID { return b.renterID }

// HostID returns the host's user ID.
func (b *Booking) HostID() uuid.UUID { return b.hostID }

// StartDate returns the inclusive start of the rental range.
func (b *Booking) StartDate() time.Time { return b.startDate }

// EndDate returns the exclusive end of the rental range.
func (b *Booking) EndDate() time.Time { return b.endDate }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// PaymentStatus returns the payment collaborator's progress for this booking.
func (b *Booking) PaymentStatus() PaymentStatus { return b.paymentStatus }

// Pricing returns the immutable price snapshot captured at creation.
func (b *Booking) Pricing() PriceBreakdown { return b.pricing }

// HostMessage returns the renter's message to the host, or the host's approval note.
func (b *Booking) HostMessage() string { return b.hostMessage }

// DeclineReason returns the host's reason for declining.
func (b *Booking) DeclineReason() string { return b.declineReason }

// CancelReason returns the recorded cancellation reason.
func (b *Booking) CancelReason() string { return b.cancelReason }

// CancelledBy returns the user who cancelled, or nil.
func (b *Booking) CancelledBy() *uuid.UUID { return b.cancelledBy }

// CheckIn returns the check-in inspection report, or nil.
func (b *Booking) CheckIn() *InspectionReport { return b.checkIn }

// CheckOut returns the check-out inspection report, or nil.
func (b *Booking) CheckOut() *InspectionReport { return b.checkOut }

// CheckInCompleted reports whether the check-in inspection has been captured.
func (b *Booking) CheckInCompleted() bool { return b.checkIn != nil }

// CheckOutCompleted reports whether the check-out inspection has been captured.
func (b *Booking) CheckOutCompleted() bool { return b.checkOut != nil }

// RenterReview returns the renter's post-trip review, or nil.
func (b *Booking) RenterReview() *Review { return b.renterReview }

// HostReview returns the host's post-trip review, or nil.
func (b *Booking) HostReview() *Review { return b.hostReview }

// ApprovedAt returns when the booking was approved, or nil.
func (b *Booking) ApprovedAt() *time.Time { return b.approvedAt }

// DeclinedAt returns when the booking was declined, or nil.
func (b *Booking) DeclinedAt() *time.Time { return b.declinedAt }

// CancelledAt returns when the booking was cancelled, or nil.
func (b *Booking) CancelledAt() *time.Time { return b.cancelledAt }

// StartedAt returns when the trip started, or nil.
func (b *Booking) StartedAt() *time.Time { return b.startedAt }

// CompletedAt returns when the trip completed, or nil.
func (b *Booking) CompletedAt() *time.Time { return b.completedAt }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// Approve transitions the booking from pending to approved and opens the payment
// window (paymentStatus=pending_payment).
func (b *Booking) Approve(hostMessage string, now time.Time) error {
	if !b.status.CanTransitionTo(StatusApproved) {
		return domain.NewInvalidStateError(string(b.status), string(StatusApproved))
	}
	if hostMessage != "" {
		b.hostMessage = hostMessage
	}
	b.status = StatusApproved
	b.paymentStatus = PaymentPendingPayment
	b.approvedAt = &now
	b.updatedAt = now
	return nil
}

// Decline transitions the booking from pending to declined.
func (b *Booking) Decline(reason string, now time.Time) error {
	if !b.status.CanTransitionTo(StatusDeclined) {
		return domain.NewInvalidStateError(string(b.status), string(StatusDeclined))
	}
	b.status = StatusDeclined
	b.declineReason = reason
	b.declinedAt = &now
	b.updatedAt = now
	return nil
}

// Cancel transitions the booking to cancelled from pending, approved or
// in_progress. Mid-trip cancellation is recorded as-is; refund reconciliation is
// the caller's problem, not this engine's.
func (b *Booking) Cancel(reason string, cancelledBy uuid.UUID, now time.Time) error {
	if !b.status.CanTransitionTo(StatusCancelled) {
		return domain.NewInvalidStateError(string(b.status), string(StatusCancelled))
	}
	b.status = StatusCancelled
	b.cancelReason = reason
	b.cancelledBy = &cancelledBy
	b.cancelledAt = &now
	b.updatedAt = now
	return nil
}

// MarkPaid records a successful charge from the payment collaborator. It never
// changes the booking status; StartTrip is the transition gated on it.
func (b *Booking) MarkPaid(now time.Time) error {
	if b.paymentStatus == PaymentPaid {
		return nil
	}
	if b.paymentStatus != PaymentPendingPayment && b.paymentStatus != PaymentFailed {
		return domain.NewInvalidStateError("payment:"+string(b.paymentStatus), "payment:"+string(PaymentPaid))
	}
	b.paymentStatus = PaymentPaid
	b.updatedAt = now
	return nil
}

// MarkPaymentFailed records a failed charge. The payment collaborator may retry,
// so a later MarkPaid is still accepted.
func (b *Booking) MarkPaymentFailed(now time.Time) error {
	if b.paymentStatus != PaymentPendingPayment {
		return domain.NewInvalidStateError("payment:"+string(b.paymentStatus), "payment:"+string(PaymentFailed))
	}
	b.paymentStatus = PaymentFailed
	b.updatedAt = now
	return nil
}

// StartTrip transitions the booking from approved to in_progress, storing the
// check-in inspection with a server-assigned timestamp. It requires payment to
// have cleared.
func (b *Booking) StartTrip(report InspectionReport, now time.Time) error {
	if !b.status.CanTransitionTo(StatusInProgress) {
		return domain.NewInvalidStateError(string(b.status), string(StatusInProgress))
	}
	if b.paymentStatus != PaymentPaid {
		return domain.NewPaymentRequiredError("trip cannot start before payment has cleared")
	}
	if err := report.Validate(); err != nil {
		return err
	}
	report.RecordedAt = now
	b.checkIn = &report
	b.status = StatusInProgress
	b.startedAt = &now
	b.updatedAt = now
	return nil
}

// EndTrip transitions the booking from in_progress to completed, storing the
// check-out inspection with a server-assigned timestamp.
func (b *Booking) EndTrip(report InspectionReport, now time.Time) error {
	if !b.status.CanTransitionTo(StatusCompleted) {
		return domain.NewInvalidStateError(string(b.status), string(StatusCompleted))
	}
	if err := report.Validate(); err != nil {
		return err
	}
	report.RecordedAt = now
	b.checkOut = &report
	b.status = StatusCompleted
	b.completedAt = &now
	b.updatedAt = now
	return nil
}

// AddReview attaches a post-trip review. Only the renter and the host may review,
// only once each, and only after the trip completed.
func (b *Booking) AddReview(reviewerID uuid.UUID, rating int, comment string, now time.Time) error {
	if b.status != StatusCompleted {
		return domain.NewInvalidStateError(string(b.status), "reviewed")
	}
	if rating < 1 || rating > 5 {
		return domain.NewValidationError("rating must be between 1 and 5")
	}

	review := &Review{
		ReviewerID: reviewerID,
		Rating:     rating,
		Comment:    comment,
		CreatedAt:  now,
	}

	switch reviewerID {
	case b.renterID:
		if b.renterReview != nil {
			return domain.NewConflictError("renter has already reviewed this booking")
		}
		b.renterReview = review
	case b.hostID:
		if b.hostReview != nil {
			return domain.NewConflictError("host has already reviewed this booking")
		}
		b.hostReview = review
	default:
		return domain.NewForbiddenError("only the renter or the host may review this booking")
	}

	b.updatedAt = now
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
}
