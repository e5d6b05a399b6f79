package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kerbside/service-booking/internal/clock"
	"github.com/kerbside/service-booking/internal/domain"
	bookingDomain "github.com/kerbside/service-booking/internal/domain/booking"
	carDomain "github.com/kerbside/service-booking/internal/domain/car"
	"github.com/kerbside/service-booking/internal/events"
	"github.com/kerbside/service-booking/internal/kafka"
)

// eventSource identifies this service in outgoing CloudEvents.
const eventSource = "service-booking"

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	CarID     uuid.UUID `json:"car_id" binding:"required"`
	StartDate time.Time `json:"start_date" binding:"required"`
	EndDate   time.Time `json:"end_date" binding:"required"`
	Message   string    `json:"message"`
}

// ReviewRequest holds a post-trip review submission.
type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID                uuid.UUID                       `json:"id"`
	CarID             uuid.UUID                       `json:"car_id"`
	RenterID          uuid.UUID                       `json:"renter_id"`
	HostID            uuid.UUID                       `json:"host_id"`
	StartDate         time.Time                       `json:"start_date"`
	EndDate           time.Time                       `json:"end_date"`
	Status            string                          `json:"status"`
	PaymentStatus     string                          `json:"payment_status"`
	Pricing           bookingDomain.PriceBreakdown    `json:"pricing"`
	HostMessage       string                          `json:"host_message,omitempty"`
	DeclineReason     string                          `json:"decline_reason,omitempty"`
	CancelReason      string                          `json:"cancel_reason,omitempty"`
	CancelledBy       *uuid.UUID                      `json:"cancelled_by,omitempty"`
	CheckInCompleted  bool                            `json:"check_in_completed"`
	CheckOutCompleted bool                            `json:"check_out_completed"`
	CheckInData       *bookingDomain.InspectionReport `json:"check_in_data,omitempty"`
	CheckOutData      *bookingDomain.InspectionReport `json:"check_out_data,omitempty"`
	RenterReview      *bookingDomain.Review           `json:"renter_review,omitempty"`
	HostReview        *bookingDomain.Review           `json:"host_review,omitempty"`
	ApprovedAt        *time.Time                      `json:"approved_at,omitempty"`
	DeclinedAt        *time.Time                      `json:"declined_at,omitempty"`
	CancelledAt       *time.Time                      `json:"cancelled_at,omitempty"`
	StartedAt         *time.Time                      `json:"started_at,omitempty"`
	CompletedAt       *time.Time                      `json:"completed_at,omitempty"`
	Version           int64                           `json:"version"`
	CreatedAt         time.Time                       `json:"created_at"`
	UpdatedAt         time.Time                       `json:"updated_at"`
}

// BookingService is the application service orchestrating the booking lifecycle.
// All state transitions on bookings go through here; nothing else mutates them.
type BookingService struct {
	repo         bookingDomain.BookingRepository
	carRepo      carDomain.CarRepository
	pricing      bookingDomain.PricingCalculator
	availability *bookingDomain.AvailabilityChecker
	producer     *kafka.Producer
	clk          clock.Clock
	logger       *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo bookingDomain.BookingRepository,
	carRepo carDomain.CarRepository,
	pricing bookingDomain.PricingCalculator,
	producer *kafka.Producer,
	clk clock.Clock,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:         repo,
		carRepo:      carRepo,
		pricing:      pricing,
		availability: bookingDomain.NewAvailabilityChecker(repo),
		producer:     producer,
		clk:          clk,
		logger:       logger,
	}
}

// CreateBooking creates a new booking request for the given renter. The date range
// is checked against the car's calendar, the price snapshot is computed and
// attached, and the record is persisted atomically with a conflict re-validation.
// Instant-book cars skip host approval: the booking is persisted already approved
// with the payment window open.
func (s *BookingService) CreateBooking(ctx context.Context, renterID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	if !req.StartDate.Before(req.EndDate) {
		return nil, domain.NewValidationError("start date must be before end date")
	}

	car, err := s.carRepo.FindByID(ctx, req.CarID)
	if err != nil {
		return nil, err
	}

	available, err := s.availability.IsAvailable(ctx, car.ID, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, domain.NewConflictError("car is not available for the requested dates")
	}

	pricing, err := s.pricing.Compute(car, req.StartDate, req.EndDate)
	if err != nil {
		return nil, domain.NewValidationError(fmt.Sprintf("pricing error: %v", err))
	}

	now := s.clk.Now()
	bk, err := bookingDomain.NewBooking(
		car.ID,
		renterID,
		car.HostID,
		req.StartDate,
		req.EndDate,
		req.Message,
		pricing,
		now,
	)
	if err != nil {
		return nil, err
	}

	if car.InstantBook {
		if err := bk.Approve("", now); err != nil {
			return nil, err
		}
	}

	// SaveIfAvailable re-runs the overlap check inside one transaction, so two
	// concurrent creates for overlapping dates cannot both pass the check above
	// and both land.
	if err := s.repo.SaveIfAvailable(ctx, bk); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.BookingRequested, bk.ID(), events.BookingRequestedEvent{
		BookingID:   bk.ID(),
		CarID:       bk.CarID(),
		RenterID:    bk.RenterID(),
		HostID:      bk.HostID(),
		StartDate:   bk.StartDate(),
		EndDate:     bk.EndDate(),
		Total:       pricing.Total,
		Currency:    pricing.Currency,
		InstantBook: car.InstantBook,
		OccurredAt:  now,
	})
	if car.InstantBook {
		s.publishApproved(ctx, bk, now)
	}

	result := toBookingDTO(bk)
	return &result, nil
}

// ApproveBooking lets the host approve a pending request, opening the payment
// window.
func (s *BookingService) ApproveBooking(ctx context.Context, bookingID, actorID uuid.UUID, hostMessage string) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.HostID() != actorID {
		return nil, domain.NewForbiddenError("only the host may approve a booking")
	}

	now := s.clk.Now()
	if err := bk.Approve(hostMessage, now); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.publishApproved(ctx, bk, now)

	result := toBookingDTO(bk)
	return &result, nil
}

// DeclineBooking lets the host decline a pending request.
func (s *BookingService) DeclineBooking(ctx context.Context, bookingID, actorID uuid.UUID, reason string) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.HostID() != actorID {
		return nil, domain.NewForbiddenError("only the host may decline a booking")
	}

	now := s.clk.Now()
	if err := bk.Decline(reason, now); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.BookingDeclined, bk.ID(), events.BookingDeclinedEvent{
		BookingID:  bk.ID(),
		RenterID:   bk.RenterID(),
		HostID:     bk.HostID(),
		Reason:     reason,
		OccurredAt: now,
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// CancelBooking cancels a booking on behalf of the renter or the host. Mid-trip
// cancellations are flagged in the published event for manual reconciliation;
// the engine records them but does not adjudicate refunds.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, actorID uuid.UUID, reason string) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.RenterID() != actorID && bk.HostID() != actorID {
		return nil, domain.NewForbiddenError("only the renter or the host may cancel a booking")
	}

	midTrip := bk.Status() == bookingDomain.StatusInProgress

	now := s.clk.Now()
	if err := bk.Cancel(reason, actorID, now); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.BookingCancelled, bk.ID(), events.BookingCancelledEvent{
		BookingID:   bk.ID(),
		RenterID:    bk.RenterID(),
		HostID:      bk.HostID(),
		CancelledBy: actorID,
		Reason:      reason,
		MidTrip:     midTrip,
		OccurredAt:  now,
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// MarkPaid records a successful charge signalled by the payment collaborator.
func (s *BookingService) MarkPaid(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := bk.MarkPaid(s.clk.Now()); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.logger.Info("booking marked paid", zap.String("booking_id", bookingID.String()))

	result := toBookingDTO(bk)
	return &result, nil
}

// MarkPaymentFailed records a failed charge signalled by the payment collaborator.
func (s *BookingService) MarkPaymentFailed(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := bk.MarkPaymentFailed(s.clk.Now()); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.logger.Warn("booking payment failed", zap.String("booking_id", bookingID.String()))

	result := toBookingDTO(bk)
	return &result, nil
}

// StartTrip applies a validated check-in inspection and moves the booking to
// in_progress. Callers go through TripService, which validates the inspection
// payload shape first.
func (s *BookingService) StartTrip(ctx context.Context, bookingID, actorID uuid.UUID, report bookingDomain.InspectionReport) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.RenterID() != actorID {
		return nil, domain.NewForbiddenError("only the renter may check in")
	}

	now := s.clk.Now()
	if err := bk.StartTrip(report, now); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.BookingTripStarted, bk.ID(), events.BookingTripStartedEvent{
		BookingID:  bk.ID(),
		RenterID:   bk.RenterID(),
		HostID:     bk.HostID(),
		StartedAt:  now,
		OccurredAt: now,
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// EndTrip applies a validated check-out inspection and completes the booking.
func (s *BookingService) EndTrip(ctx context.Context, bookingID, actorID uuid.UUID, report bookingDomain.InspectionReport) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.RenterID() != actorID && bk.HostID() != actorID {
		return nil, domain.NewForbiddenError("only the renter or the host may check out")
	}

	now := s.clk.Now()
	if err := bk.EndTrip(report, now); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.BookingTripCompleted, bk.ID(), events.BookingTripCompletedEvent{
		BookingID:   bk.ID(),
		RenterID:    bk.RenterID(),
		HostID:      bk.HostID(),
		CompletedAt: now,
		OccurredAt:  now,
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// AddReview attaches a post-trip review from the renter or the host.
func (s *BookingService) AddReview(ctx context.Context, bookingID, reviewerID uuid.UUID, req ReviewRequest) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := bk.AddReview(reviewerID, req.Rating, req.Comment, s.clk.Now()); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBooking retrieves a single booking visible to the acting user.
func (s *BookingService) GetBooking(ctx context.Context, bookingID, actorID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.RenterID() != actorID && bk.HostID() != actorID {
		return nil, domain.NewForbiddenError("booking does not belong to this user")
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetRenterBookings retrieves paginated bookings made by a renter.
func (s *BookingService) GetRenterBookings(ctx context.Context, renterID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.FindByRenterID(ctx, renterID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// GetHostBookings retrieves paginated bookings of a host's cars.
func (s *BookingService) GetHostBookings(ctx context.Context, hostID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.FindByHostID(ctx, hostID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// GetCarBookings retrieves paginated bookings of one car, restricted to its host.
func (s *BookingService) GetCarBookings(ctx context.Context, carID, actorID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	car, err := s.carRepo.FindByID(ctx, carID)
	if err != nil {
		return nil, err
	}
	if car.HostID != actorID {
		return nil, domain.NewForbiddenError("only the host may list a car's bookings")
	}

	bookings, total, err := s.repo.FindByCarID(ctx, carID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// --- Helpers ---

func (s *BookingService) publishApproved(ctx context.Context, bk *bookingDomain.Booking, now time.Time) {
	s.publishEvent(ctx, events.BookingApproved, bk.ID(), events.BookingApprovedEvent{
		BookingID:  bk.ID(),
		CarID:      bk.CarID(),
		RenterID:   bk.RenterID(),
		HostID:     bk.HostID(),
		Total:      bk.Pricing().Total,
		Currency:   bk.Pricing().Currency,
		OccurredAt: now,
	})
}

func (s *BookingService) publishEvent(ctx context.Context, eventType string, bookingID uuid.UUID, data interface{}) {
	if s.producer == nil {
		return
	}

	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, events.TopicBookingEvents, bookingID.String(), cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("event_type", eventType),
			zap.String("booking_id", bookingID.String()),
			zap.Error(err),
		)
	}
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:                bk.ID(),
		CarID:             bk.CarID(),
		RenterID:          bk.RenterID(),
		HostID:            bk.HostID(),
		StartDate:         bk.StartDate(),
		EndDate:           bk.EndDate(),
		Status:            string(bk.Status()),
		PaymentStatus:     string(bk.PaymentStatus()),
		Pricing:           bk.Pricing(),
		HostMessage:       bk.HostMessage(),
		DeclineReason:     bk.DeclineReason(),
		CancelReason:      bk.CancelReason(),
		CancelledBy:       bk.CancelledBy(),
		CheckInCompleted:  bk.CheckInCompleted(),
		CheckOutCompleted: bk.CheckOutCompleted(),
		CheckInData:       bk.CheckIn(),
		CheckOutData:      bk.CheckOut(),
		RenterReview:      bk.RenterReview(),
		HostReview:        bk.HostReview(),
		ApprovedAt:        bk.ApprovedAt(),
		DeclinedAt:        bk.DeclinedAt(),
		CancelledAt:       bk.CancelledAt(),
		StartedAt:         bk.StartedAt(),
		CompletedAt:       bk.CompletedAt(),
		Version:           bk.Version(),
		CreatedAt:         bk.CreatedAt(),
		UpdatedAt:         bk.UpdatedAt(),
	}
}

func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos
}
