package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kerbside/service-booking/internal/domain"
	bookingDomain "github.com/kerbside/service-booking/internal/domain/booking"
	carDomain "github.com/kerbside/service-booking/internal/domain/car"
)

// AvailabilityDTO is the response of an availability check.
type AvailabilityDTO struct {
	CarID     uuid.UUID `json:"car_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Available bool      `json:"available"`
}

// CarService answers availability and pricing questions about a car without
// creating anything.
type CarService struct {
	carRepo      carDomain.CarRepository
	pricing      bookingDomain.PricingCalculator
	availability *bookingDomain.AvailabilityChecker
	logger       *zap.Logger
}

// NewCarService creates a new CarService.
func NewCarService(
	carRepo carDomain.CarRepository,
	bookingRepo bookingDomain.BookingRepository,
	pricing bookingDomain.PricingCalculator,
	logger *zap.Logger,
) *CarService {
	return &CarService{
		carRepo:      carRepo,
		pricing:      pricing,
		availability: bookingDomain.NewAvailabilityChecker(bookingRepo),
		logger:       logger,
	}
}

// CheckAvailability reports whether the car is free for [start, end). The answer
// is advisory: only CreateBooking reserves the range.
func (s *CarService) CheckAvailability(ctx context.Context, carID uuid.UUID, start, end time.Time) (*AvailabilityDTO, error) {
	if !start.Before(end) {
		return nil, domain.NewValidationError("start date must be before end date")
	}
	if _, err := s.carRepo.FindByID(ctx, carID); err != nil {
		return nil, err
	}

	available, err := s.availability.IsAvailable(ctx, carID, start, end)
	if err != nil {
		return nil, err
	}

	return &AvailabilityDTO{
		CarID:     carID,
		StartDate: start,
		EndDate:   end,
		Available: available,
	}, nil
}

// QuotePricing computes the price breakdown a booking of this range would snapshot.
func (s *CarService) QuotePricing(ctx context.Context, carID uuid.UUID, start, end time.Time) (*bookingDomain.PriceBreakdown, error) {
	if !start.Before(end) {
		return nil, domain.NewValidationError("start date must be before end date")
	}

	car, err := s.carRepo.FindByID(ctx, carID)
	if err != nil {
		return nil, err
	}

	breakdown, err := s.pricing.Compute(car, start, end)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	return &breakdown, nil
}
