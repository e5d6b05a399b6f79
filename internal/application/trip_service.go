package application

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/kerbside/service-booking/internal/domain/booking"
)

// InspectionPhotoRequest is one photo reference in an inspection submission.
type InspectionPhotoRequest struct {
	Category string `json:"category" binding:"required"`
	URL      string `json:"url" binding:"required"`
}

// InspectionRequest is the check-in or check-out payload submitted by the mobile
// client. Photo upload happens elsewhere; only stable references arrive here.
type InspectionRequest struct {
	Mileage     int                      `json:"mileage" binding:"required"`
	FuelLevel   int                      `json:"fuel_level"`
	Condition   string                   `json:"condition" binding:"required"`
	DamageNotes string                   `json:"damage_notes"`
	Photos      []InspectionPhotoRequest `json:"photos" binding:"required"`
}

// TripService is the trip capture handler: it validates check-in and check-out
// inspection payloads and forwards them to the booking lifecycle.
type TripService struct {
	bookings *BookingService
	logger   *zap.Logger
}

// NewTripService creates a new TripService.
func NewTripService(bookings *BookingService, logger *zap.Logger) *TripService {
	return &TripService{bookings: bookings, logger: logger}
}

// CheckIn validates the inspection payload and starts the trip.
func (s *TripService) CheckIn(ctx context.Context, bookingID, actorID uuid.UUID, req InspectionRequest) (*BookingDTO, error) {
	report := toInspectionReport(req)
	if err := report.Validate(); err != nil {
		return nil, err
	}

	dto, err := s.bookings.StartTrip(ctx, bookingID, actorID, report)
	if err != nil {
		return nil, err
	}

	s.logger.Info("trip started",
		zap.String("booking_id", bookingID.String()),
		zap.Int("mileage", report.Mileage),
	)
	return dto, nil
}

// CheckOut validates the inspection payload and completes the trip.
func (s *TripService) CheckOut(ctx context.Context, bookingID, actorID uuid.UUID, req InspectionRequest) (*BookingDTO, error) {
	report := toInspectionReport(req)
	if err := report.Validate(); err != nil {
		return nil, err
	}

	dto, err := s.bookings.EndTrip(ctx, bookingID, actorID, report)
	if err != nil {
		return nil, err
	}

	s.logger.Info("trip completed",
		zap.String("booking_id", bookingID.String()),
		zap.Int("mileage", report.Mileage),
	)
	return dto, nil
}

func toInspectionReport(req InspectionRequest) bookingDomain.InspectionReport {
	photos := make([]bookingDomain.InspectionPhoto, len(req.Photos))
	for i, p := range req.Photos {
		photos[i] = bookingDomain.InspectionPhoto{
			Category: bookingDomain.PhotoCategory(p.Category),
			URL:      p.URL,
		}
	}
	return bookingDomain.InspectionReport{
		Mileage:     req.Mileage,
		FuelLevel:   req.FuelLevel,
		Condition:   bookingDomain.CarCondition(req.Condition),
		DamageNotes: req.DamageNotes,
		Photos:      photos,
	}
}
