package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kerbside/service-booking/internal/domain"
	bookingDomain "github.com/kerbside/service-booking/internal/domain/booking"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CarID         uuid.UUID       `gorm:"type:uuid;index;not null"`
	RenterID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	HostID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	StartDate     time.Time       `gorm:"not null;index"`
	EndDate       time.Time       `gorm:"not null"`
	Status        string          `gorm:"not null;size:30;index"`
	PaymentStatus string          `gorm:"not null;size:30"`
	Pricing       json.RawMessage `gorm:"type:jsonb;not null"`
	HostMessage   string          `gorm:"size:1000"`
	DeclineReason string          `gorm:"size:500"`
	CancelReason  string          `gorm:"size:500"`
	CancelledBy   *uuid.UUID      `gorm:"type:uuid"`
	CheckIn       json.RawMessage `gorm:"type:jsonb"`
	CheckOut      json.RawMessage `gorm:"type:jsonb"`
	RenterReview  json.RawMessage `gorm:"type:jsonb"`
	HostReview    json.RawMessage `gorm:"type:jsonb"`
	ApprovedAt    *time.Time      `gorm:""`
	DeclinedAt    *time.Time      `gorm:""`
	CancelledAt   *time.Time      `gorm:""`
	StartedAt     *time.Time      `gorm:""`
	CompletedAt   *time.Time      `gorm:""`
	Version       int64           `gorm:"not null;default:1"`
	CreatedAt     time.Time       `gorm:"not null"`
	UpdatedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, domain.NewStorageError(fmt.Errorf("find booking by id: %w", err))
	}
	return toDomainBooking(&model)
}

// FindByCarID retrieves bookings of a specific car with pagination.
func (r *GormBookingRepository) FindByCarID(ctx context.Context, carID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findPaginated(ctx, "car_id = ?", carID, page, limit)
}

// FindByRenterID retrieves bookings made by a specific renter with pagination.
func (r *GormBookingRepository) FindByRenterID(ctx context.Context, renterID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findPaginated(ctx, "renter_id = ?", renterID, page, limit)
}

// FindByHostID retrieves bookings of a specific host's cars with pagination.
func (r *GormBookingRepository) FindByHostID(ctx context.Context, hostID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findPaginated(ctx, "host_id = ?", hostID, page, limit)
}

// FindOverlapping retrieves the calendar-blocking bookings of a car overlapping
// the half-open range [start, end).
func (r *GormBookingRepository) FindOverlapping(ctx context.Context, carID uuid.UUID, start, end time.Time) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.overlapQuery(r.db.WithContext(ctx), carID, start, end).Find(&models).Error; err != nil {
		return nil, domain.NewStorageError(fmt.Errorf("find overlapping bookings: %w", err))
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}

// SaveIfAvailable persists a new booking, re-validating availability inside a
// single transaction. The car row is locked FOR UPDATE first, so concurrent
// creates for the same car serialize and the loser sees the winner's booking.
func (r *GormBookingRepository) SaveIfAvailable(ctx context.Context, bk *bookingDomain.Booking) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var car CarModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", bk.CarID()).
			First(&car).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewNotFoundError("Car", bk.CarID().String())
			}
			return fmt.Errorf("lock car row: %w", err)
		}

		var conflicts int64
		if err := r.overlapQuery(tx, bk.CarID(), bk.StartDate(), bk.EndDate()).
			Model(&BookingModel{}).
			Count(&conflicts).Error; err != nil {
			return fmt.Errorf("count conflicting bookings: %w", err)
		}
		if conflicts > 0 {
			return domain.NewConflictError("car is not available for the requested dates")
		}

		return tx.Create(model).Error
	})
	if err != nil {
		var de *domain.Error
		if errors.As(err, &de) {
			return de
		}
		return domain.NewStorageError(fmt.Errorf("save booking: %w", err))
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return err
	}

	// IncrementVersion was called before Update, so the stored row must still be
	// at version-1 for this write to win.
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":         model.Status,
			"payment_status": model.PaymentStatus,
			"host_message":   model.HostMessage,
			"decline_reason": model.DeclineReason,
			"cancel_reason":  model.CancelReason,
			"cancelled_by":   model.CancelledBy,
			"check_in":       model.CheckIn,
			"check_out":      model.CheckOut,
			"renter_review":  model.RenterReview,
			"host_review":    model.HostReview,
			"approved_at":    model.ApprovedAt,
			"declined_at":    model.DeclinedAt,
			"cancelled_at":   model.CancelledAt,
			"started_at":     model.StartedAt,
			"completed_at":   model.CompletedAt,
			"version":        model.Version,
			"updated_at":     model.UpdatedAt,
		})

	if result.Error != nil {
		return domain.NewStorageError(fmt.Errorf("update booking: %w", result.Error))
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// overlapQuery selects calendar-blocking bookings of the car whose half-open
// range intersects [start, end).
func (r *GormBookingRepository) overlapQuery(tx *gorm.DB, carID uuid.UUID, start, end time.Time) *gorm.DB {
	return tx.
		Where("car_id = ?", carID).
		Where("status NOT IN ?", []string{
			string(bookingDomain.StatusCancelled),
			string(bookingDomain.StatusDeclined),
		}).
		Where("start_date < ? AND end_date > ?", end, start)
}

func (r *GormBookingRepository) findPaginated(ctx context.Context, cond string, arg uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where(cond, arg).Count(&total).Error; err != nil {
		return nil, 0, domain.NewStorageError(fmt.Errorf("count bookings: %w", err))
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where(cond, arg).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, domain.NewStorageError(fmt.Errorf("find bookings: %w", err))
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = bk
	}
	return bookings, total, nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) (*BookingModel, error) {
	pricingJSON, err := json.Marshal(bk.Pricing())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal pricing snapshot: %w", err)
	}

	checkInJSON, err := marshalOptional(bk.CheckIn())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal check-in report: %w", err)
	}
	checkOutJSON, err := marshalOptional(bk.CheckOut())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal check-out report: %w", err)
	}
	renterReviewJSON, err := marshalOptional(bk.RenterReview())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal renter review: %w", err)
	}
	hostReviewJSON, err := marshalOptional(bk.HostReview())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal host review: %w", err)
	}

	return &BookingModel{
		ID:            bk.ID(),
		CarID:         bk.CarID(),
		RenterID:      bk.RenterID(),
		HostID:        bk.HostID(),
		StartDate:     bk.StartDate(),
		EndDate:       bk.EndDate(),
		Status:        string(bk.Status()),
		PaymentStatus: string(bk.PaymentStatus()),
		Pricing:       pricingJSON,
		HostMessage:   bk.HostMessage(),
		DeclineReason: bk.DeclineReason(),
		CancelReason:  bk.CancelReason(),
		CancelledBy:   bk.CancelledBy(),
		CheckIn:       checkInJSON,
		CheckOut:      checkOutJSON,
		RenterReview:  renterReviewJSON,
		HostReview:    hostReviewJSON,
		ApprovedAt:    bk.ApprovedAt(),
		DeclinedAt:    bk.DeclinedAt(),
		CancelledAt:   bk.CancelledAt(),
		StartedAt:     bk.StartedAt(),
		CompletedAt:   bk.CompletedAt(),
		Version:       bk.Version(),
		CreatedAt:     bk.CreatedAt(),
		UpdatedAt:     bk.UpdatedAt(),
	}, nil
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	var pricing bookingDomain.PriceBreakdown
	if err := json.Unmarshal(m.Pricing, &pricing); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pricing snapshot: %w", err)
	}

	checkIn, err := unmarshalOptional[bookingDomain.InspectionReport](m.CheckIn)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal check-in report: %w", err)
	}
	checkOut, err := unmarshalOptional[bookingDomain.InspectionReport](m.CheckOut)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal check-out report: %w", err)
	}
	renterReview, err := unmarshalOptional[bookingDomain.Review](m.RenterReview)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal renter review: %w", err)
	}
	hostReview, err := unmarshalOptional[bookingDomain.Review](m.HostReview)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal host review: %w", err)
	}

	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}
	paymentStatus, err := bookingDomain.ParsePaymentStatus(m.PaymentStatus)
	if err != nil {
		return nil, err
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.CarID,
		m.RenterID,
		m.HostID,
		m.StartDate,
		m.EndDate,
		status,
		paymentStatus,
		pricing,
		m.HostMessage,
		m.DeclineReason,
		m.CancelReason,
		m.CancelledBy,
		checkIn,
		checkOut,
		renterReview,
		hostReview,
		m.ApprovedAt,
		m.DeclinedAt,
		m.CancelledAt,
		m.StartedAt,
		m.CompletedAt,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func marshalOptional(v interface{}) (json.RawMessage, error) {
	// Typed nil pointers arrive as non-nil interfaces; marshal handles both by
	// producing "null", which we store as SQL NULL instead.
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(data) == "null" {
		return nil, nil
	}
	return data, nil
}

func unmarshalOptional[T any](data json.RawMessage) (*T, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}
