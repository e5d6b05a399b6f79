package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByCarID retrieves bookings of a specific car with pagination, newest first.
	FindByCarID(ctx context.Context, carID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// FindByRenterID retrieves bookings made by a specific renter with pagination.
	FindByRenterID(ctx context.Context, renterID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// FindByHostID retrieves bookings of a specific host's cars with pagination.
	FindByHostID(ctx context.Context, hostID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// FindOverlapping retrieves the calendar-blocking bookings of a car whose
	// [start, end) range overlaps the given one. Declined and cancelled bookings
	// are excluded.
	FindOverlapping(ctx context.Context, carID uuid.UUID, start, end time.Time) ([]*Booking, error)

	// SaveIfAvailable persists a new booking if and only if no calendar-blocking
	// booking of the same car overlaps its date range. Check and insert execute as
	// one serialized unit per car, so of two concurrent saves for overlapping
	// ranges at most one succeeds; the other gets ConflictError.
	SaveIfAvailable(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	// Returns ConflictError if the stored version does not match.
	Update(ctx context.Context, booking *Booking) error
}
