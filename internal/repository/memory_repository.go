package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kerbside/service-booking/internal/domain"
	bookingDomain "github.com/kerbside/service-booking/internal/domain/booking"
	carDomain "github.com/kerbside/service-booking/internal/domain/car"
)

// MemoryBookingRepository is the in-memory reference implementation of
// BookingRepository. It provides the same guarantees as the SQL implementation:
// SaveIfAvailable serializes check-and-insert under one lock, and Update enforces
// the version discipline. Used by unit tests and local runs without a database.
type MemoryBookingRepository struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*bookingDomain.Booking
}

// NewMemoryBookingRepository creates an empty MemoryBookingRepository.
func NewMemoryBookingRepository() *MemoryBookingRepository {
	return &MemoryBookingRepository{
		bookings: make(map[uuid.UUID]*bookingDomain.Booking),
	}
}

// FindByID retrieves a booking by its unique identifier.
func (r *MemoryBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bk, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	return snapshot(bk), nil
}

// FindByCarID retrieves bookings of a specific car with pagination.
func (r *MemoryBookingRepository) FindByCarID(ctx context.Context, carID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findWhere(func(b *bookingDomain.Booking) bool { return b.CarID() == carID }, page, limit)
}

// FindByRenterID retrieves bookings made by a specific renter with pagination.
func (r *MemoryBookingRepository) FindByRenterID(ctx context.Context, renterID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findWhere(func(b *bookingDomain.Booking) bool { return b.RenterID() == renterID }, page, limit)
}

// FindByHostID retrieves bookings of a specific host's cars with pagination.
func (r *MemoryBookingRepository) FindByHostID(ctx context.Context, hostID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findWhere(func(b *bookingDomain.Booking) bool { return b.HostID() == hostID }, page, limit)
}

// FindOverlapping retrieves calendar-blocking bookings of the car overlapping
// [start, end).
func (r *MemoryBookingRepository) FindOverlapping(ctx context.Context, carID uuid.UUID, start, end time.Time) ([]*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.overlappingLocked(carID, start, end), nil
}

// SaveIfAvailable persists a new booking unless a calendar-blocking booking of the
// same car overlaps its range. Check and insert happen under one lock.
func (r *MemoryBookingRepository) SaveIfAvailable(ctx context.Context, bk *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.overlappingLocked(bk.CarID(), bk.StartDate(), bk.EndDate())) > 0 {
		return domain.NewConflictError("car is not available for the requested dates")
	}
	r.bookings[bk.ID()] = snapshot(bk)
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *MemoryBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.bookings[bk.ID()]
	if !ok {
		return domain.NewNotFoundError("Booking", bk.ID().String())
	}
	if stored.Version() != bk.Version()-1 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	r.bookings[bk.ID()] = snapshot(bk)
	return nil
}

func (r *MemoryBookingRepository) overlappingLocked(carID uuid.UUID, start, end time.Time) []*bookingDomain.Booking {
	var conflicts []*bookingDomain.Booking
	for _, b := range r.bookings {
		if b.CarID() != carID || !b.Status().BlocksCalendar() {
			continue
		}
		if bookingDomain.Overlaps(start, end, b.StartDate(), b.EndDate()) {
			conflicts = append(conflicts, snapshot(b))
		}
	}
	return conflicts
}

func (r *MemoryBookingRepository) findWhere(match func(*bookingDomain.Booking) bool, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var all []*bookingDomain.Booking
	for _, b := range r.bookings {
		if match(b) {
			all = append(all, b)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt().Equal(all[j].CreatedAt()) {
			return all[i].CreatedAt().After(all[j].CreatedAt())
		}
		return all[i].ID().String() > all[j].ID().String()
	})

	total := int64(len(all))
	offset := (page - 1) * limit
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}

	pageItems := make([]*bookingDomain.Booking, 0, end-offset)
	for _, b := range all[offset:end] {
		pageItems = append(pageItems, snapshot(b))
	}
	return pageItems, total, nil
}

// snapshot copies the aggregate so callers never share state with the store.
func snapshot(bk *bookingDomain.Booking) *bookingDomain.Booking {
	c := *bk
	return &c
}

// MemoryCarRepository is the in-memory reference implementation of CarRepository.
type MemoryCarRepository struct {
	mu   sync.RWMutex
	cars map[uuid.UUID]carDomain.Car
}

// NewMemoryCarRepository creates an empty MemoryCarRepository.
func NewMemoryCarRepository() *MemoryCarRepository {
	return &MemoryCarRepository{cars: make(map[uuid.UUID]carDomain.Car)}
}

// Put stores or replaces a car record.
func (r *MemoryCarRepository) Put(c carDomain.Car) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cars[c.ID] = c
}

// FindByID retrieves a car by its unique identifier.
func (r *MemoryCarRepository) FindByID(ctx context.Context, id uuid.UUID) (*carDomain.Car, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.cars[id]
	if !ok {
		return nil, domain.NewNotFoundError("Car", id.String())
	}
	return &c, nil
}
