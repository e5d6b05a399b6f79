package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Half-open semantics allow same-day handoffs: a
// checkout at 10:00 and a new pickup at 10:00 do not conflict.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// AvailabilityChecker answers whether a car is free for a candidate date range.
//
// The answer is advisory: between the check and a subsequent create another
// booking may land. The repository's SaveIfAvailable re-validates inside a single
// transaction, which is what actually closes the race.
type AvailabilityChecker struct {
	repo BookingRepository
}

// NewAvailabilityChecker creates a new AvailabilityChecker.
func NewAvailabilityChecker(repo BookingRepository) *AvailabilityChecker {
	return &AvailabilityChecker{repo: repo}
}

// IsAvailable returns true if no calendar-blocking booking of the car overlaps
// [start, end).
func (c *AvailabilityChecker) IsAvailable(ctx context.Context, carID uuid.UUID, start, end time.Time) (bool, error) {
	conflicts, err := c.repo.FindOverlapping(ctx, carID, start, end)
	if err != nil {
		return false, err
	}
	return len(conflicts) == 0, nil
}
