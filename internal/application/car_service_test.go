package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kerbside/service-booking/internal/domain"
	bookingDomain "github.com/kerbside/service-booking/internal/domain/booking"
)

func TestCarService_CheckAvailability(t *testing.T) {
	f := newServiceFixture(t)
	cars := NewCarService(f.cars, f.bookings, bookingDomain.NewStandardPricingCalculator(), zap.NewNop())
	ctx := context.Background()

	req := f.createRequest(7, 3)

	dto, err := cars.CheckAvailability(ctx, f.car.ID, req.StartDate, req.EndDate)
	require.NoError(t, err)
	assert.True(t, dto.Available)

	_, err = f.service.CreateBooking(ctx, f.renterID, req)
	require.NoError(t, err)

	dto, err = cars.CheckAvailability(ctx, f.car.ID, req.StartDate, req.EndDate)
	require.NoError(t, err)
	assert.False(t, dto.Available)

	// the booked range ends where this one starts
	dto, err = cars.CheckAvailability(ctx, f.car.ID, req.EndDate, req.EndDate.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.True(t, dto.Available)

	_, err = cars.CheckAvailability(ctx, uuid.New(), req.StartDate, req.EndDate)
	require.Error(t, err)
	assert.Equal(t, domain.CodeNotFound, domain.CodeOf(err))

	_, err = cars.CheckAvailability(ctx, f.car.ID, req.EndDate, req.StartDate)
	require.Error(t, err)
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
}

func TestCarService_QuotePricing(t *testing.T) {
	f := newServiceFixture(t)
	cars := NewCarService(f.cars, f.bookings, bookingDomain.NewStandardPricingCalculator(), zap.NewNop())
	ctx := context.Background()

	req := f.createRequest(7, 3)

	quote, err := cars.QuotePricing(ctx, f.car.ID, req.StartDate, req.EndDate)
	require.NoError(t, err)
	assert.Equal(t, 3, quote.Days)
	assert.Equal(t, 360.0, quote.Total)

	// quoting does not reserve anything
	created, err := f.service.CreateBooking(ctx, f.renterID, req)
	require.NoError(t, err)
	assert.Equal(t, *quote, created.Pricing, "quote matches the created booking's snapshot")

	_, err = cars.QuotePricing(ctx, uuid.New(), req.StartDate, req.EndDate)
	require.Error(t, err)
	assert.Equal(t, domain.CodeNotFound, domain.CodeOf(err))
}
