package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerbside/service-booking/internal/domain/car"
)

func testCar(dailyRate float64, plan car.ProtectionPlan) *car.Car {
	return &car.Car{
		ID:             uuid.New(),
		HostID:         uuid.New(),
		Make:           "Toyota",
		Model:          "Corolla",
		Year:           2021,
		DailyRate:      dailyRate,
		ProtectionPlan: plan,
		Currency:       "USD",
	}
}

func TestStandardPricingCalculator_Compute(t *testing.T) {
	calc := NewStandardPricingCalculator()
	start := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	t.Run("three day trip with basic protection", func(t *testing.T) {
		c := testCar(100, car.ProtectionBasic)
		end := start.Add(3 * 24 * time.Hour)

		breakdown, err := calc.Compute(c, start, end)
		require.NoError(t, err)

		assert.Equal(t, 3, breakdown.Days)
		assert.Equal(t, 100.0, breakdown.DailyRate)
		assert.Equal(t, 300.0, breakdown.Subtotal)
		assert.Equal(t, 30.0, breakdown.ServiceFee)
		assert.Equal(t, 30.0, breakdown.ProtectionFee)
		assert.Equal(t, 360.0, breakdown.Total)
		assert.Equal(t, "USD", breakdown.Currency)
	})

	t.Run("premium protection charges 25 percent", func(t *testing.T) {
		c := testCar(80, car.ProtectionPremium)
		end := start.Add(2 * 24 * time.Hour)

		breakdown, err := calc.Compute(c, start, end)
		require.NoError(t, err)

		assert.Equal(t, 160.0, breakdown.Subtotal)
		assert.Equal(t, 40.0, breakdown.ProtectionFee)
		assert.Equal(t, 216.0, breakdown.Total)
	})

	t.Run("weekly discount applies at seven days", func(t *testing.T) {
		c := testCar(100, car.ProtectionBasic)
		c.WeeklyDiscountPct = 10

		breakdown, err := calc.Compute(c, start, start.Add(7*24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 7, breakdown.Days)
		assert.Equal(t, 630.0, breakdown.Subtotal)

		// one day short of a week pays full rate
		breakdown, err = calc.Compute(c, start, start.Add(6*24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 600.0, breakdown.Subtotal)
	})

	t.Run("monthly discount wins over weekly at thirty days", func(t *testing.T) {
		c := testCar(100, car.ProtectionBasic)
		c.WeeklyDiscountPct = 10
		c.MonthlyDiscountPct = 20

		breakdown, err := calc.Compute(c, start, start.Add(30*24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 30, breakdown.Days)
		assert.Equal(t, 2400.0, breakdown.Subtotal)

		// 29 days still falls back to the weekly discount
		breakdown, err = calc.Compute(c, start, start.Add(29*24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 2610.0, breakdown.Subtotal)
	})

	t.Run("thirty days without monthly discount uses weekly", func(t *testing.T) {
		c := testCar(100, car.ProtectionBasic)
		c.WeeklyDiscountPct = 10

		breakdown, err := calc.Compute(c, start, start.Add(30*24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 2700.0, breakdown.Subtotal)
	})

	t.Run("partial day rounds up", func(t *testing.T) {
		c := testCar(50, car.ProtectionStandard)

		breakdown, err := calc.Compute(c, start, start.Add(25*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 2, breakdown.Days)
	})

	t.Run("same instant bills one day", func(t *testing.T) {
		c := testCar(50, car.ProtectionBasic)

		breakdown, err := calc.Compute(c, start, start)
		require.NoError(t, err)
		assert.Equal(t, 1, breakdown.Days)
		assert.Equal(t, 50.0, breakdown.Subtotal)
	})

	t.Run("fees round to cents", func(t *testing.T) {
		c := testCar(33.33, car.ProtectionStandard)

		breakdown, err := calc.Compute(c, start, start.Add(24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 33.33, breakdown.Subtotal)
		assert.Equal(t, 3.33, breakdown.ServiceFee)
		assert.Equal(t, 5.0, breakdown.ProtectionFee)
		assert.Equal(t, 41.66, breakdown.Total)
	})

	t.Run("total equals sum of parts", func(t *testing.T) {
		c := testCar(77.77, car.ProtectionPremium)
		c.WeeklyDiscountPct = 12.5

		breakdown, err := calc.Compute(c, start, start.Add(9*24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, breakdown.Total, breakdown.Subtotal+breakdown.ServiceFee+breakdown.ProtectionFee)
	})

	t.Run("deterministic for identical inputs", func(t *testing.T) {
		c := testCar(45.5, car.ProtectionStandard)
		end := start.Add(11 * 24 * time.Hour)

		first, err := calc.Compute(c, start, end)
		require.NoError(t, err)
		second, err := calc.Compute(c, start, end)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("rejects non positive daily rate", func(t *testing.T) {
		c := testCar(0, car.ProtectionBasic)

		_, err := calc.Compute(c, start, start.Add(24*time.Hour))
		assert.Error(t, err)
	})
}

func TestTripDays(t *testing.T) {
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		end  time.Time
		want int
	}{
		{"exactly one day", start.Add(24 * time.Hour), 1},
		{"one hour", start.Add(time.Hour), 1},
		{"just over one day", start.Add(24*time.Hour + time.Minute), 2},
		{"exactly a week", start.Add(7 * 24 * time.Hour), 7},
		{"reversed range uses absolute duration", start.Add(-48 * time.Hour), 2},
		{"zero duration", start, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TripDays(start, tt.end))
		})
	}
}
