package booking

import (
	"fmt"
	"math"
	"time"

	"github.com/kerbside/service-booking/internal/domain/car"
)

// serviceFeeRate is the fixed platform fee applied to every booking subtotal.
const serviceFeeRate = 0.10

// PriceBreakdown is the immutable price snapshot attached to a booking at creation.
// All amounts are rounded to 2 decimal places at computation time, so the persisted
// snapshot is exact.
type PriceBreakdown struct {
	Days          int     `json:"days"`
	DailyRate     float64 `json:"daily_rate"`
	Subtotal      float64 `json:"subtotal"`
	ServiceFee    float64 `json:"service_fee"`
	ProtectionFee float64 `json:"protection_fee"`
	Total         float64 `json:"total"`
	Currency      string  `json:"currency"`
}

// PricingCalculator defines the contract for computing a booking's price snapshot.
type PricingCalculator interface {
	// Compute returns the price breakdown for renting the car over [start, end).
	// It is pure and deterministic: identical inputs always produce an identical
	// breakdown. No other component may duplicate this arithmetic.
	Compute(c *car.Car, start, end time.Time) (PriceBreakdown, error)
}

// StandardPricingCalculator implements the marketplace pricing rules.
type StandardPricingCalculator struct{}

// NewStandardPricingCalculator creates a new StandardPricingCalculator.
func NewStandardPricingCalculator() *StandardPricingCalculator {
	return &StandardPricingCalculator{}
}

// Compute calculates the price snapshot for the given car and date range.
//
// Rules:
//   - days = ceil(|end - start| / 24h), floored at 1 (a same-day request bills one day)
//   - subtotal = dailyRate * days, reduced by the monthly discount at >= 30 days,
//     else the weekly discount at >= 7 days; discounts never stack
//   - serviceFee = 10% of subtotal
//   - protectionFee = subtotal * protection plan rate
func (p *StandardPricingCalculator) Compute(c *car.Car, start, end time.Time) (PriceBreakdown, error) {
	if c.DailyRate <= 0 {
		return PriceBreakdown{}, fmt.Errorf("car %s has no positive daily rate", c.ID)
	}

	days := TripDays(start, end)

	subtotal := c.DailyRate * float64(days)
	switch {
	case days >= 30 && c.MonthlyDiscountPct > 0:
		subtotal *= 1 - c.MonthlyDiscountPct/100
	case days >= 7 && c.WeeklyDiscountPct > 0:
		subtotal *= 1 - c.WeeklyDiscountPct/100
	}
	subtotal = roundCents(subtotal)

	serviceFee := roundCents(subtotal * serviceFeeRate)
	protectionFee := roundCents(subtotal * c.ProtectionPlan.FeeRate())
	total := roundCents(subtotal + serviceFee + protectionFee)

	return PriceBreakdown{
		Days:          days,
		DailyRate:     c.DailyRate,
		Subtotal:      subtotal,
		ServiceFee:    serviceFee,
		ProtectionFee: protectionFee,
		Total:         total,
		Currency:      c.Currency,
	}, nil
}

// TripDays returns the billable number of days for a date range: the absolute
// duration divided into 24h days, rounded up, never less than one.
func TripDays(start, end time.Time) int {
	hours := end.Sub(start).Hours()
	if hours < 0 {
		hours = -hours
	}
	days := int(math.Ceil(hours / 24))
	if days < 1 {
		days = 1
	}
	return days
}

// roundCents rounds a currency amount to 2 decimal places, half away from zero.
func roundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}
