package car

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ProtectionPlan is the insurance tier configured on a car. It determines the
// protection fee rate applied to every booking of that car.
type ProtectionPlan string

const (
	ProtectionBasic    ProtectionPlan = "basic"
	ProtectionStandard ProtectionPlan = "standard"
	ProtectionPremium  ProtectionPlan = "premium"
)

// IsValid returns true if the plan is recognized. The empty plan is accepted and
// billed at the basic rate.
func (p ProtectionPlan) IsValid() bool {
	switch p {
	case ProtectionBasic, ProtectionStandard, ProtectionPremium, "":
		return true
	}
	return false
}

// FeeRate returns the protection fee as a fraction of the booking subtotal.
func (p ProtectionPlan) FeeRate() float64 {
	switch p {
	case ProtectionPremium:
		return 0.25
	case ProtectionStandard:
		return 0.15
	default:
		return 0.10
	}
}

// ParseProtectionPlan converts a string to a ProtectionPlan.
func ParseProtectionPlan(s string) (ProtectionPlan, error) {
	plan := ProtectionPlan(s)
	if !plan.IsValid() {
		return "", fmt.Errorf("invalid protection plan: %s", s)
	}
	return plan, nil
}

// Car is the listing's rate card as the booking engine sees it. The engine consumes
// cars read-only: listing management owns these records, bookings only reference
// them and snapshot their pricing fields at creation.
type Car struct {
	ID                 uuid.UUID
	HostID             uuid.UUID
	Make               string
	Model              string
	Year               int
	DailyRate          float64
	WeeklyDiscountPct  float64
	MonthlyDiscountPct float64
	ProtectionPlan     ProtectionPlan
	InstantBook        bool
	Currency           string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
