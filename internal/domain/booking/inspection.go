package booking

import (
	"fmt"
	"time"

	"github.com/kerbside/service-booking/internal/domain"
)

// MinInspectionPhotos is the minimum number of photos required for a check-in or
// check-out inspection.
const MinInspectionPhotos = 6

// CarCondition grades the overall state of the car at inspection time.
type CarCondition string

const (
	ConditionExcellent CarCondition = "excellent"
	ConditionGood      CarCondition = "good"
	ConditionFair      CarCondition = "fair"
	ConditionPoor      CarCondition = "poor"
)

// IsValid returns true if the condition is recognized.
func (c CarCondition) IsValid() bool {
	switch c {
	case ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}

// PhotoCategory tags the angle or subject an inspection photo covers.
type PhotoCategory string

const (
	PhotoFront     PhotoCategory = "front"
	PhotoRear      PhotoCategory = "rear"
	PhotoLeftSide  PhotoCategory = "left_side"
	PhotoRightSide PhotoCategory = "right_side"
	PhotoInterior  PhotoCategory = "interior"
	PhotoOdometer  PhotoCategory = "odometer"
	PhotoDamage    PhotoCategory = "damage"
)

// mandatoryPhotoCategories are the angles every inspection must cover.
var mandatoryPhotoCategories = []PhotoCategory{
	PhotoFront, PhotoRear, PhotoLeftSide, PhotoRightSide, PhotoInterior, PhotoOdometer,
}

// InspectionPhoto is a stable reference to an uploaded photo. Upload itself is the
// photo storage collaborator's job; the engine stores only the reference.
type InspectionPhoto struct {
	Category PhotoCategory `json:"category"`
	URL      string        `json:"url"`
}

// InspectionReport is the check-in or check-out payload captured at trip start and
// end. RecordedAt is server-assigned when the report is attached to a booking.
type InspectionReport struct {
	Mileage     int               `json:"mileage"`
	FuelLevel   int               `json:"fuel_level"`
	Condition   CarCondition      `json:"condition"`
	DamageNotes string            `json:"damage_notes,omitempty"`
	Photos      []InspectionPhoto `json:"photos"`
	RecordedAt  time.Time         `json:"recorded_at"`
}

// Validate checks the report against the capture requirements: positive mileage,
// fuel level 0-100, a recognized condition, at least MinInspectionPhotos photos,
// and every mandatory category covered.
func (r InspectionReport) Validate() error {
	if r.Mileage <= 0 {
		return domain.NewValidationError("mileage must be a positive integer")
	}
	if r.FuelLevel < 0 || r.FuelLevel > 100 {
		return domain.NewValidationError("fuel level must be between 0 and 100")
	}
	if !r.Condition.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("invalid condition: %s", r.Condition))
	}
	for _, p := range r.Photos {
		if p.URL == "" {
			return domain.NewValidationError("inspection photo reference is missing its URL")
		}
	}

	if len(r.Photos) < MinInspectionPhotos {
		return domain.NewIncompleteInspectionError(
			fmt.Sprintf("at least %d photos are required, got %d", MinInspectionPhotos, len(r.Photos)))
	}

	covered := make(map[PhotoCategory]bool, len(r.Photos))
	for _, p := range r.Photos {
		covered[p.Category] = true
	}
	for _, category := range mandatoryPhotoCategories {
		if !covered[category] {
			return domain.NewIncompleteInspectionError(
				fmt.Sprintf("missing mandatory photo category: %s", category))
		}
	}

	return nil
}
