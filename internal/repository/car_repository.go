package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kerbside/service-booking/internal/domain"
	carDomain "github.com/kerbside/service-booking/internal/domain/car"
)

// CarModel is the GORM model for the cars table. The listing service owns these
// rows; the booking engine reads them and locks them to serialize creates.
type CarModel struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	HostID             uuid.UUID `gorm:"type:uuid;index;not null"`
	Make               string    `gorm:"size:50;not null"`
	Model              string    `gorm:"size:50;not null"`
	Year               int       `gorm:"not null"`
	DailyRate          float64   `gorm:"type:numeric(10,2);not null"`
	WeeklyDiscountPct  float64   `gorm:"type:numeric(5,2);not null;default:0"`
	MonthlyDiscountPct float64   `gorm:"type:numeric(5,2);not null;default:0"`
	ProtectionPlan     string    `gorm:"size:20;not null;default:'basic'"`
	InstantBook        bool      `gorm:"not null;default:false"`
	Currency           string    `gorm:"size:3;not null;default:'USD'"`
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (CarModel) TableName() string {
	return "cars"
}

// GormCarRepository is the GORM-based implementation of CarRepository.
type GormCarRepository struct {
	db *gorm.DB
}

// NewGormCarRepository creates a new GormCarRepository.
func NewGormCarRepository(db *gorm.DB) *GormCarRepository {
	return &GormCarRepository{db: db}
}

// FindByID retrieves a car by its unique identifier.
func (r *GormCarRepository) FindByID(ctx context.Context, id uuid.UUID) (*carDomain.Car, error) {
	var model CarModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Car", id.String())
		}
		return nil, domain.NewStorageError(fmt.Errorf("find car by id: %w", err))
	}
	return toDomainCar(&model), nil
}

func toDomainCar(m *CarModel) *carDomain.Car {
	return &carDomain.Car{
		ID:                 m.ID,
		HostID:             m.HostID,
		Make:               m.Make,
		Model:              m.Model,
		Year:               m.Year,
		DailyRate:          m.DailyRate,
		WeeklyDiscountPct:  m.WeeklyDiscountPct,
		MonthlyDiscountPct: m.MonthlyDiscountPct,
		ProtectionPlan:     carDomain.ProtectionPlan(m.ProtectionPlan),
		InstantBook:        m.InstantBook,
		Currency:           m.Currency,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}
