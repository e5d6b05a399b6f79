package car

import (
	"context"

	"github.com/google/uuid"
)

// CarRepository defines read access to car rate cards.
type CarRepository interface {
	// FindByID retrieves a car by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Car, error)
}
