// ABOUTME: Persistence for named calculations
// ABOUTME: Store interface with in-memory and Postgres implementations

package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/sparkcalc/sparkcalc/backend/models"
)

// ErrNotFound is returned when no calculation has the requested id
var ErrNotFound = errors.New("calculation not found")

// Store saves and retrieves calculations. Implementations are safe for
// concurrent use.
type Store interface {
	// Save assigns an id and creation time and persists the calculation
	Save(ctx context.Context, calc models.SavedCalculation) (models.SavedCalculation, error)
	Get(ctx context.Context, id string) (models.SavedCalculation, error)
	// List returns calculations newest first; an empty kind matches all
	List(ctx context.Context, kind models.CalculationKind) ([]models.SavedCalculation, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Name() string
	Close() error
}

// stamp fills in the server-assigned fields of a new record
func stamp(calc models.SavedCalculation) models.SavedCalculation {
	calc.ID = uuid.NewString()
	calc.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	return calc
}
