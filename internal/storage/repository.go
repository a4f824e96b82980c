package storage

import (
	"context"

	"github.com/everai-labs/simulation-engine/internal/models"
)

// Repository defines the interface for simulation persistence
type Repository interface {
	// InsertSimulation stores a new document and returns its store-assigned id
	InsertSimulation(ctx context.Context, sim *models.Simulation) (string, error)

	// GetSimulation retrieves a simulation by id; returns (nil, nil) when absent
	GetSimulation(ctx context.Context, id string) (*models.Simulation, error)

	// UpdateSimulationFields applies a sparse field set to the stored document,
	// keyed by the document's external field names. Returns the number of
	// records modified.
	UpdateSimulationFields(ctx context.Context, id string, fields map[string]interface{}) (int64, error)

	// ListSimulations returns simulations matching filters
	ListSimulations(ctx context.Context, filters models.ListFilters) ([]*models.Simulation, error)

	// Health
	Ping(ctx context.Context) error
	Close() error
}
