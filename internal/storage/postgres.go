package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/everai-labs/simulation-engine/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL. Each simulation
// is stored as a single JSONB document keyed by a store-assigned uuid, so
// partial updates are a jsonb merge against the top-level keys.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MaxIdleConns int32
	MaxLifetime  time.Duration
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	} else {
		poolConfig.MaxConns = 25
	}

	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	} else {
		poolConfig.MinConns = 5
	}

	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Pool exposes the underlying pool for the migrations runner
func (r *PostgresRepository) Pool() *pgxpool.Pool {
	return r.pool
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// InsertSimulation stores a new simulation document
func (r *PostgresRepository) InsertSimulation(ctx context.Context, sim *models.Simulation) (string, error) {
	id := uuid.New().String()
	sim.ID = id

	doc, err := json.Marshal(sim)
	if err != nil {
		return "", fmt.Errorf("failed to marshal simulation: %w", err)
	}

	query := `INSERT INTO simulations (id, doc, created_at) VALUES ($1, $2, $3)`

	if _, err := r.pool.Exec(ctx, query, id, doc, sim.CreatedOn); err != nil {
		return "", fmt.Errorf("failed to insert simulation: %w", err)
	}

	return id, nil
}

// GetSimulation retrieves a simulation by id
func (r *PostgresRepository) GetSimulation(ctx context.Context, id string) (*models.Simulation, error) {
	query := `SELECT doc FROM simulations WHERE id = $1`

	var doc []byte
	err := r.pool.QueryRow(ctx, query, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get simulation: %w", err)
	}

	var sim models.Simulation
	if err := json.Unmarshal(doc, &sim); err != nil {
		return nil, fmt.Errorf("failed to unmarshal simulation: %w", err)
	}
	sim.ID = id

	return &sim, nil
}

// UpdateSimulationFields merges the given fields into the stored document.
// Top-level keys are replaced wholesale, untouched keys keep their stored
// value byte-for-byte.
func (r *PostgresRepository) UpdateSimulationFields(ctx context.Context, id string, fields map[string]interface{}) (int64, error) {
	patch, err := json.Marshal(fields)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal update fields: %w", err)
	}

	query := `UPDATE simulations SET doc = doc || $2::jsonb WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, patch)
	if err != nil {
		return 0, fmt.Errorf("failed to update simulation: %w", err)
	}

	return result.RowsAffected(), nil
}

// ListSimulations returns simulations matching filters
func (r *PostgresRepository) ListSimulations(ctx context.Context, filters models.ListFilters) ([]*models.Simulation, error) {
	query := `SELECT id, doc FROM simulations WHERE 1=1`
	args := make([]interface{}, 0)
	argNum := 1

	if filters.DivisionID != "" {
		query += fmt.Sprintf(" AND doc->>'divisionId' = $%d", argNum)
		args = append(args, filters.DivisionID)
		argNum++
	}

	if filters.Status != "" {
		query += fmt.Sprintf(" AND doc->>'status' = $%d", argNum)
		args = append(args, string(filters.Status))
		argNum++
	}

	query += " ORDER BY created_at DESC"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filters.Limit)
		argNum++
	}

	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filters.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list simulations: %w", err)
	}
	defer rows.Close()

	var sims []*models.Simulation

	for rows.Next() {
		var id string
		var doc []byte

		if err := rows.Scan(&id, &doc); err != nil {
			return nil, fmt.Errorf("failed to scan simulation: %w", err)
		}

		var sim models.Simulation
		if err := json.Unmarshal(doc, &sim); err != nil {
			return nil, fmt.Errorf("failed to unmarshal simulation %s: %w", id, err)
		}
		sim.ID = id

		sims = append(sims, &sim)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating simulations: %w", err)
	}

	return sims, nil
}
