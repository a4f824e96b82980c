package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// PreviewEntry is one recorded preview session
type PreviewEntry struct {
	SimulationID string    `json:"simulation_id"`
	UserID       string    `json:"user_id"`
	AgentID      string    `json:"agent_id"`
	At           time.Time `json:"at"`
}

// Recorder keeps a short per-simulation trail of preview sessions in Redis.
// Entries expire; losing them never affects the preview itself.
type Recorder struct {
	client *redis.Client
	keep   int64
	ttl    time.Duration
}

// NewRecorder creates a new preview recorder
func NewRecorder(address, password string, db int) *Recorder {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	return &Recorder{
		client: client,
		keep:   50,
		ttl:    7 * 24 * time.Hour,
	}
}

func previewKey(simulationID string) string {
	return fmt.Sprintf("simulation:%s:previews", simulationID)
}

// RecordPreview appends a preview entry to the simulation's trail
func (r *Recorder) RecordPreview(ctx context.Context, simulationID, userID, agentID string) error {
	entry := PreviewEntry{
		SimulationID: simulationID,
		UserID:       userID,
		AgentID:      agentID,
		At:           time.Now().UTC(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal preview entry: %w", err)
	}

	key := previewKey(simulationID)

	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, r.keep-1)
	pipe.Expire(ctx, key, r.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record preview: %w", err)
	}

	return nil
}

// Recent returns the most recent preview entries for a simulation
func (r *Recorder) Recent(ctx context.Context, simulationID string, limit int64) ([]PreviewEntry, error) {
	if limit <= 0 || limit > r.keep {
		limit = r.keep
	}

	raw, err := r.client.LRange(ctx, previewKey(simulationID), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read preview trail: %w", err)
	}

	entries := make([]PreviewEntry, 0, len(raw))
	for _, item := range raw {
		var entry PreviewEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			continue // skip corrupt entries
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// Ping checks Redis connectivity
func (r *Recorder) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *Recorder) Close() error {
	return r.client.Close()
}
