package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"blast-arena/server/models"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresStore handles database operations using PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL storage manager
func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db}

	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema initializes the database schema
func (ps *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS stages (
		name TEXT PRIMARY KEY,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		layout JSONB NOT NULL,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS snapshots (
		match_id TEXT NOT NULL,
		tick BIGINT NOT NULL,
		world JSONB NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		PRIMARY KEY (match_id, tick)
	);
	`

	_, err := ps.db.Exec(schema)
	return err
}

// SaveStage saves a named stage layout
func (ps *PostgresStore) SaveStage(name string, stage models.Stage) error {
	layoutJSON, err := json.Marshal(stage)
	if err != nil {
		return fmt.Errorf("failed to marshal stage layout: %w", err)
	}

	query := `
	INSERT INTO stages (name, width, height, layout)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (name)
	DO UPDATE SET
		width = $2, height = $3, layout = $4,
		updated_at = NOW()
	`

	if _, err := ps.db.Exec(query, name, stage.Width(), stage.Height(), string(layoutJSON)); err != nil {
		return fmt.Errorf("failed to save stage: %w", err)
	}

	return nil
}

// LoadStage loads a stage layout by name
func (ps *PostgresStore) LoadStage(name string) (models.Stage, error) {
	var layoutJSON string
	err := ps.db.QueryRow(`SELECT layout FROM stages WHERE name = $1`, name).Scan(&layoutJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Stage{}, fmt.Errorf("stage %s: %w", name, ErrNotFound)
		}
		return models.Stage{}, fmt.Errorf("failed to load stage: %w", err)
	}

	var stage models.Stage
	if err := json.Unmarshal([]byte(layoutJSON), &stage); err != nil {
		return models.Stage{}, fmt.Errorf("failed to unmarshal stage layout: %w", err)
	}

	return stage, nil
}

// SaveSnapshot stores the world of a match at a tick
func (ps *PostgresStore) SaveSnapshot(matchID string, tick uint64, world models.World) error {
	worldJSON, err := json.Marshal(world)
	if err != nil {
		return fmt.Errorf("failed to marshal world: %w", err)
	}

	query := `
	INSERT INTO snapshots (match_id, tick, world)
	VALUES ($1, $2, $3)
	ON CONFLICT (match_id, tick)
	DO UPDATE SET world = $3
	`

	if _, err := ps.db.Exec(query, matchID, int64(tick), string(worldJSON)); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}

// LoadSnapshot loads the world of a match at a tick
func (ps *PostgresStore) LoadSnapshot(matchID string, tick uint64) (models.World, error) {
	var worldJSON string
	err := ps.db.QueryRow(
		`SELECT world FROM snapshots WHERE match_id = $1 AND tick = $2`,
		matchID, int64(tick),
	).Scan(&worldJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.World{}, fmt.Errorf("snapshot %s@%d: %w", matchID, tick, ErrNotFound)
		}
		return models.World{}, fmt.Errorf("failed to load snapshot: %w", err)
	}

	return decodeWorld(worldJSON)
}

// LatestSnapshot loads the most recent snapshot of a match
func (ps *PostgresStore) LatestSnapshot(matchID string) (uint64, models.World, error) {
	var (
		tick      int64
		worldJSON string
	)
	err := ps.db.QueryRow(
		`SELECT tick, world FROM snapshots WHERE match_id = $1 ORDER BY tick DESC LIMIT 1`,
		matchID,
	).Scan(&tick, &worldJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, models.World{}, fmt.Errorf("snapshot %s: %w", matchID, ErrNotFound)
		}
		return 0, models.World{}, fmt.Errorf("failed to load snapshot: %w", err)
	}

	world, err := decodeWorld(worldJSON)
	if err != nil {
		return 0, models.World{}, err
	}
	return uint64(tick), world, nil
}

// Close closes the database connection
func (ps *PostgresStore) Close() error {
	log.Println("Closing database connection...")
	return ps.db.Close()
}

func decodeWorld(worldJSON string) (models.World, error) {
	var world models.World
	if err := json.Unmarshal([]byte(worldJSON), &world); err != nil {
		return models.World{}, fmt.Errorf("failed to unmarshal world: %w", err)
	}
	return world, nil
}
