package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"blast-arena/server/models"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore persists stages and snapshots in a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (ss *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS stages (
		name TEXT PRIMARY KEY,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		layout TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS snapshots (
		match_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		world TEXT NOT NULL,
		PRIMARY KEY (match_id, tick)
	);
	`
	_, err := ss.db.Exec(schema)
	return err
}

func (ss *SQLiteStore) SaveStage(name string, stage models.Stage) error {
	layoutJSON, err := json.Marshal(stage)
	if err != nil {
		return fmt.Errorf("failed to marshal stage layout: %w", err)
	}
	_, err = ss.db.Exec(
		`INSERT INTO stages (name, width, height, layout) VALUES (?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET width = excluded.width, height = excluded.height, layout = excluded.layout`,
		name, stage.Width(), stage.Height(), string(layoutJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save stage: %w", err)
	}
	return nil
}

func (ss *SQLiteStore) LoadStage(name string) (models.Stage, error) {
	var layoutJSON string
	err := ss.db.QueryRow(`SELECT layout FROM stages WHERE name = ?`, name).Scan(&layoutJSON)
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

func (ss *SQLiteStore) SaveSnapshot(matchID string, tick uint64, world models.World) error {
	worldJSON, err := json.Marshal(world)
	if err != nil {
		return fmt.Errorf("failed to marshal world: %w", err)
	}
	_, err = ss.db.Exec(
		`INSERT INTO snapshots (match_id, tick, world) VALUES (?, ?, ?)
		ON CONFLICT (match_id, tick) DO UPDATE SET world = excluded.world`,
		matchID, int64(tick), string(worldJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (ss *SQLiteStore) LoadSnapshot(matchID string, tick uint64) (models.World, error) {
	var worldJSON string
	err := ss.db.QueryRow(
		`SELECT world FROM snapshots WHERE match_id = ? AND tick = ?`,
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

func (ss *SQLiteStore) LatestSnapshot(matchID string) (uint64, models.World, error) {
	var (
		tick      int64
		worldJSON string
	)
	err := ss.db.QueryRow(
		`SELECT tick, world FROM snapshots WHERE match_id = ? ORDER BY tick DESC LIMIT 1`,
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

func (ss *SQLiteStore) Close() error {
	log.Println("Closing sqlite database...")
	return ss.db.Close()
}
