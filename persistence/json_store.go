package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strconv"
	"sync"

	"blast-arena/server/models"
)

// SnapshotHistory is how many snapshots per match the JSON store keeps.
// Older ticks are dropped on save since the whole file is rewritten each time.
const SnapshotHistory = 16

// JSONStore handles data persistence using a local JSON file
type JSONStore struct {
	filePath string
	mutex    sync.RWMutex
	data     *JSONData
}

// JSONData represents the structure of the JSON database.
// Snapshots are keyed by match ID, then by tick.
type JSONData struct {
	Stages    map[string]models.Stage            `json:"stages"`
	Snapshots map[string]map[string]models.World `json:"snapshots"`
	Latest    map[string]uint64                  `json:"latest"`
}

// NewJSONStore creates a new JSON storage manager
func NewJSONStore(filePath string) (*JSONStore, error) {
	store := &JSONStore{
		filePath: filePath,
		data: &JSONData{
			Stages:    make(map[string]models.Stage),
			Snapshots: make(map[string]map[string]models.World),
			Latest:    make(map[string]uint64),
		},
	}

	if _, err := os.Stat(filePath); err == nil {
		if err := store.loadFromFile(); err != nil {
			return nil, fmt.Errorf("failed to load JSON store: %w", err)
		}
	} else {
		if err := store.saveToFile(); err != nil {
			return nil, fmt.Errorf("failed to create JSON store file: %w", err)
		}
	}

	return store, nil
}

// loadFromFile loads data from the JSON file
func (js *JSONStore) loadFromFile() error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	file, err := os.ReadFile(js.filePath)
	if err != nil {
		return err
	}

	return json.Unmarshal(file, js.data)
}

// saveToFile saves data to the JSON file. The caller holds the write lock
// so concurrent saves land in the file one at a time.
func (js *JSONStore) saveToFile() error {
	data, err := json.MarshalIndent(js.data, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(js.filePath, data, 0644)
}

// SaveStage saves a named stage layout
func (js *JSONStore) SaveStage(name string, stage models.Stage) error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	js.data.Stages[name] = stage.Copy()
	return js.saveToFile()
}

// LoadStage loads a stage layout by name
func (js *JSONStore) LoadStage(name string) (models.Stage, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	stage, exists := js.data.Stages[name]
	if !exists {
		return models.Stage{}, fmt.Errorf("stage %s: %w", name, ErrNotFound)
	}

	return stage.Copy(), nil
}

// SaveSnapshot stores the world of a match at a tick
func (js *JSONStore) SaveSnapshot(matchID string, tick uint64, world models.World) error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	snapshots, exists := js.data.Snapshots[matchID]
	if !exists {
		snapshots = make(map[string]models.World)
		js.data.Snapshots[matchID] = snapshots
	}
	snapshots[strconv.FormatUint(tick, 10)] = world
	if latest, ok := js.data.Latest[matchID]; !ok || tick >= latest {
		js.data.Latest[matchID] = tick
	}
	pruneSnapshots(snapshots, SnapshotHistory)

	return js.saveToFile()
}

// pruneSnapshots drops the oldest ticks until at most keep remain
func pruneSnapshots(snapshots map[string]models.World, keep int) {
	if len(snapshots) <= keep {
		return
	}
	ticks := make([]uint64, 0, len(snapshots))
	for key := range snapshots {
		tick, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			delete(snapshots, key)
			continue
		}
		ticks = append(ticks, tick)
	}
	slices.Sort(ticks)
	for len(ticks) > keep {
		delete(snapshots, strconv.FormatUint(ticks[0], 10))
		ticks = ticks[1:]
	}
}

// LoadSnapshot loads the world of a match at a tick
func (js *JSONStore) LoadSnapshot(matchID string, tick uint64) (models.World, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	world, exists := js.data.Snapshots[matchID][strconv.FormatUint(tick, 10)]
	if !exists {
		return models.World{}, fmt.Errorf("snapshot %s@%d: %w", matchID, tick, ErrNotFound)
	}

	return world, nil
}

// LatestSnapshot loads the most recent snapshot of a match
func (js *JSONStore) LatestSnapshot(matchID string) (uint64, models.World, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	tick, exists := js.data.Latest[matchID]
	if !exists {
		return 0, models.World{}, fmt.Errorf("snapshot %s: %w", matchID, ErrNotFound)
	}

	return tick, js.data.Snapshots[matchID][strconv.FormatUint(tick, 10)], nil
}

// Close closes the store (no-op for JSON store)
func (js *JSONStore) Close() error {
	return nil
}
